package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"bondpulse/internal/infrastructure"
	"bondpulse/pkg/contracts/events"
)

// broadcastBuffer bounds the number of pending broadcasts
const broadcastBuffer = 64

// Hub fans dataset lifecycle events out to every connected client
type Hub struct {
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	mu      sync.RWMutex
	running bool
	quit    chan struct{}
	done    chan struct{}

	logger  *slog.Logger
	metrics *infrastructure.BusinessMetrics
}

// NewHub creates a hub. metrics may be nil.
func NewHub(logger *slog.Logger, metrics *infrastructure.BusinessMetrics) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, broadcastBuffer),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
		logger:     infrastructure.WithComponent(logger, "websocket.hub"),
		metrics:    metrics,
	}
}

// Start runs the hub loop in its own goroutine. It is idempotent.
func (h *Hub) Start() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.running {
		return
	}
	h.running = true
	go h.run()
}

// Stop ends the hub loop and closes every client send channel
func (h *Hub) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	h.mu.Unlock()

	close(h.quit)
	<-h.done
}

func (h *Hub) run() {
	defer close(h.done)
	for {
		select {
		case <-h.quit:
			h.mu.Lock()
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			h.mu.Unlock()
			h.logger.Info("hub stopped")
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			count := len(h.clients)
			h.mu.Unlock()

			ctx := c.context()
			if h.metrics != nil {
				h.metrics.WebSocketClients.Add(ctx, 1)
			}
			h.logger.InfoContext(ctx, "client registered",
				slog.String("client_id", c.id),
				slog.String("remote_addr", c.remoteAddr),
				slog.Int("total_clients", count))

			if msg, err := encode(ctx, events.MessageTypeConnect, map[string]string{"client_id": c.id}); err == nil {
				select {
				case c.send <- msg:
				default:
				}
			}

		case c := <-h.unregister:
			h.remove(c, "disconnected")

		case msg := <-h.broadcast:
			h.mu.RLock()
			clients := make([]*Client, 0, len(h.clients))
			for c := range h.clients {
				clients = append(clients, c)
			}
			h.mu.RUnlock()

			for _, c := range clients {
				select {
				case c.send <- msg:
				default:
					h.remove(c, "send buffer full")
				}
			}
			h.logger.Debug("broadcast delivered",
				slog.Int("clients", len(clients)),
				slog.Int("bytes", len(msg)))
		}
	}
}

// remove drops c from the hub; it runs on the hub goroutine only
func (h *Hub) remove(c *Client, reason string) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	close(c.send)
	count := len(h.clients)
	h.mu.Unlock()

	ctx := c.context()
	if h.metrics != nil {
		h.metrics.WebSocketClients.Add(ctx, -1)
	}
	h.logger.InfoContext(ctx, "client unregistered",
		slog.String("client_id", c.id),
		slog.String("reason", reason),
		slog.Duration("connection_duration", time.Since(c.connectedAt)),
		slog.Int("total_clients", count))
}

// Register adds a client. It returns false if the hub is stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.quit:
		return false
	}
}

// Unregister removes a client
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.quit:
	}
}

// Publish broadcasts an event to every client. It never blocks: when the
// broadcast queue is full the event is dropped and logged.
func (h *Hub) Publish(ctx context.Context, msgType events.MessageType, data any) {
	msg, err := encode(ctx, msgType, data)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to encode websocket message",
			slog.String("type", string(msgType)),
			slog.String("error", err.Error()))
		return
	}
	select {
	case h.broadcast <- msg:
	case <-h.quit:
	default:
		h.logger.WarnContext(ctx, "broadcast queue full, dropping event",
			slog.String("type", string(msgType)))
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func encode(ctx context.Context, msgType events.MessageType, data any) ([]byte, error) {
	msg := events.NewMessage(msgType, data)
	msg.TraceID = infrastructure.GetTraceID(ctx)
	return json.Marshal(msg)
}
