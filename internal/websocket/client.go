package websocket

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"bondpulse/internal/infrastructure"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 512
	sendBuffer     = 64
)

// Client relays hub messages to one websocket connection
type Client struct {
	hub  *Hub
	conn Connection
	send chan []byte

	id          string
	traceID     string
	remoteAddr  string
	connectedAt time.Time

	pingPeriod time.Duration
	pongWait   time.Duration

	logger *slog.Logger
}

// NewClient creates a client for conn. Zero timings fall back to the package defaults.
func NewClient(hub *Hub, conn Connection, traceID string, opts Options, logger *slog.Logger) *Client {
	opts = opts.withDefaults()
	id := uuid.New().String()
	return &Client{
		hub:         hub,
		conn:        conn,
		send:        make(chan []byte, sendBuffer),
		id:          id,
		traceID:     traceID,
		remoteAddr:  conn.RemoteAddr(),
		connectedAt: time.Now(),
		pingPeriod:  opts.PingPeriod,
		pongWait:    opts.PongWait,
		logger: infrastructure.WithComponent(logger, "websocket.client").
			With(slog.String("client_id", id)),
	}
}

// ID returns the client id
func (c *Client) ID() string {
	return c.id
}

func (c *Client) context() context.Context {
	if c.traceID == "" {
		return context.Background()
	}
	return infrastructure.WithTraceID(context.Background(), c.traceID)
}

// ReadPump drains inbound frames so control messages are processed. Clients
// have nothing to say beyond keep-alives. It unregisters the client on exit.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.WarnContext(c.context(), "unexpected websocket close",
					slog.String("error", err.Error()))
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	}
}

// WritePump writes hub messages and pings until the send channel closes
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.logger.DebugContext(c.context(), "websocket write failed",
					slog.String("error", err.Error()))
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
