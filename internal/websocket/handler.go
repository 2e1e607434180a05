package websocket

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"bondpulse/internal/config"
	"bondpulse/internal/infrastructure"
)

// Options tunes the upgrader and client keep-alives
type Options struct {
	ReadBufferSize  int
	WriteBufferSize int
	PingPeriod      time.Duration
	PongWait        time.Duration

	// AllowedOrigins restricts browser origins; empty or "*" allows all
	AllowedOrigins []string
}

// OptionsFrom maps the application configuration
func OptionsFrom(ws config.WebSocketConfig, sec config.SecurityConfig) Options {
	return Options{
		ReadBufferSize:  ws.ReadBufferSize,
		WriteBufferSize: ws.WriteBufferSize,
		PingPeriod:      ws.PingPeriod,
		PongWait:        ws.PongWait,
		AllowedOrigins:  sec.AllowedOrigins,
	}
}

func (o Options) withDefaults() Options {
	if o.ReadBufferSize <= 0 {
		o.ReadBufferSize = 1024
	}
	if o.WriteBufferSize <= 0 {
		o.WriteBufferSize = 1024
	}
	if o.PongWait <= 0 {
		o.PongWait = config.WebSocketPongWait
	}
	if o.PingPeriod <= 0 || o.PingPeriod >= o.PongWait {
		o.PingPeriod = o.PongWait * 9 / 10
	}
	return o
}

func (o Options) originAllowed(origin string) bool {
	if origin == "" || len(o.AllowedOrigins) == 0 {
		return true
	}
	for _, allowed := range o.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

// Handler upgrades HTTP requests and attaches the connection to the hub
type Handler struct {
	hub      *Hub
	opts     Options
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHandler creates the /ws endpoint handler
func NewHandler(hub *Hub, opts Options, logger *slog.Logger) *Handler {
	opts = opts.withDefaults()
	logger = infrastructure.WithComponent(logger, "websocket.handler")
	h := &Handler{hub: hub, opts: opts, logger: logger}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  opts.ReadBufferSize,
		WriteBufferSize: opts.WriteBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if opts.originAllowed(origin) {
				return true
			}
			logger.WarnContext(r.Context(), "websocket origin rejected", slog.String("origin", origin))
			return false
		},
	}
	return h
}

// ServeHTTP implements http.Handler
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader has already written the HTTP error
		h.logger.WarnContext(r.Context(), "websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	client := NewClient(h.hub, Wrap(conn), infrastructure.GetTraceID(r.Context()), h.opts, h.logger)
	if !h.hub.Register(client) {
		_ = conn.Close()
		return
	}
	go client.WritePump()
	go client.ReadPump()
}
