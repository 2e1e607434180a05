package infrastructure

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

type contextKey string

const (
	traceIDKey contextKey = "trace_id"
	tickerKey  contextKey = "ticker"
)

// WithTraceID stores the request trace ID in ctx
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// GetTraceID returns the trace ID stored in ctx, or ""
func GetTraceID(ctx context.Context) string {
	id, _ := ctx.Value(traceIDKey).(string)
	return id
}

// EnsureTraceID returns ctx unchanged when it carries a trace ID and
// otherwise a child context with a fresh one.
func EnsureTraceID(ctx context.Context) context.Context {
	if GetTraceID(ctx) != "" {
		return ctx
	}
	return WithTraceID(ctx, uuid.New().String())
}

// WithTicker tags ctx with the ticker being built or queried. Records logged
// with ctx carry it as the "ticker" attribute.
func WithTicker(ctx context.Context, symbol string) context.Context {
	return context.WithValue(ctx, tickerKey, symbol)
}

// GetTicker returns the ticker tag of ctx, or ""
func GetTicker(ctx context.Context) string {
	symbol, _ := ctx.Value(tickerKey).(string)
	return symbol
}

// WithComponent creates a logger with a component field
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = GetLogger()
	}
	return logger.With(slog.String("component", component))
}
