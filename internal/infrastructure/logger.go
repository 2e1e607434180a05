package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/trace"

	"bondpulse/internal/config"
)

// logSink owns the log file opened for file output
type logSink struct {
	mu   sync.Mutex
	file *os.File
}

func (s *logSink) open(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file != nil {
		_ = s.file.Close()
	}
	s.file = f
	return f, nil
}

func (s *logSink) close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

var (
	sink         logSink
	globalLogger *slog.Logger
	globalOnce   sync.Once
)

// InitializeLogger builds the process logger once and installs it as the
// slog default. Later calls return the first logger.
func InitializeLogger(cfg config.LoggingConfig) (*slog.Logger, error) {
	var err error
	globalOnce.Do(func() {
		globalLogger, err = NewLogger(cfg)
		if err == nil {
			slog.SetDefault(globalLogger)
		}
	})
	return globalLogger, err
}

// GetLogger returns the process logger, or slog.Default before InitializeLogger
func GetLogger() *slog.Logger {
	if globalLogger == nil {
		return slog.Default()
	}
	return globalLogger
}

// NewLogger builds a logger for cfg. Output "file" and "both" open
// cfg.FilePath; CloseLogFile releases it.
func NewLogger(cfg config.LoggingConfig) (*slog.Logger, error) {
	var w io.Writer = os.Stdout
	switch strings.ToLower(cfg.Output) {
	case "file", "both":
		f, err := sink.open(cfg.FilePath)
		if err != nil {
			return nil, err
		}
		w = f
		if strings.EqualFold(cfg.Output, "both") {
			w = io.MultiWriter(os.Stdout, f)
		}
	}
	return NewLoggerWithWriter(cfg, w), nil
}

// NewLoggerWithWriter builds a JSON (or text) logger writing to w
func NewLoggerWithWriter(cfg config.LoggingConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		AddSource: cfg.Development,
		Level:     parseLogLevel(cfg.Level),
	}

	var handler slog.Handler = slog.NewJSONHandler(w, opts)
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(&traceHandler{Handler: handler})
}

// CloseLogFile closes the file opened by NewLogger, if any
func CloseLogFile() error {
	return sink.close()
}

// ResetLoggerForTesting drops the process logger so InitializeLogger runs again
func ResetLoggerForTesting() {
	_ = sink.close()
	globalLogger = nil
	globalOnce = sync.Once{}
}

// traceHandler injects trace_id, ticker and the OpenTelemetry span from context
type traceHandler struct {
	slog.Handler
}

// Handle adds correlation attributes to the record if present in context
func (h *traceHandler) Handle(ctx context.Context, r slog.Record) error {
	if traceID := GetTraceID(ctx); traceID != "" {
		r.AddAttrs(slog.String("trace_id", traceID))
	}
	if symbol := GetTicker(ctx); symbol != "" && !hasAttr(r, "ticker") {
		r.AddAttrs(slog.String("ticker", symbol))
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		r.AddAttrs(
			slog.String("otel_trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	return h.Handler.Handle(ctx, r)
}

func hasAttr(r slog.Record, key string) bool {
	found := false
	r.Attrs(func(a slog.Attr) bool {
		found = a.Key == key
		return !found
	})
	return found
}

// WithAttrs returns a new Handler with additional attributes
func (h *traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithAttrs(attrs)}
}

// WithGroup returns a new Handler with the given group name
func (h *traceHandler) WithGroup(name string) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithGroup(name)}
}

// parseLogLevel accepts slog level names in any case, "warning", and
// offsets such as "info+2". Anything else is info.
func parseLogLevel(level string) slog.Level {
	if strings.EqualFold(level, "warning") {
		return slog.LevelWarn
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}
