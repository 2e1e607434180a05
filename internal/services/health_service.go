package services

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"bondpulse/internal/infrastructure"
	"bondpulse/pkg/contracts"
)

// TableStatus reports how many tickers are configured and loaded
type TableStatus interface {
	Symbols() []string
	Loaded() int
}

// ClientCounter reports connected websocket clients
type ClientCounter interface {
	ClientCount() int
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	tables    TableStatus
	clients   ClientCounter
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Runtime   map[string]interface{}   `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Uptime  string `json:"uptime,omitempty"`
}

// NewHealthService creates a health service. clients may be nil when the
// websocket hub is not running.
func NewHealthService(tables TableStatus, clients ClientCounter, logger *slog.Logger) *HealthService {
	return &HealthService{
		version:   contracts.Version,
		tables:    tables,
		clients:   clients,
		startTime: time.Now(),
		logger:    infrastructure.WithComponent(logger, "health_service"),
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck reports ready once at least one ticker table is served
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services: map[string]ServiceHealth{
			"tables":    hs.checkTables(),
			"websocket": hs.checkWebSocket(),
		},
	}

	for name, sh := range status.Services {
		if sh.Status != "ready" {
			status.Status = "not_ready"
			hs.logger.WarnContext(ctx, "service not ready",
				slog.String("service", name),
				slog.String("message", sh.Message))
		}
	}
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	info := contracts.GetVersionInfo()
	return map[string]interface{}{
		"version":      info.Version,
		"build_time":   info.BuildTime,
		"git_commit":   info.GitCommit,
		"go_version":   info.GoVersion,
		"modified":     info.Modified,
		"platform":     info.Platform,
		"api_version":  info.APIVersion,
		"data_format":  info.DataFormat,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}
}

func (hs *HealthService) checkTables() ServiceHealth {
	if hs.tables == nil {
		return ServiceHealth{Status: "not_ready", Message: "ticker registry not initialized"}
	}
	configured := len(hs.tables.Symbols())
	loaded := hs.tables.Loaded()
	if loaded == 0 {
		return ServiceHealth{
			Status:  "not_ready",
			Message: fmt.Sprintf("0 of %d tickers loaded", configured),
		}
	}
	return ServiceHealth{
		Status:  "ready",
		Message: fmt.Sprintf("%d of %d tickers loaded", loaded, configured),
	}
}

func (hs *HealthService) checkWebSocket() ServiceHealth {
	if hs.clients == nil {
		return ServiceHealth{Status: "ready", Message: "WebSocket hub disabled"}
	}
	return ServiceHealth{
		Status:  "ready",
		Message: fmt.Sprintf("%d clients connected", hs.clients.ClientCount()),
		Uptime:  time.Since(hs.startTime).Truncate(time.Second).String(),
	}
}
