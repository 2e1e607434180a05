package http

import (
	"context"

	"bondpulse/internal/services"
	"bondpulse/pkg/contracts/domain"
)

// ChartServiceInterface defines the chart operations the handlers need
type ChartServiceInterface interface {
	Query(ctx context.Context, ticker string, q domain.ChartQuery) (*domain.ChartResponse, error)
	Meta(ctx context.Context, ticker string) (domain.TickerMeta, error)
	Tickers(ctx context.Context) []domain.TickerMeta
	Reload(ctx context.Context, ticker string) (domain.TickerMeta, error)
}

// HealthServiceInterface defines the health operations the handlers need
type HealthServiceInterface interface {
	HealthCheck(ctx context.Context) services.HealthStatus
	ReadinessCheck(ctx context.Context) services.HealthStatus
	LivenessCheck(ctx context.Context) services.HealthStatus
	Version() map[string]interface{}
}
