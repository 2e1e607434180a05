package http

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"bondpulse/internal/services"
)

// MockHealthService is a mock for HealthServiceInterface
type MockHealthService struct {
	mock.Mock
}

func (m *MockHealthService) HealthCheck(ctx context.Context) services.HealthStatus {
	return m.Called(ctx).Get(0).(services.HealthStatus)
}

func (m *MockHealthService) ReadinessCheck(ctx context.Context) services.HealthStatus {
	return m.Called(ctx).Get(0).(services.HealthStatus)
}

func (m *MockHealthService) LivenessCheck(ctx context.Context) services.HealthStatus {
	return m.Called(ctx).Get(0).(services.HealthStatus)
}

func (m *MockHealthService) Version() map[string]interface{} {
	return m.Called().Get(0).(map[string]interface{})
}

func newHealthRouter(svc HealthServiceInterface) http.Handler {
	h := NewHealthHandler(svc, nil)
	r := chi.NewRouter()
	r.Mount("/api/health", h.Routes())
	r.Get("/api/version", h.Version)
	return r
}

func TestHealthEndpoints(t *testing.T) {
	now := time.Now()
	svc := new(MockHealthService)
	svc.On("HealthCheck", mock.Anything).Return(services.HealthStatus{Status: "ok", Timestamp: now, Version: "0.3.0"})
	svc.On("LivenessCheck", mock.Anything).Return(services.HealthStatus{Status: "alive", Timestamp: now})
	svc.On("Version").Return(map[string]interface{}{"version": "0.3.0"})

	router := newHealthRouter(svc)

	rec, body := do(t, router, http.MethodGet, "/api/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])

	rec, body = do(t, router, http.MethodGet, "/api/health/live")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alive", body["status"])

	rec, body = do(t, router, http.MethodGet, "/api/version")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0.3.0", body["version"])
}

func TestReadinessStatusCodes(t *testing.T) {
	tests := []struct {
		status   string
		expected int
	}{
		{"ready", http.StatusOK},
		{"not_ready", http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			svc := new(MockHealthService)
			svc.On("ReadinessCheck", mock.Anything).Return(services.HealthStatus{Status: tt.status})

			rec, body := do(t, newHealthRouter(svc), http.MethodGet, "/api/health/ready")
			assert.Equal(t, tt.expected, rec.Code)
			assert.Equal(t, tt.status, body["status"])
		})
	}
}
