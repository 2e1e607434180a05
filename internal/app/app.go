package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"bondpulse/internal/config"
	apierrors "bondpulse/internal/errors"
	"bondpulse/internal/infrastructure"
	customMiddleware "bondpulse/internal/middleware"
	"bondpulse/internal/services"
	httphandlers "bondpulse/internal/transport/http"
	"bondpulse/internal/validation"
	ws "bondpulse/internal/websocket"
	"bondpulse/pkg/contracts"
)

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.BusinessMetrics
	ErrorHandler  *apierrors.ErrorHandler
	Services      *ServiceContainer
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Registry  *services.Registry
	Chart     *services.ChartService
	Health    *services.HealthService
	WebSocket *ws.Hub
}

// NewApplication loads the configuration and logger from the environment and
// builds the application
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return New(cfg, logger)
}

// New wires every component for cfg. Tables are not loaded until Start or
// LoadTables.
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", contracts.Version),
		slog.String("data_dir", cfg.Data.Dir))

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateBusinessMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		ErrorHandler:  apierrors.NewErrorHandler(logger, cfg.Logging.Development),
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() error {
	if len(a.Config.Data.Tickers) == 0 {
		if err := validation.NewFileValidator(a.Logger).ValidateDataDir(a.Config.Data.Dir); err != nil {
			return fmt.Errorf("failed to resolve tick files: %w", err)
		}
	}

	sources, err := a.Config.Data.ResolveTickers()
	if err != nil {
		return fmt.Errorf("failed to resolve tick files: %w", err)
	}

	hub := ws.NewHub(a.Logger, a.Metrics)
	hub.Start()

	loader := services.NewFileLoader(services.PipelineOptions(a.Config.Data), a.Config.Data.Sheet, a.Logger)
	registry := services.NewRegistry(sources, loader, services.RegistryOptions{
		Concurrency: a.Config.Data.LoadConcurrency,
		Publisher:   hub,
		Metrics:     a.Metrics,
		Logger:      a.Logger,
	})

	a.Services = &ServiceContainer{
		Registry:  registry,
		Chart:     services.NewChartService(registry, a.OTelProviders.Tracer, a.Metrics, a.Logger),
		Health:    services.NewHealthService(registry, hub, a.Logger),
		WebSocket: hub,
	}

	a.Logger.Info("Services initialized",
		slog.Int("tickers", len(sources)),
		slog.Bool("gap_fill", a.Config.Data.GapFill.Enabled))
	return nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// These do not wrap the ResponseWriter, so the websocket upgrade is safe
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	wsOpts := ws.OptionsFrom(a.Config.WebSocket, a.Config.Security)
	r.With(customMiddleware.WebSocketTraceMiddleware(a.Logger)).
		Handle("/ws", ws.NewHandler(a.Services.WebSocket, wsOpts, a.Logger))

	r.Group(func(r chi.Router) {
		// RequestID → RealIP → OTel → Logger → Recoverer → Security → CORS → RateLimit → Timeout
		r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics).Handler)
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.ErrorHandler))
		r.Use(customMiddleware.SecurityHeaders)

		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(a.getCORSConfig()))
		}

		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.ErrorHandler,
				a.Logger,
			).Handler)
		}

		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))

		a.setupAPIRoutes(r)
	})

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	validator := customMiddleware.NewValidator()
	chartHandler := httphandlers.NewChartHandler(a.Services.Chart, validator, a.ErrorHandler, a.Logger)
	healthHandler := httphandlers.NewHealthHandler(a.Services.Health, a.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Mount("/health", healthHandler.Routes())
		r.Get("/version", healthHandler.Version)
		r.Mount("/tickers", chartHandler.Routes())
	})
}

func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	return customMiddleware.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", customMiddleware.RequestIDHeader},
		ExposedHeaders: []string{customMiddleware.RequestIDHeader},
		MaxAge:         300,
		Logger:         a.Logger,
	}
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           a.Config.Address(),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// LoadTables builds every configured ticker. Individual failures are
// logged; it fails only when no ticker could be loaded.
func (a *Application) LoadTables(ctx context.Context) error {
	start := time.Now()
	err := a.Services.Registry.LoadAll(ctx)
	loaded := a.Services.Registry.Loaded()

	if err != nil {
		if loaded == 0 || errors.Is(err, context.Canceled) {
			return fmt.Errorf("failed to load tickers: %w", err)
		}
		a.Logger.WarnContext(ctx, "Some tickers failed to load", slog.String("error", err.Error()))
	}

	a.Logger.InfoContext(ctx, "Tickers ready",
		slog.Int("loaded", loaded),
		slog.Int("configured", len(a.Services.Registry.Symbols())),
		slog.Duration("duration", time.Since(start)))
	return nil
}

// Start loads the tables and starts serving. A listener failure cancels ctx
// through cancel.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", config.AppName),
		slog.String("version", contracts.Version),
		slog.String("address", a.Server.Addr),
		slog.String("level", a.Config.Logging.Level))

	if err := a.LoadTables(ctx); err != nil {
		return err
	}

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", fmt.Sprintf("http://%s", a.Server.Addr)))
	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}

	a.Services.WebSocket.Stop()

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	if err := infrastructure.CloseLogFile(); err != nil {
		errs = append(errs, fmt.Errorf("close log file: %w", err))
	}
	return errors.Join(errs...)
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := a.Start(ctx, cancel); err != nil {
		a.Services.WebSocket.Stop()
		return err
	}

	select {
	case sig := <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal", slog.String("signal", sig.String()))
	case <-ctx.Done():
		a.Logger.InfoContext(ctx, "Server stopped unexpectedly")
	}

	return a.Stop(context.Background())
}
