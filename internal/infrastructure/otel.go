package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"

	"bondpulse/internal/config"
	"bondpulse/pkg/contracts"
)

// MeterName is the instrumentation scope of every bondpulse metric and span
const MeterName = "bondpulse"

// OTelConfig holds OpenTelemetry configuration
type OTelConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	TraceExporter  string // "stdout", "none"
	EnableMetrics  bool
	EnableTracing  bool
	SampleRatio    float64
}

// OTelConfigFrom maps the application telemetry settings
func OTelConfigFrom(cfg config.TelemetryConfig) *OTelConfig {
	return &OTelConfig{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: contracts.Version,
		Environment:    cfg.Environment,
		TraceExporter:  cfg.TraceExporter,
		EnableMetrics:  cfg.MetricsEnabled,
		EnableTracing:  cfg.TracingEnabled,
		SampleRatio:    1.0,
	}
}

// OTelProviders holds the OpenTelemetry providers.
// Tracer and Meter are always usable; they fall back to no-op globals when
// the corresponding signal is disabled.
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	PrometheusHTTP http.Handler
	Logger         *slog.Logger
}

// InitializeOTel initializes tracing and metrics
func InitializeOTel(cfg *OTelConfig, logger *slog.Logger) (*OTelProviders, error) {
	if cfg == nil {
		cfg = OTelConfigFrom(config.Default().Telemetry)
	}
	if logger == nil {
		logger = GetLogger()
	}

	ctx := context.Background()

	logger.InfoContext(ctx, "Initializing OpenTelemetry",
		slog.String("service", cfg.ServiceName),
		slog.String("version", cfg.ServiceVersion),
		slog.String("environment", cfg.Environment),
		slog.Bool("tracing_enabled", cfg.EnableTracing),
		slog.Bool("metrics_enabled", cfg.EnableMetrics))

	res := createResource(cfg)

	providers := &OTelProviders{
		Logger: logger.With(slog.String("component", "otel")),
	}

	if cfg.EnableTracing {
		if err := initializeTracing(ctx, cfg, res, providers); err != nil {
			return nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
	}

	if cfg.EnableMetrics {
		if err := initializeMetrics(ctx, cfg, res, providers); err != nil {
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
	}

	if providers.Tracer == nil {
		providers.Tracer = otel.Tracer(MeterName)
	}
	if providers.Meter == nil {
		providers.Meter = otel.Meter(MeterName)
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return providers, nil
}

func createResource(cfg *OTelConfig) *resource.Resource {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.DeploymentEnvironmentName(cfg.Environment),
		attribute.String("service.instance.id", generateInstanceID()),
	)
}

func initializeTracing(ctx context.Context, cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	var exporter sdktrace.SpanExporter
	var err error

	switch cfg.TraceExporter {
	case "stdout":
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
	case "none", "":
		return nil
	default:
		return fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SampleRatio)),
	)

	providers.TracerProvider = tp
	providers.Tracer = tp.Tracer(MeterName, trace.WithInstrumentationVersion(cfg.ServiceVersion))
	otel.SetTracerProvider(tp)

	providers.Logger.InfoContext(ctx, "Tracing initialized",
		slog.String("exporter", cfg.TraceExporter),
		slog.Float64("sample_ratio", cfg.SampleRatio))
	return nil
}

func initializeMetrics(ctx context.Context, cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	exporter, err := prometheus.New()
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)

	providers.PrometheusHTTP = promhttp.Handler()
	providers.MeterProvider = mp
	providers.Meter = mp.Meter(MeterName, metric.WithInstrumentationVersion(cfg.ServiceVersion))
	otel.SetMeterProvider(mp)

	providers.Logger.InfoContext(ctx, "Metrics initialized", slog.String("exporter", "prometheus"))
	return nil
}

// BusinessMetrics holds all application-specific metrics
type BusinessMetrics struct {
	// HTTP metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter

	// Table build metrics
	TableBuildsTotal   metric.Int64Counter
	TableBuildDuration metric.Float64Histogram
	TableRowsTotal     metric.Int64Counter
	TableSkippedRows   metric.Int64Counter
	TablesLoaded       metric.Int64UpDownCounter

	// Chart query metrics
	ChartQueriesTotal   metric.Int64Counter
	ChartQueryDuration  metric.Float64Histogram
	ChartQueryErrors    metric.Int64Counter
	ChartEmptyResponses metric.Int64Counter

	// WebSocket metrics
	WebSocketClients metric.Int64UpDownCounter
}

// CreateBusinessMetrics creates application-specific metrics
func CreateBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	var (
		m    BusinessMetrics
		errs []error
	)
	counter := func(name, desc string, opts ...metric.Int64CounterOption) metric.Int64Counter {
		c, err := meter.Int64Counter(name, append(opts, metric.WithDescription(desc))...)
		errs = append(errs, err)
		return c
	}
	histogram := func(name, desc string) metric.Float64Histogram {
		h, err := meter.Float64Histogram(name, metric.WithDescription(desc), metric.WithUnit("s"))
		errs = append(errs, err)
		return h
	}
	gauge := func(name, desc string) metric.Int64UpDownCounter {
		g, err := meter.Int64UpDownCounter(name, metric.WithDescription(desc))
		errs = append(errs, err)
		return g
	}

	m.HTTPRequestsTotal = counter("http_requests_total", "Total number of HTTP requests")
	m.HTTPRequestDuration = histogram("http_request_duration_seconds", "HTTP request duration in seconds")
	m.HTTPActiveRequests = gauge("http_active_requests", "Number of active HTTP requests")

	m.TableBuildsTotal = counter("table_builds_total", "Total number of normalized table builds")
	m.TableBuildDuration = histogram("table_build_duration_seconds", "Table build duration in seconds")
	m.TableRowsTotal = counter("table_rows_total", "Total normalized rows produced by builds")
	m.TableSkippedRows = counter("table_skipped_rows_total", "Total raw rows skipped for unreadable timestamps")
	m.TablesLoaded = gauge("tables_loaded", "Number of tickers currently served")

	m.ChartQueriesTotal = counter("chart_queries_total", "Total number of chart queries")
	m.ChartQueryDuration = histogram("chart_query_duration_seconds", "Chart query duration in seconds")
	m.ChartQueryErrors = counter("chart_query_errors_total", "Total number of failed chart queries")
	m.ChartEmptyResponses = counter("chart_empty_responses_total", "Total number of chart queries that selected no data")

	m.WebSocketClients = gauge("websocket_clients", "Number of connected WebSocket clients")

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return &m, nil
}

// RecordTableBuild records the outcome of one table build
func (m *BusinessMetrics) RecordTableBuild(ctx context.Context, ticker string, rows, skipped int, duration time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	attrs := metric.WithAttributes(attribute.String("ticker", ticker), attribute.String("status", status))
	m.TableBuildsTotal.Add(ctx, 1, attrs)
	m.TableBuildDuration.Record(ctx, duration.Seconds(), attrs)
	if err == nil {
		tickerAttr := metric.WithAttributes(attribute.String("ticker", ticker))
		m.TableRowsTotal.Add(ctx, int64(rows), tickerAttr)
		m.TableSkippedRows.Add(ctx, int64(skipped), tickerAttr)
	}
}

// RecordChartQuery records the outcome of one chart query
func (m *BusinessMetrics) RecordChartQuery(ctx context.Context, ticker, selection, agg string, duration time.Duration, hasData bool, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("ticker", ticker),
		attribute.String("selection_mode", selection),
		attribute.String("agg_mode", agg),
	)
	m.ChartQueriesTotal.Add(ctx, 1, attrs)
	m.ChartQueryDuration.Record(ctx, duration.Seconds(), attrs)
	switch {
	case err != nil:
		m.ChartQueryErrors.Add(ctx, 1, metric.WithAttributes(
			attribute.String("ticker", ticker),
			attribute.String("error.type", fmt.Sprintf("%T", err)),
		))
	case !hasData:
		m.ChartEmptyResponses.Add(ctx, 1, attrs)
	}
}

// Shutdown gracefully shuts down OpenTelemetry providers
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	var errs []error

	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}

	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("opentelemetry shutdown errors: %w", err)
	}

	p.Logger.InfoContext(ctx, "OpenTelemetry shutdown complete")
	return nil
}

func generateInstanceID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-%d", hostname, time.Now().Unix())
}

// RecordError records an error on the current span
func RecordError(ctx context.Context, err error, options ...trace.EventOption) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.RecordError(err, options...)
	span.SetStatus(codes.Error, err.Error())
}
