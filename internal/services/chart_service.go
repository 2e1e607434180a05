package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"bondpulse/internal/config"
	"bondpulse/internal/dataprocessing"
	"bondpulse/internal/infrastructure"
	"bondpulse/pkg/contracts/domain"
)

// ServerErrorPrefix starts the description of a query that failed internally
const ServerErrorPrefix = "Server error: "

// TableSource resolves ticker tables
type TableSource interface {
	Get(symbol string) (*domain.Table, error)
	List() []domain.TickerMeta
	Reload(ctx context.Context, symbol string) (domain.TickerMeta, error)
}

// ChartService answers chart queries against the loaded tables
type ChartService struct {
	tables  TableSource
	tracer  trace.Tracer
	metrics *infrastructure.BusinessMetrics
	logger  *slog.Logger

	query func(*domain.Table, domain.ChartQuery) (*domain.ChartResponse, error)
}

// NewChartService creates a chart service. tracer and metrics may be nil.
func NewChartService(tables TableSource, tracer trace.Tracer, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *ChartService {
	if tracer == nil {
		tracer = otel.Tracer(infrastructure.MeterName)
	}
	return &ChartService{
		tables:  tables,
		tracer:  tracer,
		metrics: metrics,
		logger:  infrastructure.WithComponent(logger, "chart_service"),
		query:   dataprocessing.Query,
	}
}

// Query runs a chart query for ticker. An empty agg mode means selected.
//
// Unknown tickers return ErrTickerNotFound and a done context returns its
// error. Every other failure, unreadable dates included, comes back as a
// response with no data and a description starting with ServerErrorPrefix.
func (s *ChartService) Query(ctx context.Context, ticker string, q domain.ChartQuery) (resp *domain.ChartResponse, err error) {
	ticker = config.NormalizeTicker(ticker)
	if q.AggMode == "" {
		q.AggMode = domain.AggSelected
	}

	ctx = infrastructure.WithTicker(ctx, ticker)
	ctx, span := s.tracer.Start(ctx, "chart.query", trace.WithAttributes(
		attribute.String("ticker", ticker),
		attribute.String("selection_mode", string(q.SelectionMode)),
		attribute.String("agg_mode", string(q.AggMode)),
	))
	defer span.End()

	start := time.Now()
	var failure error
	defer func() {
		hasData := resp != nil && resp.HasData
		s.metrics.RecordChartQuery(ctx, ticker, string(q.SelectionMode), string(q.AggMode),
			time.Since(start), hasData, failure)
		if failure != nil {
			infrastructure.RecordError(ctx, failure)
		}
	}()

	table, err := s.tables.Get(ticker)
	if err != nil {
		failure = err
		return nil, err
	}

	resp, failure = s.run(ctx, table, q)
	if failure != nil {
		if ctx.Err() != nil {
			s.logger.WarnContext(ctx, "chart query abandoned",
				slog.String("ticker", ticker),
				slog.String("error", failure.Error()))
			return nil, failure
		}
		level := slog.LevelError
		if errors.Is(failure, ErrInvalidQuery) {
			level = slog.LevelWarn
		}
		s.logger.Log(ctx, level, "chart query failed",
			slog.String("ticker", ticker),
			slog.String("error", failure.Error()))
		return serverErrorResponse(ticker, failure), nil
	}

	span.SetAttributes(
		attribute.Bool("has_data", resp.HasData),
		attribute.Int("traces", len(resp.Traces)),
	)
	s.logger.DebugContext(ctx, "chart query served",
		slog.String("ticker", ticker),
		slog.String("selection_mode", string(q.SelectionMode)),
		slog.String("agg_mode", string(q.AggMode)),
		slog.Int("traces", len(resp.Traces)),
		slog.Bool("has_data", resp.HasData),
		slog.Duration("duration", time.Since(start)))
	return resp, nil
}

func (s *ChartService) run(ctx context.Context, table *domain.Table, q domain.ChartQuery) (resp *domain.ChartResponse, err error) {
	defer func() {
		if r := recover(); r != nil {
			resp = nil
			err = fmt.Errorf("%v", r)
		}
	}()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.query(table, q)
}

func serverErrorResponse(ticker string, err error) *domain.ChartResponse {
	return &domain.ChartResponse{
		Ticker: ticker,
		Traces: []domain.Trace{},
		Stats:  domain.ChartStats{Description: ServerErrorPrefix + err.Error()},
		Axis:   dataprocessing.DefaultAxis,
	}
}

// Meta returns the listing entry of one ticker
func (s *ChartService) Meta(ctx context.Context, ticker string) (domain.TickerMeta, error) {
	table, err := s.tables.Get(config.NormalizeTicker(ticker))
	if err != nil {
		return domain.TickerMeta{}, err
	}
	return table.Meta(), nil
}

// Tickers lists the loaded tickers
func (s *ChartService) Tickers(ctx context.Context) []domain.TickerMeta {
	return s.tables.List()
}

// Reload rebuilds one ticker from its source file
func (s *ChartService) Reload(ctx context.Context, ticker string) (domain.TickerMeta, error) {
	ticker = config.NormalizeTicker(ticker)
	ctx, span := s.tracer.Start(ctx, "chart.reload", trace.WithAttributes(attribute.String("ticker", ticker)))
	defer span.End()

	meta, err := s.tables.Reload(ctx, ticker)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return domain.TickerMeta{}, err
	}
	s.logger.InfoContext(ctx, "ticker reloaded",
		slog.String("ticker", ticker),
		slog.Int("rows", meta.Rows),
		slog.Int("trading_days", meta.TradingDays))
	return meta, nil
}
