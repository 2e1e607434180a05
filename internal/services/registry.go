package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"bondpulse/internal/config"
	"bondpulse/internal/dataprocessing"
	"bondpulse/internal/infrastructure"
	"bondpulse/pkg/contracts/domain"
	"bondpulse/pkg/contracts/events"
)

// EventPublisher receives dataset lifecycle events
type EventPublisher interface {
	Publish(ctx context.Context, msgType events.MessageType, data any)
}

// RegistryOptions configures a Registry. Every field is optional.
type RegistryOptions struct {
	Concurrency int
	Publisher   EventPublisher
	Metrics     *infrastructure.BusinessMetrics
	Logger      *slog.Logger
}

type tableSet map[string]*domain.Table

// Registry maps ticker symbols to their normalized tables
type Registry struct {
	sources     map[string]string
	loader      Loader
	concurrency int
	publisher   EventPublisher
	metrics     *infrastructure.BusinessMetrics
	logger      *slog.Logger

	tables atomic.Pointer[tableSet]

	// swapMu serializes writers; readers only load the pointer
	swapMu sync.Mutex
}

// NewRegistry creates a registry over sources (symbol to tick file path)
func NewRegistry(sources map[string]string, loader Loader, opts RegistryOptions) *Registry {
	if opts.Concurrency <= 0 {
		opts.Concurrency = config.DefaultLoadConcurrency
	}
	normalized := make(map[string]string, len(sources))
	for symbol, path := range sources {
		normalized[config.NormalizeTicker(symbol)] = path
	}
	r := &Registry{
		sources:     normalized,
		loader:      loader,
		concurrency: opts.Concurrency,
		publisher:   opts.Publisher,
		metrics:     opts.Metrics,
		logger:      infrastructure.WithComponent(opts.Logger, "registry"),
	}
	empty := tableSet{}
	r.tables.Store(&empty)
	return r
}

// LoadAll builds every configured ticker concurrently and publishes the
// successful ones in a single swap. Tickers that fail to build are logged,
// announced and left out; the returned error joins their failures. It is
// ErrNoTickers when nothing is configured.
func (r *Registry) LoadAll(ctx context.Context) error {
	if len(r.sources) == 0 {
		return ErrNoTickers
	}
	ctx = infrastructure.EnsureTraceID(ctx)

	var (
		mu      sync.Mutex
		built   = make(tableSet, len(r.sources))
		skipped = make(map[string]int, len(r.sources))
		failed  []error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for _, symbol := range r.Symbols() {
		g.Go(func() error {
			table, stats, err := r.build(gctx, symbol)
			if err != nil {
				// cancellation stops the whole load; file errors do not
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				mu.Lock()
				failed = append(failed, fmt.Errorf("%s: %w", symbol, err))
				mu.Unlock()
				return nil
			}
			mu.Lock()
			built[symbol] = table
			skipped[symbol] = stats.SkippedRows
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("load cancelled: %w", err)
	}

	r.swapMu.Lock()
	previous := len(*r.tables.Load())
	r.tables.Store(&built)
	r.swapMu.Unlock()
	r.trackLoaded(ctx, len(built)-previous)

	for _, symbol := range sortedKeys(built) {
		r.announce(ctx, events.MessageTypeDatasetLoaded, built[symbol], skipped[symbol])
	}
	r.logger.InfoContext(ctx, "tickers loaded",
		slog.Int("loaded", len(built)),
		slog.Int("failed", len(failed)))

	return errors.Join(failed...)
}

// Reload rebuilds one ticker from its file and swaps it in. Readers see
// either the old table or the new one, never a partial build.
func (r *Registry) Reload(ctx context.Context, symbol string) (domain.TickerMeta, error) {
	symbol = config.NormalizeTicker(symbol)
	if _, ok := r.sources[symbol]; !ok {
		return domain.TickerMeta{}, fmt.Errorf("%w: %s", ErrTickerNotFound, symbol)
	}

	table, stats, err := r.build(ctx, symbol)
	if err != nil {
		return domain.TickerMeta{}, fmt.Errorf("reload %s: %w", symbol, err)
	}

	r.swapMu.Lock()
	current := *r.tables.Load()
	next := make(tableSet, len(current)+1)
	for k, v := range current {
		next[k] = v
	}
	_, existed := current[symbol]
	next[symbol] = table
	r.tables.Store(&next)
	r.swapMu.Unlock()
	if !existed {
		r.trackLoaded(ctx, 1)
	}

	r.announce(ctx, events.MessageTypeDatasetReloaded, table, stats.SkippedRows)
	return table.Meta(), nil
}

func (r *Registry) build(ctx context.Context, symbol string) (*domain.Table, dataprocessing.BuildStats, error) {
	ctx = infrastructure.WithTicker(ctx, symbol)
	path := r.sources[symbol]
	start := time.Now()

	table, stats, err := r.loader.Load(ctx, symbol, path)
	r.metrics.RecordTableBuild(ctx, symbol, stats.OutputRows, stats.SkippedRows, time.Since(start), err)

	if err != nil {
		r.logger.ErrorContext(ctx, "ticker build failed",
			slog.String("ticker", symbol),
			slog.String("path", path),
			slog.String("error", err.Error()))
		if r.publisher != nil {
			r.publisher.Publish(ctx, events.MessageTypeDatasetFailed, events.DatasetEvent{
				Ticker: symbol,
				Error:  err.Error(),
			})
		}
		return nil, stats, err
	}

	r.logger.InfoContext(ctx, "ticker built",
		slog.String("ticker", symbol),
		slog.Int("rows", stats.OutputRows),
		slog.Int("skipped_rows", stats.SkippedRows),
		slog.Int("sessions", stats.Sessions),
		slog.Duration("duration", stats.Duration))

	if stats.SkippedRows > 0 {
		r.logger.WarnContext(ctx, "rows skipped for unreadable dates",
			slog.String("ticker", symbol),
			slog.Int("skipped_rows", stats.SkippedRows))
	}
	return table, stats, nil
}

func (r *Registry) announce(ctx context.Context, msgType events.MessageType, table *domain.Table, skipped int) {
	if r.publisher == nil {
		return
	}
	meta := table.Meta()
	r.publisher.Publish(ctx, msgType, events.DatasetEvent{
		Ticker:      meta.Ticker,
		Rows:        meta.Rows,
		TradingDays: meta.TradingDays,
		SkippedRows: skipped,
		FirstDay:    meta.FirstDay,
		LastDay:     meta.LastDay,
	})
}

// Get returns the table of symbol
func (r *Registry) Get(symbol string) (*domain.Table, error) {
	symbol = config.NormalizeTicker(symbol)
	table, ok := (*r.tables.Load())[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTickerNotFound, symbol)
	}
	return table, nil
}

// List returns the metadata of every loaded ticker, sorted by symbol
func (r *Registry) List() []domain.TickerMeta {
	set := *r.tables.Load()
	out := make([]domain.TickerMeta, 0, len(set))
	for _, symbol := range sortedKeys(set) {
		out = append(out, set[symbol].Meta())
	}
	return out
}

// Symbols returns every configured symbol, loaded or not
func (r *Registry) Symbols() []string {
	out := make([]string, 0, len(r.sources))
	for s := range r.sources {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Loaded returns the number of tickers with a table
func (r *Registry) Loaded() int {
	return len(*r.tables.Load())
}

func (r *Registry) trackLoaded(ctx context.Context, delta int) {
	if r.metrics == nil || delta == 0 {
		return
	}
	r.metrics.TablesLoaded.Add(ctx, int64(delta))
}

func sortedKeys(set tableSet) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
