package dataprocessing

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sort"
	"time"

	"bondpulse/pkg/contracts/domain"
)

// Pipeline turns raw tick rows into a normalized table
type Pipeline struct {
	opts   Options
	logger *slog.Logger
}

// NewPipeline creates a pipeline. A nil logger discards output.
func NewPipeline(opts Options, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.CheckEvery <= 0 {
		opts.CheckEvery = DefaultOptions().CheckEvery
	}
	return &Pipeline{
		opts:   opts,
		logger: logger.With(slog.String("component", "pipeline")),
	}
}

// Build runs every stage over raw and returns the normalized table for ticker.
// Rows with unreadable timestamps are skipped and counted; unreadable prices
// become NaN. The only error is context cancellation.
func (p *Pipeline) Build(ctx context.Context, info domain.TableInfo, raw []domain.RawTick) (*domain.Table, BuildStats, error) {
	start := time.Now()
	stats := BuildStats{InputRows: len(raw)}

	clean := make([]domain.CleanTick, 0, len(raw))
	for i, r := range raw {
		if err := p.poll(ctx, i); err != nil {
			return nil, stats, err
		}
		ts, ok := ParseTimestamp(r.Date)
		if !ok {
			stats.SkippedRows++
			p.logger.DebugContext(ctx, "skipping row with unreadable date",
				slog.Int("row", r.Row),
				slog.String("date", r.Date))
			continue
		}
		price := ParsePrice(r.Price)
		if math.IsNaN(price) {
			stats.NaNPrices++
		}
		clean = append(clean, domain.CleanTick{
			Row:      r.Row,
			Date:     ToSerial(ts),
			Price:    price,
			RawPrice: r.Price,
		})
	}

	// Input order is not trusted
	sort.SliceStable(clean, func(i, j int) bool { return clean[i].Date < clean[j].Date })

	sessionTicks := make([]domain.SessionTick, len(clean))
	for i, c := range clean {
		sessionTicks[i] = domain.SessionTick{CleanTick: c, TradingDay: TradingDay(c.Date)}
	}

	if p.opts.GapFill != nil {
		if err := p.poll(ctx, 0); err != nil {
			return nil, stats, err
		}
		var fillStats GapFillStatistics
		sessionTicks, fillStats = p.opts.GapFill.FillWithStats(sessionTicks)
		stats.FilledRows = fillStats.FilledRows
		stats.DroppedDays = fillStats.DroppedSessions
	}

	rows := make([]domain.NormalizedTick, len(sessionTicks))
	days := make(map[time.Time]struct{})
	for i, t := range sessionTicks {
		if err := p.poll(ctx, i); err != nil {
			return nil, stats, err
		}
		days[t.TradingDay] = struct{}{}
		rows[i] = domain.NormalizedTick{
			Row:        t.Row,
			Date:       t.Date,
			Price:      t.Price,
			RawPrice:   t.RawPrice,
			TradingDay: t.TradingDay,
			TimeOfDay:  TimeOfDay(t.Date),
			WeekDay:    WeekDay(t.TradingDay),
			Filled:     t.Filled,
		}
	}

	RelativePrices(rows)
	WeekdayStats(rows)

	stats.OutputRows = len(rows)
	stats.Sessions = len(days)
	stats.Duration = time.Since(start)

	if info.BuiltAt.IsZero() {
		info.BuiltAt = time.Now().UTC()
	}
	info.GapFilled = p.opts.GapFill != nil

	p.logger.InfoContext(ctx, "table built",
		slog.String("ticker", info.Ticker),
		slog.Int("input_rows", stats.InputRows),
		slog.Int("output_rows", stats.OutputRows),
		slog.Int("skipped_rows", stats.SkippedRows),
		slog.Int("nan_prices", stats.NaNPrices),
		slog.Int("sessions", stats.Sessions),
		slog.Duration("duration", stats.Duration))

	return domain.NewTable(info, rows), stats, nil
}

func (p *Pipeline) poll(ctx context.Context, i int) error {
	if i%p.opts.CheckEvery != 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("pipeline cancelled: %w", err)
	}
	return nil
}
