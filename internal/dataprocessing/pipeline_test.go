package dataprocessing

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bondpulse/pkg/contracts/domain"
)

// twoSessionTicks covers Wednesday 2025-10-01 and Thursday 2025-10-02, deliberately unsorted
func twoSessionTicks() []domain.RawTick {
	return []domain.RawTick{
		{Row: 2, Date: "2025-10-02 09:00:00", Price: "109-16"},
		{Row: 3, Date: "2025-10-01 19:00:00", Price: "110-16"},
		{Row: 4, Date: "2025-10-01 18:00:00", Price: "110-00"},
		{Row: 5, Date: "not a date", Price: "110-00"},
		{Row: 6, Date: "2025-10-03 10:00:00", Price: "111-08"},
		{Row: 7, Date: "2025-10-02 18:00:00", Price: "111-00"},
	}
}

func buildTable(t *testing.T, raw []domain.RawTick, opts Options) (*domain.Table, BuildStats) {
	t.Helper()
	table, stats, err := NewPipeline(opts, nil).Build(context.Background(), domain.TableInfo{Ticker: "ZN"}, raw)
	require.NoError(t, err)
	require.NotNil(t, table)
	return table, stats
}

func TestPipelineBuild(t *testing.T) {
	table, stats := buildTable(t, twoSessionTicks(), DefaultOptions())

	assert.Equal(t, 6, stats.InputRows)
	assert.Equal(t, 1, stats.SkippedRows)
	assert.Equal(t, 5, stats.OutputRows)
	assert.Equal(t, 2, stats.Sessions)
	assert.Equal(t, "ZN", table.Ticker())
	assert.False(t, table.GapFilled())
	require.Equal(t, 5, table.Len())

	rows := table.Rows()
	wantRows := []int{4, 3, 2, 7, 6}
	wantRel := []float64{0, 0.5, -0.5, 0, 0.25}
	for i, r := range rows {
		assert.Equal(t, wantRows[i], r.Row, "row %d", i)
		assert.Equal(t, wantRel[i], r.RelativePrice, "row %d", i)
		if i > 0 {
			assert.Less(t, rows[i-1].Date, r.Date)
		}
	}

	assert.Equal(t, "2025-10-01 - Wednesday", rows[2].DayLabel())
	assert.Equal(t, "09:00:00", rows[2].TimeOfDay.String())
	assert.Equal(t, "2025-10-02 - Thursday", rows[4].DayLabel())

	assert.Equal(t, []string{"Thursday", "Wednesday"}, table.WeekDays())
	days := table.TradingDays()
	require.Len(t, days, 2)
	assert.Equal(t, "2025-10-01", days[0].Format(domain.DateLayout))
}

func TestPipelineRelativePriceStartsAtZero(t *testing.T) {
	table, _ := buildTable(t, twoSessionTicks(), DefaultOptions())

	seen := map[time.Time]bool{}
	table.Each(func(r domain.NormalizedTick) bool {
		if !seen[r.TradingDay] {
			seen[r.TradingDay] = true
			assert.Equal(t, 0.0, r.RelativePrice, r.DayLabel())
		}
		return true
	})
	assert.Len(t, seen, 2)
}

func TestPipelineWeekdayStatsConstant(t *testing.T) {
	table, _ := buildTable(t, twoSessionTicks(), DefaultOptions())

	want := map[string][2]float64{
		"Wednesday": {0, 0.5},
		"Thursday":  {0.125, math.Sqrt(2 * 0.125 * 0.125)},
	}
	table.Each(func(r domain.NormalizedTick) bool {
		w := want[r.WeekDay]
		assert.InDelta(t, w[0], r.DayMean, 1e-12, r.WeekDay)
		assert.InDelta(t, w[1], r.DaySD, 1e-12, r.WeekDay)
		return true
	})
}

func TestPipelineNaNOpenPoisonsSession(t *testing.T) {
	raw := []domain.RawTick{
		{Row: 2, Date: "2025-10-01 18:00:00", Price: "garbage"},
		{Row: 3, Date: "2025-10-01 19:00:00", Price: "110-16"},
		{Row: 4, Date: "2025-10-02 18:00:00", Price: "111-00"},
	}
	table, stats := buildTable(t, raw, DefaultOptions())
	assert.Equal(t, 1, stats.NaNPrices)

	rows := table.Rows()
	assert.True(t, math.IsNaN(rows[0].RelativePrice))
	assert.True(t, math.IsNaN(rows[1].RelativePrice))
	assert.Equal(t, 0.0, rows[2].RelativePrice)
}

func TestPipelineWithGapFill(t *testing.T) {
	opts := DefaultOptions()
	opts.GapFill = &GapFiller{Interval: time.Hour, SessionOpen: 18 * time.Hour, SessionClose: 41 * time.Hour}

	table, stats := buildTable(t, twoSessionTicks(), opts)
	assert.True(t, table.GapFilled())
	assert.Equal(t, 48, table.Len())
	assert.Equal(t, 2, stats.Sessions)
	assert.Positive(t, stats.FilledRows)

	table.Each(func(r domain.NormalizedTick) bool {
		assert.Equal(t, 0, r.TimeOfDay.Minute())
		return true
	})
}

func TestPipelineEmptyInput(t *testing.T) {
	table, stats := buildTable(t, nil, DefaultOptions())
	assert.Equal(t, 0, table.Len())
	assert.Equal(t, 0, stats.Sessions)
	assert.Empty(t, table.Meta().FirstDay)
}

func TestPipelineCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := NewPipeline(DefaultOptions(), nil).Build(ctx, domain.TableInfo{Ticker: "ZN"}, twoSessionTicks())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTableRowsAreCopies(t *testing.T) {
	table, _ := buildTable(t, twoSessionTicks(), DefaultOptions())

	rows := table.Rows()
	rows[0].Price = -1
	assert.Equal(t, 110.0, table.Row(0).Price)
}
