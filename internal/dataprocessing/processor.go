package dataprocessing

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"bondpulse/pkg/contracts/domain"
)

// Default session grid used by the gap filler
const (
	DefaultFillInterval = 5 * time.Minute
	DefaultSessionOpen  = 18 * time.Hour
	DefaultSessionClose = 41 * time.Hour
)

// GapFillMode selects how real ticks are placed on the session grid
type GapFillMode string

const (
	// GapFillReindex keeps only ticks stamped exactly on a grid slot; the
	// other slots start empty. Sessions with no on-grid tick are dropped.
	GapFillReindex GapFillMode = "reindex"

	// GapFillAsOf lets every slot take the latest tick at or before it, so
	// off-grid ticks feed the following slots.
	GapFillAsOf GapFillMode = "asof"
)

// ParseGapFillMode reads a mode name. Empty means GapFillReindex.
func ParseGapFillMode(s string) (GapFillMode, error) {
	switch m := GapFillMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "", GapFillReindex:
		return GapFillReindex, nil
	case GapFillAsOf:
		return m, nil
	default:
		return "", fmt.Errorf("unknown gap fill mode %q", s)
	}
}

// GapFiller resamples every trading session onto a fixed time grid.
// SessionOpen and SessionClose are offsets from the trading day's midnight.
// The zero Mode is GapFillReindex.
type GapFiller struct {
	Interval     time.Duration
	SessionOpen  time.Duration
	SessionClose time.Duration
	Mode         GapFillMode
}

// NewGapFiller creates a reindexing gap filler with a 5 minute grid from
// 18:00 to 17:00 the next day (DefaultSessionClose = 41h after the trading
// day's midnight). Sessions nominally run 18:00 to 17:59; the grid's last
// slot is 17:00 unless SessionClose is raised (41h55m covers the full
// span).
func NewGapFiller() *GapFiller {
	return &GapFiller{
		Interval:     DefaultFillInterval,
		SessionOpen:  DefaultSessionOpen,
		SessionClose: DefaultSessionClose,
		Mode:         GapFillReindex,
	}
}

// GapFillStatistics summarizes one Fill run
type GapFillStatistics struct {
	InputRows       int
	DuplicateRows   int
	OutputRows      int
	FilledRows      int
	Sessions        int
	DroppedSessions int
}

// SlotsPerSession returns the number of grid slots in one session
func (g *GapFiller) SlotsPerSession() int {
	if g.Interval <= 0 || g.SessionClose < g.SessionOpen {
		return 0
	}
	return int((g.SessionClose-g.SessionOpen)/g.Interval) + 1
}

// Fill resamples ticks onto the session grid. Slots with a real
// observation keep it; the rest are forward filled, and slots ahead of the
// first observation are back filled from it. Sessions without any usable
// observation are dropped.
func (g *GapFiller) Fill(ticks []domain.SessionTick) []domain.SessionTick {
	out, _ := g.FillWithStats(ticks)
	return out
}

// FillWithStats performs Fill and returns statistics
func (g *GapFiller) FillWithStats(ticks []domain.SessionTick) ([]domain.SessionTick, GapFillStatistics) {
	stats := GapFillStatistics{InputRows: len(ticks)}
	if len(ticks) == 0 || g.SlotsPerSession() == 0 {
		return []domain.SessionTick{}, stats
	}

	// Deduplicate by serial, keeping the first occurrence
	seen := make(map[float64]struct{}, len(ticks))
	unique := make([]domain.SessionTick, 0, len(ticks))
	for _, t := range ticks {
		if _, ok := seen[t.Date]; ok {
			stats.DuplicateRows++
			continue
		}
		seen[t.Date] = struct{}{}
		unique = append(unique, t)
	}
	sort.SliceStable(unique, func(i, j int) bool { return unique[i].Date < unique[j].Date })

	// Group by trading day
	sessions := make(map[time.Time][]domain.SessionTick)
	var days []time.Time
	for _, t := range unique {
		if _, ok := sessions[t.TradingDay]; !ok {
			days = append(days, t.TradingDay)
		}
		sessions[t.TradingDay] = append(sessions[t.TradingDay], t)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	var result []domain.SessionTick
	for _, day := range days {
		filled, ok := g.fillSession(day, sessions[day])
		if !ok {
			stats.DroppedSessions++
			continue
		}
		stats.Sessions++
		for _, t := range filled {
			if t.Filled {
				stats.FilledRows++
			}
		}
		result = append(result, filled...)
	}

	sort.SliceStable(result, func(i, j int) bool { return result[i].Date < result[j].Date })
	if result == nil {
		result = []domain.SessionTick{}
	}
	stats.OutputRows = len(result)
	return result, stats
}

type observation struct {
	at   time.Time
	tick domain.SessionTick
}

// fillSession fills one trading day. ticks must be sorted by serial.
func (g *GapFiller) fillSession(day time.Time, ticks []domain.SessionTick) ([]domain.SessionTick, bool) {
	open := day.Add(g.SessionOpen)
	end := day.Add(g.SessionClose)

	var obs []observation
	for _, t := range ticks {
		if math.IsNaN(t.Price) {
			continue
		}
		at := FromSerial(t.Date).Round(time.Second)
		if at.Before(open) || at.After(end) {
			continue
		}
		if g.Mode != GapFillAsOf && at.Sub(open)%g.Interval != 0 {
			continue
		}
		obs = append(obs, observation{at: at, tick: t})
	}
	if len(obs) == 0 {
		return nil, false
	}

	slots := g.SlotsPerSession()
	out := make([]domain.SessionTick, 0, slots)
	next := 0
	last := obs[0]
	for i := 0; i < slots; i++ {
		slot := open.Add(time.Duration(i) * g.Interval)
		exact := false
		for next < len(obs) && !obs[next].at.After(slot) {
			last = obs[next]
			exact = obs[next].at.Equal(slot)
			next++
		}

		out = append(out, domain.SessionTick{
			CleanTick: domain.CleanTick{
				Row:      last.tick.Row,
				Date:     ToSerial(slot),
				Price:    last.tick.Price,
				RawPrice: last.tick.RawPrice,
			},
			TradingDay: day,
			Filled:     !exact,
		})
	}
	return out, true
}
