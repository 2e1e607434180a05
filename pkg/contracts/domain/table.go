package domain

import (
	"sort"
	"time"
)

// Table is the normalized tick series of one ticker.
// It is built once and never mutated; readers only see copies of its rows.
type Table struct {
	ticker   string
	source   string
	rows     []NormalizedTick
	days     []time.Time
	weekdays []string
	builtAt  time.Time
	filled   bool
}

// TableInfo describes where a table came from
type TableInfo struct {
	Ticker    string
	Source    string
	BuiltAt   time.Time
	GapFilled bool
}

// NewTable takes ownership of rows. Callers must not retain the slice.
func NewTable(info TableInfo, rows []NormalizedTick) *Table {
	t := &Table{
		ticker:  info.Ticker,
		source:  info.Source,
		rows:    rows,
		builtAt: info.BuiltAt,
		filled:  info.GapFilled,
	}

	seenDay := make(map[time.Time]struct{})
	seenWeekday := make(map[string]struct{})
	for _, r := range rows {
		if _, ok := seenDay[r.TradingDay]; !ok {
			seenDay[r.TradingDay] = struct{}{}
			t.days = append(t.days, r.TradingDay)
		}
		if _, ok := seenWeekday[r.WeekDay]; !ok {
			seenWeekday[r.WeekDay] = struct{}{}
			t.weekdays = append(t.weekdays, r.WeekDay)
		}
	}
	sort.Slice(t.days, func(i, j int) bool { return t.days[i].Before(t.days[j]) })
	sort.Strings(t.weekdays)
	return t
}

// Ticker returns the ticker symbol
func (t *Table) Ticker() string { return t.ticker }

// Source returns the file the table was built from
func (t *Table) Source() string { return t.source }

// BuiltAt returns the build time
func (t *Table) BuiltAt() time.Time { return t.builtAt }

// GapFilled reports whether sessions were resampled onto a fixed grid
func (t *Table) GapFilled() bool { return t.filled }

// Len returns the number of rows
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Row returns a copy of row i
func (t *Table) Row(i int) NormalizedTick { return t.rows[i] }

// Rows returns a copy of all rows in serial order
func (t *Table) Rows() []NormalizedTick {
	out := make([]NormalizedTick, len(t.rows))
	copy(out, t.rows)
	return out
}

// Each calls fn for every row in serial order until fn returns false
func (t *Table) Each(fn func(NormalizedTick) bool) {
	for _, r := range t.rows {
		if !fn(r) {
			return
		}
	}
}

// TradingDays returns the distinct trading days in ascending order
func (t *Table) TradingDays() []time.Time {
	out := make([]time.Time, len(t.days))
	copy(out, t.days)
	return out
}

// WeekDays returns the distinct weekday names present, sorted by name
func (t *Table) WeekDays() []string {
	out := make([]string, len(t.weekdays))
	copy(out, t.weekdays)
	return out
}

// Meta summarizes the table for listing endpoints
func (t *Table) Meta() TickerMeta {
	meta := TickerMeta{
		Ticker:      t.ticker,
		Source:      t.source,
		Rows:        len(t.rows),
		TradingDays: len(t.days),
		WeekDays:    t.WeekDays(),
		LoadedAt:    t.builtAt,
		GapFilled:   t.filled,
	}
	if len(t.days) > 0 {
		meta.FirstDay = t.days[0].Format(DateLayout)
		meta.LastDay = t.days[len(t.days)-1].Format(DateLayout)
	}
	return meta
}

// TickerMeta is the listing view of a loaded table
type TickerMeta struct {
	Ticker      string    `json:"ticker"`
	Source      string    `json:"source"`
	Rows        int       `json:"rows"`
	TradingDays int       `json:"trading_days"`
	FirstDay    string    `json:"first_day,omitempty"`
	LastDay     string    `json:"last_day,omitempty"`
	WeekDays    []string  `json:"week_days"`
	LoadedAt    time.Time `json:"loaded_at"`
	GapFilled   bool      `json:"gap_filled"`
}
