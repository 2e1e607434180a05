package dataprocessing

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"bondpulse/pkg/contracts/domain"
)

// ErrInvalidQuery is returned for queries whose dates cannot be read
var ErrInvalidQuery = errors.New("invalid chart query")

// Plotting axis: one session laid over 2000-01-01 18:00 .. 2000-01-02 17:59
const plotLayout = "2006-01-02 15:04:05"

var plotBase = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// Messages shown with empty results
const (
	NoDataDescription = "No data available for selected criteria"
)

// DefaultAxis is the x axis window of every chart
var DefaultAxis = domain.AxisHint{
	Start: "2000-01-01 18:00:00",
	End:   "2000-01-02 17:59:00",
	Title: "Time (18:00-17:59)",
}

// sessionMinute orders clock times within a session: 18:00 first, times
// before 18:00 belong to the following calendar day
func sessionMinute(c domain.Clock) int {
	if c < SessionOpenClock {
		return int(c) + domain.MinutesPerDay
	}
	return int(c)
}

func plotLabel(minute int) string {
	return plotBase.Add(time.Duration(minute) * time.Minute).Format(plotLayout)
}

// Query filters the table by q and builds per-day traces plus the optional
// mean/SD band. An empty selection is a normal "no data" response.
func Query(table *domain.Table, q domain.ChartQuery) (*domain.ChartResponse, error) {
	resp := &domain.ChartResponse{
		Traces: []domain.Trace{},
		Axis:   DefaultAxis,
	}
	if table == nil {
		resp.Stats.Description = NoDataDescription
		return resp, nil
	}
	resp.Ticker = table.Ticker()

	aggMode := q.AggMode
	if aggMode == "" {
		aggMode = domain.AggSelected
	}

	selected, modeLabel, err := selectRows(table, q)
	if err != nil {
		return nil, err
	}
	if len(selected) == 0 {
		resp.Stats.Description = NoDataDescription
		return resp, nil
	}
	sortBySession(selected)

	resp.HasData = true
	resp.Traces = buildTraces(selected)
	days := len(resp.Traces)
	resp.Stats.Days = days

	if aggMode == domain.AggNone {
		resp.Stats.Description = fmt.Sprintf("Showing %d individual day(s) - Selection: %s", days, modeLabel)
		return resp, nil
	}

	scope, label := aggregationScope(table, selected, aggMode)
	if len(scope) == 0 {
		resp.Stats.Description = fmt.Sprintf("Selected %d day(s)", days)
		return resp, nil
	}

	resp.Aggregate = buildAggregate(scope, label)

	rel := make([]float64, len(scope))
	for i, r := range scope {
		rel[i] = r.RelativePrice
	}
	mean, sd := Mean(rel), SampleStdDev(rel)
	resp.Stats.Mean = domain.Nullable(mean)
	resp.Stats.SD = domain.Nullable(sd)
	resp.Stats.Description = fmt.Sprintf("Mode: %s | Selection: %s | Days: %d | Avg Relative Price: %.4f | SD: %.4f",
		titleCase(string(aggMode)), modeLabel, days, mean, sd)
	return resp, nil
}

// selectRows applies the selection mode. Unknown modes select nothing.
func selectRows(table *domain.Table, q domain.ChartQuery) ([]domain.NormalizedTick, string, error) {
	var out []domain.NormalizedTick

	switch q.SelectionMode {
	case domain.SelectionCalendar:
		if strings.TrimSpace(q.StartDate) == "" {
			return nil, "Calendar", nil
		}
		start, err := time.Parse(domain.DateLayout, strings.TrimSpace(q.StartDate))
		if err != nil {
			return nil, "", fmt.Errorf("%w: start_date %q", ErrInvalidQuery, q.StartDate)
		}
		end := start
		if strings.TrimSpace(q.EndDate) != "" {
			end, err = time.Parse(domain.DateLayout, strings.TrimSpace(q.EndDate))
			if err != nil {
				return nil, "", fmt.Errorf("%w: end_date %q", ErrInvalidQuery, q.EndDate)
			}
		}
		table.Each(func(r domain.NormalizedTick) bool {
			if !r.TradingDay.Before(start) && !r.TradingDay.After(end) {
				out = append(out, r)
			}
			return true
		})
		return out, "Calendar", nil

	case domain.SelectionWeekday:
		wanted := make(map[string]struct{}, len(q.Weekdays))
		names := make([]string, 0, len(q.Weekdays))
		for _, d := range q.Weekdays {
			d = strings.TrimSpace(d)
			if d == "" {
				continue
			}
			wanted[d] = struct{}{}
			names = append(names, d)
		}
		table.Each(func(r domain.NormalizedTick) bool {
			if _, ok := wanted[r.WeekDay]; ok {
				out = append(out, r)
			}
			return true
		})
		return out, fmt.Sprintf("Weekday (%s)", strings.Join(names, ", ")), nil
	}

	return nil, "", nil
}

func sortBySession(rows []domain.NormalizedTick) {
	sort.SliceStable(rows, func(i, j int) bool {
		return sessionMinute(rows[i].TimeOfDay) < sessionMinute(rows[j].TimeOfDay)
	})
}

// buildTraces emits one trace per trading day in first-seen order
func buildTraces(rows []domain.NormalizedTick) []domain.Trace {
	index := make(map[time.Time]int)
	var traces []domain.Trace
	for _, r := range rows {
		i, ok := index[r.TradingDay]
		if !ok {
			i = len(traces)
			index[r.TradingDay] = i
			traces = append(traces, domain.Trace{
				Name:    r.DayLabel(),
				Day:     r.DayString(),
				WeekDay: r.WeekDay,
			})
		}
		traces[i].X = append(traces[i].X, plotLabel(sessionMinute(r.TimeOfDay)))
		traces[i].Y = append(traces[i].Y, domain.Nullable(r.RelativePrice))
	}
	return traces
}

// aggregationScope returns the rows the mean/SD band is computed over
func aggregationScope(table *domain.Table, selected []domain.NormalizedTick, mode domain.AggMode) ([]domain.NormalizedTick, string) {
	switch mode {
	case domain.AggTotal:
		return table.Rows(), "Total Mean"

	case domain.AggWeekday:
		weekday := selected[0].WeekDay
		for _, r := range selected[1:] {
			if r.WeekDay != weekday {
				return nil, ""
			}
		}
		var scope []domain.NormalizedTick
		table.Each(func(r domain.NormalizedTick) bool {
			if r.WeekDay == weekday {
				scope = append(scope, r)
			}
			return true
		})
		return scope, weekday + " Mean"

	case domain.AggSelected:
		return selected, "Selected Mean"
	}
	return nil, ""
}

// buildAggregate groups scope by session clock and computes the mean and SD band
func buildAggregate(scope []domain.NormalizedTick, label string) *domain.Aggregate {
	byMinute := make(map[int][]float64)
	for _, r := range scope {
		m := sessionMinute(r.TimeOfDay)
		byMinute[m] = append(byMinute[m], r.RelativePrice)
	}

	minutes := make([]int, 0, len(byMinute))
	for m := range byMinute {
		minutes = append(minutes, m)
	}
	sort.Ints(minutes)

	agg := &domain.Aggregate{
		Label: label,
		X:     make([]string, len(minutes)),
		Mean:  make([]*float64, len(minutes)),
		SD:    make([]*float64, len(minutes)),
		Upper: make([]*float64, len(minutes)),
		Lower: make([]*float64, len(minutes)),
	}
	for i, m := range minutes {
		mean := Mean(byMinute[m])
		sd := SampleStdDev(byMinute[m])
		agg.X[i] = plotLabel(m)
		agg.Mean[i] = domain.Nullable(mean)
		agg.SD[i] = domain.Nullable(sd)
		agg.Upper[i] = domain.Nullable(mean + sd)
		agg.Lower[i] = domain.Nullable(mean - sd)
	}
	return agg
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
