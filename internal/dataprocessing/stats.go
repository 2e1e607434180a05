package dataprocessing

import (
	"math"
	"time"

	"bondpulse/pkg/contracts/domain"
)

// Mean returns the arithmetic mean of the non-NaN values, or NaN when there are none
func Mean(values []float64) float64 {
	sum := 0.0
	n := 0
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// SampleStdDev returns the n-1 standard deviation of the non-NaN values.
// Fewer than two values yield NaN.
func SampleStdDev(values []float64) float64 {
	mean := Mean(values)
	if math.IsNaN(mean) {
		return math.NaN()
	}
	ss := 0.0
	n := 0
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		d := v - mean
		ss += d * d
		n++
	}
	if n < 2 {
		return math.NaN()
	}
	return math.Sqrt(ss / float64(n-1))
}

// GroupStats is the mean and standard deviation of one group
type GroupStats struct {
	Mean float64
	SD   float64
	N    int
}

// RelativePrices subtracts each session's opening price from its rows.
// rows must be sorted by serial; the first row seen for a trading day is its
// open. A NaN open yields NaN for the whole session.
func RelativePrices(rows []domain.NormalizedTick) {
	opens := make(map[time.Time]float64)
	for i := range rows {
		open, ok := opens[rows[i].TradingDay]
		if !ok {
			open = rows[i].Price
			opens[rows[i].TradingDay] = open
		}
		rows[i].RelativePrice = rows[i].Price - open
	}
}

// WeekdayStats computes relative price statistics per weekday and writes
// them to every row of that weekday
func WeekdayStats(rows []domain.NormalizedTick) map[string]GroupStats {
	values := make(map[string][]float64)
	for _, r := range rows {
		values[r.WeekDay] = append(values[r.WeekDay], r.RelativePrice)
	}

	stats := make(map[string]GroupStats, len(values))
	for day, vs := range values {
		stats[day] = GroupStats{
			Mean: Mean(vs),
			SD:   SampleStdDev(vs),
			N:    len(vs),
		}
	}

	for i := range rows {
		s := stats[rows[i].WeekDay]
		rows[i].DayMean = s.Mean
		rows[i].DaySD = s.SD
	}
	return stats
}
