package domain

import "math"

// SelectionMode chooses how days are picked for a chart
type SelectionMode string

const (
	SelectionCalendar SelectionMode = "calendar"
	SelectionWeekday  SelectionMode = "weekday"
)

// AggMode chooses the reference population for the mean/SD band
type AggMode string

const (
	AggNone     AggMode = "none"
	AggSelected AggMode = "selected"
	AggTotal    AggMode = "total"
	AggWeekday  AggMode = "weekday"
)

// ChartQuery selects trading days and an aggregation mode
type ChartQuery struct {
	SelectionMode SelectionMode `json:"selection_mode" validate:"required"`
	StartDate     string        `json:"start_date,omitempty"`
	EndDate       string        `json:"end_date,omitempty"`
	Weekdays      []string      `json:"weekdays,omitempty" validate:"omitempty,dive,required"`
	AggMode       AggMode       `json:"agg_mode"`
}

// Trace is the relative price path of one trading day
type Trace struct {
	Name    string     `json:"name"`
	Day     string     `json:"day"`
	WeekDay string     `json:"week_day"`
	X       []string   `json:"x"`
	Y       []*float64 `json:"y"`
}

// Aggregate is the mean relative price per session time with a one SD band
type Aggregate struct {
	Label string     `json:"label"`
	X     []string   `json:"x"`
	Mean  []*float64 `json:"mean"`
	SD    []*float64 `json:"sd"`
	Upper []*float64 `json:"upper"`
	Lower []*float64 `json:"lower"`
}

// ChartStats summarizes the aggregation scope
type ChartStats struct {
	Description string   `json:"description"`
	Days        int      `json:"days"`
	Mean        *float64 `json:"mean"`
	SD          *float64 `json:"sd"`
}

// AxisHint is the plotting window of one session
type AxisHint struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Title string `json:"title"`
}

// ChartResponse is the result of a chart query
type ChartResponse struct {
	Ticker    string     `json:"ticker"`
	HasData   bool       `json:"has_data"`
	Traces    []Trace    `json:"traces"`
	Aggregate *Aggregate `json:"aggregate,omitempty"`
	Stats     ChartStats `json:"stats"`
	Axis      AxisHint   `json:"axis"`
}

// Nullable maps NaN and infinities to nil so the value survives JSON encoding
func Nullable(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// NullableSlice applies Nullable to every element
func NullableSlice(vs []float64) []*float64 {
	out := make([]*float64, len(vs))
	for i, v := range vs {
		out[i] = Nullable(v)
	}
	return out
}
