package domain

import (
	"fmt"
	"time"
)

// Column headers of a raw tick export
const (
	ColumnDate  = "Date"
	ColumnPrice = "Lst Trd/Lst Prxx"
)

// RawTick is one row of a tick export exactly as it was read
type RawTick struct {
	Row   int    `json:"row"`
	Date  string `json:"date"`
	Price string `json:"price"`
}

// CleanTick is a raw tick whose timestamp has been converted to a spreadsheet
// serial day count and whose price has been decoded from 32nds.
// Price is NaN when the source text could not be parsed.
type CleanTick struct {
	Row      int     `json:"row"`
	Date     float64 `json:"date"`
	Price    float64 `json:"price"`
	RawPrice string  `json:"raw_price"`
}

// SessionTick is a clean tick that has been assigned to its trading session
type SessionTick struct {
	CleanTick
	TradingDay time.Time `json:"trading_day"`
	Filled     bool      `json:"filled"`
}

// NormalizedTick is one row of the normalized series
type NormalizedTick struct {
	Row           int       `json:"row"`
	Date          float64   `json:"date"`
	Price         float64   `json:"price"`
	RawPrice      string    `json:"raw_price"`
	TradingDay    time.Time `json:"trading_day"`
	TimeOfDay     Clock     `json:"time_of_day"`
	WeekDay       string    `json:"week_day"`
	RelativePrice float64   `json:"relative_price"`
	DaySD         float64   `json:"day_sd"`
	DayMean       float64   `json:"day_mean"`
	Filled        bool      `json:"filled"`
}

// DayString returns the trading day formatted as YYYY-MM-DD
func (t NormalizedTick) DayString() string {
	return t.TradingDay.Format(DateLayout)
}

// DayLabel returns the label used for chart traces, e.g. "2025-10-01 - Wednesday"
func (t NormalizedTick) DayLabel() string {
	return t.DayString() + " - " + t.WeekDay
}

// DateLayout is the canonical trading day format
const DateLayout = "2006-01-02"

// Clock is a wall-clock time of day in whole minutes since midnight
type Clock int

// MinutesPerDay is the number of distinct Clock values
const MinutesPerDay = 24 * 60

// NewClock builds a Clock from hours and minutes, wrapping past midnight
func NewClock(hour, minute int) Clock {
	m := (hour*60 + minute) % MinutesPerDay
	if m < 0 {
		m += MinutesPerDay
	}
	return Clock(m)
}

// Hour returns the hour component
func (c Clock) Hour() int { return int(c) / 60 }

// Minute returns the minute component
func (c Clock) Minute() int { return int(c) % 60 }

// Duration returns the offset from midnight
func (c Clock) Duration() time.Duration { return time.Duration(c) * time.Minute }

// String formats the clock as HH:MM:SS
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d:00", c.Hour(), c.Minute())
}

// MarshalText implements encoding.TextMarshaler
func (c Clock) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}
