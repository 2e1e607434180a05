package dataprocessing

import (
	"math"
	"strconv"
	"strings"
	"time"

	"bondpulse/pkg/contracts/domain"
)

const secondsPerDay = 24 * 60 * 60

// SerialEpoch is day zero of the spreadsheet serial calendar
var SerialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// timestampLayouts are tried in order by ParseTimestamp
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
	time.RFC3339Nano,
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 3:04 PM",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"2006-01-02",
	"1/2/2006",
}

// round6 trims floating noise from serial fractions
func round6(x float64) float64 {
	return math.Round(x*1e6) / 1e6
}

// serialFraction returns the time-of-day part of a serial, in [0, 1]
func serialFraction(serial float64) float64 {
	return round6(serial - math.Floor(serial))
}

// ToSerial converts a wall-clock timestamp to days since SerialEpoch.
// The zone of t is ignored; its wall clock reading is used as is.
func ToSerial(t time.Time) float64 {
	wall := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
	secs := float64(wall.Unix()-SerialEpoch.Unix()) + float64(wall.Nanosecond())/1e9
	return secs / secondsPerDay
}

// FromSerial is the inverse of ToSerial. The result is in UTC.
func FromSerial(serial float64) time.Time {
	days := math.Floor(serial)
	frac := serial - days
	offset := time.Duration(math.Round(frac * secondsPerDay * float64(time.Second)))
	return SerialEpoch.AddDate(0, 0, int(days)).Add(offset)
}

// TimeOfDay projects a serial onto the wall clock, snapped to the nearest minute
func TimeOfDay(serial float64) domain.Clock {
	minutes := int(math.Round(serialFraction(serial) * domain.MinutesPerDay))
	return domain.NewClock(0, minutes)
}

// ParseTimestamp reads a tick timestamp. Besides the common text layouts it
// accepts a bare spreadsheet serial number, as found in raw workbook cells.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC), true
		}
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 && !math.IsInf(serial, 0) {
		return FromSerial(serial), true
	}

	return time.Time{}, false
}
