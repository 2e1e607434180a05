package dataprocessing

import (
	"math"
	"time"

	"bondpulse/pkg/contracts/domain"
)

// SessionCutoff is the serial fraction at which a new session opens (18:00)
const SessionCutoff = 0.75

// SessionOpenClock is the wall-clock time a session opens
var SessionOpenClock = domain.NewClock(18, 0)

// TradingDaySerial returns the serial day of the session a tick belongs to.
// Ticks before 18:00 belong to the session that opened the previous evening.
func TradingDaySerial(serial float64) int {
	day := int(math.Floor(serial))
	if serialFraction(serial) < SessionCutoff {
		return day - 1
	}
	return day
}

// TradingDay returns the session date of a tick, with no time component
func TradingDay(serial float64) time.Time {
	return SerialEpoch.AddDate(0, 0, TradingDaySerial(serial))
}

// WeekDay names the day of week of a trading day
func WeekDay(day time.Time) string {
	return day.Weekday().String()
}
