package dataprocessing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bondpulse/pkg/contracts/domain"
)

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, ok := ParseTimestamp(s)
	require.True(t, ok, "unparseable timestamp %q", s)
	return ts
}

func TestToSerial(t *testing.T) {
	assert.Equal(t, 1.0, ToSerial(time.Date(1899, 12, 31, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 45658.0, ToSerial(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 45931.75, ToSerial(time.Date(2025, 10, 1, 18, 0, 0, 0, time.UTC)))

	// Zone is ignored, the wall clock is kept
	ny := time.FixedZone("EST", -5*3600)
	assert.Equal(t, 45931.75, ToSerial(time.Date(2025, 10, 1, 18, 0, 0, 0, ny)))
}

func TestFromSerialRoundTrip(t *testing.T) {
	want := time.Date(2025, 10, 2, 9, 35, 0, 0, time.UTC)
	got := FromSerial(ToSerial(want))
	assert.WithinDuration(t, want, got, time.Millisecond)
}

func TestTimeOfDay(t *testing.T) {
	tests := []struct {
		name   string
		serial float64
		want   string
	}{
		{"session open", 45931.75, "18:00:00"},
		{"midday", 45931.5, "12:00:00"},
		{"float noise", 45931.4999999, "12:00:00"},
		{"wraps at midnight", 45931.99999999, "00:00:00"},
		{"from timestamp", ToSerial(time.Date(2025, 10, 2, 9, 35, 0, 0, time.UTC)), "09:35:00"},
		{"rounds down", ToSerial(time.Date(2025, 10, 2, 9, 35, 29, 0, time.UTC)), "09:35:00"},
		{"rounds up", ToSerial(time.Date(2025, 10, 2, 9, 35, 31, 0, time.UTC)), "09:36:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TimeOfDay(tt.serial).String())
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2025, 10, 1, 18, 5, 0, 0, time.UTC)
	inputs := []string{
		"2025-10-01 18:05:00",
		"2025-10-01T18:05:00",
		"2025-10-01 18:05",
		"10/1/2025 18:05",
		"10/01/2025 18:05:00",
		"10/1/2025 6:05 PM",
		"2025/10/01 18:05:00",
		"2025-10-01T18:05:00Z",
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			got, ok := ParseTimestamp(in)
			require.True(t, ok)
			assert.True(t, want.Equal(got), "got %s", got)
		})
	}

	t.Run("serial number", func(t *testing.T) {
		got, ok := ParseTimestamp("45931.75")
		require.True(t, ok)
		assert.True(t, time.Date(2025, 10, 1, 18, 0, 0, 0, time.UTC).Equal(got))
	})

	t.Run("garbage", func(t *testing.T) {
		for _, in := range []string{"", "not a date", "2025-13-45", "-3"} {
			_, ok := ParseTimestamp(in)
			assert.False(t, ok, in)
		}
	})
}

func TestTradingDay(t *testing.T) {
	oct1 := time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)
	oct2 := time.Date(2025, 10, 2, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		ts   string
		want time.Time
	}{
		{"at open", "2025-10-01 18:00:00", oct1},
		{"evening", "2025-10-01 23:59:00", oct1},
		{"midnight", "2025-10-02 00:00:00", oct1},
		{"morning belongs to previous evening", "2025-10-02 06:00:00", oct1},
		{"last minute", "2025-10-02 17:59:00", oct1},
		{"next open", "2025-10-02 18:00:00", oct2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TradingDay(ToSerial(mustTime(t, tt.ts)))
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}

	t.Run("cutoff uses rounded fraction", func(t *testing.T) {
		assert.Equal(t, 45931, TradingDaySerial(45932.7499))
		assert.Equal(t, 45932, TradingDaySerial(45932.7499999))
	})
}

func TestWeekDay(t *testing.T) {
	assert.Equal(t, "Wednesday", WeekDay(time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "Sunday", WeekDay(time.Date(2025, 10, 5, 0, 0, 0, 0, time.UTC)))
}

func TestClock(t *testing.T) {
	c := domain.NewClock(25, 30)
	assert.Equal(t, 1, c.Hour())
	assert.Equal(t, 30, c.Minute())
	assert.Equal(t, "01:30:00", c.String())
	assert.Equal(t, "23:00:00", domain.NewClock(0, -60).String())
}
