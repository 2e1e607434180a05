package dataprocessing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
	}{
		{"half tick", "101-16½", 101.515625},
		{"whole ticks", "110-08", 110.25},
		{"zero ticks", "99-00", 99},
		{"no ticks", "101-", 101},
		{"quarter", "101-16¼", 101.5078125},
		{"seven eighths", "101-3⅞", 101.12109375},
		{"three quarters", "112-31¾", 112 + 31.75/32},
		{"unknown glyph ignored", "101-16x", 101.5},
		{"padded whole part", " 101 -16", 101.5},
		{"second dash ignored", "101-1-6", 101.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParsePrice(tt.input))
		})
	}
}

func TestParsePriceMalformed(t *testing.T) {
	for _, input := range []string{"", "   ", "abc-16", "101.5", "-16", "1e3-4", "101"} {
		t.Run(input, func(t *testing.T) {
			assert.True(t, math.IsNaN(ParsePrice(input)), "expected NaN for %q", input)
		})
	}
}
