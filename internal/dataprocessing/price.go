package dataprocessing

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// TicksPerPoint is the number of price ticks in one whole point
const TicksPerPoint = 32

// fractionGlyphs maps sub-tick glyphs to fractions of one 32nd
var fractionGlyphs = map[rune]float64{
	'½': 0.5,
	'¼': 0.25,
	'¾': 0.75,
	'⅛': 0.125,
	'⅜': 0.375,
	'⅝': 0.625,
	'⅞': 0.875,
}

// ParsePrice decodes a bond futures quote such as "101-16½" into a decimal price.
// The text before the first '-' is the whole point count, the digits after it
// are 32nds and any fraction glyphs add sub-tick eighths. Malformed or empty
// input yields NaN.
func ParsePrice(s string) float64 {
	wholePart, tickPart, ok := strings.Cut(s, "-")
	if !ok {
		return math.NaN()
	}

	whole, err := strconv.Atoi(strings.TrimSpace(wholePart))
	if err != nil {
		return math.NaN()
	}

	var digits strings.Builder
	frac := 0.0
	for _, ch := range tickPart {
		if unicode.IsDigit(ch) {
			digits.WriteRune(ch)
			continue
		}
		frac += fractionGlyphs[ch]
	}

	ticks := 0
	if digits.Len() > 0 {
		ticks, err = strconv.Atoi(digits.String())
		if err != nil {
			return math.NaN()
		}
	}

	return float64(whole) + (float64(ticks)+frac)/TicksPerPoint
}
