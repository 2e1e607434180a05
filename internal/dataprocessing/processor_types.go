package dataprocessing

import "time"

// Options configures a pipeline build
type Options struct {
	// GapFill resamples sessions onto a fixed grid when non-nil
	GapFill *GapFiller

	// CheckEvery controls how often long loops poll for cancellation
	CheckEvery int
}

// DefaultOptions returns the default pipeline options. Gap filling is off.
func DefaultOptions() Options {
	return Options{
		CheckEvery: 4096,
	}
}

// BuildStats counts what happened to the input rows during a build
type BuildStats struct {
	InputRows   int           `json:"input_rows"`
	SkippedRows int           `json:"skipped_rows"`
	NaNPrices   int           `json:"nan_prices"`
	OutputRows  int           `json:"output_rows"`
	Sessions    int           `json:"sessions"`
	FilledRows  int           `json:"filled_rows"`
	DroppedDays int           `json:"dropped_sessions"`
	Duration    time.Duration `json:"duration"`
}
