package services

import (
	"errors"

	"bondpulse/internal/dataprocessing"
)

// Service errors
var (
	ErrTickerNotFound = errors.New("ticker not found")
	ErrNoTickers      = errors.New("no tickers configured")
	ErrNotLoaded      = errors.New("ticker tables not loaded")

	// ErrInvalidQuery is the engine's rejection of malformed query dates
	ErrInvalidQuery = dataprocessing.ErrInvalidQuery
)
