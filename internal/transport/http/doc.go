// Package http implements the HTTP handlers of the bondpulse API. Handlers
// stay thin: they parse the request, call a service through a small
// interface, map service errors to API errors and render the result.
//
// # Routes
//
//	GET  /api/tickers                       loaded tickers
//	GET  /api/tickers/{ticker}              one ticker's metadata
//	GET  /api/tickers/{ticker}/chart-data   per-day traces and the mean/SD band
//	POST /api/tickers/{ticker}/reload       rebuild one ticker from its file
//	GET  /api/health, /api/health/ready, /api/health/live, /api/version
//
// Successful responses use the {"status": "success", "data": ...} envelope.
// Errors are RFC 7807 problem documents written by the shared ErrorHandler;
// an unknown ticker is a 404 with code TICKER_NOT_FOUND.
package http
