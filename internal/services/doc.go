// Package services holds the business layer between the HTTP transport and
// the normalization pipeline.
//
// Registry owns the loaded ticker tables. Tables are immutable once built and
// the registry publishes them as a whole-map snapshot behind an atomic
// pointer, so queries never take a lock and a reload swaps a ticker in one
// step. ChartService is the query boundary: it resolves the ticker, runs the
// query engine, records metrics and spans, and turns internal failures into a
// descriptive payload. HealthService reports liveness and readiness.
//
// Handlers depend on the small interfaces declared in the transport package,
// and tests substitute testify mocks for them.
package services
