// Package shared holds helpers used by more than one internal package.
//
// The testutil subpackage provides a capturing slog handler and tick file
// fixtures for service and transport tests. Packages below services in the
// dependency graph (dataprocessing, config) keep their own fixtures to avoid
// import cycles.
package shared
