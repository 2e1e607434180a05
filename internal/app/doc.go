// Package app wires the bondpulse service together and manages its lifecycle.
//
// New builds every component from a configuration: OpenTelemetry providers
// and business metrics, the websocket hub, the ticker registry with its file
// loader, the chart and health services, the chi router with its middleware
// chain, and the HTTP server. Start loads the ticker tables before the server
// accepts connections, so readiness turns green only once data is served.
//
// Usage:
//
//	a, err := app.NewApplication()
//	if err != nil {
//		return err
//	}
//	return a.Run()
//
// Run blocks until SIGINT or SIGTERM, then shuts down the server, the hub and
// the telemetry providers. The package never calls os.Exit.
package app
