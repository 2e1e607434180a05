package config

import "time"

// Application constants
const (
	AppName   = "bondpulse"
	EnvPrefix = "BONDPULSE"

	// Rate Limiting
	DefaultRateLimit = 100 // requests per second
	DefaultBurstSize = 50

	// Network Timeouts
	DefaultRequestTimeout = 30 * time.Second
	WebSocketPingPeriod   = 30 * time.Second
	WebSocketPongWait     = 60 * time.Second

	// Data
	DefaultDataDir         = "data"
	DefaultLoadConcurrency = 4

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// TickFileExtensions lists the file types discovered in the data directory
var TickFileExtensions = []string{".csv", ".xlsx"}
