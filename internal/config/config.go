package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Data      DataConfig      `yaml:"data" envconfig:"DATA"`
	WebSocket WebSocketConfig `yaml:"websocket" envconfig:"WEBSOCKET"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"HOST"`
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL"`
	Format      string `yaml:"format" envconfig:"FORMAT"`
	Output      string `yaml:"output" envconfig:"OUTPUT"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// DataConfig describes where tick files live and how they are normalized
type DataConfig struct {
	Dir string `yaml:"dir" envconfig:"DIR"`

	// Tickers maps a symbol to its tick file, relative to Dir.
	// When empty every .csv and .xlsx file in Dir is loaded under its base name.
	Tickers map[string]string `yaml:"tickers" envconfig:"TICKERS"`

	// Sheet selects the workbook sheet for .xlsx files; empty means auto-detect
	Sheet string `yaml:"sheet" envconfig:"SHEET"`

	LoadConcurrency int           `yaml:"load_concurrency" envconfig:"LOAD_CONCURRENCY"`
	GapFill         GapFillConfig `yaml:"gapfill" envconfig:"GAPFILL"`
}

// GapFillConfig controls the optional session resampling stage.
// Session bounds are offsets from the trading day's midnight.
type GapFillConfig struct {
	Enabled      bool          `yaml:"enabled" envconfig:"ENABLED"`
	Interval     time.Duration `yaml:"interval" envconfig:"INTERVAL"`
	SessionOpen  time.Duration `yaml:"session_open" envconfig:"SESSION_OPEN"`
	SessionClose time.Duration `yaml:"session_close" envconfig:"SESSION_CLOSE"`
	// Mode is "reindex" (ticks must sit on a grid slot) or "asof"
	Mode string `yaml:"mode" envconfig:"MODE"`
}

// WebSocketConfig contains WebSocket configuration
type WebSocketConfig struct {
	ReadBufferSize  int           `yaml:"read_buffer_size" envconfig:"READ_BUFFER_SIZE"`
	WriteBufferSize int           `yaml:"write_buffer_size" envconfig:"WRITE_BUFFER_SIZE"`
	PingPeriod      time.Duration `yaml:"ping_period" envconfig:"PING_PERIOD"`
	PongWait        time.Duration `yaml:"pong_wait" envconfig:"PONG_WAIT"`
}

// TelemetryConfig contains OpenTelemetry configuration
type TelemetryConfig struct {
	ServiceName    string `yaml:"service_name" envconfig:"SERVICE_NAME"`
	Environment    string `yaml:"environment" envconfig:"ENVIRONMENT"`
	TracingEnabled bool   `yaml:"tracing_enabled" envconfig:"TRACING_ENABLED"`
	TraceExporter  string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER"`
	MetricsEnabled bool   `yaml:"metrics_enabled" envconfig:"METRICS_ENABLED"`
}

// Load builds the configuration from defaults, an optional YAML file and the
// environment, in increasing order of precedence. A .env file in the working
// directory is loaded first when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := Default()

	if configFile := getConfigFilePath(); configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Security.EnableCORS && len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}

	if c.Data.Dir == "" {
		return fmt.Errorf("data directory must be specified")
	}

	if c.Data.LoadConcurrency <= 0 {
		c.Data.LoadConcurrency = DefaultLoadConcurrency
	}

	if g := c.Data.GapFill; g.Enabled {
		if g.Interval <= 0 {
			return fmt.Errorf("gap fill interval must be positive")
		}
		if g.SessionClose < g.SessionOpen {
			return fmt.Errorf("gap fill session close %s is before open %s", g.SessionClose, g.SessionOpen)
		}
		switch strings.ToLower(g.Mode) {
		case "", "reindex", "asof":
		default:
			return fmt.Errorf("unknown gap fill mode %q (want reindex or asof)", g.Mode)
		}
	}

	switch c.Logging.Format {
	case "json", "text":
	default:
		c.Logging.Format = "json"
	}

	switch c.Telemetry.TraceExporter {
	case "stdout", "none":
	default:
		return fmt.Errorf("unknown trace exporter: %q", c.Telemetry.TraceExporter)
	}

	return nil
}

// Address returns the listen address of the HTTP server
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if explicit := os.Getenv(EnvPrefix + "_CONFIG_FILE"); explicit != "" {
		return explicit
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// ResolveTickers returns the tick file of every configured ticker, keyed by
// upper-case symbol. Relative paths are resolved against the data directory.
func (d DataConfig) ResolveTickers() (map[string]string, error) {
	out := make(map[string]string)

	if len(d.Tickers) > 0 {
		for symbol, file := range d.Tickers {
			symbol = NormalizeTicker(symbol)
			if symbol == "" || strings.TrimSpace(file) == "" {
				return nil, fmt.Errorf("invalid ticker mapping %q=%q", symbol, file)
			}
			if !filepath.IsAbs(file) {
				file = filepath.Join(d.Dir, file)
			}
			out[symbol] = file
		}
		return out, nil
	}

	entries, err := os.ReadDir(d.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read data directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if !isTickFile(ext) {
			continue
		}
		symbol := NormalizeTicker(strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name())))
		if _, dup := out[symbol]; dup {
			return nil, fmt.Errorf("ticker %s has more than one file in %s", symbol, d.Dir)
		}
		out[symbol] = filepath.Join(d.Dir, entry.Name())
	}
	return out, nil
}

// Symbols returns the configured ticker symbols in sorted order
func (d DataConfig) Symbols() []string {
	symbols := make([]string, 0, len(d.Tickers))
	for s := range d.Tickers {
		symbols = append(symbols, NormalizeTicker(s))
	}
	sort.Strings(symbols)
	return symbols
}

// NormalizeTicker canonicalizes a ticker symbol
func NormalizeTicker(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

func isTickFile(ext string) bool {
	for _, e := range TickFileExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  DefaultRequestTimeout,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     DefaultRateLimit,
				Burst:   DefaultBurstSize,
			},
		},
		Logging: LoggingConfig{
			Level:    DefaultLogLevel,
			Format:   DefaultLogFormat,
			Output:   "console",
			FilePath: "logs/app.log",
		},
		Data: DataConfig{
			Dir:             DefaultDataDir,
			LoadConcurrency: DefaultLoadConcurrency,
			GapFill: GapFillConfig{
				Enabled:      false,
				Interval:     5 * time.Minute,
				SessionOpen:  18 * time.Hour,
				SessionClose: 41 * time.Hour,
				Mode:         "reindex",
			},
		},
		WebSocket: WebSocketConfig{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			PingPeriod:      WebSocketPingPeriod,
			PongWait:        WebSocketPongWait,
		},
		Telemetry: TelemetryConfig{
			ServiceName:    AppName,
			Environment:    "development",
			TracingEnabled: false,
			TraceExporter:  "none",
			MetricsEnabled: true,
		},
	}
}
