package config

import "time"

// Config represents the main configuration structure
type Config struct {
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Privacy   PrivacyConfig   `yaml:"privacy" mapstructure:"privacy"`
	Uploads   UploadsConfig   `yaml:"uploads" mapstructure:"uploads"`
	Downloads DownloadsConfig `yaml:"downloads" mapstructure:"downloads"`
	RateLimit RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`
	Logging   LoggingConfig   `yaml:"logging" mapstructure:"logging"`
	WebSocket WebSocketConfig `yaml:"websocket" mapstructure:"websocket"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port           int           `yaml:"port" mapstructure:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes" mapstructure:"max_upload_bytes"`
}

// PrivacyConfig contains PII detection and masking configuration
type PrivacyConfig struct {
	Enabled   bool     `yaml:"enabled" mapstructure:"enabled"`
	Detectors []string `yaml:"detectors" mapstructure:"detectors"`
}

// UploadsConfig controls the transient cache that holds uploaded bytes
// between the analyze and mask steps.
type UploadsConfig struct {
	CacheTTL time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
}

// DownloadsConfig controls the transient store for finished masked files.
type DownloadsConfig struct {
	TTL time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// RateLimitConfig contains per-client rate limiting configuration
type RateLimitConfig struct {
	Enabled           bool    `yaml:"enabled" mapstructure:"enabled"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst" mapstructure:"burst"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // json or console
	File   struct {
		Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
		Path     string `yaml:"path" mapstructure:"path"`
		MaxSize  int    `yaml:"max_size" mapstructure:"max_size"`
		MaxAge   int    `yaml:"max_age" mapstructure:"max_age"`
		Compress bool   `yaml:"compress" mapstructure:"compress"`
	} `yaml:"file" mapstructure:"file"`
}

// WebSocketConfig contains WebSocket configuration
type WebSocketConfig struct {
	Enabled        bool     `yaml:"enabled" mapstructure:"enabled"`
	Path           string   `yaml:"path" mapstructure:"path"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	Events         struct {
		BroadcastScans       bool `yaml:"broadcast_scans" mapstructure:"broadcast_scans"`
		BroadcastSystem      bool `yaml:"broadcast_system" mapstructure:"broadcast_system"`
		BroadcastConnections bool `yaml:"broadcast_connections" mapstructure:"broadcast_connections"`
	} `yaml:"events" mapstructure:"events"`
}

// GetDefaults returns a configuration with sensible defaults
func GetDefaults() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Port:           8080,
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   30 * time.Second,
			IdleTimeout:    60 * time.Second,
			MaxUploadBytes: 20 << 20, // 20 MB
		},
		Privacy: PrivacyConfig{
			Enabled:   true,
			Detectors: []string{"all"},
		},
		Uploads: UploadsConfig{
			CacheTTL: 15 * time.Minute,
		},
		Downloads: DownloadsConfig{
			TTL: 15 * time.Minute,
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerSecond: 5,
			Burst:             10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		WebSocket: WebSocketConfig{
			Enabled:        true,
			Path:           "/ws",
			AllowedOrigins: []string{"*"},
		},
	}

	cfg.Logging.File.Path = "logs/docmask.log"
	cfg.Logging.File.MaxSize = 100 // MB
	cfg.Logging.File.MaxAge = 30   // days
	cfg.Logging.File.Compress = true

	cfg.WebSocket.Events.BroadcastScans = true
	cfg.WebSocket.Events.BroadcastSystem = true
	cfg.WebSocket.Events.BroadcastConnections = true

	return cfg
}
