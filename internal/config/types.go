package config

import "time"

// Config represents the main configuration structure
type Config struct {
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Anonymize AnonymizeConfig `yaml:"anonymize" mapstructure:"anonymize"`
	Render    RenderConfig    `yaml:"render" mapstructure:"render"`
	Convert   ConvertConfig   `yaml:"convert" mapstructure:"convert"`
	Logging   LoggingConfig   `yaml:"logging" mapstructure:"logging"`
	WebSocket WebSocketConfig `yaml:"websocket" mapstructure:"websocket"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port         int           `yaml:"port" mapstructure:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`
	RateLimit    struct {
		Enabled        bool    `yaml:"enabled" mapstructure:"enabled"`
		RequestsPerSec float64 `yaml:"requests_per_sec" mapstructure:"requests_per_sec"`
		Burst          int     `yaml:"burst" mapstructure:"burst"`
	} `yaml:"rate_limit" mapstructure:"rate_limit"`
	MaxUploadBytes int64 `yaml:"max_upload_bytes" mapstructure:"max_upload_bytes"`
}

// AnonymizeConfig controls the substitution engine
type AnonymizeConfig struct {
	// PatternFallback enables the pattern-only mode (TEL/EMAIL tokens)
	// when a request carries no entities.
	PatternFallback bool `yaml:"pattern_fallback" mapstructure:"pattern_fallback"`
}

// RenderConfig controls the in-place page rewriter
type RenderConfig struct {
	MinFontSize   float64 `yaml:"min_font_size" mapstructure:"min_font_size"`
	ShrinkStep    float64 `yaml:"shrink_step" mapstructure:"shrink_step"`
	DefaultFontPt float64 `yaml:"default_font_pt" mapstructure:"default_font_pt"`
}

// ConvertConfig configures the external office-converter chain
type ConvertConfig struct {
	Timeout  time.Duration `yaml:"timeout" mapstructure:"timeout"`
	Commands []string      `yaml:"commands" mapstructure:"commands"`
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

// WebSocketConfig contains WebSocket event hub configuration
type WebSocketConfig struct {
	Enabled        bool          `yaml:"enabled" mapstructure:"enabled"`
	Path           string        `yaml:"path" mapstructure:"path"`
	MaxConnections int           `yaml:"max_connections" mapstructure:"max_connections"`
	PingInterval   time.Duration `yaml:"ping_interval" mapstructure:"ping_interval"`
	PongTimeout    time.Duration `yaml:"pong_timeout" mapstructure:"pong_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	Events         struct {
		BroadcastRequests   bool `yaml:"broadcast_requests" mapstructure:"broadcast_requests"`
		BroadcastProcessing bool `yaml:"broadcast_processing" mapstructure:"broadcast_processing"`
	} `yaml:"events" mapstructure:"events"`
}

// GetDefaults returns a configuration with sensible defaults
func GetDefaults() *Config {
	cfg := &Config{}

	cfg.Server.Port = 8000
	cfg.Server.ReadTimeout = 30 * time.Second
	cfg.Server.WriteTimeout = 60 * time.Second
	cfg.Server.IdleTimeout = 120 * time.Second
	cfg.Server.RateLimit.Enabled = true
	cfg.Server.RateLimit.RequestsPerSec = 10
	cfg.Server.RateLimit.Burst = 20
	cfg.Server.MaxUploadBytes = 32 << 20

	cfg.Anonymize.PatternFallback = true

	cfg.Render.MinFontSize = 4
	cfg.Render.ShrinkStep = 0.5
	cfg.Render.DefaultFontPt = 11

	cfg.Convert.Timeout = 60 * time.Second
	cfg.Convert.Commands = []string{"soffice", "libreoffice", "unoconv"}

	cfg.Logging.Level = "info"
	cfg.Logging.Format = "json"

	cfg.WebSocket.Enabled = true
	cfg.WebSocket.Path = "/ws"
	cfg.WebSocket.MaxConnections = 100
	cfg.WebSocket.PingInterval = 54 * time.Second
	cfg.WebSocket.PongTimeout = 60 * time.Second
	cfg.WebSocket.WriteTimeout = 10 * time.Second
	cfg.WebSocket.Events.BroadcastRequests = true
	cfg.WebSocket.Events.BroadcastProcessing = true

	return cfg
}
