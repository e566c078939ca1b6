package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/bytes"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv    string `env:"APP_ENV" default:"development"`
	Port      string `env:"PORT" default:"5000"`
	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`

	// AllowedOrigins is a comma separated list; "*" allows any origin for CORS and WebSocket upgrades.
	AllowedOrigins string `env:"ALLOWED_ORIGINS" default:"*"`
	// MaxUploadSize is an echo body limit such as "1M"; empty means unlimited.
	MaxUploadSize string `env:"MAX_UPLOAD_SIZE"`

	MaxWebSocketConnections int     `env:"MAX_WEBSOCKET_CONNECTIONS" default:"10000"`
	MaxConnectionsPerIP     int     `env:"MAX_CONNECTIONS_PER_IP" default:"100"`
	ConnectionRate          float64 `env:"CONNECTION_RATE" default:"10"`
	ConnectionBurst         int     `env:"CONNECTION_BURST" default:"20"`

	SendBufferSize int           `env:"SEND_BUFFER_SIZE" default:"16"`
	WriteTimeout   time.Duration `env:"WRITE_TIMEOUT" default:"5s"`
	PingInterval   time.Duration `env:"PING_INTERVAL" default:"30s"`
	PongTimeout    time.Duration `env:"PONG_TIMEOUT" default:"60s"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" default:"10s"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Origins returns the parsed ALLOWED_ORIGINS list.
func (c *Config) Origins() []string {
	var origins []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func validate(cfg *Config) error {
	if cfg.Port == "" {
		return errors.New("PORT is required")
	}
	if len(cfg.Origins()) == 0 {
		return errors.New("ALLOWED_ORIGINS must list at least one origin")
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error, got %q", cfg.LogLevel)
	}
	switch cfg.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}

	if cfg.MaxUploadSize != "" {
		if _, err := bytes.Parse(cfg.MaxUploadSize); err != nil {
			return fmt.Errorf("MAX_UPLOAD_SIZE %q is not a valid size: %w", cfg.MaxUploadSize, err)
		}
	}

	positive := map[string]int{
		"MAX_WEBSOCKET_CONNECTIONS": cfg.MaxWebSocketConnections,
		"MAX_CONNECTIONS_PER_IP":    cfg.MaxConnectionsPerIP,
		"CONNECTION_BURST":          cfg.ConnectionBurst,
		"SEND_BUFFER_SIZE":          cfg.SendBufferSize,
	}
	for name, value := range positive {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	if cfg.ConnectionRate <= 0 {
		return errors.New("CONNECTION_RATE must be positive")
	}

	durations := map[string]time.Duration{
		"WRITE_TIMEOUT":    cfg.WriteTimeout,
		"PING_INTERVAL":    cfg.PingInterval,
		"PONG_TIMEOUT":     cfg.PongTimeout,
		"SHUTDOWN_TIMEOUT": cfg.ShutdownTimeout,
	}
	for name, value := range durations {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	if cfg.PongTimeout <= cfg.PingInterval {
		return fmt.Errorf("PONG_TIMEOUT (%v) must be longer than PING_INTERVAL (%v)", cfg.PongTimeout, cfg.PingInterval)
	}

	return nil
}
