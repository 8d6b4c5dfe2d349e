// Package config provides Viper-based configuration loading for the xiangqi room server.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. LLXQ_SERVER_PORT
const EnvPrefix = "LLXQ"

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns the "host:port" listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RoomsConfig holds presence and room garbage-collection timings.
type RoomsConfig struct {
	// PresenceTimeout is how long a silent player stays online.
	PresenceTimeout time.Duration `mapstructure:"presence_timeout"`
	// DestroyDelay is how long every player must be offline and idle before a room is removed.
	DestroyDelay time.Duration `mapstructure:"destroy_delay"`
	// SweepInterval is the period of the presence sweep.
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
	// SubscriberBuffer is the event queue size of each live subscription.
	SubscriberBuffer int `mapstructure:"subscriber_buffer"`
}

// StorageConfig selects the finished-game archive.
type StorageConfig struct {
	// Type is "memory" or "redis".
	Type      string        `mapstructure:"type"`
	RedisURL  string        `mapstructure:"redis_url"`
	ResultTTL time.Duration `mapstructure:"result_ttl"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "text".
	Format string `mapstructure:"format"`
}

// Config is the top-level application configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Rooms   RoomsConfig   `mapstructure:"rooms"`
	Storage StorageConfig `mapstructure:"storage"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// Validate checks all configuration invariants and reports every violation.
func (c Config) Validate() error {
	var errs []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout < 0 {
		errs = append(errs, "server.read_timeout must not be negative")
	}
	if c.Server.WriteTimeout < 0 {
		errs = append(errs, "server.write_timeout must not be negative")
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "server.shutdown_timeout must be positive")
	}

	if c.Rooms.PresenceTimeout <= 0 {
		errs = append(errs, "rooms.presence_timeout must be positive")
	}
	if c.Rooms.DestroyDelay <= c.Rooms.PresenceTimeout {
		errs = append(errs, fmt.Sprintf("rooms.destroy_delay (%s) must exceed rooms.presence_timeout (%s)",
			c.Rooms.DestroyDelay, c.Rooms.PresenceTimeout))
	}
	if c.Rooms.SweepInterval <= 0 {
		errs = append(errs, "rooms.sweep_interval must be positive")
	}
	if c.Rooms.SubscriberBuffer < 1 {
		errs = append(errs, fmt.Sprintf("rooms.subscriber_buffer must be >= 1, got %d", c.Rooms.SubscriberBuffer))
	}

	switch c.Storage.Type {
	case "memory":
	case "redis":
		if c.Storage.RedisURL == "" {
			errs = append(errs, "storage.redis_url is required when storage.type is redis")
		}
	default:
		errs = append(errs, fmt.Sprintf("storage.type must be one of [memory, redis], got %q", c.Storage.Type))
	}
	if c.Storage.ResultTTL < 0 {
		errs = append(errs, "storage.result_ttl must not be negative")
	}

	if _, err := parseLevel(c.Logging.Level); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		errs = append(errs, fmt.Sprintf("logging.format must be one of [json, text], got %q", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// NewLogger builds the slog logger described by the logging settings.
func (l LoggingConfig) NewLogger(w io.Writer) *slog.Logger {
	level, err := parseLevel(l.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", s)
	}
}

// Load reads configuration from the YAML file at path, when path is not
// empty, applies LLXQ_ environment overrides and validates the result.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	// zero: a write deadline would cut long-lived event streams
	v.SetDefault("server.write_timeout", "0s")
	v.SetDefault("server.shutdown_timeout", "30s")

	v.SetDefault("rooms.presence_timeout", "60s")
	v.SetDefault("rooms.destroy_delay", "120s")
	v.SetDefault("rooms.sweep_interval", "10s")
	v.SetDefault("rooms.subscriber_buffer", 64)

	v.SetDefault("storage.type", "memory")
	v.SetDefault("storage.redis_url", "")
	v.SetDefault("storage.result_ttl", "168h")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
