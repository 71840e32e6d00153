// Emotive - Emotion-Adaptive Media Recommendation and Assessment Engine
// Copyright 2026 Careloop Health
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/careloop/emotive

// Package config provides layered configuration for the Emotive server.
//
// Configuration is resolved in precedence order: built-in defaults, then an
// optional YAML file, then EMOTIVE_-prefixed environment variables. Load
// validates the merged result before returning it.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/careloop/emotive/internal/engine"
)

// Default paths searched for a configuration file, in order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/emotive/config.yaml",
	"/etc/emotive/config.yml",
}

// Config is the root configuration for the Emotive server.
type Config struct {
	Server   ServerConfig   `koanf:"server" json:"server"`
	Logging  LoggingConfig  `koanf:"logging" json:"logging"`
	Store    StoreConfig    `koanf:"store" json:"store"`
	Profiles ProfilesConfig `koanf:"profiles" json:"profiles"`
	Auth     AuthConfig     `koanf:"auth" json:"auth"`
	API      APIConfig      `koanf:"api" json:"api"`
	Engine   engine.Config  `koanf:"engine" json:"engine"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	// Host is the listen address. Default: 0.0.0.0
	Host string `koanf:"host" json:"host"`

	// Port is the listen port. Default: 8080
	Port int `koanf:"port" json:"port"`

	// ReadTimeout bounds the time spent reading a request.
	ReadTimeout time.Duration `koanf:"read_timeout" json:"read_timeout"`

	// WriteTimeout bounds the time spent writing a response.
	WriteTimeout time.Duration `koanf:"write_timeout" json:"write_timeout"`

	// ShutdownTimeout bounds graceful shutdown on SIGTERM.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" json:"shutdown_timeout"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level" json:"level"`

	// Format is json or console.
	Format string `koanf:"format" json:"format"`

	// Caller includes caller file:line in log events.
	Caller bool `koanf:"caller" json:"caller"`
}

// StoreConfig selects and configures the persistence backend.
type StoreConfig struct {
	// Backend is badger or memory. The memory backend is intended for tests
	// and local development only; it loses all data on restart.
	Backend string `koanf:"backend" json:"backend"`

	// Path is the Badger data directory. Empty selects an in-memory Badger
	// instance.
	Path string `koanf:"path" json:"path"`
}

// ProfilesConfig configures the emotion profile table.
type ProfilesConfig struct {
	// CSVPath points to an optional emotion profile CSV. When empty or the
	// file does not exist, the built-in profile table is used.
	CSVPath string `koanf:"csv_path" json:"csv_path"`
}

// AuthConfig holds bearer-token verification settings.
type AuthConfig struct {
	// Enabled turns on JWT verification for the API. When disabled the
	// patient identity is taken from the X-Patient-ID header, which is only
	// acceptable behind a trusted gateway.
	Enabled bool `koanf:"enabled" json:"enabled"`

	// JWTSecret is the HMAC secret used to verify bearer tokens. Required
	// when Enabled is true.
	JWTSecret string `koanf:"jwt_secret" json:"jwt_secret"`

	// Issuer, when set, must match the token iss claim.
	Issuer string `koanf:"issuer" json:"issuer"`
}

// APIConfig holds HTTP API behavior settings.
type APIConfig struct {
	// CORSOrigins lists allowed CORS origins. Empty disables CORS headers.
	CORSOrigins []string `koanf:"cors_origins" json:"cors_origins"`

	// RateLimit is the per-client request limit per RateWindow. Zero
	// disables rate limiting.
	RateLimit int `koanf:"rate_limit" json:"rate_limit"`

	// RateWindow is the rate limit window.
	RateWindow time.Duration `koanf:"rate_window" json:"rate_window"`

	// DefaultPageSize is used for history listings when the client omits a
	// limit. MaxPageSize caps the client-supplied limit.
	DefaultPageSize int `koanf:"default_page_size" json:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size" json:"max_page_size"`
}

// Default returns the configuration defaults applied before file and
// environment layers.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Store: StoreConfig{
			Backend: "badger",
			Path:    "./data/emotive",
		},
		Auth: AuthConfig{
			Enabled: false,
		},
		API: APIConfig{
			RateLimit:       100,
			RateWindow:      time.Minute,
			DefaultPageSize: 20,
			MaxPageSize:     100,
		},
		Engine: *engine.DefaultConfig(),
	}
}

// Validate checks the merged configuration for values that would prevent the
// server from operating.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in [1,65535], got %d", c.Server.Port)
	}
	switch c.Store.Backend {
	case "badger", "memory":
	default:
		return fmt.Errorf("store.backend must be badger or memory, got %q", c.Store.Backend)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	if c.Auth.Enabled && c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required when auth is enabled")
	}
	if c.API.RateLimit < 0 {
		return fmt.Errorf("api.rate_limit must not be negative, got %d", c.API.RateLimit)
	}
	if c.API.DefaultPageSize <= 0 {
		return fmt.Errorf("api.default_page_size must be positive, got %d", c.API.DefaultPageSize)
	}
	if c.API.MaxPageSize < c.API.DefaultPageSize {
		return fmt.Errorf("api.max_page_size must be at least api.default_page_size, got %d", c.API.MaxPageSize)
	}
	if err := c.Engine.Validate(); err != nil {
		return fmt.Errorf("engine configuration invalid: %w", err)
	}
	return nil
}

// Addr returns the host:port the HTTP server should listen on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
