// Tabularius - Diagnostic Event Logging Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tabularius

// Package config loads server configuration from layered sources:
// built-in defaults, an optional YAML file, and environment variables,
// in ascending precedence. The runtime logger configuration (level,
// categories, sink toggles) is NOT owned here; it lives in badger under
// its own key and is mutated through the API. This package only seeds
// its initial profile.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the root configuration for the service.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Storage   StorageConfig   `koanf:"storage"`
	Shipper   ShipperConfig   `koanf:"shipper"`
	Analytics AnalyticsConfig `koanf:"analytics"`
	Debuglog  DebuglogConfig  `koanf:"debuglog"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
	Memory    MemoryConfig    `koanf:"memory"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host              string        `koanf:"host"`
	Port              int           `koanf:"port" validate:"min=1,max=65535"`
	ReadTimeout       time.Duration `koanf:"read_timeout"`
	WriteTimeout      time.Duration `koanf:"write_timeout"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout"`
	Environment       string        `koanf:"environment" validate:"oneof=development production testing"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs" validate:"min=1"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// StorageConfig configures the badger entry store and retention sweep.
type StorageConfig struct {
	Dir           string        `koanf:"dir"`
	InMemory      bool          `koanf:"in_memory"`
	SyncWrites    bool          `koanf:"sync_writes"`
	Retention     time.Duration `koanf:"retention"`
	SweepInterval time.Duration `koanf:"sweep_interval"`
}

// ShipperConfig configures the network sink.
type ShipperConfig struct {
	Transport        string        `koanf:"transport" validate:"oneof=http nats"`
	URL              string        `koanf:"url"`
	Timeout          time.Duration `koanf:"timeout"`
	BufferSize       int           `koanf:"buffer_size" validate:"min=1"`
	BatchSize        int           `koanf:"batch_size" validate:"min=1"`
	FlushInterval    time.Duration `koanf:"flush_interval"`
	FailureThreshold int           `koanf:"failure_threshold" validate:"min=1"`
	BreakerTimeout   time.Duration `koanf:"breaker_timeout"`
	RatePerSecond    float64       `koanf:"rate_per_second"`
	Burst            int           `koanf:"burst"`

	// NATS transport settings, used when Transport is "nats".
	NATSSubjectPrefix string `koanf:"nats_subject_prefix"`
	NATSEmbedded      bool   `koanf:"nats_embedded"`
	NATSStoreDir      string `koanf:"nats_store_dir"`
	NATSHost          string `koanf:"nats_host"`
	NATSPort          int    `koanf:"nats_port"`
}

// AnalyticsConfig configures the DuckDB analytics mirror.
type AnalyticsConfig struct {
	Path          string        `koanf:"path"`
	QueueSize     int           `koanf:"queue_size" validate:"min=1"`
	BatchSize     int           `koanf:"batch_size" validate:"min=1"`
	FlushInterval time.Duration `koanf:"flush_interval"`
}

// DebuglogConfig seeds the initial logger profile. A persisted runtime
// config in badger takes precedence over everything here except
// MaxStorageEntries, which is an operational bound.
type DebuglogConfig struct {
	// Level overrides the environment profile's default when set
	// (ERROR, WARN, INFO, DEBUG, VERBOSE).
	Level string `koanf:"level"`

	// Categories overrides the initial enabled-category list; empty
	// keeps the profile default ("all").
	Categories []string `koanf:"categories"`

	// MaxStorageEntries bounds both the in-memory buffer and each
	// persisted session. Zero keeps the built-in default.
	MaxStorageEntries int `koanf:"max_storage_entries" validate:"min=0"`
}

// SecurityConfig configures authentication and authorization.
type SecurityConfig struct {
	AuthMode         string        `koanf:"auth_mode" validate:"oneof=none basic jwt"`
	JWTSecret        string        `koanf:"jwt_secret"`
	SessionTimeout   time.Duration `koanf:"session_timeout"`
	AdminUsername    string        `koanf:"admin_username"`
	AdminPassword    string        `koanf:"admin_password"`
	CasbinModelPath  string        `koanf:"casbin_model_path"`
	CasbinPolicyPath string        `koanf:"casbin_policy_path"`
}

// LoggingConfig configures the service's own operational logging
// (zerolog), distinct from the diagnostic entries it stores.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal panic"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// MemoryConfig configures the periodic memory-usage sampler.
type MemoryConfig struct {
	// SampleInterval is how often heap statistics are recorded as
	// Performance entries. Zero disables the sampler.
	SampleInterval time.Duration `koanf:"sample_interval"`
}

// Validate checks structural constraints (validator tags) and the
// cross-field rules the tags cannot express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}

	if err := c.validateSecurity(); err != nil {
		return err
	}
	return c.validateShipper()
}

func (c *Config) validateSecurity() error {
	switch c.Security.AuthMode {
	case "none":
		if c.Server.Environment == "production" {
			return fmt.Errorf("AUTH_MODE=none is not allowed when ENVIRONMENT=production")
		}
	case "basic":
		if c.Security.AdminUsername == "" || c.Security.AdminPassword == "" {
			return fmt.Errorf("AUTH_MODE=basic requires ADMIN_USERNAME and ADMIN_PASSWORD")
		}
	case "jwt":
		if len(c.Security.JWTSecret) < 32 {
			return fmt.Errorf("AUTH_MODE=jwt requires JWT_SECRET of at least 32 characters")
		}
		if c.Security.AdminUsername == "" || c.Security.AdminPassword == "" {
			return fmt.Errorf("AUTH_MODE=jwt requires ADMIN_USERNAME and ADMIN_PASSWORD for the login endpoint")
		}
	}
	return nil
}

func (c *Config) validateShipper() error {
	if c.Shipper.Transport == "http" && c.Server.Environment == "production" && c.Shipper.URL == "" {
		// Allowed: the shipper runs as a placeholder until a URL is set.
		return nil
	}
	if c.Shipper.Transport == "nats" && !c.Shipper.NATSEmbedded && c.Shipper.URL == "" {
		return fmt.Errorf("SHIPPER_TRANSPORT=nats requires SHIPPER_URL unless the embedded broker is enabled")
	}
	return nil
}
