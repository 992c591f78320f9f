// Tabularius - Diagnostic Event Logging Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tabularius

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/tabularius/config.yaml",
	"/etc/tabularius/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with all defaults applied. These are
// layered first, then overridden by the config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8686,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			ShutdownTimeout:   30 * time.Second,
			Environment:       "development",
			CORSOrigins:       []string{},
			RateLimitReqs:     300,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
		Storage: StorageConfig{
			Dir:           "/data/tabularius/logs",
			InMemory:      false,
			SyncWrites:    false,
			Retention:     7 * 24 * time.Hour,
			SweepInterval: time.Hour,
		},
		Shipper: ShipperConfig{
			Transport:        "http",
			URL:              "",
			Timeout:          10 * time.Second,
			BufferSize:       1024,
			BatchSize:        64,
			FlushInterval:    5 * time.Second,
			FailureThreshold: 5,
			BreakerTimeout:   30 * time.Second,
			RatePerSecond:    10,
			Burst:            20,

			NATSSubjectPrefix: "tabularius.logs",
			NATSEmbedded:      false,
			NATSStoreDir:      "/data/tabularius/nats",
			NATSHost:          "127.0.0.1",
			NATSPort:          4222,
		},
		Analytics: AnalyticsConfig{
			Path:          "/data/tabularius/analytics.duckdb",
			QueueSize:     2048,
			BatchSize:     128,
			FlushInterval: 2 * time.Second,
		},
		Debuglog: DebuglogConfig{
			Level:             "",
			Categories:        nil,
			MaxStorageEntries: 0,
		},
		Security: SecurityConfig{
			AuthMode:       "jwt",
			JWTSecret:      "",
			SessionTimeout: 24 * time.Hour,
			AdminUsername:  "",
			AdminPassword:  "",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Memory: MemoryConfig{
			SampleInterval: time.Minute,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered
// sources: defaults, optional YAML file, environment variables.
// Precedence: ENV > file > defaults.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults from struct
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: optional config file
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment variables (highest priority)
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths are parsed as
// comma-separated slices when they arrive as env var strings.
var sliceConfigPaths = []string{
	"server.cors_origins",
	"debuglog.categories",
}

// processSliceFields converts comma-separated string values to slices
// for known slice fields.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// Already a slice (from YAML): leave alone
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		if strVal, ok := val.(string); ok {
			if strVal == "" {
				continue
			}
			parts := strings.Split(strVal, ",")
			trimmed := make([]string, 0, len(parts))
			for _, p := range parts {
				p = strings.TrimSpace(p)
				if p != "" {
					trimmed = append(trimmed, p)
				}
			}
			if len(trimmed) > 0 {
				if err := k.Set(path, trimmed); err != nil {
					return fmt.Errorf("failed to set %s: %w", path, err)
				}
			}
		}
	}
	return nil
}

// envTransformFunc maps environment variable names to koanf config
// paths. Unmapped variables are dropped so random environment noise
// never pollutes the config.
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// Server
		"http_host":           "server.host",
		"http_port":           "server.port",
		"http_read_timeout":   "server.read_timeout",
		"http_write_timeout":  "server.write_timeout",
		"shutdown_timeout":    "server.shutdown_timeout",
		"environment":         "server.environment",
		"cors_origins":        "server.cors_origins",
		"rate_limit_requests": "server.rate_limit_reqs",
		"rate_limit_window":   "server.rate_limit_window",
		"disable_rate_limit":  "server.rate_limit_disabled",

		// Storage
		"storage_dir":            "storage.dir",
		"storage_in_memory":      "storage.in_memory",
		"storage_sync_writes":    "storage.sync_writes",
		"storage_retention":      "storage.retention",
		"storage_sweep_interval": "storage.sweep_interval",

		// Shipper
		"shipper_transport":         "shipper.transport",
		"shipper_url":               "shipper.url",
		"shipper_timeout":           "shipper.timeout",
		"shipper_buffer_size":       "shipper.buffer_size",
		"shipper_batch_size":        "shipper.batch_size",
		"shipper_flush_interval":    "shipper.flush_interval",
		"shipper_failure_threshold": "shipper.failure_threshold",
		"shipper_breaker_timeout":   "shipper.breaker_timeout",
		"shipper_rate_per_second":   "shipper.rate_per_second",
		"shipper_burst":             "shipper.burst",
		"nats_subject_prefix":       "shipper.nats_subject_prefix",
		"nats_embedded":             "shipper.nats_embedded",
		"nats_store_dir":            "shipper.nats_store_dir",
		"nats_host":                 "shipper.nats_host",
		"nats_port":                 "shipper.nats_port",

		// Analytics
		"analytics_path":           "analytics.path",
		"analytics_queue_size":     "analytics.queue_size",
		"analytics_batch_size":     "analytics.batch_size",
		"analytics_flush_interval": "analytics.flush_interval",

		// Debuglog profile seed
		"debuglog_level":       "debuglog.level",
		"debuglog_categories":  "debuglog.categories",
		"debuglog_max_entries": "debuglog.max_storage_entries",

		// Security
		"auth_mode":          "security.auth_mode",
		"jwt_secret":         "security.jwt_secret",
		"session_timeout":    "security.session_timeout",
		"admin_username":     "security.admin_username",
		"admin_password":     "security.admin_password",
		"casbin_model_path":  "security.casbin_model_path",
		"casbin_policy_path": "security.casbin_policy_path",

		// Operational logging
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",

		// Memory sampler
		"memory_sample_interval": "memory.sample_interval",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}
	return ""
}

// WatchConfigFile sets up a file watcher for hot-reload. The caller is
// responsible for mutex protection when swapping configuration.
func WatchConfigFile(path string, callback func()) error {
	provider := file.Provider(path)

	return provider.Watch(func(event interface{}, err error) {
		if err != nil {
			return
		}
		callback()
	})
}
