// Tabularius - Diagnostic Event Logging Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tabularius

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// Tests mutate the process environment, so none of them run in parallel.

func clearKnownEnv(t *testing.T) {
	t.Helper()
	// t.Setenv registers restoration of the original value; the
	// immediate Unsetenv removes anything leaking in from the host.
	for _, key := range []string{
		"CONFIG_PATH", "HTTP_PORT", "HTTP_HOST", "ENVIRONMENT", "AUTH_MODE",
		"JWT_SECRET", "ADMIN_USERNAME", "ADMIN_PASSWORD", "CORS_ORIGINS",
		"STORAGE_DIR", "SHIPPER_URL", "SHIPPER_TRANSPORT", "DEBUGLOG_LEVEL",
		"DEBUGLOG_CATEGORIES", "DEBUGLOG_MAX_ENTRIES", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key) //nolint:errcheck
	}
	// The compiled default is jwt mode, which demands credentials.
	t.Setenv("AUTH_MODE", "none")
}

func TestLoadWithKoanf_Defaults(t *testing.T) {
	clearKnownEnv(t)

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf: %v", err)
	}

	if cfg.Server.Port != 8686 {
		t.Errorf("port = %d, want 8686", cfg.Server.Port)
	}
	if cfg.Server.Environment != "development" {
		t.Errorf("environment = %q", cfg.Server.Environment)
	}
	if cfg.Storage.Retention != 7*24*time.Hour {
		t.Errorf("retention = %v", cfg.Storage.Retention)
	}
	if cfg.Shipper.Transport != "http" {
		t.Errorf("shipper transport = %q", cfg.Shipper.Transport)
	}
	if cfg.Shipper.BatchSize != 64 {
		t.Errorf("shipper batch size = %d", cfg.Shipper.BatchSize)
	}
	if cfg.Analytics.QueueSize != 2048 {
		t.Errorf("analytics queue = %d", cfg.Analytics.QueueSize)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("log format = %q", cfg.Logging.Format)
	}
	if cfg.Memory.SampleInterval != time.Minute {
		t.Errorf("memory sample interval = %v", cfg.Memory.SampleInterval)
	}
}

func TestLoadWithKoanf_EnvOverrides(t *testing.T) {
	clearKnownEnv(t)
	t.Setenv("HTTP_PORT", "9999")
	t.Setenv("ENVIRONMENT", "testing")
	t.Setenv("STORAGE_DIR", "/tmp/tabularius-test")
	t.Setenv("DEBUGLOG_LEVEL", "VERBOSE")
	t.Setenv("DEBUGLOG_MAX_ENTRIES", "500")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf: %v", err)
	}

	if cfg.Server.Port != 9999 {
		t.Errorf("port = %d, want 9999", cfg.Server.Port)
	}
	if cfg.Server.Environment != "testing" {
		t.Errorf("environment = %q", cfg.Server.Environment)
	}
	if cfg.Storage.Dir != "/tmp/tabularius-test" {
		t.Errorf("storage dir = %q", cfg.Storage.Dir)
	}
	if cfg.Debuglog.Level != "VERBOSE" {
		t.Errorf("debuglog level = %q", cfg.Debuglog.Level)
	}
	if cfg.Debuglog.MaxStorageEntries != 500 {
		t.Errorf("max entries = %d", cfg.Debuglog.MaxStorageEntries)
	}
}

func TestLoadWithKoanf_CommaSeparatedSlices(t *testing.T) {
	clearKnownEnv(t)
	t.Setenv("CORS_ORIGINS", "https://app.example.com, https://admin.example.com")
	t.Setenv("DEBUGLOG_CATEGORIES", "Navigation,API Call")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf: %v", err)
	}

	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[1] != "https://admin.example.com" {
		t.Errorf("cors origins = %v", cfg.Server.CORSOrigins)
	}
	if len(cfg.Debuglog.Categories) != 2 || cfg.Debuglog.Categories[1] != "API Call" {
		t.Errorf("categories = %v", cfg.Debuglog.Categories)
	}
}

func TestLoadWithKoanf_YAMLFile(t *testing.T) {
	clearKnownEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  port: 7070
  environment: production
storage:
  retention: 48h
security:
  auth_mode: basic
  admin_username: ops
  admin_password: super-secret-pw
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_PATH", path)
	os.Unsetenv("AUTH_MODE") //nolint:errcheck // let the file decide

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf: %v", err)
	}

	if cfg.Server.Port != 7070 {
		t.Errorf("port = %d, want 7070", cfg.Server.Port)
	}
	if cfg.Storage.Retention != 48*time.Hour {
		t.Errorf("retention = %v", cfg.Storage.Retention)
	}
	if cfg.Security.AuthMode != "basic" {
		t.Errorf("auth mode = %q", cfg.Security.AuthMode)
	}
}

func TestLoadWithKoanf_EnvBeatsFile(t *testing.T) {
	clearKnownEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 7070\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("HTTP_PORT", "9090")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090 (env should beat file)", cfg.Server.Port)
	}
}

func TestValidate_SecurityRules(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "none mode in development",
			mutate: func(c *Config) { c.Security.AuthMode = "none" },
		},
		{
			name: "none mode in production rejected",
			mutate: func(c *Config) {
				c.Security.AuthMode = "none"
				c.Server.Environment = "production"
			},
			wantErr: true,
		},
		{
			name: "jwt mode requires long secret",
			mutate: func(c *Config) {
				c.Security.AuthMode = "jwt"
				c.Security.JWTSecret = "short"
				c.Security.AdminUsername = "admin"
				c.Security.AdminPassword = "password1"
			},
			wantErr: true,
		},
		{
			name: "jwt mode complete",
			mutate: func(c *Config) {
				c.Security.AuthMode = "jwt"
				c.Security.JWTSecret = "0123456789abcdef0123456789abcdef"
				c.Security.AdminUsername = "admin"
				c.Security.AdminPassword = "password1"
			},
		},
		{
			name: "basic mode requires credentials",
			mutate: func(c *Config) {
				c.Security.AuthMode = "basic"
			},
			wantErr: true,
		},
		{
			name: "invalid environment",
			mutate: func(c *Config) {
				c.Security.AuthMode = "none"
				c.Server.Environment = "staging"
			},
			wantErr: true,
		},
		{
			name: "invalid port",
			mutate: func(c *Config) {
				c.Security.AuthMode = "none"
				c.Server.Port = 0
			},
			wantErr: true,
		},
		{
			name: "nats transport without url or embedded broker",
			mutate: func(c *Config) {
				c.Security.AuthMode = "none"
				c.Shipper.Transport = "nats"
			},
			wantErr: true,
		},
		{
			name: "nats transport with embedded broker",
			mutate: func(c *Config) {
				c.Security.AuthMode = "none"
				c.Shipper.Transport = "nats"
				c.Shipper.NATSEmbedded = true
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEnvTransformFunc_DropsUnknownKeys(t *testing.T) {
	if got := envTransformFunc("PATH"); got != "" {
		t.Errorf("PATH mapped to %q, want dropped", got)
	}
	if got := envTransformFunc("HTTP_PORT"); got != "server.port" {
		t.Errorf("HTTP_PORT mapped to %q", got)
	}
	if got := envTransformFunc("shipper_url"); got != "shipper.url" {
		t.Errorf("shipper_url mapped to %q", got)
	}
}
