// Tabularius - Diagnostic Event Logging Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tabularius

package debuglog

import "testing"

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		env         Environment
		wantLevel   Level
		wantConsole bool
		wantStorage bool
	}{
		{EnvDevelopment, LevelDebug, true, true},
		{EnvProduction, LevelInfo, true, true},
		{EnvTesting, LevelError, false, false},
		{Environment("unknown"), LevelDebug, true, true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(string(tt.env), func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig(tt.env)
			if cfg.Level != tt.wantLevel {
				t.Errorf("level = %v, want %v", cfg.Level, tt.wantLevel)
			}
			if cfg.EnableConsole != tt.wantConsole {
				t.Errorf("console = %v, want %v", cfg.EnableConsole, tt.wantConsole)
			}
			if cfg.EnableStorage != tt.wantStorage {
				t.Errorf("storage = %v, want %v", cfg.EnableStorage, tt.wantStorage)
			}
			if cfg.EnableNetwork {
				t.Error("network sink must default off")
			}
			if cfg.MaxStorageEntries != DefaultMaxStorageEntries {
				t.Errorf("maxStorageEntries = %d", cfg.MaxStorageEntries)
			}
			if len(cfg.Categories) != 1 || cfg.Categories[0] != CategoryAll {
				t.Errorf("categories = %v", cfg.Categories)
			}
		})
	}
}

func TestConfigNormalize(t *testing.T) {
	t.Parallel()

	cfg := Config{MaxStorageEntries: -5, Level: Level(42)}
	got := cfg.normalize()

	if got.MaxStorageEntries != DefaultMaxStorageEntries {
		t.Errorf("maxStorageEntries = %d", got.MaxStorageEntries)
	}
	if len(got.Categories) != 1 || got.Categories[0] != CategoryAll {
		t.Errorf("categories = %v", got.Categories)
	}
	if got.Level != LevelInfo {
		t.Errorf("level = %v", got.Level)
	}
}

func TestConfigNormalize_PreservesExplicitEmptyCategories(t *testing.T) {
	t.Parallel()

	// A non-nil empty set is the record-nothing state left by disabling
	// the last category; only a nil set gets the all sentinel.
	cfg := Config{Categories: []string{}}
	got := cfg.normalize()

	if got.Categories == nil || len(got.Categories) != 0 {
		t.Errorf("categories = %v, want explicit empty set", got.Categories)
	}
}

func TestConfigClone_NoAliasing(t *testing.T) {
	t.Parallel()

	original := Config{Categories: []string{"API Call"}}
	clone := original.clone()
	clone.Categories[0] = "mutated"

	if original.Categories[0] != "API Call" {
		t.Error("clone aliases the original categories slice")
	}
}

func TestRecordsCategory(t *testing.T) {
	t.Parallel()

	all := Config{Categories: []string{CategoryAll}}
	if !all.recordsCategory("anything") {
		t.Error("all sentinel rejected a category")
	}

	scoped := Config{Categories: []string{"API Call"}}
	if !scoped.recordsCategory("API Call") {
		t.Error("exact category rejected")
	}
	if scoped.recordsCategory("API") {
		t.Error("recording matched a substring; it must be exact")
	}
	if scoped.recordsCategory("api call") {
		t.Error("recording matched case-insensitively; it must be exact")
	}

	none := Config{Categories: []string{}}
	if none.recordsCategory("API Call") {
		t.Error("empty category set recorded an entry")
	}
}
