package config

import (
	"testing"
	"time"
)

func TestApplyDefaults_FillsZeroValues(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Logging.Level != "INFO" {
		t.Errorf("Logging.Level = %q, want INFO", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Logging.Format = %q, want text", cfg.Logging.Format)
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 30s", cfg.ShutdownTimeout)
	}
	if cfg.API.Port != 8080 {
		t.Errorf("API.Port = %d, want 8080", cfg.API.Port)
	}
	if cfg.ConfigSource.Type != "file" {
		t.Errorf("ConfigSource.Type = %q, want file", cfg.ConfigSource.Type)
	}
	if cfg.Scheduler.GlobalSlots != 1 {
		t.Errorf("Scheduler.GlobalSlots = %d, want 1", cfg.Scheduler.GlobalSlots)
	}
	if cfg.Scheduler.Default.Strategy != "fifo" {
		t.Errorf("Scheduler.Default.Strategy = %v, want fifo", cfg.Scheduler.Default.Strategy)
	}
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.API.Port = 1234
	cfg.Logging.Level = "debug"
	cfg.Scheduler.GlobalSlots = 50

	ApplyDefaults(cfg)

	if cfg.API.Port != 1234 {
		t.Errorf("API.Port was overwritten: got %d", cfg.API.Port)
	}
	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("Logging.Level = %q, want DEBUG (normalized)", cfg.Logging.Level)
	}
	if cfg.Scheduler.GlobalSlots != 50 {
		t.Errorf("Scheduler.GlobalSlots was overwritten: got %d", cfg.Scheduler.GlobalSlots)
	}
}

func TestGetDefaultConfig_IsInternallyConsistent(t *testing.T) {
	cfg := GetDefaultConfig()
	if cfg.ConfigSource.File == "" {
		t.Error("expected a default config source file path")
	}
	if cfg.Scheduler.Default.Slots == 0 {
		t.Error("expected a default scheduler group with slots")
	}
}
