package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/fileswarm/fileswarm/internal/logger"
	"github.com/fileswarm/fileswarm/internal/telemetry"
	"github.com/fileswarm/fileswarm/pkg/api"
	"github.com/fileswarm/fileswarm/pkg/userservice"
)

// ApplyDefaults fills in any unspecified configuration fields with
// sensible defaults. Called after loading from file and environment.
//
// Zero values are replaced with defaults; explicit values are
// preserved.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyProfilingDefaults(&cfg.Profiling)
	applyMetricsDefaults(&cfg.Metrics)
	applyAPIDefaults(&cfg.API)
	applyUserServiceDefaults(&cfg.UserService)
	applySchedulerDefaults(&cfg.Scheduler)

	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
	if cfg.ConfigSource.Type == "" {
		cfg.ConfigSource.Type = "file"
	}
	if cfg.ConfigSource.PollInterval == 0 {
		cfg.ConfigSource.PollInterval = 30 * time.Second
	}

	// Note: no defaults for Audit or ConfigSource.File/S3 — an
	// unconfigured audit sink is intentionally a no-op, and there is
	// no sane default group topology source.
}

// applyLoggingDefaults sets logging defaults and normalizes the
// level to uppercase, mirroring the teacher's own normalization
// (Validate, below, accepts either case; callers downstream of
// ApplyDefaults always see the uppercase form).
func applyLoggingDefaults(cfg *logger.Config) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

func applyTelemetryDefaults(cfg *telemetry.Config) {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "fileswarmd"
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 1.0
	}
}

func applyProfilingDefaults(cfg *telemetry.ProfilingConfig) {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "fileswarmd"
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = "http://localhost:4040"
	}
	if len(cfg.ProfileTypes) == 0 {
		cfg.ProfileTypes = []string{
			"cpu", "alloc_objects", "alloc_space",
			"inuse_objects", "inuse_space", "goroutines",
		}
	}
}

func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Enabled && cfg.Port == 0 {
		cfg.Port = 9090
	}
}

func applyAPIDefaults(cfg *api.Config) {
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 10 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 60 * time.Second
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "fileswarmd"
	}
	if cfg.JWT.AccessTokenDuration == 0 {
		cfg.JWT.AccessTokenDuration = 15 * time.Minute
	}
}

func applyUserServiceDefaults(cfg *userservice.Config) {
	if cfg.Type == "" {
		cfg.Type = userservice.DatabaseTypeSQLite
	}
}

// applySchedulerDefaults fills in a single-group, single-slot
// topology so a daemon started without any ConfigSource reachable
// still admits one upload at a time rather than refusing everyone.
func applySchedulerDefaults(cfg *SchedulerConfig) {
	if cfg.GlobalSlots == 0 {
		cfg.GlobalSlots = 1
	}
	if cfg.Default.Slots == 0 {
		cfg.Default = GroupConfig{Slots: 1, Strategy: "fifo"}
	}
	if cfg.Leechers.Slots == 0 {
		cfg.Leechers = GroupConfig{Slots: 1, Strategy: "fifo"}
	}
}

// GetDefaultConfig returns a Config with all default values applied,
// a minimal SQLite-backed userservice, and a local file config
// source rooted at the default config directory.
//
// Useful for `fileswarmd init` and for tests.
func GetDefaultConfig() *Config {
	cfg := &Config{
		ConfigSource: ConfigSourceConfig{
			Type: "file",
			File: filepath.Join(getConfigDir(), "groups.yaml"),
		},
	}
	ApplyDefaults(cfg)
	return cfg
}
