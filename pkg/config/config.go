// Package config loads the static configuration fileswarmd starts
// from: logging, telemetry, metrics, the management API, the
// persistence backends for pkg/userservice and pkg/audit, where to
// find the dynamic group topology, and the group topology to run
// with before the first pkg/configsource.Snapshot arrives.
//
// Dynamic configuration (the group table itself) is NOT owned by
// this package once the daemon is running; it flows through
// pkg/configsource and pkg/scheduler.Configure instead. Config.Scheduler
// only seeds the very first Configure call.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fileswarm/fileswarm/internal/logger"
	"github.com/fileswarm/fileswarm/internal/telemetry"
	"github.com/fileswarm/fileswarm/pkg/api"
	"github.com/fileswarm/fileswarm/pkg/audit"
	"github.com/fileswarm/fileswarm/pkg/groups"
	"github.com/fileswarm/fileswarm/pkg/userservice"
)

// Config is the top level fileswarmd configuration.
//
// Configuration sources, in order of precedence:
//  1. Environment variables (FILESWARM_*)
//  2. Configuration file (YAML)
//  3. Default values
type Config struct {
	// Logging controls log output behavior.
	Logging logger.Config `mapstructure:"logging" yaml:"logging"`

	// Telemetry controls OpenTelemetry distributed tracing.
	Telemetry telemetry.Config `mapstructure:"telemetry" yaml:"telemetry"`

	// Profiling controls continuous Pyroscope profiling.
	Profiling telemetry.ProfilingConfig `mapstructure:"profiling" yaml:"profiling"`

	// ShutdownTimeout bounds how long the daemon waits for in flight
	// AwaitStart futures to Complete before forcing a shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0" yaml:"shutdown_timeout"`

	// Metrics contains Prometheus metrics server configuration.
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	// API contains management HTTP server configuration.
	API api.Config `mapstructure:"api" yaml:"api"`

	// UserService configures peer->group resolution persistence.
	UserService userservice.Config `mapstructure:"userservice" yaml:"userservice"`

	// Audit configures the admission decision ledger. Auditing runs
	// only when Enabled is true; otherwise the scheduler keeps its
	// built-in no-op sink.
	Audit AuditConfig `mapstructure:"audit" yaml:"audit"`

	// ConfigSource describes where the dynamic group topology comes
	// from: a local file or an S3 object, optionally cached.
	ConfigSource ConfigSourceConfig `mapstructure:"config_source" yaml:"config_source"`

	// Scheduler seeds the scheduler's group topology before the
	// first ConfigSource.Snapshot call succeeds.
	Scheduler SchedulerConfig `mapstructure:"scheduler" yaml:"scheduler"`
}

// SchedulerConfig is the config-file representation of a group
// topology, field-for-field the same shape as pkg/configsource's YAML
// document so an operator edits both with the same vocabulary.
type SchedulerConfig struct {
	GlobalSlots int                      `mapstructure:"global_slots" yaml:"global_slots"`
	Default     GroupConfig              `mapstructure:"default" yaml:"default"`
	Leechers    GroupConfig              `mapstructure:"leechers" yaml:"leechers"`
	Groups      []UserDefinedGroupConfig `mapstructure:"groups" yaml:"groups"`
}

// GroupConfig is the config-file shape of the default/leechers group.
type GroupConfig struct {
	Slots    int    `mapstructure:"slots" yaml:"slots"`
	Strategy string `mapstructure:"strategy" yaml:"strategy"`
}

// UserDefinedGroupConfig is the config-file shape of a named,
// operator-defined group.
type UserDefinedGroupConfig struct {
	Name     string `mapstructure:"name" yaml:"name"`
	Priority int    `mapstructure:"priority" yaml:"priority"`
	Slots    int    `mapstructure:"slots" yaml:"slots"`
	Strategy string `mapstructure:"strategy" yaml:"strategy"`
}

// Options converts the config-file representation into the
// groups.Options shape pkg/scheduler.Configure consumes.
func (s SchedulerConfig) Options() (groups.Options, error) {
	opts := groups.Options{GlobalSlots: s.GlobalSlots}

	if s.Default.Slots > 0 {
		strategy, err := groups.ParseStrategy(s.Default.Strategy)
		if err != nil {
			return groups.Options{}, fmt.Errorf("scheduler.default: %w", err)
		}
		opts.Default = groups.Spec{Name: "default", Priority: 10, Slots: s.Default.Slots, Strategy: strategy}
	}

	if s.Leechers.Slots > 0 {
		strategy, err := groups.ParseStrategy(s.Leechers.Strategy)
		if err != nil {
			return groups.Options{}, fmt.Errorf("scheduler.leechers: %w", err)
		}
		opts.Leechers = groups.Spec{Name: "leechers", Priority: 20, Slots: s.Leechers.Slots, Strategy: strategy}
	}

	if len(s.Groups) > 0 {
		opts.UserDefined = make(map[string]groups.Spec, len(s.Groups))
		for _, g := range s.Groups {
			strategy, err := groups.ParseStrategy(g.Strategy)
			if err != nil {
				return groups.Options{}, fmt.Errorf("scheduler.groups[%q]: %w", g.Name, err)
			}
			opts.UserDefined[g.Name] = groups.Spec{Name: g.Name, Priority: g.Priority, Slots: g.Slots, Strategy: strategy}
		}
	}

	return opts, nil
}

// MetricsConfig contains Prometheus metrics server configuration.
type MetricsConfig struct {
	// Enabled controls whether the metrics HTTP endpoint is served.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Port is the TCP port /metrics is served on.
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`
}

// AuditConfig selects and configures the audit ledger's backend. It
// embeds pkg/audit.Config directly since the two don't diverge.
type AuditConfig struct {
	Enabled      bool `mapstructure:"enabled" yaml:"enabled"`
	audit.Config `mapstructure:",squash" yaml:",inline"`
}

// ConfigSourceConfig selects and configures where the dynamic group
// topology is loaded from.
type ConfigSourceConfig struct {
	// Type selects the backend: "file" or "s3".
	Type string `mapstructure:"type" validate:"required,oneof=file s3" yaml:"type"`

	// File is the local path used when Type is "file".
	File string `mapstructure:"file" yaml:"file"`

	// S3 configures the S3 object used when Type is "s3".
	S3 S3SourceConfig `mapstructure:"s3" yaml:"s3"`

	// PollInterval governs how often s3configsource checks the
	// object's ETag for changes. Unused by the file source, which
	// relies on fsnotify instead.
	PollInterval time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`

	// SnapshotCachePath, if set, opens a badger-backed snapshot cache
	// that stores each accepted snapshot and is read back when the
	// source cannot be reached at startup, so a restart before the
	// source is reachable still has a last-known-good group table.
	SnapshotCachePath string `mapstructure:"snapshot_cache_path" yaml:"snapshot_cache_path"`
}

// S3SourceConfig mirrors pkg/configsource.S3Config's field set.
type S3SourceConfig struct {
	Endpoint        string `mapstructure:"endpoint" yaml:"endpoint"`
	Region          string `mapstructure:"region" yaml:"region"`
	AccessKeyID     string `mapstructure:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key" yaml:"secret_access_key"`
	ForcePathStyle  bool   `mapstructure:"force_path_style" yaml:"force_path_style"`
	Bucket          string `mapstructure:"bucket" yaml:"bucket"`
	Key             string `mapstructure:"key" yaml:"key"`
}

// Load loads configuration from file, environment, and defaults.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	found, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}

	if !found {
		cfg := GetDefaultConfig()
		return cfg, nil
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration, returning an operator-friendly error
// pointing at `fileswarmd init` if no config file exists.
func MustLoad(configPath string) (*Config, error) {
	if configPath == "" {
		if !DefaultConfigExists() {
			return nil, fmt.Errorf("no configuration file found at default location: %s\n\n"+
				"Please initialize a configuration file first:\n"+
				"  fileswarmd init\n\n"+
				"Or specify a custom config file:\n"+
				"  fileswarmd <command> --config /path/to/config.yaml",
				GetDefaultConfigPath())
		}
		configPath = GetDefaultConfigPath()
	} else if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s\n\n"+
			"Please create the configuration file:\n"+
			"  fileswarmd init --config %s",
			configPath, configPath)
	}

	cfg, err := Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes cfg to path as YAML with restricted permissions,
// since the audit/userservice database sections may carry passwords.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// setupViper configures viper with environment variable and config
// file resolution.
//
// Environment variables use the FILESWARM_ prefix and underscores,
// e.g. FILESWARM_LOGGING_LEVEL=DEBUG, FILESWARM_API_JWT_SECRET.
func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("FILESWARM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		configDir := getConfigDir()
		v.AddConfigPath(configDir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// readConfigFile reads the configuration file if present. A missing
// file is not an error; the caller falls back to defaults.
func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}
	return true, nil
}

// configDecodeHooks composes the mapstructure decode hooks this
// config needs. Unlike the teacher's pkg/config, there is no
// bytesize.ByteSize field here (no WAL cache in this domain), so only
// the duration hook is carried; see DESIGN.md.
func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		durationDecodeHook(),
	)
}

// durationDecodeHook converts strings like "30s", "5m", "1h" to
// time.Duration during Unmarshal.
func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

// getConfigDir returns $XDG_CONFIG_HOME/fileswarm, or ~/.config/fileswarm,
// falling back to the current directory if the home dir can't be
// determined.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "fileswarm")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".config", "fileswarm")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists reports whether a config file exists at the
// default location.
func DefaultConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}

// GetConfigDir returns the configuration directory path, exposed for
// the init command.
func GetConfigDir() string {
	return getConfigDir()
}
