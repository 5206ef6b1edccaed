package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/fileswarm/fileswarm/pkg/api"
)

var validate = validator.New()

// validLogLevels and validLogFormats are checked independently of
// the validator struct tags below since logger.Config and
// telemetry.Config live in internal/ and carry no validate tags of
// their own (they're shared with every fileswarmd subcommand, not
// just config loading).
var (
	validLogLevels  = []string{"DEBUG", "INFO", "WARN", "ERROR"}
	validLogFormats = []string{"text", "json"}
)

// Validate checks cfg against its struct tags (ShutdownTimeout,
// Metrics.Port, API.Port/JWT, ConfigSource.Type) plus a handful of
// cross-field and enum checks the tags can't express on types
// defined outside this package.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return err
	}

	if err := validate.Var(strings.ToUpper(cfg.Logging.Level), "oneof=DEBUG INFO WARN ERROR"); err != nil {
		return fmt.Errorf("logging.level must be one of %v: %w", validLogLevels, err)
	}
	if err := validate.Var(cfg.Logging.Format, "oneof=text json"); err != nil {
		return fmt.Errorf("logging.format must be one of %v: %w", validLogFormats, err)
	}

	if cfg.Telemetry.Enabled && cfg.Telemetry.Endpoint == "" {
		return fmt.Errorf("telemetry.endpoint is required when telemetry is enabled")
	}
	if cfg.Telemetry.SampleRate < 0 || cfg.Telemetry.SampleRate > 1 {
		return fmt.Errorf("telemetry.sample_rate must be between 0.0 and 1.0, got %v", cfg.Telemetry.SampleRate)
	}

	if !cfg.API.HasJWTSecret() {
		return fmt.Errorf("api.jwt.secret is required (or set %s)", api.EnvJWTSecret)
	}
	if len(cfg.API.GetJWTSecret()) < 32 {
		return fmt.Errorf("api.jwt.secret must be at least 32 characters")
	}

	if cfg.ConfigSource.Type == "file" && cfg.ConfigSource.File == "" {
		return fmt.Errorf("config_source.file is required when config_source.type is \"file\"")
	}
	if cfg.ConfigSource.Type == "s3" && (cfg.ConfigSource.S3.Bucket == "" || cfg.ConfigSource.S3.Key == "") {
		return fmt.Errorf("config_source.s3.bucket and config_source.s3.key are required when config_source.type is \"s3\"")
	}

	return nil
}
