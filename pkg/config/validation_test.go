package config

import (
	"strings"
	"testing"
)

func validConfigForTest() *Config {
	cfg := GetDefaultConfig()
	cfg.API.JWT.Secret = "test-secret-key-for-testing-minimum-32-chars"
	return cfg
}

func TestValidate_ValidConfig(t *testing.T) {
	cfg := validConfigForTest()
	if err := Validate(cfg); err != nil {
		t.Errorf("expected valid config to pass validation, got error: %v", err)
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := validConfigForTest()
	cfg.Logging.Level = "INVALID"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error for invalid log level")
	}
	if !strings.Contains(err.Error(), "oneof") {
		t.Errorf("expected 'oneof' validation error, got: %v", err)
	}
}

func TestValidate_InvalidLogFormat(t *testing.T) {
	cfg := validConfigForTest()
	cfg.Logging.Format = "xml"

	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for invalid log format")
	}
}

func TestValidate_InvalidAPIPort(t *testing.T) {
	cfg := validConfigForTest()
	cfg.API.Port = 70000

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error for port out of range")
	}
	if !strings.Contains(err.Error(), "max") {
		t.Errorf("expected 'max' validation error, got: %v", err)
	}
}

func TestValidate_MissingJWTSecret(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.API.JWT.Secret = ""

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error for missing JWT secret")
	}
	if !strings.Contains(strings.ToLower(err.Error()), "jwt") {
		t.Errorf("expected error about JWT secret, got: %v", err)
	}
}

func TestValidate_ShortJWTSecret(t *testing.T) {
	cfg := validConfigForTest()
	cfg.API.JWT.Secret = "too-short"

	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for short JWT secret")
	}
}

func TestValidate_TelemetryEnabledWithoutEndpoint(t *testing.T) {
	cfg := validConfigForTest()
	cfg.Telemetry.Enabled = true
	cfg.Telemetry.Endpoint = ""

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error for telemetry enabled without endpoint")
	}
	if !strings.Contains(err.Error(), "telemetry") {
		t.Errorf("expected error about telemetry endpoint, got: %v", err)
	}
}

func TestValidate_TelemetrySampleRateOutOfRange(t *testing.T) {
	cfg := validConfigForTest()
	cfg.Telemetry.Enabled = true
	cfg.Telemetry.Endpoint = "localhost:4317"
	cfg.Telemetry.SampleRate = 1.5

	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for sample rate out of range")
	}
}

func TestValidate_MissingConfigSourceFile(t *testing.T) {
	cfg := validConfigForTest()
	cfg.ConfigSource.Type = "file"
	cfg.ConfigSource.File = ""

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error for missing config_source.file")
	}
	if !strings.Contains(err.Error(), "config_source.file") {
		t.Errorf("expected error about config_source.file, got: %v", err)
	}
}

func TestValidate_MissingS3Bucket(t *testing.T) {
	cfg := validConfigForTest()
	cfg.ConfigSource.Type = "s3"
	cfg.ConfigSource.File = ""
	cfg.ConfigSource.S3.Key = "groups.json"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error for missing s3 bucket")
	}
}

func TestValidate_LogLevelNormalization(t *testing.T) {
	for _, level := range []string{"info", "INFO", "debug", "DEBUG", "warn", "WARN", "error", "ERROR"} {
		cfg := validConfigForTest()
		cfg.Logging.Level = level

		if err := Validate(cfg); err != nil {
			t.Errorf("validation failed for level %q: %v", level, err)
		}
		if cfg.Logging.Level != level {
			t.Errorf("expected Validate not to mutate level, got %q", cfg.Logging.Level)
		}
	}
}
