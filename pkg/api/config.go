package api

import (
	"os"
	"time"

	"github.com/fileswarm/fileswarm/internal/logger"
)

// EnvJWTSecret is the environment variable that overrides the
// configured JWT signing secret.
const EnvJWTSecret = "FILESWARM_API_JWT_SECRET"

// Config configures the management HTTP server.
type Config struct {
	// Port is the HTTP port the management API listens on.
	// Default: 8080
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`

	// ReadTimeout bounds how long reading a request may take.
	// Default: 10s
	ReadTimeout time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`

	// WriteTimeout bounds how long writing a response may take.
	// Default: 10s
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`

	// IdleTimeout bounds how long a keep-alive connection may idle.
	// Default: 60s
	IdleTimeout time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`

	// JWT configures bearer token validation.
	JWT JWTConfig `mapstructure:"jwt" yaml:"jwt"`
}

// JWTConfig configures JWT signing and validation.
type JWTConfig struct {
	// Secret is the HMAC signing key. Must be at least 32 characters.
	// Can also be set via the FILESWARM_API_JWT_SECRET environment
	// variable, which takes precedence over the config file.
	Secret string `mapstructure:"secret" yaml:"secret"`

	// Issuer is the token issuer claim. Default: "fileswarmd".
	Issuer string `mapstructure:"issuer" yaml:"issuer"`

	// AccessTokenDuration is the lifetime of minted tokens.
	// Default: 15m
	AccessTokenDuration time.Duration `mapstructure:"access_token_duration" yaml:"access_token_duration"`
}

func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 10 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 60 * time.Second
	}
	if c.JWT.Issuer == "" {
		c.JWT.Issuer = "fileswarmd"
	}
	if c.JWT.AccessTokenDuration == 0 {
		c.JWT.AccessTokenDuration = 15 * time.Minute
	}
}

// GetJWTSecret returns the JWT secret, preferring the environment
// variable over the config file, and logging when the two disagree.
func (c *Config) GetJWTSecret() string {
	envSecret := os.Getenv(EnvJWTSecret)
	if envSecret != "" {
		if c.JWT.Secret != "" && c.JWT.Secret != envSecret {
			logger.Warn("JWT secret from environment variable overrides config file value",
				"env_var", EnvJWTSecret)
		}
		return envSecret
	}
	return c.JWT.Secret
}

// HasJWTSecret reports whether a JWT secret is configured by either
// source.
func (c *Config) HasJWTSecret() bool {
	return c.GetJWTSecret() != ""
}
