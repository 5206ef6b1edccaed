package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// sampleConfigTemplate is the commented starter file `fileswarmd init`
// writes out. It deliberately does not round-trip through SaveConfig
// (which emits an uncommented dump of GetDefaultConfig) so an operator
// opening it for the first time sees guidance, not a wall of zero
// values.
const sampleConfigTemplate = `# FileSwarm Configuration File
#
# All settings below can be overridden with environment variables:
#   FILESWARM_<SECTION>_<KEY>=value (nested keys use underscores)
# For example: FILESWARM_LOGGING_LEVEL=DEBUG

logging:
  level: INFO       # DEBUG, INFO, WARN, ERROR
  format: text       # text or json
  output: stdout

telemetry:
  enabled: false
  endpoint: localhost:4317
  sample_rate: 1.0

profiling:
  enabled: false
  endpoint: http://localhost:4040

shutdown_timeout: 30s

metrics:
  enabled: false
  port: 9090

api:
  port: 8080
  read_timeout: 10s
  write_timeout: 10s
  idle_timeout: 60s
  jwt:
    # secret can also be set via FILESWARM_API_JWT_SECRET; must be at
    # least 32 characters either way.
    secret: ""
    issuer: fileswarmd
    access_token_duration: 15m

userservice:
  type: sqlite       # sqlite or postgres
  sqlitepath: ""      # defaults under $XDG_CONFIG_HOME/fileswarm

audit:
  enabled: false
  type: sqlite
  sqlitepath: ""

config_source:
  type: file          # file or s3
  file: "./groups.yaml"
  poll_interval: 30s
  snapshot_cache_path: ""

# scheduler seeds the group topology used before the config_source
# above is first read successfully. Once running, edit groups.yaml
# (or the configured S3 object) instead; this section is not reloaded.
scheduler:
  global_slots: 10
  default:
    slots: 4
    strategy: fifo
  leechers:
    slots: 2
    strategy: fifo
  groups: []
`

// InitConfig writes the sample configuration file to the default XDG
// location, refusing to overwrite an existing file unless force is
// true.
func InitConfig(force bool) (string, error) {
	return InitConfigToPath(GetDefaultConfigPath(), force)
}

// InitConfigToPath writes the sample configuration file to path,
// creating parent directories as needed.
func InitConfigToPath(path string, force bool) (string, error) {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(sampleConfigTemplate), 0o644); err != nil {
		return "", fmt.Errorf("write config file: %w", err)
	}
	return path, nil
}
