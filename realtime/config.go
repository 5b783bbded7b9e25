package realtime

import (
	"fmt"

	"github.com/rickgao/practice-signal/internal/config"
)

// Configuration types, re-exported for callers outside this module.
type (
	Config           = config.Config
	ServerConfig     = config.ServerConfig
	ConnectionConfig = config.ConnectionConfig
	SessionConfig    = config.SessionConfig
	LoggingConfig    = config.LoggingConfig
	MetricsConfig    = config.MetricsConfig
	RelayConfig      = config.RelayConfig
)

// Deployment modes for endpoint resolution.
const (
	DeploymentHosted = config.DeploymentHosted
	DeploymentLocal  = config.DeploymentLocal
)

// DefaultConfig returns a Config with every default applied. The default
// deployment is hosted, so Server.Host must be set (or Server.Deployment
// switched to DeploymentLocal) before it passes validation.
func DefaultConfig() *Config {
	return config.Default()
}

// LoadConfig reads a YAML file, expands ${VAR} references, applies defaults
// and validates the result.
func LoadConfig(path string) (*Config, error) {
	return config.LoadAndValidate(path)
}

// ParseConfig is LoadConfig for YAML already in memory.
func ParseConfig(data []byte) (*Config, error) {
	cfg, err := config.Parse(data)
	if err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}
