package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	switch c.Server.Deployment {
	case DeploymentHosted:
		if c.Server.Host == "" {
			return errors.New("server.host is required for hosted deployment")
		}
		if c.Server.Scheme != "ws" && c.Server.Scheme != "wss" {
			return fmt.Errorf("server.scheme must be ws or wss, got %q", c.Server.Scheme)
		}
	case DeploymentLocal:
		if c.Server.LocalPort < 1 || c.Server.LocalPort > 65535 {
			return fmt.Errorf("server.local_port must be between 1 and 65535, got %d", c.Server.LocalPort)
		}
	default:
		return fmt.Errorf("server.deployment must be %q or %q, got %q", DeploymentHosted, DeploymentLocal, c.Server.Deployment)
	}
	if !strings.HasPrefix(c.Server.Path, "/") {
		return fmt.Errorf("server.path must start with /, got %q", c.Server.Path)
	}

	if c.Connection.ConnectTimeout <= 0 {
		return errors.New("connection.connect_timeout must be > 0")
	}
	if c.Connection.ReconnectDelay <= 0 {
		return errors.New("connection.reconnect_delay must be > 0")
	}
	if c.Connection.MaxReconnectAttempts < 1 {
		return errors.New("connection.max_reconnect_attempts must be >= 1")
	}
	if c.Connection.SendRetryDelay <= 0 {
		return errors.New("connection.send_retry_delay must be > 0")
	}
	if c.Connection.BufferSize < 1 {
		return errors.New("connection.buffer_size must be >= 1")
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}
	if _, err := parseLevel(c.Logging.Level); err != nil {
		return err
	}

	if c.Metrics.Port < 1 || c.Metrics.Port > 65535 {
		return fmt.Errorf("metrics.port must be between 1 and 65535, got %d", c.Metrics.Port)
	}

	return nil
}
