package config

import (
	"strconv"
	"time"
)

// Default values for optional configuration fields.
const (
	DefaultDeployment           = DeploymentHosted
	DefaultScheme               = "wss"
	DefaultPath                 = "/ws"
	DefaultLocalHost            = "localhost"
	DefaultLocalPort            = 5000
	DefaultConnectTimeout       = 5 * time.Second
	DefaultReconnectDelay       = 3 * time.Second
	DefaultMaxReconnectAttempts = 5
	DefaultSendRetryDelay       = 1 * time.Second
	DefaultWriteTimeout         = 5 * time.Second
	DefaultPingInterval         = 30 * time.Second
	DefaultPingTimeout          = 60 * time.Second
	DefaultBufferSize           = 256
	DefaultLogLevel             = "info"
	DefaultLogFormat            = "text"
	DefaultMetricsPort          = 9090
	DefaultMetricsPath          = "/metrics"
	DefaultRelayWriteTimeout    = 5 * time.Second
	DefaultRelayQueueSize       = 64
)

// Default returns a Config with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills zero-valued optional fields.
func (c *Config) ApplyDefaults() {
	// Server defaults
	if c.Server.Deployment == "" {
		c.Server.Deployment = DefaultDeployment
	}
	if c.Server.Scheme == "" {
		c.Server.Scheme = DefaultScheme
	}
	if c.Server.Path == "" {
		c.Server.Path = DefaultPath
	}
	if c.Server.LocalHost == "" {
		c.Server.LocalHost = DefaultLocalHost
	}
	if c.Server.LocalPort == 0 {
		c.Server.LocalPort = DefaultLocalPort
	}

	// Connection defaults
	if c.Connection.ConnectTimeout == 0 {
		c.Connection.ConnectTimeout = DefaultConnectTimeout
	}
	if c.Connection.ReconnectDelay == 0 {
		c.Connection.ReconnectDelay = DefaultReconnectDelay
	}
	if c.Connection.MaxReconnectAttempts == 0 {
		c.Connection.MaxReconnectAttempts = DefaultMaxReconnectAttempts
	}
	if c.Connection.SendRetryDelay == 0 {
		c.Connection.SendRetryDelay = DefaultSendRetryDelay
	}
	if c.Connection.WriteTimeout == 0 {
		c.Connection.WriteTimeout = DefaultWriteTimeout
	}
	if c.Connection.PingInterval == 0 {
		c.Connection.PingInterval = DefaultPingInterval
	}
	if c.Connection.PingTimeout == 0 {
		c.Connection.PingTimeout = DefaultPingTimeout
	}
	if c.Connection.BufferSize == 0 {
		c.Connection.BufferSize = DefaultBufferSize
	}

	// Logging defaults
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}

	// Metrics defaults
	if c.Metrics.Port == 0 {
		c.Metrics.Port = DefaultMetricsPort
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}

	// Relay defaults
	if c.Relay.Listen == "" {
		c.Relay.Listen = ":" + strconv.Itoa(c.Server.LocalPort)
	}
	if c.Relay.WriteTimeout == 0 {
		c.Relay.WriteTimeout = DefaultRelayWriteTimeout
	}
	if c.Relay.QueueSize == 0 {
		c.Relay.QueueSize = DefaultRelayQueueSize
	}
}
