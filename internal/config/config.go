package config

import "time"

// Deployment modes for endpoint resolution.
const (
	DeploymentHosted = "hosted"
	DeploymentLocal  = "local"
)

// Config is the root configuration for a signaling client.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Connection ConnectionConfig `yaml:"connection"`
	Session    SessionConfig    `yaml:"session"`
	Logging    LoggingConfig    `yaml:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Relay      RelayConfig      `yaml:"relay"`
}

// ServerConfig locates the signaling endpoint.
type ServerConfig struct {
	Deployment string `yaml:"deployment"` // "hosted" or "local"
	Host       string `yaml:"host"`       // Hosted origin host (e.g., app.example.com)
	Scheme     string `yaml:"scheme"`     // "wss" or "ws" (hosted only)
	Path       string `yaml:"path"`       // WebSocket path (e.g., /ws)
	LocalHost  string `yaml:"local_host"` // Local dev host
	LocalPort  int    `yaml:"local_port"` // Local dev server port
}

// ConnectionConfig holds Connection Manager timing.
type ConnectionConfig struct {
	ConnectTimeout       time.Duration `yaml:"connect_timeout"`
	ReconnectDelay       time.Duration `yaml:"reconnect_delay"`
	MaxReconnectAttempts int           `yaml:"max_reconnect_attempts"`
	SendRetryDelay       time.Duration `yaml:"send_retry_delay"`
	WriteTimeout         time.Duration `yaml:"write_timeout"`
	PingInterval         time.Duration `yaml:"ping_interval"`
	PingTimeout          time.Duration `yaml:"ping_timeout"`
	BufferSize           int           `yaml:"buffer_size"`
}

// SessionConfig identifies the local participant (used by dev tooling).
type SessionConfig struct {
	PracticeID    int64  `yaml:"practice_id"`
	UserID        int64  `yaml:"user_id"`
	UserName      string `yaml:"user_name"`
	RoomID        string `yaml:"room_id"`
	AppointmentID int64  `yaml:"appointment_id"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// MetricsConfig holds Prometheus metrics settings.
type MetricsConfig struct {
	Port int    `yaml:"port"`
	Path string `yaml:"path"`
}

// RelayConfig holds settings for the local development relay.
type RelayConfig struct {
	Listen       string        `yaml:"listen"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	QueueSize    int           `yaml:"queue_size"`
}
