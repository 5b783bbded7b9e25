package realtime

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/rickgao/practice-signal/internal/config"
	"github.com/rickgao/practice-signal/internal/connection"
	"github.com/rickgao/practice-signal/internal/metrics"
	"github.com/rickgao/practice-signal/internal/telemedicine"
	"github.com/rickgao/practice-signal/internal/version"
	"github.com/rickgao/practice-signal/internal/whiteboard"
)

// Session is one signaling connection with its service adapters.
type Session struct {
	id     string
	logger *slog.Logger

	manager      *connection.Manager
	whiteboard   *whiteboard.Adapter
	telemedicine *telemedicine.Adapter

	closeOnce sync.Once
}

type options struct {
	registerer  prometheus.Registerer
	managerOpts []connection.Option
}

// Option configures a Session.
type Option func(*options)

// WithRegisterer registers the session's metrics on reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = reg
	}
}

// WithManagerOptions passes options through to the Connection Manager.
func WithManagerOptions(opts ...connection.Option) Option {
	return func(o *options) {
		o.managerOpts = append(o.managerOpts, opts...)
	}
}

// NewSession validates cfg and builds a disconnected session. Nothing is
// dialed until Connect or the first send. A nil cfg means DefaultConfig,
// which only validates once a hosted Server.Host is known.
func NewSession(cfg *Config, logger *slog.Logger, opts ...Option) (*Session, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	id := uuid.NewString()
	logger = logger.With("session_id", id)

	managerOpts := o.managerOpts
	if o.registerer != nil {
		managerOpts = append([]connection.Option{connection.WithMetrics(metrics.New(o.registerer))}, managerOpts...)
	}

	m := connection.NewManager(managerConfig(cfg), logger, managerOpts...)

	return &Session{
		id:           id,
		logger:       logger,
		manager:      m,
		whiteboard:   whiteboard.New(m, logger),
		telemedicine: telemedicine.New(m, logger),
	}, nil
}

func managerConfig(cfg *config.Config) connection.ManagerConfig {
	c := cfg.Connection
	return connection.ManagerConfig{
		Target:               cfg.Server.URL,
		ConnectTimeout:       c.ConnectTimeout,
		ReconnectDelay:       c.ReconnectDelay,
		MaxReconnectAttempts: c.MaxReconnectAttempts,
		SendRetryDelay:       c.SendRetryDelay,
		Client: connection.ClientConfig{
			UserAgent:        version.UserAgent(),
			HandshakeTimeout: c.ConnectTimeout,
			PingInterval:     c.PingInterval,
			PingTimeout:      c.PingTimeout,
			WriteTimeout:     c.WriteTimeout,
			BufferSize:       c.BufferSize,
		},
	}
}

// ID identifies the session in logs.
func (s *Session) ID() string { return s.id }

// Manager returns the Connection Manager.
func (s *Session) Manager() *connection.Manager { return s.manager }

// Whiteboard returns the whiteboard adapter.
func (s *Session) Whiteboard() *whiteboard.Adapter { return s.whiteboard }

// Telemedicine returns the telemedicine adapter.
func (s *Session) Telemedicine() *telemedicine.Adapter { return s.telemedicine }

// Close releases every adapter handler and disconnects. Safe to call repeatedly.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.whiteboard.Disconnect()
		s.telemedicine.Disconnect()
		s.manager.Disconnect()
		s.logger.Info("session closed")
	})
}
