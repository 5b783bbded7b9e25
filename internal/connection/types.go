package connection

import (
	"errors"
	"time"
)

// Errors
var (
	ErrNotConnected    = errors.New("not connected")
	ErrStaleConnection = errors.New("connection stale (no ping)")
	ErrAlreadyClosed   = errors.New("already closed")
	ErrConnectTimeout  = errors.New("connection establishment timed out")
	ErrReconnectLimit  = errors.New("reconnect attempt limit reached")
	ErrNoTarget        = errors.New("no target configured")
)

// TimestampedMessage wraps raw message data with receive timestamp.
type TimestampedMessage struct {
	Data       []byte    // Raw message bytes from WebSocket
	ReceivedAt time.Time // Local timestamp when ReadMessage() returned
}

// ClientConfig configures a WebSocket client.
type ClientConfig struct {
	URL              string        // WebSocket URL (e.g., wss://app.example.com/ws)
	UserAgent        string        // Sent on the handshake (empty = none)
	HandshakeTimeout time.Duration // Dialer handshake timeout
	PingInterval     time.Duration // Keepalive ping interval
	PingTimeout      time.Duration // Max time without ping/pong before considering connection stale
	WriteTimeout     time.Duration // Write deadline for sends
	BufferSize       int           // Message channel buffer size
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		HandshakeTimeout: 10 * time.Second,
		PingInterval:     30 * time.Second,
		PingTimeout:      60 * time.Second,
		WriteTimeout:     5 * time.Second,
		BufferSize:       256,
	}
}

// TargetFunc resolves the endpoint for each connection attempt.
type TargetFunc func() (string, error)

// StaticTarget always resolves to url.
func StaticTarget(url string) TargetFunc {
	return func() (string, error) {
		return url, nil
	}
}

// ManagerConfig configures the Connection Manager.
type ManagerConfig struct {
	Target               TargetFunc    // Endpoint resolution (hosted vs local)
	ConnectTimeout       time.Duration // Handshake must complete within this
	ReconnectDelay       time.Duration // Fixed delay between reconnect attempts
	MaxReconnectAttempts int           // Reconnect ceiling before terminal error
	SendRetryDelay       time.Duration // Delay of the single retry for sends while not connected
	Client               ClientConfig  // Per-connection settings (URL is filled per attempt)
}

// DefaultManagerConfig returns sensible defaults.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		ConnectTimeout:       5 * time.Second,
		ReconnectDelay:       3 * time.Second,
		MaxReconnectAttempts: 5,
		SendRetryDelay:       1 * time.Second,
		Client:               DefaultClientConfig(),
	}
}

// ManagerStats provides statistics about the connection manager.
type ManagerStats struct {
	Status          Status
	Attempts        int
	FramesSent      int64
	FramesReceived  int64
	ProtocolErrors  int64
	RetriesPending  int
	Dispatched      int64
	DroppedDisabled int64
	HandlerPanics   int64
}
