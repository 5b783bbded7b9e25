package connection

// Status is the connection status of a Manager.
type Status int

const (
	// StatusDisconnected means no connection is open or being opened.
	StatusDisconnected Status = iota

	// StatusConnecting means a handshake is in flight.
	StatusConnecting

	// StatusConnected means the connection is open.
	StatusConnected

	// StatusReconnecting means a reconnect is scheduled after an abnormal closure.
	StatusReconnecting

	// StatusError means the last attempt failed. It is terminal once the
	// reconnect ceiling is reached, until Disconnect or Connect is called.
	StatusError
)

// String returns the string representation of a Status.
func (s Status) String() string {
	switch s {
	case StatusDisconnected:
		return "disconnected"
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	case StatusReconnecting:
		return "reconnecting"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

var allStatuses = []string{
	StatusDisconnected.String(),
	StatusConnecting.String(),
	StatusConnected.String(),
	StatusReconnecting.String(),
	StatusError.String(),
}

// StatusListener is called synchronously for every status transition.
type StatusListener func(Status)
