package whiteboard

import (
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/rickgao/practice-signal/internal/protocol"
	"github.com/rickgao/practice-signal/internal/router"
)

var errInvalidPayload = errors.New("payload is not valid JSON")

// Conn is the part of the connection manager the adapter uses.
type Conn interface {
	Connect()
	SendMessage(msg protocol.Message) bool
	RegisterHandler(t protocol.MessageType, fn router.Handler) *router.Subscription
	EnableService(name protocol.ServiceName)
	DisableService(name protocol.ServiceName)
}

// Adapter sends and receives whiteboard updates.
type Adapter struct {
	conn   Conn
	logger *slog.Logger
	subs   router.Group
}

// New creates a whiteboard adapter over conn.
func New(conn Conn, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{
		conn:   conn,
		logger: logger.With("service", protocol.ServiceWhiteboard),
	}
}

// Connect enables the whiteboard service and connects the shared connection.
func (a *Adapter) Connect() {
	a.conn.EnableService(protocol.ServiceWhiteboard)
	a.conn.Connect()
}

// SendUpdate publishes an update for a practice. data is marshalled to JSON
// unless it already is a json.RawMessage; nil sends no payload.
func (a *Adapter) SendUpdate(practiceID int64, data any) bool {
	payload, err := encodePayload(data)
	if err != nil {
		a.logger.Warn("dropping whiteboard update", "practice_id", practiceID, "error", err)
		return false
	}

	return a.conn.SendMessage(&protocol.WhiteboardUpdate{
		PracticeID: practiceID,
		Data:       payload,
	})
}

func encodePayload(data any) (json.RawMessage, error) {
	switch v := data.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		return v, nil
	case []byte:
		if !json.Valid(v) {
			return nil, errInvalidPayload
		}
		return json.RawMessage(v), nil
	}
	return json.Marshal(data)
}

// OnUpdate registers fn for every inbound update.
func (a *Adapter) OnUpdate(fn func(u *protocol.WhiteboardUpdate)) *router.Subscription {
	return a.subs.Add(a.conn.RegisterHandler(router.Typed(fn)))
}

// OnUpdateForPractice registers fn for updates of one practice only.
func (a *Adapter) OnUpdateForPractice(practiceID int64, fn func(u *protocol.WhiteboardUpdate)) *router.Subscription {
	return a.OnUpdate(func(u *protocol.WhiteboardUpdate) {
		if u.PracticeID == practiceID {
			fn(u)
		}
	})
}

// Disconnect releases every handler registered through this adapter and
// disables the whiteboard service. The shared connection stays open.
func (a *Adapter) Disconnect() {
	a.subs.Release()
	a.conn.DisableService(protocol.ServiceWhiteboard)
}
