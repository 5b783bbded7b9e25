package telemedicine

import (
	"log/slog"

	"github.com/rickgao/practice-signal/internal/protocol"
	"github.com/rickgao/practice-signal/internal/router"
)

// Conn is the part of the connection manager the adapter uses.
type Conn interface {
	Connect()
	SendMessage(msg protocol.Message) bool
	RegisterHandler(t protocol.MessageType, fn router.Handler) *router.Subscription
	EnableService(name protocol.ServiceName)
	DisableService(name protocol.ServiceName)
}

// Adapter builds telemedicine frames and tracks the handlers it registers.
// Every Send method reports whether the frame was handed to the transport,
// not whether a peer received it.
type Adapter struct {
	conn   Conn
	logger *slog.Logger
	subs   router.Group
}

// New creates a telemedicine adapter over conn.
func New(conn Conn, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{
		conn:   conn,
		logger: logger.With("service", protocol.ServiceTelemedicine),
	}
}

// Connect enables the telemedicine service and connects the shared connection.
func (a *Adapter) Connect() {
	a.conn.EnableService(protocol.ServiceTelemedicine)
	a.conn.Connect()
}

// JoinRoom announces the user to the room.
func (a *Adapter) JoinRoom(roomID string, appointmentID, userID int64, userName string) bool {
	a.logger.Debug("joining room", "room_id", roomID, "appointment_id", appointmentID, "user_id", userID)
	return a.conn.SendMessage(&protocol.UserJoined{
		RoomID:        roomID,
		AppointmentID: appointmentID,
		UserID:        userID,
		UserName:      userName,
	})
}

// LeaveRoom announces that the user left the room.
func (a *Adapter) LeaveRoom(roomID string, appointmentID, userID int64) bool {
	a.logger.Debug("leaving room", "room_id", roomID, "appointment_id", appointmentID, "user_id", userID)
	return a.conn.SendMessage(&protocol.UserLeft{
		RoomID:        roomID,
		AppointmentID: appointmentID,
		UserID:        userID,
	})
}

// SendOffer relays an SDP offer.
func (a *Adapter) SendOffer(roomID string, appointmentID int64, offer protocol.SessionDescription, from string) bool {
	return a.conn.SendMessage(&protocol.Offer{
		RoomID:        roomID,
		AppointmentID: appointmentID,
		Offer:         offer,
		From:          from,
	})
}

// SendAnswer relays an SDP answer.
func (a *Adapter) SendAnswer(roomID string, appointmentID int64, answer protocol.SessionDescription, from string) bool {
	return a.conn.SendMessage(&protocol.Answer{
		RoomID:        roomID,
		AppointmentID: appointmentID,
		Answer:        answer,
		From:          from,
	})
}

// SendIceCandidate relays a trickled ICE candidate.
func (a *Adapter) SendIceCandidate(roomID string, appointmentID int64, candidate protocol.ICECandidateInit, from string) bool {
	return a.conn.SendMessage(&protocol.ICECandidate{
		RoomID:        roomID,
		AppointmentID: appointmentID,
		Candidate:     candidate,
		From:          from,
	})
}

// SendChatMessage sends an in-call chat line.
func (a *Adapter) SendChatMessage(roomID string, appointmentID int64, message, from string, fromUserID int64) bool {
	return a.conn.SendMessage(&protocol.ChatMessage{
		RoomID:        roomID,
		AppointmentID: appointmentID,
		Message:       message,
		From:          from,
		FromUserID:    fromUserID,
	})
}

// OnOffer subscribes to SDP offers from any room.
func (a *Adapter) OnOffer(fn func(m *protocol.Offer)) *router.Subscription {
	return a.subs.Add(a.conn.RegisterHandler(router.Typed(fn)))
}

// OnAnswer subscribes to SDP answers from any room.
func (a *Adapter) OnAnswer(fn func(m *protocol.Answer)) *router.Subscription {
	return a.subs.Add(a.conn.RegisterHandler(router.Typed(fn)))
}

// OnIceCandidate subscribes to trickled ICE candidates.
func (a *Adapter) OnIceCandidate(fn func(m *protocol.ICECandidate)) *router.Subscription {
	return a.subs.Add(a.conn.RegisterHandler(router.Typed(fn)))
}

// OnUserJoined subscribes to participants entering a room.
func (a *Adapter) OnUserJoined(fn func(m *protocol.UserJoined)) *router.Subscription {
	return a.subs.Add(a.conn.RegisterHandler(router.Typed(fn)))
}

// OnUserLeft subscribes to participants leaving a room.
func (a *Adapter) OnUserLeft(fn func(m *protocol.UserLeft)) *router.Subscription {
	return a.subs.Add(a.conn.RegisterHandler(router.Typed(fn)))
}

// OnChatMessage subscribes to in-call chat.
func (a *Adapter) OnChatMessage(fn func(m *protocol.ChatMessage)) *router.Subscription {
	return a.subs.Add(a.conn.RegisterHandler(router.Typed(fn)))
}

// Disconnect releases every handler registered through this adapter, its
// rooms included, and disables the telemedicine service. The shared
// connection stays open for other services.
func (a *Adapter) Disconnect() {
	n := a.subs.Len()
	a.subs.Release()
	a.conn.DisableService(protocol.ServiceTelemedicine)
	a.logger.Debug("telemedicine disconnected", "released", n)
}
