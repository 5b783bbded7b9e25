package realtime

import (
	"log/slog"
	"sync/atomic"
)

var defaultSession atomic.Pointer[Session]

// SetDefault installs s behind the package-level functions and returns the
// previously installed session. Passing nil uninstalls.
func SetDefault(s *Session) *Session {
	return defaultSession.Swap(s)
}

// Default returns the installed session, or nil.
func Default() *Session {
	return defaultSession.Load()
}

func current(op string) *Session {
	s := defaultSession.Load()
	if s == nil {
		slog.Warn("realtime: no default session installed", "op", op)
	}
	return s
}

// Connect connects the default session.
func Connect() {
	if s := current("connect"); s != nil {
		s.manager.Connect()
	}
}

// Disconnect disconnects the default session.
func Disconnect() {
	if s := current("disconnect"); s != nil {
		s.manager.Disconnect()
	}
}

// SendMessage sends msg on the default session.
func SendMessage(msg Message) bool {
	if s := current("send_message"); s != nil {
		return s.manager.SendMessage(msg)
	}
	return false
}

// RegisterHandler registers fn on the default session.
func RegisterHandler(t MessageType, fn Handler) *Subscription {
	if s := current("register_handler"); s != nil {
		return s.manager.RegisterHandler(t, fn)
	}
	return nil
}

// EnableService resumes delivery for a service on the default session.
func EnableService(name ServiceName) {
	if s := current("enable_service"); s != nil {
		s.manager.EnableService(name)
	}
}

// DisableService pauses delivery for a service on the default session.
func DisableService(name ServiceName) {
	if s := current("disable_service"); s != nil {
		s.manager.DisableService(name)
	}
}

// OnStatusChange subscribes to status transitions of the default session.
func OnStatusChange(fn StatusListener) func() {
	if s := current("on_status_change"); s != nil {
		return s.manager.OnStatusChange(fn)
	}
	return func() {}
}

// ConnectionStatus returns the default session's status.
func ConnectionStatus() Status {
	if s := current("status"); s != nil {
		return s.manager.Status()
	}
	return StatusDisconnected
}

// ConnectWhiteboard enables the whiteboard service and connects.
func ConnectWhiteboard() {
	if s := current("connect_whiteboard"); s != nil {
		s.whiteboard.Connect()
	}
}

// DisconnectWhiteboard releases whiteboard handlers and disables the service.
func DisconnectWhiteboard() {
	if s := current("disconnect_whiteboard"); s != nil {
		s.whiteboard.Disconnect()
	}
}

// SendWhiteboardUpdate publishes a whiteboard update.
func SendWhiteboardUpdate(practiceID int64, data any) bool {
	if s := current("send_whiteboard_update"); s != nil {
		return s.whiteboard.SendUpdate(practiceID, data)
	}
	return false
}

// OnWhiteboardUpdate subscribes to whiteboard updates.
func OnWhiteboardUpdate(fn func(u *WhiteboardUpdate)) *Subscription {
	if s := current("on_whiteboard_update"); s != nil {
		return s.whiteboard.OnUpdate(fn)
	}
	return nil
}

// ConnectTelemedicine enables the telemedicine service and connects.
func ConnectTelemedicine() {
	if s := current("connect_telemedicine"); s != nil {
		s.telemedicine.Connect()
	}
}

// DisconnectTelemedicine releases telemedicine handlers and disables the service.
func DisconnectTelemedicine() {
	if s := current("disconnect_telemedicine"); s != nil {
		s.telemedicine.Disconnect()
	}
}

// JoinRoom announces the user in a room on the default session.
func JoinRoom(roomID string, appointmentID, userID int64, userName string) bool {
	if s := current("join_room"); s != nil {
		return s.telemedicine.JoinRoom(roomID, appointmentID, userID, userName)
	}
	return false
}

// LeaveRoom announces the user leaving a room.
func LeaveRoom(roomID string, appointmentID, userID int64) bool {
	if s := current("leave_room"); s != nil {
		return s.telemedicine.LeaveRoom(roomID, appointmentID, userID)
	}
	return false
}

// SendOffer relays an SDP offer.
func SendOffer(roomID string, appointmentID int64, offer SessionDescription, from string) bool {
	if s := current("send_offer"); s != nil {
		return s.telemedicine.SendOffer(roomID, appointmentID, offer, from)
	}
	return false
}

// SendAnswer relays an SDP answer.
func SendAnswer(roomID string, appointmentID int64, answer SessionDescription, from string) bool {
	if s := current("send_answer"); s != nil {
		return s.telemedicine.SendAnswer(roomID, appointmentID, answer, from)
	}
	return false
}

// SendIceCandidate relays an ICE candidate.
func SendIceCandidate(roomID string, appointmentID int64, candidate ICECandidateInit, from string) bool {
	if s := current("send_ice_candidate"); s != nil {
		return s.telemedicine.SendIceCandidate(roomID, appointmentID, candidate, from)
	}
	return false
}

// SendChatMessage sends an in-call chat message.
func SendChatMessage(roomID string, appointmentID int64, message, from string, fromUserID int64) bool {
	if s := current("send_chat_message"); s != nil {
		return s.telemedicine.SendChatMessage(roomID, appointmentID, message, from, fromUserID)
	}
	return false
}

// OnOffer subscribes to SDP offers on the default session.
func OnOffer(fn func(m *Offer)) *Subscription {
	if s := current("on_offer"); s != nil {
		return s.telemedicine.OnOffer(fn)
	}
	return nil
}

// OnAnswer subscribes to SDP answers.
func OnAnswer(fn func(m *Answer)) *Subscription {
	if s := current("on_answer"); s != nil {
		return s.telemedicine.OnAnswer(fn)
	}
	return nil
}

// OnIceCandidate subscribes to ICE candidates.
func OnIceCandidate(fn func(m *ICECandidate)) *Subscription {
	if s := current("on_ice_candidate"); s != nil {
		return s.telemedicine.OnIceCandidate(fn)
	}
	return nil
}

// OnUserJoined subscribes to participants joining a room.
func OnUserJoined(fn func(m *UserJoined)) *Subscription {
	if s := current("on_user_joined"); s != nil {
		return s.telemedicine.OnUserJoined(fn)
	}
	return nil
}

// OnUserLeft subscribes to participants leaving a room.
func OnUserLeft(fn func(m *UserLeft)) *Subscription {
	if s := current("on_user_left"); s != nil {
		return s.telemedicine.OnUserLeft(fn)
	}
	return nil
}

// OnChatMessage subscribes to in-call chat.
func OnChatMessage(fn func(m *ChatMessage)) *Subscription {
	if s := current("on_chat_message"); s != nil {
		return s.telemedicine.OnChatMessage(fn)
	}
	return nil
}
