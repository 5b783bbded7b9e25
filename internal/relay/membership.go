package relay

import "github.com/rickgao/practice-signal/internal/protocol"

// membership applies one frame to room and practice membership and collects
// the members it should be forwarded to. Runs with Server.mu held.
type membership struct {
	s       *Server
	from    *peer
	members map[string]*peer
	leave   *roomKey
}

var _ protocol.Visitor = (*membership)(nil)

func (v *membership) room(m protocol.RoomScoped) roomKey {
	id, appt := m.Room()
	key := roomKey{id: id, appointmentID: appt}
	v.members = v.s.joinRoomLocked(v.from, key)
	return key
}

func (v *membership) VisitWhiteboardUpdate(m *protocol.WhiteboardUpdate) {
	v.members = v.s.joinPracticeLocked(v.from, m.PracticeID)
}

func (v *membership) VisitOffer(m *protocol.Offer)               { v.room(m) }
func (v *membership) VisitAnswer(m *protocol.Answer)             { v.room(m) }
func (v *membership) VisitICECandidate(m *protocol.ICECandidate) { v.room(m) }
func (v *membership) VisitChatMessage(m *protocol.ChatMessage)   { v.room(m) }

func (v *membership) VisitUserJoined(m *protocol.UserJoined) {
	key := v.room(m)
	member := v.from.rooms[key]
	member.announced = true
	member.userID = m.UserID
}

func (v *membership) VisitUserLeft(m *protocol.UserLeft) {
	key := v.room(m)
	v.leave = &key
}
