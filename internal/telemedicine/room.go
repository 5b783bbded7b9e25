package telemedicine

import (
	"strconv"

	"github.com/rickgao/practice-signal/internal/protocol"
	"github.com/rickgao/practice-signal/internal/router"
)

// Participant identifies the local user in a room.
type Participant struct {
	UserID   int64
	UserName string
	// PeerID is sent as "from" on signaling frames. Defaults to the user id.
	PeerID string
}

func (p Participant) from() string {
	if p.PeerID != "" {
		return p.PeerID
	}
	return strconv.FormatInt(p.UserID, 10)
}

// Room is one call: the adapter with roomId, appointmentId and the local
// identity bound. Room handlers only see frames of this room that were not
// sent by the local participant.
type Room struct {
	adapter       *Adapter
	id            string
	appointmentID int64
	self          Participant
	subs          router.Group
}

// Room returns a helper bound to one room. It sends nothing until Join.
func (a *Adapter) Room(roomID string, appointmentID int64, self Participant) *Room {
	return &Room{
		adapter:       a,
		id:            roomID,
		appointmentID: appointmentID,
		self:          self,
	}
}

// ID returns the room id.
func (r *Room) ID() string { return r.id }

// AppointmentID returns the appointment the room belongs to.
func (r *Room) AppointmentID() int64 { return r.appointmentID }

// Self returns the local participant.
func (r *Room) Self() Participant { return r.self }

// Join announces the local participant.
func (r *Room) Join() bool {
	return r.adapter.JoinRoom(r.id, r.appointmentID, r.self.UserID, r.self.UserName)
}

// Leave announces departure and releases the room's handlers.
func (r *Room) Leave() bool {
	r.subs.Release()
	return r.adapter.LeaveRoom(r.id, r.appointmentID, r.self.UserID)
}

// SendOffer sends an offer from the local participant.
func (r *Room) SendOffer(offer protocol.SessionDescription) bool {
	return r.adapter.SendOffer(r.id, r.appointmentID, offer, r.self.from())
}

// SendAnswer sends an answer from the local participant.
func (r *Room) SendAnswer(answer protocol.SessionDescription) bool {
	return r.adapter.SendAnswer(r.id, r.appointmentID, answer, r.self.from())
}

// SendIceCandidate sends an ICE candidate from the local participant.
func (r *Room) SendIceCandidate(candidate protocol.ICECandidateInit) bool {
	return r.adapter.SendIceCandidate(r.id, r.appointmentID, candidate, r.self.from())
}

// SendChatMessage sends chat as the local participant.
func (r *Room) SendChatMessage(message string) bool {
	return r.adapter.SendChatMessage(r.id, r.appointmentID, message, r.self.from(), r.self.UserID)
}

// OnOffer subscribes to offers in this room from other participants.
func (r *Room) OnOffer(fn func(m *protocol.Offer)) *router.Subscription {
	return r.subs.Add(r.adapter.OnOffer(func(m *protocol.Offer) {
		if r.contains(m) && m.From != r.self.from() {
			fn(m)
		}
	}))
}

// OnAnswer subscribes to answers in this room from other participants.
func (r *Room) OnAnswer(fn func(m *protocol.Answer)) *router.Subscription {
	return r.subs.Add(r.adapter.OnAnswer(func(m *protocol.Answer) {
		if r.contains(m) && m.From != r.self.from() {
			fn(m)
		}
	}))
}

// OnIceCandidate subscribes to ICE candidates in this room from other participants.
func (r *Room) OnIceCandidate(fn func(m *protocol.ICECandidate)) *router.Subscription {
	return r.subs.Add(r.adapter.OnIceCandidate(func(m *protocol.ICECandidate) {
		if r.contains(m) && m.From != r.self.from() {
			fn(m)
		}
	}))
}

// OnUserJoined subscribes to other participants joining this room.
func (r *Room) OnUserJoined(fn func(m *protocol.UserJoined)) *router.Subscription {
	return r.subs.Add(r.adapter.OnUserJoined(func(m *protocol.UserJoined) {
		if r.contains(m) && m.UserID != r.self.UserID {
			fn(m)
		}
	}))
}

// OnUserLeft subscribes to other participants leaving this room.
func (r *Room) OnUserLeft(fn func(m *protocol.UserLeft)) *router.Subscription {
	return r.subs.Add(r.adapter.OnUserLeft(func(m *protocol.UserLeft) {
		if r.contains(m) && m.UserID != r.self.UserID {
			fn(m)
		}
	}))
}

// OnChatMessage subscribes to chat in this room from other participants.
func (r *Room) OnChatMessage(fn func(m *protocol.ChatMessage)) *router.Subscription {
	return r.subs.Add(r.adapter.OnChatMessage(func(m *protocol.ChatMessage) {
		if r.contains(m) && m.FromUserID != r.self.UserID {
			fn(m)
		}
	}))
}

func (r *Room) contains(m protocol.RoomScoped) bool {
	id, appt := m.Room()
	return id == r.id && appt == r.appointmentID
}
