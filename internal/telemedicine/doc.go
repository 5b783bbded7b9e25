// Package telemedicine carries WebRTC call signaling and in-call chat over
// the shared signaling connection.
//
// The channel only sets up the peer-to-peer media path: offers, answers and
// ICE candidates are relayed to the other participants of a room, keyed by
// {roomId, appointmentId}. Media never flows through it.
//
// Adapter exposes one verb per outbound frame and one subscription per
// inbound frame. Room binds the correlation fields and the caller's identity
// for the common case of a single call:
//
//	room := tm.Room("room1", 42, telemedicine.Participant{UserID: 7, UserName: "Dr. Lee"})
//	room.OnOffer(func(o *protocol.Offer) { ... })
//	room.Join()
//	defer room.Leave()
package telemedicine
