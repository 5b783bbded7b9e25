// Package relay is a small rebroadcast server that speaks the signaling frame
// protocol. It stands in for the production endpoint in tests and local
// development.
//
// Each WebSocket connection is a peer with a random id. The relay learns
// membership from the frames a peer sends:
//   - a telemedicine frame puts the peer in that {roomId, appointmentId} room
//   - a whiteboard update puts the peer in that practice
//
// Every valid frame is forwarded unchanged to the other members of its room
// or practice, never back to the sender. telemedicine_user_left removes the
// sender from the room after forwarding. When a peer that announced itself
// with telemedicine_user_joined disconnects, the relay sends the matching
// telemedicine_user_left on its behalf.
//
// Writes go through a per-peer outbox drained by one writer goroutine. A peer
// whose outbox hits its limit is disconnected rather than allowed to stall
// the others.
package relay
