// Package protocol defines the wire contracts exchanged over the signaling connection.
//
// Every frame is a JSON text message with:
//   - a mandatory "type" discriminant naming one of the Message variants
//   - a "timestamp" in epoch milliseconds (stamped by the sender if absent)
//   - domain correlation fields (practiceId, roomId, appointmentId, userId)
//
// Each message type belongs to exactly one service (see Services). The set of
// variants is closed: Message can only be implemented inside this package, and
// Visitor has one method per variant so adding a frame breaks every visitor at
// compile time.
package protocol
