// Package whiteboard is the collaborative whiteboard service on the shared
// signaling connection.
//
// Updates carry a practice id (the tenant) and a free-form payload that the
// whiteboard UI owns. The adapter never interprets the payload.
//
// Usage:
//
//	wb := whiteboard.New(manager, logger)
//	wb.Connect()
//	wb.OnUpdateForPractice(42, func(u *protocol.WhiteboardUpdate) { ... })
//	wb.SendUpdate(42, stroke)
//	defer wb.Disconnect()
package whiteboard
