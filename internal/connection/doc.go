// Package connection implements the Connection Manager component.
//
// The Connection Manager:
//   - Owns exactly one WebSocket connection shared by every service
//   - Drives a status state machine (disconnected, connecting, connected,
//     reconnecting, error) and notifies listeners of each transition
//   - Reconnects after abnormal closures with a fixed delay, up to a ceiling
//   - Decodes inbound frames and hands them to the router.Registry
//   - Never surfaces transport failure as an error or panic to callers
package connection
