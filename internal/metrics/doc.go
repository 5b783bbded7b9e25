// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - Signaling connection status and reconnect attempts
//   - Frames sent, received and dropped (by reason)
//   - Handler panics per message type
//
// Collectors are registered on a caller-supplied Registerer so several
// sessions (or tests) can coexist in one process.
package metrics
