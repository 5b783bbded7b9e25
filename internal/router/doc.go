// Package router implements the handler registry behind the Connection Manager.
//
// The Registry:
//   - Maps each message type to an ordered list of handlers
//   - Returns an identity-based Subscription for every registration
//   - Gates delivery per service (a disabled service drops its frames)
//   - Dispatches over a snapshot so handlers may unsubscribe mid-callback
//   - Recovers panics per handler so siblings and later frames still run
package router
