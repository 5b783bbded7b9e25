package router

import (
	"github.com/rickgao/practice-signal/internal/protocol"
)

// Handler receives a decoded frame. Handlers for one connection run sequentially.
type Handler func(msg protocol.Message)

// Observer is notified of dispatch outcomes (used for metrics).
type Observer interface {
	MessageDispatched(t protocol.MessageType, handlers int)
	MessageDropped(t protocol.MessageType, reason string)
	HandlerPanicked(t protocol.MessageType)
}

// Drop reasons reported to the Observer.
const (
	DropServiceDisabled = "service_disabled"
	DropNoHandlers      = "no_handlers"
)

// Stats contains runtime statistics.
type Stats struct {
	Dispatched      int64 // Frames delivered to at least one handler
	DroppedDisabled int64 // Frames dropped because their service is disabled
	Unhandled       int64 // Frames with no registered handler
	HandlerPanics   int64 // Recovered handler panics
	Registrations   int   // Live handler registrations
}

// registration is one handler instance in a type's list.
type registration struct {
	id uint64
	fn Handler
}
