package router

import "github.com/rickgao/practice-signal/internal/protocol"

// Typed adapts a handler for one concrete frame type. The message type is
// taken from T, so the pair can be passed straight to Register:
//
//	r.Register(router.Typed(func(m *protocol.Offer) { ... }))
func Typed[T protocol.Message](fn func(T)) (protocol.MessageType, Handler) {
	var zero T
	return zero.Type(), func(msg protocol.Message) {
		if m, ok := msg.(T); ok {
			fn(m)
		}
	}
}
