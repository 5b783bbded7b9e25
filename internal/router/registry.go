package router

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/rickgao/practice-signal/internal/protocol"
)

// Registry routes decoded frames to registered handlers.
type Registry struct {
	logger   *slog.Logger
	observer Observer

	mu       sync.RWMutex
	handlers map[protocol.MessageType][]registration
	disabled map[protocol.ServiceName]bool
	nextID   uint64

	dispatched      atomic.Int64
	droppedDisabled atomic.Int64
	unhandled       atomic.Int64
	panics          atomic.Int64
}

// Option configures a Registry.
type Option func(*Registry)

// WithObserver attaches an Observer.
func WithObserver(o Observer) Option {
	return func(r *Registry) {
		r.observer = o
	}
}

// NewRegistry creates an empty registry with every service enabled.
func NewRegistry(logger *slog.Logger, opts ...Option) *Registry {
	if logger == nil {
		logger = slog.Default()
	}

	r := &Registry{
		logger:   logger,
		handlers: make(map[protocol.MessageType][]registration),
		disabled: make(map[protocol.ServiceName]bool),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register appends a handler for a message type.
func (r *Registry) Register(t protocol.MessageType, fn Handler) *Subscription {
	r.mu.Lock()
	r.nextID++
	id := r.nextID
	r.handlers[t] = append(r.handlers[t], registration{id: id, fn: fn})
	r.mu.Unlock()

	r.logger.Debug("handler registered", "type", t, "id", id)

	return &Subscription{registry: r, msgType: t, id: id}
}

// remove deletes exactly one registration, and the type's entry once empty.
func (r *Registry) remove(t protocol.MessageType, id uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	regs := r.handlers[t]
	for i, reg := range regs {
		if reg.id != id {
			continue
		}
		// Copy so in-flight snapshots keep their view.
		next := make([]registration, 0, len(regs)-1)
		next = append(next, regs[:i]...)
		next = append(next, regs[i+1:]...)
		if len(next) == 0 {
			delete(r.handlers, t)
		} else {
			r.handlers[t] = next
		}
		return true
	}
	return false
}

// HandlerCount returns the number of handlers registered for a type.
func (r *Registry) HandlerCount(t protocol.MessageType) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers[t])
}

// HasType reports whether the type has a handler list entry.
func (r *Registry) HasType(t protocol.MessageType) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.handlers[t]
	return ok
}

// EnableService lets frames of the service through.
func (r *Registry) EnableService(name protocol.ServiceName) {
	r.mu.Lock()
	delete(r.disabled, name)
	r.mu.Unlock()
	r.logger.Debug("service enabled", "service", name)
}

// DisableService drops frames of the service even if handlers exist.
func (r *Registry) DisableService(name protocol.ServiceName) {
	r.mu.Lock()
	r.disabled[name] = true
	r.mu.Unlock()
	r.logger.Debug("service disabled", "service", name)
}

// ServiceEnabled reports the gate state of a service.
func (r *Registry) ServiceEnabled(name protocol.ServiceName) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return !r.disabled[name]
}

// Dispatch delivers a frame to every handler of its type in registration order.
// It returns the number of handlers invoked.
func (r *Registry) Dispatch(msg protocol.Message) int {
	t := msg.Type()

	r.mu.RLock()
	svc, owned := protocol.ServiceFor(t)
	if owned && r.disabled[svc] {
		r.mu.RUnlock()
		r.droppedDisabled.Add(1)
		r.logger.Info("service disabled, dropping message", "type", t, "service", svc)
		if r.observer != nil {
			r.observer.MessageDropped(t, DropServiceDisabled)
		}
		return 0
	}
	snapshot := r.handlers[t]
	r.mu.RUnlock()

	if len(snapshot) == 0 {
		r.unhandled.Add(1)
		r.logger.Debug("no handlers for message", "type", t)
		if r.observer != nil {
			r.observer.MessageDropped(t, DropNoHandlers)
		}
		return 0
	}

	for _, reg := range snapshot {
		r.invoke(reg, msg)
	}

	r.dispatched.Add(1)
	if r.observer != nil {
		r.observer.MessageDispatched(t, len(snapshot))
	}
	return len(snapshot)
}

// invoke runs one handler, containing any panic.
func (r *Registry) invoke(reg registration, msg protocol.Message) {
	defer func() {
		if p := recover(); p != nil {
			r.panics.Add(1)
			r.logger.Error("message handler panicked",
				"type", msg.Type(),
				"handler_id", reg.id,
				"panic", p,
			)
			if r.observer != nil {
				r.observer.HandlerPanicked(msg.Type())
			}
		}
	}()

	reg.fn(msg)
}

// Stats returns current statistics.
func (r *Registry) Stats() Stats {
	r.mu.RLock()
	regs := 0
	for _, list := range r.handlers {
		regs += len(list)
	}
	r.mu.RUnlock()

	return Stats{
		Dispatched:      r.dispatched.Load(),
		DroppedDisabled: r.droppedDisabled.Load(),
		Unhandled:       r.unhandled.Load(),
		HandlerPanics:   r.panics.Load(),
		Registrations:   regs,
	}
}
