package router

import (
	"sync"

	"github.com/rickgao/practice-signal/internal/protocol"
)

// Subscription is the handle for one handler registration.
type Subscription struct {
	registry *Registry
	msgType  protocol.MessageType
	id       uint64
	once     sync.Once
}

// Type returns the subscribed message type.
func (s *Subscription) Type() protocol.MessageType {
	if s == nil {
		return ""
	}
	return s.msgType
}

// Unsubscribe removes exactly this handler. Safe to call more than once and on nil.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.registry == nil {
		return
	}
	s.once.Do(func() {
		if s.registry.remove(s.msgType, s.id) {
			s.registry.logger.Debug("handler unregistered", "type", s.msgType, "id", s.id)
		}
	})
}

// Group tracks subscriptions that are released together, typically by the
// owning component's teardown.
type Group struct {
	mu   sync.Mutex
	subs []*Subscription
}

// Add tracks a subscription and returns it.
func (g *Group) Add(s *Subscription) *Subscription {
	if s == nil {
		return nil
	}
	g.mu.Lock()
	g.subs = append(g.subs, s)
	g.mu.Unlock()
	return s
}

// Len returns the number of tracked subscriptions.
func (g *Group) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.subs)
}

// Release unsubscribes everything tracked so far. The group stays usable.
func (g *Group) Release() {
	g.mu.Lock()
	subs := g.subs
	g.subs = nil
	g.mu.Unlock()

	for _, s := range subs {
		s.Unsubscribe()
	}
}
