package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/rickgao/practice-signal/internal/protocol"
)

const namespace = "signal"

// Metrics holds the collectors for one Connection Manager.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	FramesSent        *prometheus.CounterVec
	FramesReceived    *prometheus.CounterVec
	FramesDropped     *prometheus.CounterVec
	FramesDispatched  *prometheus.CounterVec
	HandlerCalls      *prometheus.CounterVec
	ReconnectAttempts prometheus.Counter
	HandlerPanics     *prometheus.CounterVec
	Status            *prometheus.GaugeVec
}

// New creates the collectors and registers them on reg (nil = not registered).
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FramesSent: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "frames_sent_total",
				Help:      "Total number of frames written to the signaling connection",
			},
			[]string{"type"},
		),
		FramesReceived: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "frames_received_total",
				Help:      "Total number of frames read from the signaling connection",
			},
			[]string{"type"},
		),
		FramesDropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "frames_dropped_total",
				Help:      "Total number of frames dropped before delivery or transmission",
			},
			[]string{"type", "reason"},
		),
		FramesDispatched: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "frames_dispatched_total",
				Help:      "Total number of inbound frames delivered to at least one handler",
			},
			[]string{"type"},
		),
		HandlerCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "handler_calls_total",
				Help:      "Total number of message handler invocations",
			},
			[]string{"type"},
		),
		ReconnectAttempts: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reconnect_attempts_total",
				Help:      "Total number of scheduled reconnect attempts",
			},
		),
		HandlerPanics: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "handler_panics_total",
				Help:      "Total number of recovered message handler panics",
			},
			[]string{"type"},
		),
		Status: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "connection_status",
				Help:      "1 for the current connection status, 0 otherwise",
			},
			[]string{"status"},
		),
	}

	if reg != nil {
		reg.MustRegister(
			m.FramesSent,
			m.FramesReceived,
			m.FramesDropped,
			m.FramesDispatched,
			m.HandlerCalls,
			m.ReconnectAttempts,
			m.HandlerPanics,
			m.Status,
		)
	}
	return m
}

// Sent counts a transmitted frame.
func (m *Metrics) Sent(t protocol.MessageType) {
	if m == nil {
		return
	}
	m.FramesSent.WithLabelValues(string(t)).Inc()
}

// Received counts an inbound frame. Unparseable frames use type "invalid".
func (m *Metrics) Received(t protocol.MessageType) {
	if m == nil {
		return
	}
	if t == "" {
		t = "invalid"
	}
	m.FramesReceived.WithLabelValues(string(t)).Inc()
}

// Dropped counts a frame that was not delivered or not transmitted.
func (m *Metrics) Dropped(t protocol.MessageType, reason string) {
	if m == nil {
		return
	}
	if t == "" {
		t = "invalid"
	}
	m.FramesDropped.WithLabelValues(string(t), reason).Inc()
}

// Reconnect counts a scheduled reconnect attempt.
func (m *Metrics) Reconnect() {
	if m == nil {
		return
	}
	m.ReconnectAttempts.Inc()
}

// SetStatus marks status as current and clears the other known statuses.
func (m *Metrics) SetStatus(current string, all []string) {
	if m == nil {
		return
	}
	for _, s := range all {
		v := 0.0
		if s == current {
			v = 1
		}
		m.Status.WithLabelValues(s).Set(v)
	}
}

// MessageDispatched implements router.Observer.
func (m *Metrics) MessageDispatched(t protocol.MessageType, handlers int) {
	if m == nil {
		return
	}
	m.FramesDispatched.WithLabelValues(string(t)).Inc()
	m.HandlerCalls.WithLabelValues(string(t)).Add(float64(handlers))
}

// MessageDropped implements router.Observer.
func (m *Metrics) MessageDropped(t protocol.MessageType, reason string) {
	m.Dropped(t, reason)
}

// HandlerPanicked implements router.Observer.
func (m *Metrics) HandlerPanicked(t protocol.MessageType) {
	if m == nil {
		return
	}
	m.HandlerPanics.WithLabelValues(string(t)).Inc()
}
