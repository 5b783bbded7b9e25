package connection

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rickgao/practice-signal/internal/metrics"
	"github.com/rickgao/practice-signal/internal/protocol"
	"github.com/rickgao/practice-signal/internal/router"
)

// Drop reasons for frames that never reached the socket.
const (
	dropEncodeError       = "encode_error"
	dropWriteError        = "write_error"
	dropRetryNotConnected = "retry_not_connected"
	dropParseError        = "parse_error"
)

// Manager owns the single signaling connection and its status state machine.
//
// Manager methods never block on the network and never return transport
// errors; failures show up as status transitions and false returns.
type Manager struct {
	cfg       ManagerConfig
	logger    *slog.Logger
	registry  *router.Registry
	metrics   *metrics.Metrics
	newClient ClientFactory
	now       func() time.Time

	mu       sync.Mutex
	status   Status
	current  *attempt
	attempts int
	lastErr  error

	// One scheduled task per state: connect timeout while Connecting,
	// reconnect delay while Reconnecting. Bumping timerSeq invalidates it.
	timer    *time.Timer
	timerSeq uint64

	retries  map[uint64]*time.Timer
	retrySeq uint64

	listeners   []statusListener
	listenerSeq uint64
	pending     []Status

	// notifyMu is held while listeners run; notifier is the goroutine
	// holding it, so a listener calling back into the Manager is detected.
	notifyMu sync.Mutex
	notifier atomic.Uint64

	framesSent     atomic.Int64
	framesReceived atomic.Int64
	protocolErrors atomic.Int64
}

// attempt is one physical connection, from dial to close.
type attempt struct {
	client Client
	ctx    context.Context
	cancel context.CancelFunc
}

type statusListener struct {
	id uint64
	fn StatusListener
}

// Option configures a Manager.
type Option func(*Manager)

// WithClientFactory replaces the WebSocket client constructor.
func WithClientFactory(f ClientFactory) Option {
	return func(m *Manager) {
		m.newClient = f
	}
}

// WithMetrics records frame and status metrics.
func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Manager) {
		m.metrics = mt
	}
}

// WithClock replaces the timestamp source used for outbound frames.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a disconnected Manager with every service enabled.
func NewManager(cfg ManagerConfig, logger *slog.Logger, opts ...Option) *Manager {
	if logger == nil {
		logger = slog.Default()
	}

	defaults := DefaultManagerConfig()
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = defaults.ConnectTimeout
	}
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = defaults.ReconnectDelay
	}
	if cfg.MaxReconnectAttempts <= 0 {
		cfg.MaxReconnectAttempts = defaults.MaxReconnectAttempts
	}
	if cfg.SendRetryDelay <= 0 {
		cfg.SendRetryDelay = defaults.SendRetryDelay
	}

	m := &Manager{
		cfg:       cfg,
		logger:    logger.With("component", "connection_manager"),
		newClient: NewClient,
		now:       time.Now,
		status:    StatusDisconnected,
		retries:   make(map[uint64]*time.Timer),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.registry = router.NewRegistry(m.logger, router.WithObserver(m.metrics))
	m.metrics.SetStatus(m.status.String(), allStatuses)

	return m
}

// Connect opens the connection unless one is already open or opening.
// Once the reconnect ceiling is reached it refuses and reports StatusError
// until Disconnect is called.
func (m *Manager) Connect() {
	m.mu.Lock()
	m.connectLocked()
	m.mu.Unlock()
	m.flush()
}

func (m *Manager) connectLocked() {
	switch m.status {
	case StatusConnecting, StatusConnected:
		return
	}

	if m.attempts >= m.cfg.MaxReconnectAttempts {
		m.stopTimerLocked()
		m.lastErr = ErrReconnectLimit
		m.logger.Error("refusing to connect, reconnect limit reached",
			"attempts", m.attempts,
			"max", m.cfg.MaxReconnectAttempts,
		)
		m.setStatusLocked(StatusError)
		return
	}

	m.stopTimerLocked()
	m.dialLocked()
}

// dialLocked starts one connection attempt in the background.
func (m *Manager) dialLocked() {
	url, err := m.resolveTarget()
	if err != nil {
		m.lastErr = fmt.Errorf("resolve target: %w", err)
		m.logger.Error("failed to resolve signaling endpoint", "error", err)
		m.failLocked()
		return
	}

	cfg := m.cfg.Client
	cfg.URL = url

	ctx, cancel := context.WithCancel(context.Background())
	a := &attempt{
		client: m.newClient(cfg, m.logger),
		ctx:    ctx,
		cancel: cancel,
	}
	m.current = a

	m.setStatusLocked(StatusConnecting)
	m.armLocked(m.cfg.ConnectTimeout, func() Client {
		return m.connectTimeoutLocked(a)
	})

	m.logger.Debug("connecting", "url", url, "attempt", m.attempts+1)

	go m.run(a)
}

func (m *Manager) resolveTarget() (url string, err error) {
	if m.cfg.Target == nil {
		if m.cfg.Client.URL == "" {
			return "", ErrNoTarget
		}
		return m.cfg.Client.URL, nil
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("target panicked: %v", r)
		}
	}()
	return m.cfg.Target()
}

// run dials and, on success, pumps inbound frames until the attempt ends.
func (m *Manager) run(a *attempt) {
	err := safeConnect(a)

	m.mu.Lock()
	if m.current != a {
		m.mu.Unlock()
		a.client.Close()
		return
	}

	if err != nil {
		m.current = nil
		a.cancel()
		m.lastErr = err
		m.logger.Warn("connection attempt failed", "error", err, "attempt", m.attempts+1)
		m.failLocked()
		m.mu.Unlock()

		a.client.Close()
		m.flush()
		return
	}

	m.stopTimerLocked()
	m.attempts = 0
	m.lastErr = nil
	m.setStatusLocked(StatusConnected)
	m.logger.Info("connected")
	m.mu.Unlock()
	m.flush()

	m.pump(a)
}

func safeConnect(a *attempt) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("connect panicked: %v", r)
		}
	}()
	return a.client.Connect(a.ctx)
}

func (m *Manager) connectTimeoutLocked(a *attempt) Client {
	if m.current != a || m.status != StatusConnecting {
		return nil
	}

	m.current = nil
	a.cancel()
	m.lastErr = ErrConnectTimeout
	m.logger.Warn("connection timed out", "timeout", m.cfg.ConnectTimeout)
	m.failLocked()

	return a.client
}

// failLocked handles a dial that never opened.
func (m *Manager) failLocked() {
	m.setStatusLocked(StatusError)
	m.scheduleReconnectLocked()
}

// scheduleReconnectLocked counts one failure and either arms the reconnect
// timer or gives up.
func (m *Manager) scheduleReconnectLocked() {
	m.attempts++

	if m.attempts >= m.cfg.MaxReconnectAttempts {
		m.stopTimerLocked()
		m.logger.Error("giving up on reconnect",
			"attempts", m.attempts,
			"last_error", m.lastErr,
		)
		m.lastErr = ErrReconnectLimit
		m.setStatusLocked(StatusError)
		return
	}

	m.metrics.Reconnect()
	m.setStatusLocked(StatusReconnecting)
	m.logger.Info("reconnecting",
		"attempt", m.attempts,
		"max", m.cfg.MaxReconnectAttempts,
		"delay", m.cfg.ReconnectDelay,
	)
	m.armLocked(m.cfg.ReconnectDelay, func() Client {
		m.connectLocked()
		return nil
	})
}

// armLocked replaces the state timer. fire runs with m.mu held; a Client it
// returns is closed after the lock is released.
func (m *Manager) armLocked(d time.Duration, fire func() Client) {
	m.stopTimerLocked()
	seq := m.timerSeq

	m.timer = time.AfterFunc(d, func() {
		m.mu.Lock()
		if seq != m.timerSeq {
			m.mu.Unlock()
			return
		}
		m.timer = nil
		stale := fire()
		m.mu.Unlock()

		if stale != nil {
			stale.Close()
		}
		m.flush()
	})
}

func (m *Manager) stopTimerLocked() {
	m.timerSeq++
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

// pump reads frames until the connection ends or the attempt is cancelled.
func (m *Manager) pump(a *attempt) {
	defer a.client.Close()

	for {
		select {
		case <-a.ctx.Done():
			return
		case msg := <-a.client.Messages():
			m.handleFrame(a, msg)
		case err := <-a.client.Errors():
			m.drain(a)
			m.handleClose(a, err)
			return
		}
	}
}

// drain delivers frames that were read before the connection ended.
func (m *Manager) drain(a *attempt) {
	for {
		select {
		case msg := <-a.client.Messages():
			m.handleFrame(a, msg)
		default:
			return
		}
	}
}

func (m *Manager) handleFrame(a *attempt, raw TimestampedMessage) {
	if a.ctx.Err() != nil {
		return
	}

	m.framesReceived.Add(1)

	msg, err := protocol.Decode(raw.Data)
	if err != nil {
		m.protocolErrors.Add(1)
		m.metrics.Received("")
		m.metrics.Dropped("", dropParseError)
		m.logger.Warn("dropping unparseable frame",
			"error", err,
			"size", len(raw.Data),
		)
		return
	}

	m.metrics.Received(msg.Type())
	m.registry.Dispatch(msg)
}

func (m *Manager) handleClose(a *attempt, err error) {
	code := closeCode(err)

	m.mu.Lock()
	if m.current != a {
		m.mu.Unlock()
		return
	}
	m.current = nil
	a.cancel()

	if code == websocket.CloseNormalClosure {
		m.logger.Info("connection closed by server")
		m.setStatusLocked(StatusDisconnected)
	} else {
		m.lastErr = err
		m.logger.Warn("connection lost", "code", code, "error", err)
		m.scheduleReconnectLocked()
	}
	m.mu.Unlock()

	m.flush()
}

// SendMessage stamps and transmits msg. It returns true only when the frame
// was written to an open connection. While not connected it starts
// connecting, retries the send once after SendRetryDelay and returns false;
// a retry that still finds no connection drops the frame.
func (m *Manager) SendMessage(msg protocol.Message) bool {
	data, err := m.encode(msg)
	if err != nil {
		m.logger.Warn("dropping outbound frame", "error", err)
		if msg != nil {
			m.metrics.Dropped(msg.Type(), dropEncodeError)
		}
		return false
	}
	t := msg.Type()

	m.mu.Lock()
	if m.status == StatusConnected && m.current != nil {
		c := m.current.client
		m.mu.Unlock()
		return m.write(c, t, data)
	}

	m.connectLocked()
	m.scheduleRetryLocked(t, data)
	m.mu.Unlock()
	m.flush()

	m.logger.Debug("not connected, send deferred", "type", t, "delay", m.cfg.SendRetryDelay)
	return false
}

func (m *Manager) encode(msg protocol.Message) (data []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", protocol.ErrNilMessage, r)
		}
	}()

	if msg == nil {
		return nil, protocol.ErrNilMessage
	}
	if protocol.Timestamp(msg) == 0 {
		protocol.SetTimestamp(msg, m.now().UnixMilli())
	}
	return protocol.Encode(msg)
}

func (m *Manager) write(c Client, t protocol.MessageType, data []byte) bool {
	if err := c.Send(data); err != nil {
		m.logger.Warn("write failed", "type", t, "error", err)
		m.metrics.Dropped(t, dropWriteError)
		return false
	}
	m.framesSent.Add(1)
	m.metrics.Sent(t)
	return true
}

func (m *Manager) scheduleRetryLocked(t protocol.MessageType, data []byte) {
	m.retrySeq++
	id := m.retrySeq
	m.retries[id] = time.AfterFunc(m.cfg.SendRetryDelay, func() {
		m.retry(id, t, data)
	})
}

func (m *Manager) retry(id uint64, t protocol.MessageType, data []byte) {
	m.mu.Lock()
	if _, ok := m.retries[id]; !ok {
		m.mu.Unlock()
		return
	}
	delete(m.retries, id)

	var c Client
	if m.status == StatusConnected && m.current != nil {
		c = m.current.client
	}
	status := m.status
	m.mu.Unlock()

	if c == nil {
		m.logger.Warn("dropping deferred frame, still not connected", "type", t, "status", status)
		m.metrics.Dropped(t, dropRetryNotConnected)
		return
	}
	m.write(c, t, data)
}

// Disconnect cancels pending timers and retries, closes the connection with
// a normal closure and resets the reconnect counter. Safe to call repeatedly.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	m.stopTimerLocked()
	for id, t := range m.retries {
		t.Stop()
		delete(m.retries, id)
	}

	var c Client
	if a := m.current; a != nil {
		m.current = nil
		a.cancel()
		c = a.client
	}

	m.attempts = 0
	m.lastErr = nil
	m.setStatusLocked(StatusDisconnected)
	m.mu.Unlock()

	if c != nil {
		c.Close()
		m.logger.Info("disconnected")
	}
	m.flush()
}

// RegisterHandler adds fn to the handlers for t.
func (m *Manager) RegisterHandler(t protocol.MessageType, fn router.Handler) *router.Subscription {
	return m.registry.Register(t, fn)
}

// EnableService resumes delivery for a service's message types.
func (m *Manager) EnableService(name protocol.ServiceName) {
	m.registry.EnableService(name)
}

// DisableService drops inbound frames of a service's message types.
func (m *Manager) DisableService(name protocol.ServiceName) {
	m.registry.DisableService(name)
}

// ServiceEnabled reports whether a service is delivering frames.
func (m *Manager) ServiceEnabled(name protocol.ServiceName) bool {
	return m.registry.ServiceEnabled(name)
}

// OnStatusChange registers a listener for status transitions and returns a
// function that removes it.
func (m *Manager) OnStatusChange(fn StatusListener) func() {
	if fn == nil {
		return func() {}
	}

	m.mu.Lock()
	m.listenerSeq++
	id := m.listenerSeq
	m.listeners = append(m.listeners, statusListener{id: id, fn: fn})
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			for i, l := range m.listeners {
				if l.id == id {
					m.listeners = append(m.listeners[:i:i], m.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// Status returns the current status.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Attempts returns the number of consecutive failed attempts.
func (m *Manager) Attempts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attempts
}

// LastError returns the error behind the most recent failure, or nil.
func (m *Manager) LastError() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

// Stats returns current statistics.
func (m *Manager) Stats() ManagerStats {
	m.mu.Lock()
	status := m.status
	attempts := m.attempts
	retries := len(m.retries)
	m.mu.Unlock()

	rs := m.registry.Stats()

	return ManagerStats{
		Status:          status,
		Attempts:        attempts,
		FramesSent:      m.framesSent.Load(),
		FramesReceived:  m.framesReceived.Load(),
		ProtocolErrors:  m.protocolErrors.Load(),
		RetriesPending:  retries,
		Dispatched:      rs.Dispatched,
		DroppedDisabled: rs.DroppedDisabled,
		HandlerPanics:   rs.HandlerPanics,
	}
}

func (m *Manager) setStatusLocked(s Status) {
	if m.status == s {
		return
	}
	m.logger.Debug("status changed", "from", m.status, "to", s)
	m.status = s
	m.pending = append(m.pending, s)
	m.metrics.SetStatus(s.String(), allStatuses)
}

// flush delivers queued transitions in order and returns once every
// transition queued before the call has reached the listeners. A listener
// that triggers another transition has it queued behind the current one and
// delivered before the outer flush returns.
func (m *Manager) flush() {
	gid := goroutineID()
	if m.notifier.Load() == gid {
		return
	}

	m.notifyMu.Lock()
	m.notifier.Store(gid)
	defer func() {
		m.notifier.Store(0)
		m.notifyMu.Unlock()
	}()

	for {
		m.mu.Lock()
		if len(m.pending) == 0 {
			m.mu.Unlock()
			return
		}
		s := m.pending[0]
		m.pending = m.pending[1:]
		listeners := append([]statusListener(nil), m.listeners...)
		m.mu.Unlock()

		for _, l := range listeners {
			m.notify(l.fn, s)
		}
	}
}

func (m *Manager) notify(fn StatusListener, s Status) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("status listener panicked", "status", s, "panic", r)
		}
	}()
	fn(s)
}
