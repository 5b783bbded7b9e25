package connection

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rickgao/practice-signal/internal/metrics"
	"github.com/rickgao/practice-signal/internal/protocol"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

func testManagerConfig(url string) ManagerConfig {
	cfg := DefaultManagerConfig()
	cfg.Target = StaticTarget(url)
	cfg.ConnectTimeout = time.Second
	cfg.ReconnectDelay = 20 * time.Millisecond
	cfg.SendRetryDelay = 50 * time.Millisecond
	cfg.Client.PingInterval = 0
	return cfg
}

// statusRecorder collects every transition a Manager reports.
type statusRecorder struct {
	mu   sync.Mutex
	seen []Status
}

func record(m *Manager) *statusRecorder {
	r := &statusRecorder{}
	m.OnStatusChange(func(s Status) {
		r.mu.Lock()
		r.seen = append(r.seen, s)
		r.mu.Unlock()
	})
	return r
}

func (r *statusRecorder) statuses() []Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Status(nil), r.seen...)
}

func (r *statusRecorder) count(s Status) int {
	n := 0
	for _, got := range r.statuses() {
		if got == s {
			n++
		}
	}
	return n
}

// rejectingServer refuses every WebSocket handshake.
func rejectingServer(dials *atomic.Int32) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		dials.Add(1)
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
}

// frameServer records frames the client sends and writes out to every new connection.
func frameServer(t *testing.T, out ...string) (*httptest.Server, <-chan []byte) {
	received := make(chan []byte, 16)
	server := mockWSServer(t, func(conn *websocket.Conn) {
		for _, frame := range out {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
				return
			}
		}
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			received <- data
		}
	})
	return server, received
}

// echoServer writes every frame back to the sender.
func echoServer(t *testing.T) *httptest.Server {
	return mockWSServer(t, func(conn *websocket.Conn) {
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		}
	})
}

// liveClients wraps NewClient and tracks how many connections are open at once.
type liveClients struct {
	mu      sync.Mutex
	created int
	live    int
	maxLive int
}

func (l *liveClients) factory(cfg ClientConfig, logger *slog.Logger) Client {
	l.mu.Lock()
	l.created++
	l.mu.Unlock()
	return &trackedClient{Client: NewClient(cfg, logger), owner: l}
}

func (l *liveClients) snapshot() (created, live, maxLive int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.created, l.live, l.maxLive
}

type trackedClient struct {
	Client
	owner  *liveClients
	open   bool
	closed bool
}

func (c *trackedClient) Connect(ctx context.Context) error {
	if err := c.Client.Connect(ctx); err != nil {
		return err
	}
	c.owner.mu.Lock()
	defer c.owner.mu.Unlock()
	if !c.closed {
		c.open = true
		c.owner.live++
		if c.owner.live > c.owner.maxLive {
			c.owner.maxLive = c.owner.live
		}
	}
	return nil
}

func (c *trackedClient) Close() error {
	c.owner.mu.Lock()
	if c.open && !c.closed {
		c.owner.live--
	}
	c.closed = true
	c.owner.mu.Unlock()
	return c.Client.Close()
}

func waitStatus(t *testing.T, m *Manager, want Status) {
	t.Helper()
	require.Eventually(t, func() bool { return m.Status() == want }, waitFor, tick,
		"status never reached %s (last %s)", want, m.Status())
}

func TestManager_ConnectHappyPath(t *testing.T) {
	server := mockWSServer(t, drainConn)
	defer server.Close()

	m := NewManager(testManagerConfig(wsURL(server)), nil)
	rec := record(m)

	assert.Equal(t, StatusDisconnected, m.Status())

	m.Connect()
	waitStatus(t, m, StatusConnected)
	defer m.Disconnect()

	require.Eventually(t, func() bool { return len(rec.statuses()) == 2 }, waitFor, tick)
	assert.Equal(t, []Status{StatusConnecting, StatusConnected}, rec.statuses())
	assert.Equal(t, 0, m.Attempts())
	assert.NoError(t, m.LastError())
}

func TestManager_ConnectIsIdempotent(t *testing.T) {
	server := mockWSServer(t, drainConn)
	defer server.Close()

	clients := &liveClients{}
	m := NewManager(testManagerConfig(wsURL(server)), nil, WithClientFactory(clients.factory))
	defer m.Disconnect()

	m.Connect()
	m.Connect()
	m.Connect()
	waitStatus(t, m, StatusConnected)
	m.Connect()

	created, live, _ := clients.snapshot()
	assert.Equal(t, 1, created)
	assert.Equal(t, 1, live)
}

func TestManager_AtMostOneConnection(t *testing.T) {
	server := mockWSServer(t, drainConn)
	defer server.Close()

	clients := &liveClients{}
	m := NewManager(testManagerConfig(wsURL(server)), nil, WithClientFactory(clients.factory))

	for i := 0; i < 20; i++ {
		m.Connect()
		if i%3 == 0 {
			time.Sleep(time.Millisecond)
		}
		m.Disconnect()
		m.Connect()
		m.Connect()
	}
	waitStatus(t, m, StatusConnected)

	_, live, maxLive := clients.snapshot()
	assert.Equal(t, 1, live)
	assert.LessOrEqual(t, maxLive, 1)

	m.Disconnect()
	_, live, _ = clients.snapshot()
	assert.Equal(t, 0, live)
}

func TestManager_RejectedDialsReachError(t *testing.T) {
	var dials atomic.Int32
	server := rejectingServer(&dials)
	defer server.Close()

	reg := prometheus.NewRegistry()
	mt := metrics.New(reg)

	m := NewManager(testManagerConfig(wsURL(server)), nil, WithMetrics(mt))
	rec := record(m)

	m.Connect()
	require.Eventually(t, func() bool {
		return m.Status() == StatusError && m.Attempts() == 5
	}, waitFor, tick)

	// No further reconnect timer is scheduled.
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(5), dials.Load())
	assert.Equal(t, StatusError, m.Status())
	assert.ErrorIs(t, m.LastError(), ErrReconnectLimit)
	assert.Equal(t, 4, rec.count(StatusReconnecting))
	assert.Equal(t, 4.0, testutil.ToFloat64(mt.ReconnectAttempts))

	// Connect refuses until Disconnect resets the counter.
	m.Connect()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(5), dials.Load())
	assert.Equal(t, StatusError, m.Status())

	m.Disconnect()
	assert.Equal(t, StatusDisconnected, m.Status())
	assert.Equal(t, 0, m.Attempts())

	m.Connect()
	require.Eventually(t, func() bool { return dials.Load() == 6 }, waitFor, tick)
	m.Disconnect()
}

func TestManager_AbnormalCloseReconnects(t *testing.T) {
	var conns atomic.Int32
	server := mockWSServer(t, func(conn *websocket.Conn) {
		if conns.Add(1) == 1 {
			conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "restart"),
				time.Now().Add(time.Second),
			)
			time.Sleep(50 * time.Millisecond)
			return
		}
		drainConn(conn)
	})
	defer server.Close()

	m := NewManager(testManagerConfig(wsURL(server)), nil)
	rec := record(m)
	defer m.Disconnect()

	m.Connect()
	require.Eventually(t, func() bool { return rec.count(StatusConnected) == 2 }, waitFor, tick)

	assert.Equal(t, []Status{
		StatusConnecting,
		StatusConnected,
		StatusReconnecting,
		StatusConnecting,
		StatusConnected,
	}, rec.statuses())
	assert.Equal(t, 0, m.Attempts())
	assert.Equal(t, int32(2), conns.Load())
}

func TestManager_NormalCloseFromServer(t *testing.T) {
	var conns atomic.Int32
	server := mockWSServer(t, func(conn *websocket.Conn) {
		conns.Add(1)
		conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		time.Sleep(50 * time.Millisecond)
	})
	defer server.Close()

	m := NewManager(testManagerConfig(wsURL(server)), nil)
	rec := record(m)

	m.Connect()
	require.Eventually(t, func() bool { return rec.count(StatusDisconnected) == 1 }, waitFor, tick)

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, StatusDisconnected, m.Status())
	assert.Equal(t, int32(1), conns.Load())
	assert.Zero(t, rec.count(StatusReconnecting))
}

func TestManager_ConnectTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	cfg := testManagerConfig(wsURL(server))
	cfg.ConnectTimeout = 50 * time.Millisecond
	cfg.ReconnectDelay = time.Hour

	m := NewManager(cfg, nil)
	rec := record(m)
	defer m.Disconnect()

	m.Connect()
	waitStatus(t, m, StatusReconnecting)

	assert.Equal(t, []Status{StatusConnecting, StatusError, StatusReconnecting}, rec.statuses())
	assert.ErrorIs(t, m.LastError(), ErrConnectTimeout)
	assert.Equal(t, 1, m.Attempts())
}

func TestManager_ConnectDuringReconnectDialsNow(t *testing.T) {
	var dials atomic.Int32
	server := rejectingServer(&dials)
	defer server.Close()

	cfg := testManagerConfig(wsURL(server))
	cfg.ReconnectDelay = time.Hour

	m := NewManager(cfg, nil)
	defer m.Disconnect()

	m.Connect()
	waitStatus(t, m, StatusReconnecting)

	m.Connect()
	require.Eventually(t, func() bool {
		return dials.Load() == 2 && m.Status() == StatusReconnecting
	}, waitFor, tick)
	assert.Equal(t, 2, m.Attempts())
}

func TestManager_TargetError(t *testing.T) {
	errNoHost := errors.New("no host configured")

	cfg := testManagerConfig("")
	cfg.Target = func() (string, error) { return "", errNoHost }
	cfg.ReconnectDelay = time.Hour

	m := NewManager(cfg, nil)
	defer m.Disconnect()

	m.Connect()

	assert.Equal(t, StatusReconnecting, m.Status())
	assert.ErrorIs(t, m.LastError(), errNoHost)
}

func TestManager_DisconnectIsIdempotent(t *testing.T) {
	closeCodes := make(chan int, 1)
	server := mockWSServer(t, func(conn *websocket.Conn) {
		_, _, err := conn.ReadMessage()
		var ce *websocket.CloseError
		if errors.As(err, &ce) {
			closeCodes <- ce.Code
		}
	})
	defer server.Close()

	m := NewManager(testManagerConfig(wsURL(server)), nil)
	rec := record(m)

	// Already disconnected: nothing to report.
	m.Disconnect()
	assert.Empty(t, rec.statuses())

	m.Connect()
	waitStatus(t, m, StatusConnected)

	m.Disconnect()
	m.Disconnect()

	assert.Equal(t, StatusDisconnected, m.Status())
	assert.Equal(t, 0, m.Attempts())
	assert.Equal(t, []Status{StatusConnecting, StatusConnected, StatusDisconnected}, rec.statuses())

	select {
	case code := <-closeCodes:
		assert.Equal(t, websocket.CloseNormalClosure, code)
	case <-time.After(time.Second):
		t.Fatal("server never saw a close frame")
	}
}

func TestManager_DisconnectCancelsReconnect(t *testing.T) {
	var dials atomic.Int32
	server := rejectingServer(&dials)
	defer server.Close()

	cfg := testManagerConfig(wsURL(server))
	cfg.ReconnectDelay = 50 * time.Millisecond

	m := NewManager(cfg, nil)

	m.Connect()
	waitStatus(t, m, StatusReconnecting)
	m.Disconnect()

	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(1), dials.Load())
	assert.Equal(t, StatusDisconnected, m.Status())
	assert.Equal(t, 0, m.Attempts())
}

func TestManager_SendStampsTimestamp(t *testing.T) {
	server, received := frameServer(t)
	defer server.Close()

	now := time.UnixMilli(1_700_000_000_000)
	m := NewManager(testManagerConfig(wsURL(server)), nil, WithClock(func() time.Time { return now }))
	defer m.Disconnect()

	m.Connect()
	waitStatus(t, m, StatusConnected)

	require.True(t, m.SendMessage(&protocol.WhiteboardUpdate{PracticeID: 9}))

	explicit := &protocol.WhiteboardUpdate{PracticeID: 9}
	explicit.Timestamp = 12345
	require.True(t, m.SendMessage(explicit))

	var frames []map[string]any
	for i := 0; i < 2; i++ {
		select {
		case data := <-received:
			var frame map[string]any
			require.NoError(t, json.Unmarshal(data, &frame))
			frames = append(frames, frame)
		case <-time.After(time.Second):
			t.Fatalf("timeout waiting for frame %d", i)
		}
	}

	assert.Equal(t, "whiteboard_update", frames[0]["type"])
	assert.Equal(t, float64(now.UnixMilli()), frames[0]["timestamp"])
	assert.Equal(t, float64(12345), frames[1]["timestamp"])
	assert.Equal(t, int64(2), m.Stats().FramesSent)
}

func TestManager_SendWhileDisconnectedRetriesOnce(t *testing.T) {
	server, received := frameServer(t)
	defer server.Close()

	m := NewManager(testManagerConfig(wsURL(server)), nil)
	defer m.Disconnect()

	ok := m.SendMessage(&protocol.ChatMessage{RoomID: "room1", Message: "hello"})
	assert.False(t, ok)
	assert.Contains(t, []Status{StatusConnecting, StatusConnected}, m.Status())

	select {
	case data := <-received:
		msg, err := protocol.Decode(data)
		require.NoError(t, err)
		chat, isChat := msg.(*protocol.ChatMessage)
		require.True(t, isChat)
		assert.Equal(t, "hello", chat.Message)
	case <-time.After(time.Second):
		t.Fatal("deferred frame was never sent")
	}

	select {
	case data := <-received:
		t.Fatalf("unexpected second frame %s", data)
	case <-time.After(100 * time.Millisecond):
	}
	assert.Equal(t, 0, m.Stats().RetriesPending)
}

func TestManager_RetryDropsWhenStillDisconnected(t *testing.T) {
	var dials atomic.Int32
	server := rejectingServer(&dials)
	defer server.Close()

	cfg := testManagerConfig(wsURL(server))
	cfg.ReconnectDelay = time.Hour

	mt := metrics.New(prometheus.NewRegistry())
	m := NewManager(cfg, nil, WithMetrics(mt))
	defer m.Disconnect()

	assert.False(t, m.SendMessage(&protocol.WhiteboardUpdate{PracticeID: 1}))

	dropped := mt.FramesDropped.WithLabelValues(string(protocol.TypeWhiteboardUpdate), dropRetryNotConnected)
	require.Eventually(t, func() bool { return testutil.ToFloat64(dropped) == 1 }, waitFor, tick)
	assert.Equal(t, int64(0), m.Stats().FramesSent)
	assert.Equal(t, 0, m.Stats().RetriesPending)
}

func TestManager_DisconnectCancelsRetries(t *testing.T) {
	var dials atomic.Int32
	server := rejectingServer(&dials)
	defer server.Close()

	mt := metrics.New(prometheus.NewRegistry())
	m := NewManager(testManagerConfig(wsURL(server)), nil, WithMetrics(mt))

	m.SendMessage(&protocol.WhiteboardUpdate{PracticeID: 1})
	m.SendMessage(&protocol.WhiteboardUpdate{PracticeID: 2})
	assert.Equal(t, 2, m.Stats().RetriesPending)

	m.Disconnect()
	assert.Equal(t, 0, m.Stats().RetriesPending)

	time.Sleep(100 * time.Millisecond)
	dropped := mt.FramesDropped.WithLabelValues(string(protocol.TypeWhiteboardUpdate), dropRetryNotConnected)
	assert.Equal(t, 0.0, testutil.ToFloat64(dropped))
}

func TestManager_SendNilMessage(t *testing.T) {
	m := NewManager(testManagerConfig("ws://localhost:1"), nil)

	assert.False(t, m.SendMessage(nil))

	var typedNil *protocol.Offer
	assert.False(t, m.SendMessage(typedNil))
	assert.Equal(t, StatusDisconnected, m.Status())
}

func TestManager_DispatchesInRegistrationOrder(t *testing.T) {
	offer := `{"type":"telemedicine_offer","timestamp":1,"roomId":"room1","appointmentId":42,` +
		`"offer":{"type":"offer","sdp":"v=0"},"from":"dr-lee"}`
	server, _ := frameServer(t, offer)
	defer server.Close()

	m := NewManager(testManagerConfig(wsURL(server)), nil)

	var mu sync.Mutex
	var calls []string
	m.RegisterHandler(protocol.TypeOffer, func(msg protocol.Message) {
		mu.Lock()
		calls = append(calls, "first:"+msg.(*protocol.Offer).From)
		mu.Unlock()
	})
	m.RegisterHandler(protocol.TypeOffer, func(msg protocol.Message) {
		mu.Lock()
		calls = append(calls, "second:"+msg.(*protocol.Offer).From)
		mu.Unlock()
	})

	m.Connect()
	defer m.Disconnect()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(calls) == 2
	}, waitFor, tick)

	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"first:dr-lee", "second:dr-lee"}, calls)
}

func TestManager_DisabledServiceDropsFrames(t *testing.T) {
	server := echoServer(t)
	defer server.Close()

	m := NewManager(testManagerConfig(wsURL(server)), nil)
	defer m.Disconnect()

	var delivered atomic.Int32
	m.RegisterHandler(protocol.TypeChatMessage, func(protocol.Message) {
		delivered.Add(1)
	})

	m.Connect()
	waitStatus(t, m, StatusConnected)

	m.DisableService(protocol.ServiceTelemedicine)
	assert.False(t, m.ServiceEnabled(protocol.ServiceTelemedicine))
	require.True(t, m.SendMessage(&protocol.ChatMessage{RoomID: "room1", Message: "paused"}))

	require.Eventually(t, func() bool { return m.Stats().DroppedDisabled == 1 }, waitFor, tick)
	assert.Zero(t, delivered.Load())

	m.EnableService(protocol.ServiceTelemedicine)
	require.True(t, m.SendMessage(&protocol.ChatMessage{RoomID: "room1", Message: "resumed"}))

	require.Eventually(t, func() bool { return delivered.Load() == 1 }, waitFor, tick)
}

func TestManager_MalformedFramesAreSkipped(t *testing.T) {
	server, _ := frameServer(t,
		`not json`,
		`{"type":"whiteboard_drawing"}`,
		`{"timestamp":1}`,
		`{"type":"whiteboard_update","timestamp":1,"practiceId":7}`,
	)
	defer server.Close()

	m := NewManager(testManagerConfig(wsURL(server)), nil)
	defer m.Disconnect()

	var practice atomic.Int64
	m.RegisterHandler(protocol.TypeWhiteboardUpdate, func(msg protocol.Message) {
		practice.Store(msg.(*protocol.WhiteboardUpdate).PracticeID)
	})

	m.Connect()

	require.Eventually(t, func() bool { return practice.Load() == 7 }, waitFor, tick)
	stats := m.Stats()
	assert.Equal(t, int64(3), stats.ProtocolErrors)
	assert.Equal(t, int64(4), stats.FramesReceived)
	assert.Equal(t, StatusConnected, m.Status())
}

func TestManager_PanickingHandlerIsContained(t *testing.T) {
	update := `{"type":"whiteboard_update","timestamp":1,"practiceId":1}`
	server, _ := frameServer(t, update, update)
	defer server.Close()

	m := NewManager(testManagerConfig(wsURL(server)), nil)
	defer m.Disconnect()

	var calls atomic.Int32
	m.RegisterHandler(protocol.TypeWhiteboardUpdate, func(protocol.Message) {
		panic("boom")
	})
	m.RegisterHandler(protocol.TypeWhiteboardUpdate, func(protocol.Message) {
		calls.Add(1)
	})

	m.Connect()

	require.Eventually(t, func() bool { return calls.Load() == 2 }, waitFor, tick)
	assert.Equal(t, int64(2), m.Stats().HandlerPanics)
	assert.Equal(t, StatusConnected, m.Status())
}

func TestManager_StatusListenerMayReenter(t *testing.T) {
	server := mockWSServer(t, drainConn)
	defer server.Close()

	m := NewManager(testManagerConfig(wsURL(server)), nil)
	rec := record(m)

	m.OnStatusChange(func(s Status) {
		if s == StatusConnected {
			m.Disconnect()
		}
	})

	m.Connect()
	require.Eventually(t, func() bool { return rec.count(StatusDisconnected) == 1 }, waitFor, tick)

	assert.Equal(t, []Status{StatusConnecting, StatusConnected, StatusDisconnected}, rec.statuses())
	assert.Equal(t, StatusDisconnected, m.Status())
}

func TestManager_DisconnectWaitsForListeners(t *testing.T) {
	server := mockWSServer(t, drainConn)
	defer server.Close()

	m := NewManager(testManagerConfig(wsURL(server)), nil)

	inConnected := make(chan struct{})
	release := make(chan struct{})
	var sawDisconnected atomic.Bool

	// Blocks the pump goroutine inside the Connected notification.
	m.OnStatusChange(func(s Status) {
		switch s {
		case StatusConnected:
			close(inConnected)
			<-release
		case StatusDisconnected:
			sawDisconnected.Store(true)
		}
	})

	m.Connect()
	select {
	case <-inConnected:
	case <-time.After(waitFor):
		t.Fatal("never notified of Connected")
	}

	done := make(chan struct{})
	go func() {
		m.Disconnect()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Disconnect returned while a listener was still handling Connected")
	case <-time.After(100 * time.Millisecond):
	}

	close(release)
	select {
	case <-done:
	case <-time.After(waitFor):
		t.Fatal("Disconnect never returned")
	}
	assert.True(t, sawDisconnected.Load(), "Disconnect returned before listeners saw Disconnected")
	assert.Equal(t, StatusDisconnected, m.Status())
}

func TestManager_ListenersSeeTransitionsBeforeConnectReturns(t *testing.T) {
	var dials atomic.Int32
	server := rejectingServer(&dials)
	defer server.Close()

	cfg := testManagerConfig(wsURL(server))
	cfg.ReconnectDelay = time.Hour
	m := NewManager(cfg, nil)
	defer m.Disconnect()

	rec := record(m)
	m.Connect()

	// Connecting is queued by Connect itself, so it is delivered before Connect returns.
	seen := rec.statuses()
	require.NotEmpty(t, seen)
	assert.Equal(t, StatusConnecting, seen[0])
}

func TestGoroutineID(t *testing.T) {
	id := goroutineID()
	assert.NotZero(t, id)
	assert.Equal(t, id, goroutineID())

	other := make(chan uint64)
	go func() { other <- goroutineID() }()
	assert.NotEqual(t, id, <-other)
}

func TestManager_OnStatusChangeUnsubscribe(t *testing.T) {
	var dials atomic.Int32
	server := rejectingServer(&dials)
	defer server.Close()

	cfg := testManagerConfig(wsURL(server))
	cfg.ReconnectDelay = time.Hour

	m := NewManager(cfg, nil)
	defer m.Disconnect()

	var calls atomic.Int32
	unsubscribe := m.OnStatusChange(func(Status) { calls.Add(1) })
	m.OnStatusChange(func(Status) { panic("listener bug") })

	m.Connect()
	waitStatus(t, m, StatusReconnecting)
	require.Eventually(t, func() bool { return calls.Load() == 3 }, waitFor, tick)

	unsubscribe()
	unsubscribe()

	m.Disconnect()
	assert.Equal(t, int32(3), calls.Load())
}

func TestManager_StatusMetric(t *testing.T) {
	server := mockWSServer(t, drainConn)
	defer server.Close()

	mt := metrics.New(prometheus.NewRegistry())
	m := NewManager(testManagerConfig(wsURL(server)), nil, WithMetrics(mt))

	assert.Equal(t, 1.0, testutil.ToFloat64(mt.Status.WithLabelValues("disconnected")))

	m.Connect()
	waitStatus(t, m, StatusConnected)
	assert.Equal(t, 1.0, testutil.ToFloat64(mt.Status.WithLabelValues("connected")))
	assert.Equal(t, 0.0, testutil.ToFloat64(mt.Status.WithLabelValues("disconnected")))

	require.True(t, m.SendMessage(&protocol.WhiteboardUpdate{PracticeID: 1}))
	assert.Equal(t, 1.0, testutil.ToFloat64(mt.FramesSent.WithLabelValues("whiteboard_update")))

	m.Disconnect()
	assert.Equal(t, 1.0, testutil.ToFloat64(mt.Status.WithLabelValues("disconnected")))
}
