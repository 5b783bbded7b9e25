package relay

import (
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/rickgao/practice-signal/internal/protocol"
)

// Config configures a Server.
type Config struct {
	Path         string        // WebSocket path served by Handler
	WriteTimeout time.Duration // Per-frame write deadline
	QueueSize    int           // Max frames pending per peer
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Path:         "/ws",
		WriteTimeout: 5 * time.Second,
		QueueSize:    64,
	}
}

// Stats contains runtime statistics.
type Stats struct {
	Peers         int
	Rooms         int
	Practices     int
	FramesIn      int64
	FramesOut     int64
	FramesInvalid int64
	SlowPeers     int64
}

type roomKey struct {
	id            string
	appointmentID int64
}

// Server rebroadcasts frames between peers of the same room or practice.
type Server struct {
	cfg      Config
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu        sync.RWMutex
	peers     map[string]*peer
	rooms     map[roomKey]map[string]*peer
	practices map[int64]map[string]*peer
	closed    bool

	framesIn      atomic.Int64
	framesOut     atomic.Int64
	framesInvalid atomic.Int64
	slowPeers     atomic.Int64
}

// New creates a relay server.
func New(cfg Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	defaults := DefaultConfig()
	if cfg.Path == "" {
		cfg.Path = defaults.Path
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaults.WriteTimeout
	}
	if cfg.QueueSize < 1 {
		cfg.QueueSize = defaults.QueueSize
	}

	return &Server{
		cfg:    cfg,
		logger: logger.With("component", "relay"),
		upgrader: websocket.Upgrader{
			// Development relay: accept any origin.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		peers:     make(map[string]*peer),
		rooms:     make(map[roomKey]map[string]*peer),
		practices: make(map[int64]map[string]*peer),
	}
}

// Handler serves the relay at the configured path.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(s.cfg.Path, s)
	return mux
}

// ServeHTTP upgrades the request and serves the peer until it disconnects.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	p := newPeer(uuid.NewString(), conn, s.cfg.QueueSize, s.logger)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		p.close(websocket.CloseGoingAway, "server shutting down")
		return
	}
	s.peers[p.id] = p
	s.mu.Unlock()

	p.logger.Info("peer connected", "remote", r.RemoteAddr, "user_agent", r.UserAgent())

	go s.writeLoop(p)
	s.readLoop(p)
}

func (s *Server) readLoop(p *peer) {
	defer s.remove(p)

	for {
		_, data, err := p.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				p.logger.Debug("read failed", "error", err)
			}
			return
		}
		s.framesIn.Add(1)

		msg, err := protocol.Decode(data)
		if err != nil {
			s.framesInvalid.Add(1)
			p.logger.Warn("dropping invalid frame", "error", err)
			continue
		}

		s.route(p, msg, data)
	}
}

func (s *Server) writeLoop(p *peer) {
	for {
		data, ok := p.out.pop()
		if !ok {
			return
		}

		p.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
		if err := p.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			p.logger.Debug("write failed", "error", err)
			p.close(websocket.CloseAbnormalClosure, "")
			return
		}
		s.framesOut.Add(1)
	}
}

// route updates membership from msg and forwards data to the other members.
func (s *Server) route(from *peer, msg protocol.Message, data []byte) {
	s.mu.Lock()
	v := &membership{s: s, from: from}
	msg.Accept(v)

	targets := make([]*peer, 0, len(v.members))
	for id, p := range v.members {
		if id != from.id {
			targets = append(targets, p)
		}
	}

	if v.leave != nil {
		s.leaveRoomLocked(from, *v.leave)
	}
	s.mu.Unlock()

	for _, p := range targets {
		s.deliver(p, data)
	}
}

func (s *Server) deliver(p *peer, data []byte) {
	err := p.out.push(data)
	switch {
	case err == nil:
	case errors.Is(err, errOutboxFull):
		s.slowPeers.Add(1)
		p.logger.Warn("peer too slow, disconnecting", "pending", p.out.stats().Pending)
		p.close(websocket.ClosePolicyViolation, "too slow")
	default:
		// Peer is already closing.
	}
}

func (s *Server) joinRoomLocked(p *peer, key roomKey) map[string]*peer {
	members, ok := s.rooms[key]
	if !ok {
		members = make(map[string]*peer)
		s.rooms[key] = members
	}
	if _, in := members[p.id]; !in {
		members[p.id] = p
		p.rooms[key] = &roomMember{}
		p.logger.Debug("joined room", "room_id", key.id, "appointment_id", key.appointmentID)
	}
	return members
}

func (s *Server) leaveRoomLocked(p *peer, key roomKey) {
	delete(p.rooms, key)
	if members, ok := s.rooms[key]; ok {
		delete(members, p.id)
		if len(members) == 0 {
			delete(s.rooms, key)
		}
	}
}

func (s *Server) joinPracticeLocked(p *peer, practiceID int64) map[string]*peer {
	members, ok := s.practices[practiceID]
	if !ok {
		members = make(map[string]*peer)
		s.practices[practiceID] = members
	}
	if _, in := members[p.id]; !in {
		members[p.id] = p
		p.practices[practiceID] = struct{}{}
		p.logger.Debug("joined practice", "practice_id", practiceID)
	}
	return members
}

// remove drops a disconnected peer and announces its departure from rooms
// it had joined with telemedicine_user_joined.
func (s *Server) remove(p *peer) {
	type departure struct {
		data    []byte
		targets []*peer
	}
	var departures []departure

	s.mu.Lock()
	delete(s.peers, p.id)

	for key, member := range p.rooms {
		s.leaveRoomLocked(p, key)
		if !member.announced {
			continue
		}

		left := &protocol.UserLeft{
			RoomID:        key.id,
			AppointmentID: key.appointmentID,
			UserID:        member.userID,
		}
		protocol.SetTimestamp(left, time.Now().UnixMilli())
		data, err := protocol.Encode(left)
		if err != nil {
			p.logger.Error("failed to encode departure", "error", err)
			continue
		}

		d := departure{data: data}
		for _, other := range s.rooms[key] {
			d.targets = append(d.targets, other)
		}
		departures = append(departures, d)
	}

	for practiceID := range p.practices {
		if members, ok := s.practices[practiceID]; ok {
			delete(members, p.id)
			if len(members) == 0 {
				delete(s.practices, practiceID)
			}
		}
	}
	s.mu.Unlock()

	for _, d := range departures {
		for _, other := range d.targets {
			s.deliver(other, d.data)
		}
	}

	p.close(websocket.CloseNormalClosure, "")
	p.logger.Info("peer disconnected", "stats", p.out.stats())
}

// Members returns the number of peers in a room.
func (s *Server) Members(roomID string, appointmentID int64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms[roomKey{id: roomID, appointmentID: appointmentID}])
}

// PracticeMembers returns the number of peers in a practice.
func (s *Server) PracticeMembers(practiceID int64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.practices[practiceID])
}

// Stats returns current statistics.
func (s *Server) Stats() Stats {
	s.mu.RLock()
	peers, rooms, practices := len(s.peers), len(s.rooms), len(s.practices)
	s.mu.RUnlock()

	return Stats{
		Peers:         peers,
		Rooms:         rooms,
		Practices:     practices,
		FramesIn:      s.framesIn.Load(),
		FramesOut:     s.framesOut.Load(),
		FramesInvalid: s.framesInvalid.Load(),
		SlowPeers:     s.slowPeers.Load(),
	}
}

// Close disconnects every peer with a going-away close frame and rejects new ones.
func (s *Server) Close() {
	s.mu.Lock()
	s.closed = true
	peers := make([]*peer, 0, len(s.peers))
	for _, p := range s.peers {
		peers = append(peers, p)
	}
	s.mu.Unlock()

	for _, p := range peers {
		p.close(websocket.CloseGoingAway, "server shutting down")
	}
	s.logger.Info("relay closed", "peers", len(peers))
}
