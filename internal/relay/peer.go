package relay

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// peer is one connected client.
type peer struct {
	id     string
	conn   *websocket.Conn
	out    *outbox
	logger *slog.Logger

	// Guarded by Server.mu
	rooms     map[roomKey]*roomMember
	practices map[int64]struct{}

	closeOnce sync.Once
}

// roomMember is what the relay knows about a peer in one room.
type roomMember struct {
	announced bool // sent telemedicine_user_joined
	userID    int64
}

func newPeer(id string, conn *websocket.Conn, queueSize int, logger *slog.Logger) *peer {
	initial := queueSize / 4
	return &peer{
		id:        id,
		conn:      conn,
		out:       newOutbox(initial, queueSize),
		logger:    logger.With("peer_id", id),
		rooms:     make(map[roomKey]*roomMember),
		practices: make(map[int64]struct{}),
	}
}

// close sends a close frame and tears the connection down once.
func (p *peer) close(code int, reason string) {
	p.closeOnce.Do(func() {
		p.out.close()
		if code != websocket.CloseAbnormalClosure {
			p.conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(code, reason),
				time.Now().Add(time.Second),
			)
		}
		p.conn.Close()
	})
}
