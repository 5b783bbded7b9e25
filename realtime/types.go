package realtime

import (
	"github.com/rickgao/practice-signal/internal/connection"
	"github.com/rickgao/practice-signal/internal/protocol"
	"github.com/rickgao/practice-signal/internal/router"
	"github.com/rickgao/practice-signal/internal/telemedicine"
)

// Re-exported so callers outside this module can name them.
type (
	Message            = protocol.Message
	MessageType        = protocol.MessageType
	ServiceName        = protocol.ServiceName
	SessionDescription = protocol.SessionDescription
	ICECandidateInit   = protocol.ICECandidateInit

	WhiteboardUpdate = protocol.WhiteboardUpdate
	Offer            = protocol.Offer
	Answer           = protocol.Answer
	ICECandidate     = protocol.ICECandidate
	UserJoined       = protocol.UserJoined
	UserLeft         = protocol.UserLeft
	ChatMessage      = protocol.ChatMessage

	Handler        = router.Handler
	Subscription   = router.Subscription
	Status         = connection.Status
	StatusListener = connection.StatusListener
	Participant    = telemedicine.Participant
	Room           = telemedicine.Room
	ManagerStats   = connection.ManagerStats
)

// Connection statuses.
const (
	StatusDisconnected = connection.StatusDisconnected
	StatusConnecting   = connection.StatusConnecting
	StatusConnected    = connection.StatusConnected
	StatusReconnecting = connection.StatusReconnecting
	StatusError        = connection.StatusError
)

// Services.
const (
	ServiceWhiteboard   = protocol.ServiceWhiteboard
	ServiceTelemedicine = protocol.ServiceTelemedicine
)
