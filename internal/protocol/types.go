package protocol

import "encoding/json"

// MessageType is the "type" discriminant of a frame.
type MessageType string

const (
	TypeWhiteboardUpdate MessageType = "whiteboard_update"

	TypeOffer        MessageType = "telemedicine_offer"
	TypeAnswer       MessageType = "telemedicine_answer"
	TypeICECandidate MessageType = "telemedicine_ice_candidate"
	TypeUserJoined   MessageType = "telemedicine_user_joined"
	TypeUserLeft     MessageType = "telemedicine_user_left"
	TypeChatMessage  MessageType = "telemedicine_chat_message"
)

// Header is embedded in every frame. Kind is stamped by Encode and checked by Decode.
type Header struct {
	Kind      MessageType `json:"type"`
	Timestamp int64       `json:"timestamp,omitempty"` // Epoch milliseconds
}

func (h *Header) header() *Header { return h }

// Message is one frame of the signaling protocol.
type Message interface {
	// Type returns the frame discriminant.
	Type() MessageType

	// Accept calls the Visitor method matching the concrete variant.
	Accept(v Visitor)

	header() *Header
}

// Timestamp returns the frame timestamp in epoch milliseconds (0 if unset).
func Timestamp(m Message) int64 {
	return m.header().Timestamp
}

// SetTimestamp overwrites the frame timestamp.
func SetTimestamp(m Message, ms int64) {
	m.header().Timestamp = ms
}

// SessionDescription mirrors RTCSessionDescriptionInit.
type SessionDescription struct {
	Type string `json:"type"` // "offer", "answer", "pranswer", "rollback"
	SDP  string `json:"sdp"`
}

// ICECandidateInit mirrors RTCIceCandidateInit.
type ICECandidateInit struct {
	Candidate        string  `json:"candidate"`
	SDPMid           *string `json:"sdpMid,omitempty"`
	SDPMLineIndex    *uint16 `json:"sdpMLineIndex,omitempty"`
	UsernameFragment *string `json:"usernameFragment,omitempty"`
}

// -----------------------------------------------------------------------------
// Whiteboard
// -----------------------------------------------------------------------------

// WhiteboardUpdate carries a free-form whiteboard delta scoped to a practice.
type WhiteboardUpdate struct {
	Header
	PracticeID int64           `json:"practiceId"`
	Data       json.RawMessage `json:"data,omitempty"`
}

// -----------------------------------------------------------------------------
// Telemedicine
// -----------------------------------------------------------------------------

// Offer is a WebRTC SDP offer relayed to the other room participants.
type Offer struct {
	Header
	RoomID        string             `json:"roomId"`
	AppointmentID int64              `json:"appointmentId"`
	Offer         SessionDescription `json:"offer"`
	From          string             `json:"from"`
}

// Answer is a WebRTC SDP answer.
type Answer struct {
	Header
	RoomID        string             `json:"roomId"`
	AppointmentID int64              `json:"appointmentId"`
	Answer        SessionDescription `json:"answer"`
	From          string             `json:"from"`
}

// ICECandidate is a trickled ICE candidate.
type ICECandidate struct {
	Header
	RoomID        string           `json:"roomId"`
	AppointmentID int64            `json:"appointmentId"`
	Candidate     ICECandidateInit `json:"candidate"`
	From          string           `json:"from"`
}

// UserJoined announces a participant entering a room.
type UserJoined struct {
	Header
	RoomID        string `json:"roomId"`
	AppointmentID int64  `json:"appointmentId"`
	UserID        int64  `json:"userId"`
	UserName      string `json:"userName"`
}

// UserLeft announces a participant leaving a room.
type UserLeft struct {
	Header
	RoomID        string `json:"roomId"`
	AppointmentID int64  `json:"appointmentId"`
	UserID        int64  `json:"userId"`
}

// ChatMessage is an in-call text message.
type ChatMessage struct {
	Header
	RoomID        string `json:"roomId"`
	AppointmentID int64  `json:"appointmentId"`
	Message       string `json:"message"`
	From          string `json:"from"`
	FromUserID    int64  `json:"fromUserId"`
}

// Type implements Message for each variant.
func (*WhiteboardUpdate) Type() MessageType { return TypeWhiteboardUpdate }
func (*Offer) Type() MessageType            { return TypeOffer }
func (*Answer) Type() MessageType           { return TypeAnswer }
func (*ICECandidate) Type() MessageType     { return TypeICECandidate }
func (*UserJoined) Type() MessageType       { return TypeUserJoined }
func (*UserLeft) Type() MessageType         { return TypeUserLeft }
func (*ChatMessage) Type() MessageType      { return TypeChatMessage }

// RoomScoped is implemented by every telemedicine frame.
type RoomScoped interface {
	Message
	Room() (roomID string, appointmentID int64)
}

// Room implements RoomScoped for each telemedicine variant.
func (m *Offer) Room() (string, int64)        { return m.RoomID, m.AppointmentID }
func (m *Answer) Room() (string, int64)       { return m.RoomID, m.AppointmentID }
func (m *ICECandidate) Room() (string, int64) { return m.RoomID, m.AppointmentID }
func (m *UserJoined) Room() (string, int64)   { return m.RoomID, m.AppointmentID }
func (m *UserLeft) Room() (string, int64)     { return m.RoomID, m.AppointmentID }
func (m *ChatMessage) Room() (string, int64)  { return m.RoomID, m.AppointmentID }
