package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Errors
var (
	ErrMissingType = errors.New("frame has no type")
	ErrUnknownType = errors.New("unknown message type")
	ErrNilMessage  = errors.New("nil message")
)

// envelope is used for fast type extraction.
type envelope struct {
	Type MessageType `json:"type"`
}

// Encode serializes a frame, stamping the type discriminant from the variant.
func Encode(m Message) ([]byte, error) {
	if m == nil {
		return nil, ErrNilMessage
	}
	m.header().Kind = m.Type()

	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", m.Type(), err)
	}
	return data, nil
}

// Decode parses a frame into its concrete variant.
func Decode(data []byte) (Message, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	if env.Type == "" {
		return nil, ErrMissingType
	}

	msg, err := New(env.Type)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", env.Type, err)
	}
	return msg, nil
}

// New returns an empty frame of the given type with its header stamped.
func New(t MessageType) (Message, error) {
	var msg Message
	switch t {
	case TypeWhiteboardUpdate:
		msg = &WhiteboardUpdate{}
	case TypeOffer:
		msg = &Offer{}
	case TypeAnswer:
		msg = &Answer{}
	case TypeICECandidate:
		msg = &ICECandidate{}
	case TypeUserJoined:
		msg = &UserJoined{}
	case TypeUserLeft:
		msg = &UserLeft{}
	case TypeChatMessage:
		msg = &ChatMessage{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	msg.header().Kind = t
	return msg, nil
}
