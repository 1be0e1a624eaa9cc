package ws

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Frame type tags used on the wire.
const (
	frameConnect      = "connect"
	framePing         = "ping"
	framePong         = "pong"
	frameConnected    = "connected"
	frameConfirmation = "confirmation"
	frameError        = "error"
)

var errMalformedFrame = errors.New("malformed frame")

// rawFrame is the superset of all inbound frame fields. Decoding reads
// into it once, then classifies into one of the explicit variants below,
// which is the single dispatch point for both the legacy and current shapes.
type rawFrame struct {
	Type           string `json:"type"`
	UserID         int64  `json:"userId"`
	SenderID       int64  `json:"senderId"`
	ReceiverID     int64  `json:"receiverId"`
	ConversationID int64  `json:"conversationId"`
	Content        string `json:"content"`
}

type inboundFrame interface {
	kind() string
}

// connectFrame opens a session: {type:"connect", userId}.
type connectFrame struct {
	UserID int64
}

// pingFrame is a client liveness probe: {type:"ping"}.
type pingFrame struct{}

// conversationMessage is the current chat shape, addressed by
// conversation id.
type conversationMessage struct {
	SenderID       int64
	ConversationID int64
	Content        string
}

// directMessage is the legacy chat shape, addressed by peer. The gateway
// resolves the direct conversation before posting.
type directMessage struct {
	SenderID   int64
	ReceiverID int64
	Content    string
}

func (connectFrame) kind() string        { return frameConnect }
func (pingFrame) kind() string           { return framePing }
func (conversationMessage) kind() string { return "message" }
func (directMessage) kind() string       { return "legacy_message" }

func decodeFrame(data []byte) (inboundFrame, error) {
	var raw rawFrame
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errMalformedFrame
	}

	switch raw.Type {
	case frameConnect:
		if raw.UserID <= 0 {
			return nil, fmt.Errorf("%w: connect requires userId", errMalformedFrame)
		}
		return connectFrame{UserID: raw.UserID}, nil
	case framePing:
		return pingFrame{}, nil
	case "":
		switch {
		case raw.ConversationID > 0:
			return conversationMessage{
				SenderID:       raw.SenderID,
				ConversationID: raw.ConversationID,
				Content:        raw.Content,
			}, nil
		case raw.ReceiverID > 0:
			return directMessage{
				SenderID:   raw.SenderID,
				ReceiverID: raw.ReceiverID,
				Content:    raw.Content,
			}, nil
		}
		return nil, fmt.Errorf("%w: message requires conversationId or receiverId", errMalformedFrame)
	default:
		return nil, fmt.Errorf("%w: unknown frame type %q", errMalformedFrame, raw.Type)
	}
}

// serverFrame is every outbound frame shape.
type serverFrame struct {
	Type    string `json:"type"`
	Message any    `json:"message,omitempty"`
}

func encodeFrame(frameType string, message any) []byte {
	data, err := json.Marshal(serverFrame{Type: frameType, Message: message})
	if err != nil {
		// Only reachable with an unmarshalable Message value.
		data, _ = json.Marshal(serverFrame{Type: frameError, Message: "internal encoding error"})
	}
	return data
}

func errorFrame(message string) []byte {
	return encodeFrame(frameError, message)
}
