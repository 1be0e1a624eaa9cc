package ws

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeConnectFrame(t *testing.T) {
	frame, err := decodeFrame([]byte(`{"type":"connect","userId":7}`))
	require.NoError(t, err)
	require.Equal(t, connectFrame{UserID: 7}, frame)
}

func TestDecodeConnectFrameRequiresUserID(t *testing.T) {
	_, err := decodeFrame([]byte(`{"type":"connect"}`))
	require.ErrorIs(t, err, errMalformedFrame)
}

func TestDecodePingFrame(t *testing.T) {
	frame, err := decodeFrame([]byte(`{"type":"ping"}`))
	require.NoError(t, err)
	require.Equal(t, pingFrame{}, frame)
}

func TestDecodeConversationMessage(t *testing.T) {
	frame, err := decodeFrame([]byte(`{"senderId":1,"conversationId":5,"content":"hi"}`))
	require.NoError(t, err)
	require.Equal(t, conversationMessage{SenderID: 1, ConversationID: 5, Content: "hi"}, frame)
}

func TestDecodeLegacyDirectMessage(t *testing.T) {
	frame, err := decodeFrame([]byte(`{"senderId":1,"receiverId":2,"content":"hi"}`))
	require.NoError(t, err)
	require.Equal(t, directMessage{SenderID: 1, ReceiverID: 2, Content: "hi"}, frame)
}

// A frame carrying both shapes resolves to the current one.
func TestDecodePrefersConversationAddressing(t *testing.T) {
	frame, err := decodeFrame([]byte(`{"senderId":1,"receiverId":2,"conversationId":5,"content":"hi"}`))
	require.NoError(t, err)
	require.IsType(t, conversationMessage{}, frame)
}

func TestDecodeMalformedJSON(t *testing.T) {
	_, err := decodeFrame([]byte(`{not json`))
	require.ErrorIs(t, err, errMalformedFrame)
}

func TestDecodeUnknownType(t *testing.T) {
	_, err := decodeFrame([]byte(`{"type":"subscribe"}`))
	require.ErrorIs(t, err, errMalformedFrame)
}

func TestDecodeMessageWithoutAddress(t *testing.T) {
	_, err := decodeFrame([]byte(`{"senderId":1,"content":"hi"}`))
	require.ErrorIs(t, err, errMalformedFrame)
}

func TestErrorFrameShape(t *testing.T) {
	var frame serverFrame
	require.NoError(t, json.Unmarshal(errorFrame("boom"), &frame))
	require.Equal(t, frameError, frame.Type)
	require.Equal(t, "boom", frame.Message)
}

func TestPongFrameOmitsMessage(t *testing.T) {
	data := encodeFrame(framePong, nil)
	require.JSONEq(t, `{"type":"pong"}`, string(data))
}
