package ws

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"kumpul/server/internal/metrics"
	"kumpul/server/internal/models"
)

const (
	// The first frame must be a connect frame within this window.
	handshakeWait = 10 * time.Second

	// Server ping interval and how long a silent socket survives.
	pingPeriod = 30 * time.Second
	pongWait   = 35 * time.Second

	writeWait  = 10 * time.Second
	sendBuffer = 256
)

// socket is the slice of *websocket.Conn the client uses. Tests
// substitute an in-memory implementation.
type socket interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(string) error)
	Close() error
}

var _ socket = (*websocket.Conn)(nil)

// Ledger is the slice of the chat service the gateway posts through.
type Ledger interface {
	PostMessage(ctx context.Context, senderID, conversationID int64, content string) (*models.MessageWithSender, error)
	PostDirectMessage(ctx context.Context, senderID, receiverID int64, content string) (*models.MessageWithSender, error)
}

// Client is one websocket session. After the connect handshake it is
// registered in the directory and translates chat frames into ledger
// calls. The sender alone receives a confirmation frame; other
// participants re-fetch history rather than being pushed to.
type Client struct {
	// SessionID distinguishes this socket from a replacement for the
	// same user, so a stale teardown cannot evict the replacement.
	SessionID string
	UserID    int64

	authID int64 // identity asserted by the transport's auth layer, 0 if none
	conn   socket
	hub    Directory
	ledger Ledger
	log    zerolog.Logger

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once

	// Overridable in tests.
	handshakeWait time.Duration
	pingPeriod    time.Duration
	pongWait      time.Duration
}

// NewClient wraps an accepted socket. authUserID is the identity the
// transport authenticated; the connect frame must agree with it.
func NewClient(authUserID int64, conn socket, hub Directory, ledger Ledger, log zerolog.Logger) *Client {
	return &Client{
		SessionID:     uuid.NewString(),
		authID:        authUserID,
		conn:          conn,
		hub:           hub,
		ledger:        ledger,
		log:           log,
		send:          make(chan []byte, sendBuffer),
		done:          make(chan struct{}),
		handshakeWait: handshakeWait,
		pingPeriod:    pingPeriod,
		pongWait:      pongWait,
	}
}

// Run drives the session to completion: handshake, registration, then
// the read loop. It blocks until the socket closes.
func (c *Client) Run() {
	defer c.teardown()

	if !c.handshake() {
		return
	}

	c.hub.Register(c)
	go c.writePump()
	c.readPump()
}

// Close terminates the session. Safe to call from any goroutine.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

func (c *Client) teardown() {
	if c.UserID != 0 {
		c.hub.Unregister(c)
	}
	c.Close()
}

// handshake enforces the connect-first protocol: the opening frame must
// be {type:"connect", userId} and arrive within the handshake window.
func (c *Client) handshake() bool {
	_ = c.conn.SetReadDeadline(time.Now().Add(c.handshakeWait))

	_, data, err := c.conn.ReadMessage()
	if err != nil {
		c.writeDirect(errorFrame("connect frame not received in time"))
		return false
	}

	frame, err := decodeFrame(data)
	if err != nil {
		c.writeDirect(errorFrame(err.Error()))
		return false
	}
	connect, ok := frame.(connectFrame)
	if !ok {
		c.writeDirect(errorFrame("first frame must be a connect frame"))
		return false
	}
	if c.authID != 0 && connect.UserID != c.authID {
		c.writeDirect(errorFrame("connect userId does not match authenticated user"))
		return false
	}

	c.UserID = connect.UserID
	metrics.WSFramesTotal.WithLabelValues(frameConnect).Inc()
	c.writeDirect(encodeFrame(frameConnected, fmt.Sprintf("connected as user %d", c.UserID)))
	return true
}

func (c *Client) readPump() {
	_ = c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
		c.hub.Touch(c)
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.log.Debug().Err(err).Int64("userId", c.UserID).Msg("websocket read error")
			}
			return
		}

		// Any inbound frame counts as liveness.
		_ = c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
		c.handleFrame(data)
	}
}

// handleFrame dispatches one inbound frame. Failures are answered with a
// non-fatal error frame; only heartbeat expiry or a client close ends the
// session.
func (c *Client) handleFrame(data []byte) {
	frame, err := decodeFrame(data)
	if err != nil {
		metrics.WSFramesTotal.WithLabelValues("malformed").Inc()
		c.enqueue(errorFrame(err.Error()))
		return
	}
	metrics.WSFramesTotal.WithLabelValues(frame.kind()).Inc()

	switch f := frame.(type) {
	case pingFrame:
		c.enqueue(encodeFrame(framePong, nil))
	case connectFrame:
		c.enqueue(errorFrame("already connected"))
	case conversationMessage:
		if f.SenderID != c.UserID {
			c.enqueue(errorFrame("senderId does not match session user"))
			return
		}
		msg, err := c.ledger.PostMessage(context.Background(), f.SenderID, f.ConversationID, f.Content)
		if err != nil {
			c.enqueue(errorFrame(err.Error()))
			return
		}
		c.enqueue(encodeFrame(frameConfirmation, msg))
	case directMessage:
		if f.SenderID != c.UserID {
			c.enqueue(errorFrame("senderId does not match session user"))
			return
		}
		msg, err := c.ledger.PostDirectMessage(context.Background(), f.SenderID, f.ReceiverID, f.Content)
		if err != nil {
			c.enqueue(errorFrame(err.Error()))
			return
		}
		c.enqueue(encodeFrame(frameConfirmation, msg))
	}
}

// enqueue hands a frame to the write pump. A full buffer means the
// client stopped draining; the session is closed to bound memory.
func (c *Client) enqueue(data []byte) {
	select {
	case c.send <- data:
	case <-c.done:
	default:
		c.log.Warn().Int64("userId", c.UserID).Msg("send buffer full, dropping client")
		c.Close()
	}
}

// writeDirect writes synchronously. Only used before the write pump
// starts, during the handshake.
func (c *Client) writeDirect(data []byte) {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *Client) writePump() {
	ticker := time.NewTicker(c.pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-c.done:
			return
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
