package ws

import (
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/contrib/websocket"
)

func formatID(id int64) string { return strconv.FormatInt(id, 10) }

var (
	errSocketClosed = errors.New("use of closed connection")
	errReadTimeout  = errors.New("read timeout")
)

// fakeSocket is an in-memory socket implementation driving the client
// from tests. Reads honor the deadline the client sets, which is how the
// handshake and heartbeat timeouts are exercised without real sockets.
type fakeSocket struct {
	mu           sync.Mutex
	frames       []serverFrame
	pings        int
	readDeadline time.Time
	pongHandler  func(string) error

	inbound   chan []byte
	closed    chan struct{}
	closeOnce sync.Once
}

func newFakeSocket() *fakeSocket {
	return &fakeSocket{
		inbound: make(chan []byte, 16),
		closed:  make(chan struct{}),
	}
}

func (f *fakeSocket) ReadMessage() (int, []byte, error) {
	for {
		f.mu.Lock()
		deadline := f.readDeadline
		f.mu.Unlock()

		var timer *time.Timer
		var timeout <-chan time.Time
		if !deadline.IsZero() {
			wait := time.Until(deadline)
			if wait <= 0 {
				return 0, nil, errReadTimeout
			}
			timer = time.NewTimer(wait)
			timeout = timer.C
		}

		select {
		case data := <-f.inbound:
			if timer != nil {
				timer.Stop()
			}
			return websocket.TextMessage, data, nil
		case <-f.closed:
			if timer != nil {
				timer.Stop()
			}
			return 0, nil, errSocketClosed
		case <-timeout:
			// Like a real net.Conn, a deadline extended mid-read keeps
			// the blocked read alive; re-arm against the current value.
			f.mu.Lock()
			extended := f.readDeadline.After(deadline)
			f.mu.Unlock()
			if extended {
				continue
			}
			return 0, nil, errReadTimeout
		}
	}
}

func (f *fakeSocket) WriteMessage(messageType int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch messageType {
	case websocket.TextMessage:
		var frame serverFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			return err
		}
		f.frames = append(f.frames, frame)
	case websocket.PingMessage:
		f.pings++
	}
	return nil
}

func (f *fakeSocket) SetReadDeadline(t time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readDeadline = t
	return nil
}

func (f *fakeSocket) SetWriteDeadline(t time.Time) error { return nil }

func (f *fakeSocket) SetPongHandler(h func(string) error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pongHandler = h
}

func (f *fakeSocket) Close() error {
	f.closeOnce.Do(func() { close(f.closed) })
	return nil
}

func (f *fakeSocket) push(t *testing.T, raw string) {
	t.Helper()
	select {
	case f.inbound <- []byte(raw):
	case <-time.After(time.Second):
		t.Fatal("client not reading inbound frames")
	}
}

// pong simulates a pong control frame from the peer.
func (f *fakeSocket) pong() {
	f.mu.Lock()
	h := f.pongHandler
	f.mu.Unlock()
	if h != nil {
		_ = h("")
	}
}

func (f *fakeSocket) framesSnapshot() []serverFrame {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]serverFrame, len(f.frames))
	copy(out, f.frames)
	return out
}

func (f *fakeSocket) pingCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pings
}

// waitFrames blocks until the socket has received at least n text frames.
func (f *fakeSocket) waitFrames(t *testing.T, n int) []serverFrame {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if frames := f.framesSnapshot(); len(frames) >= n {
			return frames
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d frames, got %d", n, len(f.framesSnapshot()))
	return nil
}

func waitFor(t *testing.T, cond func() bool, message string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(message)
}
