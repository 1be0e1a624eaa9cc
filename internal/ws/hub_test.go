package ws

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type fakePresence struct {
	mu    sync.Mutex
	ups   []int64
	downs []int64
}

func (p *fakePresence) Up(ctx context.Context, userID int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ups = append(p.ups, userID)
	return nil
}

func (p *fakePresence) Down(ctx context.Context, userID int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.downs = append(p.downs, userID)
	return nil
}

func registeredClient(userID int64, hub *Hub) *Client {
	c := NewClient(userID, newFakeSocket(), hub, nil, zerolog.Nop())
	c.UserID = userID
	return c
}

func TestHubRegisterAndLookup(t *testing.T) {
	hub := NewHub(NoopPresence{}, zerolog.Nop())

	c := registeredClient(7, hub)
	hub.Register(c)

	got, ok := hub.Lookup(7)
	require.True(t, ok)
	require.Same(t, c, got)
	require.Equal(t, 1, hub.Count())

	hub.Unregister(c)
	_, ok = hub.Lookup(7)
	require.False(t, ok)
	require.Equal(t, 0, hub.Count())
}

// A reconnect replaces the previous entry; the replaced client is closed
// and its late teardown cannot evict the replacement.
func TestHubReplacesExistingConnection(t *testing.T) {
	hub := NewHub(NoopPresence{}, zerolog.Nop())

	first := registeredClient(7, hub)
	second := registeredClient(7, hub)

	hub.Register(first)
	hub.Register(second)

	select {
	case <-first.done:
	case <-time.After(time.Second):
		t.Fatal("replaced client was not closed")
	}

	require.Equal(t, 1, hub.Count())
	got, ok := hub.Lookup(7)
	require.True(t, ok)
	require.Same(t, second, got)

	// Stale unregister from the replaced session is a no-op.
	hub.Unregister(first)
	got, ok = hub.Lookup(7)
	require.True(t, ok)
	require.Same(t, second, got)
}

func TestHubOnlineUserIDsSorted(t *testing.T) {
	hub := NewHub(NoopPresence{}, zerolog.Nop())

	for _, id := range []int64{42, 7, 19} {
		hub.Register(registeredClient(id, hub))
	}

	require.Equal(t, []int64{7, 19, 42}, hub.OnlineUserIDs())
	require.Equal(t, 3, hub.Count())
}

func TestHubRecordsPresence(t *testing.T) {
	presence := &fakePresence{}
	hub := NewHub(presence, zerolog.Nop())

	c := registeredClient(7, hub)
	hub.Register(c)
	hub.Touch(c)
	hub.Unregister(c)

	presence.mu.Lock()
	defer presence.mu.Unlock()
	require.Equal(t, []int64{7, 7}, presence.ups)
	require.Equal(t, []int64{7}, presence.downs)
}

func TestHubCloseTerminatesClients(t *testing.T) {
	hub := NewHub(NoopPresence{}, zerolog.Nop())

	a := registeredClient(1, hub)
	b := registeredClient(2, hub)
	hub.Register(a)
	hub.Register(b)

	hub.Close()

	for _, c := range []*Client{a, b} {
		select {
		case <-c.done:
		case <-time.After(time.Second):
			t.Fatal("client not closed on hub shutdown")
		}
	}
}
