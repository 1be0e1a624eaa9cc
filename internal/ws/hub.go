package ws

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"kumpul/server/internal/metrics"
)

// Directory is the connection registry abstraction: one active client per
// user id. The Hub is the in-process implementation; a distributed
// deployment would substitute one backed by shared state.
type Directory interface {
	Register(c *Client)
	Unregister(c *Client)
	Touch(c *Client)
	Lookup(userID int64) (*Client, bool)
	OnlineUserIDs() []int64
	Count() int
}

// Hub maintains the set of active clients keyed by user id. A new
// registration for a user replaces and closes that user's previous
// client.
type Hub struct {
	mu       sync.RWMutex
	clients  map[int64]*Client
	presence Presence
	log      zerolog.Logger
}

var _ Directory = (*Hub)(nil)

// NewHub creates a Hub. Pass NoopPresence{} when no shared presence
// backend is configured.
func NewHub(presence Presence, log zerolog.Logger) *Hub {
	return &Hub{
		clients:  make(map[int64]*Client),
		presence: presence,
		log:      log,
	}
}

// Register adds the client, replacing any previous client for the same
// user. The replaced client is closed after the swap so its teardown
// cannot evict the new entry.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	previous := h.clients[c.UserID]
	h.clients[c.UserID] = c
	count := len(h.clients)
	h.mu.Unlock()

	metrics.WSConnectionsActive.Set(float64(count))

	if err := h.presence.Up(context.Background(), c.UserID); err != nil {
		h.log.Warn().Err(err).Int64("userId", c.UserID).Msg("failed to record presence")
	}

	if previous != nil && previous.SessionID != c.SessionID {
		previous.Close()
	}

	h.log.Info().
		Int64("userId", c.UserID).
		Str("sessionId", c.SessionID).
		Msg("client connected")
}

// Unregister removes the client if it is still the registered one for its
// user. A stale client that was already replaced leaves the registry
// untouched.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	current, ok := h.clients[c.UserID]
	if !ok || current.SessionID != c.SessionID {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c.UserID)
	count := len(h.clients)
	h.mu.Unlock()

	metrics.WSConnectionsActive.Set(float64(count))

	if err := h.presence.Down(context.Background(), c.UserID); err != nil {
		h.log.Warn().Err(err).Int64("userId", c.UserID).Msg("failed to clear presence")
	}

	h.log.Info().
		Int64("userId", c.UserID).
		Str("sessionId", c.SessionID).
		Msg("client disconnected")
}

// Lookup returns the active client for a user, if any.
func (h *Hub) Lookup(userID int64) (*Client, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	c, ok := h.clients[userID]
	return c, ok
}

// OnlineUserIDs returns the ids of all currently connected users.
func (h *Hub) OnlineUserIDs() []int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ids := make([]int64, 0, len(h.clients))
	for id := range h.clients {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}

// Touch refreshes the user's presence entry. Clients call it on
// heartbeat activity so Redis-backed entries outlive their TTL while the
// socket stays healthy.
func (h *Hub) Touch(c *Client) {
	if err := h.presence.Up(context.Background(), c.UserID); err != nil {
		h.log.Warn().Err(err).Int64("userId", c.UserID).Msg("failed to refresh presence")
	}
}

// Close terminates every registered client.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.Close()
	}
}
