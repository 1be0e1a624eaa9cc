package chat

import (
	"testing"

	"github.com/rs/zerolog"

	"kumpul/server/internal/models"
	"kumpul/server/internal/store"
)

func strPtr(s string) *string { return &s }

// newTestService returns a Service over a MemoryStore seeded with four
// users and one event.
func newTestService(t *testing.T) (*Service, *store.MemoryStore) {
	t.Helper()

	st := store.NewMemoryStore()
	st.SeedUser(models.UserProfile{ID: 1, DisplayName: "Host", AvatarURL: strPtr("https://cdn.example/host.png")})
	st.SeedUser(models.UserProfile{ID: 2, DisplayName: "Attendee One"})
	st.SeedUser(models.UserProfile{ID: 3, DisplayName: "Attendee Two"})
	st.SeedUser(models.UserProfile{ID: 4, DisplayName: "Stranger"})
	st.SeedEvent(100, "Beach Party")

	return NewService(st, zerolog.Nop()), st
}
