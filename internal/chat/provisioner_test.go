package chat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"kumpul/server/internal/models"
)

func TestEnsureEventGroupChatIdempotent(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	first, err := svc.EnsureEventGroupChat(ctx, 100, 1)
	require.NoError(t, err)
	require.Equal(t, models.ConversationEvent, first.Type)
	require.NotNil(t, first.EventID)
	require.EqualValues(t, 100, *first.EventID)
	require.NotNil(t, first.Title)
	require.Equal(t, "Beach Party Group Chat", *first.Title)

	second, err := svc.EnsureEventGroupChat(ctx, 100, 1)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)

	// The second call must not have added membership side effects.
	ids, err := st.ParticipantIDs(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, []int64{1}, ids)
}

func TestEnsureEventGroupChatUnknownEvent(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.EnsureEventGroupChat(context.Background(), 999, 1)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAddParticipantIdempotent(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	conv, err := svc.EnsureEventGroupChat(ctx, 100, 1)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, svc.AddParticipant(ctx, conv.ID, 2))
	}

	ids, err := st.ParticipantIDs(ctx, conv.ID)
	require.NoError(t, err)
	require.Equal(t, []int64{1, 2}, ids)
}

func TestAddParticipantUnknownConversation(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.AddParticipant(context.Background(), 42, 2)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAddParticipantUnknownUser(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	conv, err := svc.EnsureEventGroupChat(ctx, 100, 1)
	require.NoError(t, err)

	err = svc.AddParticipant(ctx, conv.ID, 999)
	require.ErrorIs(t, err, ErrNotFound)
}

// The approval workflow: host approves attendee1 then attendee2, each
// approval going through ensure-then-add.
func TestApprovalWorkflow(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	for _, attendee := range []int64{2, 3} {
		conv, err := svc.EnsureEventGroupChat(ctx, 100, 1)
		require.NoError(t, err)
		require.NoError(t, svc.AddParticipant(ctx, conv.ID, attendee))
	}

	conv, err := svc.EnsureEventGroupChat(ctx, 100, 1)
	require.NoError(t, err)
	require.Equal(t, models.ConversationEvent, conv.Type)

	ids, err := st.ParticipantIDs(ctx, conv.ID)
	require.NoError(t, err)
	require.Equal(t, []int64{1, 2, 3}, ids)
}
