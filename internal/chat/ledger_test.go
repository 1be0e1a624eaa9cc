package chat

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPostMessageForbiddenForNonParticipant(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	conv, err := svc.ResolveDirectConversation(ctx, 1, 2)
	require.NoError(t, err)

	_, err = svc.PostMessage(ctx, 4, conv.ID, "let me in")
	require.ErrorIs(t, err, ErrForbidden)

	// Nothing may have been written.
	msgs, err := st.ListMessages(ctx, conv.ID)
	require.NoError(t, err)
	require.Empty(t, msgs)
}

func TestPostMessageEmptyContent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	conv, err := svc.ResolveDirectConversation(ctx, 1, 2)
	require.NoError(t, err)

	_, err = svc.PostMessage(ctx, 1, conv.ID, "   ")
	require.ErrorIs(t, err, ErrValidation)
}

func TestPostMessageEnrichesSender(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	conv, err := svc.ResolveDirectConversation(ctx, 1, 2)
	require.NoError(t, err)

	msg, err := svc.PostMessage(ctx, 1, conv.ID, "hello")
	require.NoError(t, err)
	require.Equal(t, "Host", msg.Sender.DisplayName)
	require.NotNil(t, msg.Sender.AvatarURL)
	require.Nil(t, msg.ReceiverID)
}

func TestListMessagesInsertionOrder(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	conv, err := svc.ResolveDirectConversation(ctx, 1, 2)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		sender := int64(1)
		if i%2 == 1 {
			sender = 2
		}
		_, err := svc.PostMessage(ctx, sender, conv.ID, fmt.Sprintf("message %d", i))
		require.NoError(t, err)
	}

	msgs, err := svc.ListMessages(ctx, conv.ID, 1)
	require.NoError(t, err)
	require.Len(t, msgs, 5)

	for i, msg := range msgs {
		require.Equal(t, fmt.Sprintf("message %d", i), msg.Content)
		if i > 0 {
			require.False(t, msg.CreatedAt.Before(msgs[i-1].CreatedAt))
		}
	}
}

func TestListMessagesForbiddenForNonParticipant(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	conv, err := svc.ResolveDirectConversation(ctx, 1, 2)
	require.NoError(t, err)
	_, err = svc.PostMessage(ctx, 1, conv.ID, "private")
	require.NoError(t, err)

	// Forbidden, not an empty list.
	_, err = svc.ListMessages(ctx, conv.ID, 4)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestMarkConversationReadClearsUnread(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	conv, err := svc.ResolveDirectConversation(ctx, 1, 2)
	require.NoError(t, err)
	_, err = svc.PostMessage(ctx, 1, conv.ID, "unread for user 2")
	require.NoError(t, err)

	summaries, err := svc.ListConversations(ctx, 2)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	require.True(t, summaries[0].Unread)

	require.NoError(t, svc.MarkConversationRead(ctx, conv.ID, 2))

	summaries, err = svc.ListConversations(ctx, 2)
	require.NoError(t, err)
	require.False(t, summaries[0].Unread)
}

func TestMarkConversationReadNonParticipant(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	conv, err := svc.ResolveDirectConversation(ctx, 1, 2)
	require.NoError(t, err)

	err = svc.MarkConversationRead(ctx, conv.ID, 4)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestLegacyMarkMessageRead(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	sent, err := svc.PostDirectMessage(ctx, 1, 2, "legacy addressed")
	require.NoError(t, err)
	require.False(t, sent.IsRead)

	require.NoError(t, svc.MarkMessageRead(ctx, sent.ID))

	msgs, err := st.ListMessages(ctx, sent.ConversationID)
	require.NoError(t, err)
	require.True(t, msgs[0].IsRead)
}

func TestLegacyMarkMessageReadRejectsGroupMessages(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	conv, err := svc.EnsureEventGroupChat(ctx, 100, 1)
	require.NoError(t, err)
	msg, err := svc.PostMessage(ctx, 1, conv.ID, "no single receiver")
	require.NoError(t, err)

	// The legacy flag only exists for peer-addressed messages.
	err = svc.MarkMessageRead(ctx, msg.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLegacyMarkAllMessagesRead(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	first, err := svc.PostDirectMessage(ctx, 1, 2, "one")
	require.NoError(t, err)
	_, err = svc.PostDirectMessage(ctx, 3, 2, "two")
	require.NoError(t, err)

	require.NoError(t, svc.MarkAllMessagesRead(ctx, 2))

	msgs, err := st.ListMessages(ctx, first.ConversationID)
	require.NoError(t, err)
	for _, msg := range msgs {
		require.True(t, msg.IsRead)
	}
}
