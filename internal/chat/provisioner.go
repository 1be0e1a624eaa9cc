package chat

import (
	"context"
	"errors"
	"fmt"

	"kumpul/server/internal/metrics"
	"kumpul/server/internal/models"
	"kumpul/server/internal/store"
)

// EnsureEventGroupChat finds or creates the single event-typed
// conversation for an event. Repeated calls return the same conversation
// with no side effects; on first call the initiator (typically the event
// host) becomes its first participant.
func (s *Service) EnsureEventGroupChat(ctx context.Context, eventID, initiatorID int64) (*models.Conversation, error) {
	title, err := s.store.GetEventTitle(ctx, eventID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("event %d: %w", eventID, ErrNotFound)
		}
		return nil, err
	}

	conv, created, err := s.store.EnsureEventConversation(ctx, eventID, fmt.Sprintf("%s Group Chat", title), initiatorID)
	if err != nil {
		return nil, err
	}

	if created {
		metrics.ConversationsCreated.WithLabelValues(string(models.ConversationEvent)).Inc()
		s.log.Info().
			Int64("eventId", eventID).
			Int64("conversationId", conv.ID).
			Int64("initiatorId", initiatorID).
			Msg("event group chat created")
	}
	return conv, nil
}

// AddParticipant adds a user to a conversation. Adding an existing member
// is a silent no-op, so the approval workflow can call this on every
// approval without tracking prior state. It posts no system message.
func (s *Service) AddParticipant(ctx context.Context, conversationID, userID int64) error {
	if _, err := s.conversation(ctx, conversationID); err != nil {
		return err
	}
	if err := s.userExists(ctx, userID); err != nil {
		return err
	}
	return s.store.AddParticipant(ctx, conversationID, userID)
}
