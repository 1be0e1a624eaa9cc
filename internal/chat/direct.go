package chat

import (
	"context"
	"fmt"

	"kumpul/server/internal/metrics"
	"kumpul/server/internal/models"
)

// ResolveDirectConversation finds or creates the 1:1 conversation between
// two users. It is symmetric: either argument order yields the same
// conversation, and repeated calls never create a second one for the pair.
func (s *Service) ResolveDirectConversation(ctx context.Context, userA, userB int64) (*models.Conversation, error) {
	if userA == userB {
		return nil, fmt.Errorf("cannot open a direct conversation with yourself: %w", ErrValidation)
	}
	if err := s.userExists(ctx, userA); err != nil {
		return nil, err
	}
	if err := s.userExists(ctx, userB); err != nil {
		return nil, err
	}

	conv, created, err := s.store.EnsureDirectConversation(ctx, userA, userB)
	if err != nil {
		return nil, err
	}

	if created {
		metrics.ConversationsCreated.WithLabelValues(string(models.ConversationDirect)).Inc()
		s.log.Info().
			Int64("conversationId", conv.ID).
			Int64("userA", userA).
			Int64("userB", userB).
			Msg("direct conversation created")
	}
	return conv, nil
}
