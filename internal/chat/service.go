package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"kumpul/server/internal/models"
	"kumpul/server/internal/store"
)

// Service implements the conversation and messaging core: group chat
// provisioning, direct conversation resolution, the message ledger and
// inbox summaries. Identity is supplied by the caller; the platform's
// auth layer has already verified it.
type Service struct {
	store store.Store
	log   zerolog.Logger
}

// NewService creates a chat Service over the given store.
func NewService(st store.Store, log zerolog.Logger) *Service {
	return &Service{store: st, log: log}
}

func (s *Service) userExists(ctx context.Context, userID int64) error {
	_, err := s.store.GetUserProfile(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}
	return err
}

func (s *Service) conversation(ctx context.Context, conversationID int64) (*models.Conversation, error) {
	conv, err := s.store.GetConversation(ctx, conversationID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("conversation %d: %w", conversationID, ErrNotFound)
	}
	return conv, err
}
