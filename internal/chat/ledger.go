package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"kumpul/server/internal/metrics"
	"kumpul/server/internal/models"
	"kumpul/server/internal/store"
)

// PostMessage appends a message to a conversation. The sender must be a
// current participant; otherwise nothing is written.
func (s *Service) PostMessage(ctx context.Context, senderID, conversationID int64, content string) (*models.MessageWithSender, error) {
	return s.post(ctx, senderID, conversationID, nil, content)
}

// PostDirectMessage is the legacy peer-addressed path: the direct
// conversation is resolved first, then the message is posted with the
// receiver recorded on the row.
func (s *Service) PostDirectMessage(ctx context.Context, senderID, receiverID int64, content string) (*models.MessageWithSender, error) {
	conv, err := s.ResolveDirectConversation(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}
	return s.post(ctx, senderID, conv.ID, &receiverID, content)
}

func (s *Service) post(ctx context.Context, senderID, conversationID int64, receiverID *int64, content string) (*models.MessageWithSender, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("message content is empty: %w", ErrValidation)
	}

	ok, err := s.store.IsParticipant(ctx, conversationID, senderID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("not a participant: %w", ErrForbidden)
	}

	msg, err := s.store.InsertMessage(ctx, store.InsertMessageParams{
		SenderID:       senderID,
		ConversationID: conversationID,
		ReceiverID:     receiverID,
		Content:        content,
	})
	if err != nil {
		return nil, err
	}
	metrics.MessagesPosted.Inc()

	sender, err := s.store.GetUserProfile(ctx, senderID)
	if err != nil {
		return nil, err
	}

	return &models.MessageWithSender{
		ID:             msg.ID,
		Sender:         *sender,
		ConversationID: msg.ConversationID,
		ReceiverID:     msg.ReceiverID,
		Content:        msg.Content,
		IsRead:         msg.IsRead,
		CreatedAt:      msg.CreatedAt,
	}, nil
}

// ListMessages returns a conversation's history in insertion order, each
// message enriched with its sender's profile. Non-participants get
// ErrForbidden, not an empty list.
func (s *Service) ListMessages(ctx context.Context, conversationID, requesterID int64) ([]models.MessageWithSender, error) {
	ok, err := s.store.IsParticipant(ctx, conversationID, requesterID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("not a participant: %w", ErrForbidden)
	}

	msgs, err := s.store.ListMessages(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	// Sender profiles are joined at read time; a conversation rarely has
	// more than a handful of distinct senders, so cache per call.
	profiles := make(map[int64]models.UserProfile)
	out := make([]models.MessageWithSender, 0, len(msgs))
	for _, msg := range msgs {
		sender, ok := profiles[msg.SenderID]
		if !ok {
			p, err := s.store.GetUserProfile(ctx, msg.SenderID)
			if err != nil {
				return nil, err
			}
			sender = *p
			profiles[msg.SenderID] = sender
		}
		out = append(out, models.MessageWithSender{
			ID:             msg.ID,
			Sender:         sender,
			ConversationID: msg.ConversationID,
			ReceiverID:     msg.ReceiverID,
			Content:        msg.Content,
			IsRead:         msg.IsRead,
			CreatedAt:      msg.CreatedAt,
		})
	}
	return out, nil
}

// MarkConversationRead stamps the participant's last-read time. This is
// the group-aware read-state mechanism; unread indicators compare message
// timestamps against it at read time.
func (s *Service) MarkConversationRead(ctx context.Context, conversationID, userID int64) error {
	err := s.store.SetLastRead(ctx, conversationID, userID, time.Now())
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("not a participant: %w", ErrForbidden)
	}
	return err
}

// MarkMessageRead flips the legacy per-message flag. Only peer-addressed
// messages carry it; group messages have no single receiver.
func (s *Service) MarkMessageRead(ctx context.Context, messageID int64) error {
	err := s.store.MarkMessageRead(ctx, messageID)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("message %d: %w", messageID, ErrNotFound)
	}
	return err
}

// MarkAllMessagesRead marks every legacy peer-addressed message delivered
// to the user as read.
func (s *Service) MarkAllMessagesRead(ctx context.Context, userID int64) error {
	return s.store.MarkAllMessagesRead(ctx, userID)
}

// ListConversations returns the user's inbox: one summary per
// conversation with at least one message, newest activity first.
func (s *Service) ListConversations(ctx context.Context, userID int64) ([]models.ConversationSummary, error) {
	return s.store.ListConversationSummaries(ctx, userID)
}
