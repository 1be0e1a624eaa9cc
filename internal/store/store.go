package store

import (
	"context"
	"errors"
	"time"

	"kumpul/server/internal/models"
)

// ErrNotFound is returned when a looked-up row does not exist.
var ErrNotFound = errors.New("store: not found")

// InsertMessageParams carries the fields for a new message row.
type InsertMessageParams struct {
	SenderID       int64
	ConversationID int64
	ReceiverID     *int64 // Legacy peer-addressed messages only
	Content        string
}

// Store defines persistence for conversations, participants and messages,
// plus the read-only user/event directory lookups the chat core needs.
// PostgresStore and MemoryStore both implement this interface.
type Store interface {
	Close()
	Ping(ctx context.Context) error

	// Conversations. The Ensure methods are atomic find-or-create: the
	// conversation row and its initial participant rows are written in one
	// transaction, and a concurrent duplicate insert resolves to the
	// existing row. The bool reports whether a new conversation was created.
	EnsureEventConversation(ctx context.Context, eventID int64, title string, creatorID int64) (*models.Conversation, bool, error)
	EnsureDirectConversation(ctx context.Context, userA, userB int64) (*models.Conversation, bool, error)
	GetConversation(ctx context.Context, id int64) (*models.Conversation, error)

	// Participants. AddParticipant is idempotent on (conversationID, userID).
	AddParticipant(ctx context.Context, conversationID, userID int64) error
	IsParticipant(ctx context.Context, conversationID, userID int64) (bool, error)
	ParticipantIDs(ctx context.Context, conversationID int64) ([]int64, error)
	SetLastRead(ctx context.Context, conversationID, userID int64, at time.Time) error

	// Messages
	InsertMessage(ctx context.Context, p InsertMessageParams) (*models.Message, error)
	ListMessages(ctx context.Context, conversationID int64) ([]models.Message, error)
	ListConversationSummaries(ctx context.Context, userID int64) ([]models.ConversationSummary, error)

	// Legacy read tracking on the receiver_id/is_read fields
	MarkMessageRead(ctx context.Context, messageID int64) error
	MarkAllMessagesRead(ctx context.Context, receiverID int64) error

	// Directory reads against the platform's users/events tables
	GetUserProfile(ctx context.Context, userID int64) (*models.UserProfile, error)
	GetEventTitle(ctx context.Context, eventID int64) (string, error)
}
