package models

import "time"

// ConversationType discriminates the three kinds of conversations.
type ConversationType string

const (
	ConversationDirect ConversationType = "direct"
	ConversationGroup  ConversationType = "group"
	ConversationEvent  ConversationType = "event"
)

// Conversation represents a chat channel
type Conversation struct {
	ID        int64            `json:"id" db:"id"`
	Type      ConversationType `json:"type" db:"type"`
	Title     *string          `json:"title,omitempty" db:"title"`     // Null for direct chats
	EventID   *int64           `json:"eventId,omitempty" db:"event_id"` // Set iff type is event
	CreatedBy int64            `json:"createdBy" db:"created_by"`
	CreatedAt time.Time        `json:"createdAt" db:"created_at"`
}

// Participant represents a user's membership in a conversation
// Primary key: (ConversationID, UserID)
type Participant struct {
	ConversationID int64      `json:"conversationId" db:"conversation_id"`
	UserID         int64      `json:"userId" db:"user_id"`
	JoinedAt       time.Time  `json:"joinedAt" db:"joined_at"`
	LastReadAt     *time.Time `json:"lastReadAt,omitempty" db:"last_read_at"`
}

// LastMessage is the most recent message embedded in an inbox summary.
type LastMessage struct {
	SenderID  int64     `json:"senderId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// ConversationSummary is one inbox row: the conversation plus its most
// recent message and an unread indicator for the requesting user. Direct
// summaries carry the other participant's profile; group and event
// summaries carry a title and member count instead.
type ConversationSummary struct {
	ID               int64            `json:"id"`
	Type             ConversationType `json:"type"`
	Title            *string          `json:"title,omitempty"`
	EventID          *int64           `json:"eventId,omitempty"`
	ParticipantCount int              `json:"participantCount"`
	Peer             *UserProfile     `json:"peer,omitempty"`
	LastMessage      LastMessage      `json:"lastMessage"`
	Unread           bool             `json:"unread"`
}
