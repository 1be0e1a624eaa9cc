package models

import "time"

// Message represents a chat message
type Message struct {
	ID             int64     `json:"id" db:"id"`
	SenderID       int64     `json:"senderId" db:"sender_id"`
	ConversationID int64     `json:"conversationId" db:"conversation_id"`
	ReceiverID     *int64    `json:"receiverId,omitempty" db:"receiver_id"` // Legacy peer-addressed path only
	Content        string    `json:"content" db:"content"`
	IsRead         bool      `json:"isRead" db:"is_read"` // Meaningful only when ReceiverID is set
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
}

// MessageWithSender includes the sender's profile for display
type MessageWithSender struct {
	ID             int64       `json:"id"`
	Sender         UserProfile `json:"sender"`
	ConversationID int64       `json:"conversationId"`
	ReceiverID     *int64      `json:"receiverId,omitempty"`
	Content        string      `json:"content"`
	IsRead         bool        `json:"isRead"`
	CreatedAt      time.Time   `json:"createdAt"`
}
