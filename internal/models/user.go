package models

// UserProfile is the public slice of a platform user that the chat core
// reads for display. Accounts themselves live in the main platform service.
type UserProfile struct {
	ID          int64   `json:"id" db:"id"`
	DisplayName string  `json:"displayName" db:"name"`
	AvatarURL   *string `json:"avatarUrl,omitempty" db:"avatar"`
}
