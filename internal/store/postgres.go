package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"kumpul/server/internal/models"
)

// PostgresStore implements Store over a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to PostgreSQL and applies the chat schema.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := RunMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close closes the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping checks the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// directKey is the canonical lookup key for a direct conversation: the
// unordered user pair encoded as "lo:hi". Both argument orders map to the
// same key, which is what makes the resolver symmetric.
func directKey(a, b int64) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d:%d", a, b)
}

const conversationColumns = "id, type, title, event_id, created_by, created_at"

func scanConversation(row pgx.Row) (*models.Conversation, error) {
	conv := &models.Conversation{}
	err := row.Scan(&conv.ID, &conv.Type, &conv.Title, &conv.EventID, &conv.CreatedBy, &conv.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return conv, nil
}

// EnsureEventConversation finds or creates the single event-typed
// conversation for an event. The insert races through the partial unique
// index: a loser of the race falls back to fetching the winner's row.
// On create, the creator's participant row is written in the same
// transaction.
func (s *PostgresStore) EnsureEventConversation(ctx context.Context, eventID int64, title string, creatorID int64) (*models.Conversation, bool, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback(ctx)

	conv := &models.Conversation{}
	err = tx.QueryRow(ctx, `
		INSERT INTO conversations (type, title, event_id, created_by)
		VALUES ('event', $1, $2, $3)
		ON CONFLICT (event_id) WHERE type = 'event' DO NOTHING
		RETURNING `+conversationColumns,
		title, eventID, creatorID,
	).Scan(&conv.ID, &conv.Type, &conv.Title, &conv.EventID, &conv.CreatedBy, &conv.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		// Lost the race or the conversation already existed.
		existing, err := scanConversation(s.pool.QueryRow(ctx, `
			SELECT `+conversationColumns+` FROM conversations
			WHERE type = 'event' AND event_id = $1
		`, eventID))
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO conversation_participants (conversation_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (conversation_id, user_id) DO NOTHING
	`, conv.ID, creatorID)
	if err != nil {
		return nil, false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, err
	}
	return conv, true, nil
}

// EnsureDirectConversation finds or creates the 1:1 conversation for the
// given pair, keyed on the canonical sorted pair. On create, both
// participant rows land in the same transaction.
func (s *PostgresStore) EnsureDirectConversation(ctx context.Context, userA, userB int64) (*models.Conversation, bool, error) {
	key := directKey(userA, userB)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback(ctx)

	conv := &models.Conversation{}
	err = tx.QueryRow(ctx, `
		INSERT INTO conversations (type, direct_key, created_by)
		VALUES ('direct', $1, $2)
		ON CONFLICT (direct_key) WHERE type = 'direct' DO NOTHING
		RETURNING `+conversationColumns,
		key, userA,
	).Scan(&conv.ID, &conv.Type, &conv.Title, &conv.EventID, &conv.CreatedBy, &conv.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		existing, err := scanConversation(s.pool.QueryRow(ctx, `
			SELECT `+conversationColumns+` FROM conversations
			WHERE type = 'direct' AND direct_key = $1
		`, key))
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	for _, userID := range []int64{userA, userB} {
		_, err = tx.Exec(ctx, `
			INSERT INTO conversation_participants (conversation_id, user_id)
			VALUES ($1, $2)
			ON CONFLICT (conversation_id, user_id) DO NOTHING
		`, conv.ID, userID)
		if err != nil {
			return nil, false, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, err
	}
	return conv, true, nil
}

// GetConversation retrieves a conversation by id.
func (s *PostgresStore) GetConversation(ctx context.Context, id int64) (*models.Conversation, error) {
	return scanConversation(s.pool.QueryRow(ctx, `
		SELECT `+conversationColumns+` FROM conversations WHERE id = $1
	`, id))
}

// AddParticipant adds a membership row; adding an existing participant is
// a no-op.
func (s *PostgresStore) AddParticipant(ctx context.Context, conversationID, userID int64) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO conversation_participants (conversation_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (conversation_id, user_id) DO NOTHING
	`, conversationID, userID)
	return err
}

// IsParticipant reports whether the user belongs to the conversation.
func (s *PostgresStore) IsParticipant(ctx context.Context, conversationID, userID int64) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM conversation_participants
			WHERE conversation_id = $1 AND user_id = $2
		)
	`, conversationID, userID).Scan(&exists)
	return exists, err
}

// ParticipantIDs returns the user ids of all members of a conversation.
func (s *PostgresStore) ParticipantIDs(ctx context.Context, conversationID int64) ([]int64, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT user_id FROM conversation_participants
		WHERE conversation_id = $1
		ORDER BY joined_at, user_id
	`, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SetLastRead stamps the participant's last_read_at.
func (s *PostgresStore) SetLastRead(ctx context.Context, conversationID, userID int64, at time.Time) error {
	ct, err := s.pool.Exec(ctx, `
		UPDATE conversation_participants
		SET last_read_at = $3
		WHERE conversation_id = $1 AND user_id = $2
	`, conversationID, userID, at)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// InsertMessage appends a message to the conversation ledger.
func (s *PostgresStore) InsertMessage(ctx context.Context, p InsertMessageParams) (*models.Message, error) {
	msg := &models.Message{}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO messages (sender_id, conversation_id, receiver_id, content)
		VALUES ($1, $2, $3, $4)
		RETURNING id, sender_id, conversation_id, receiver_id, content, is_read, created_at
	`, p.SenderID, p.ConversationID, p.ReceiverID, p.Content).Scan(
		&msg.ID, &msg.SenderID, &msg.ConversationID, &msg.ReceiverID,
		&msg.Content, &msg.IsRead, &msg.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// ListMessages returns the conversation's messages in insertion order.
func (s *PostgresStore) ListMessages(ctx context.Context, conversationID int64) ([]models.Message, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, sender_id, conversation_id, receiver_id, content, is_read, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at, id
	`, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []models.Message
	for rows.Next() {
		var msg models.Message
		err := rows.Scan(
			&msg.ID, &msg.SenderID, &msg.ConversationID, &msg.ReceiverID,
			&msg.Content, &msg.IsRead, &msg.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}

// ListConversationSummaries returns one inbox row per conversation the
// user participates in, newest activity first. Conversations without any
// messages are skipped, which is what the inner join on the last-message
// lateral does.
func (s *PostgresStore) ListConversationSummaries(ctx context.Context, userID int64) ([]models.ConversationSummary, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT
			c.id, c.type, c.title, c.event_id,
			(SELECT COUNT(*) FROM conversation_participants WHERE conversation_id = c.id),
			m.sender_id, m.content, m.created_at,
			(m.sender_id <> p.user_id AND m.created_at > COALESCE(p.last_read_at, 'epoch'::timestamptz)),
			peer.id, peer.name, peer.avatar
		FROM conversation_participants p
		JOIN conversations c ON c.id = p.conversation_id
		JOIN LATERAL (
			SELECT sender_id, content, created_at
			FROM messages
			WHERE conversation_id = c.id
			ORDER BY created_at DESC, id DESC
			LIMIT 1
		) m ON TRUE
		LEFT JOIN LATERAL (
			SELECT u.id, u.name, u.avatar
			FROM conversation_participants cp
			JOIN users u ON u.id = cp.user_id
			WHERE cp.conversation_id = c.id AND cp.user_id <> p.user_id
			LIMIT 1
		) peer ON c.type = 'direct'
		WHERE p.user_id = $1
		ORDER BY m.created_at DESC, c.id DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []models.ConversationSummary
	for rows.Next() {
		var (
			sum        models.ConversationSummary
			peerID     *int64
			peerName   *string
			peerAvatar *string
		)
		err := rows.Scan(
			&sum.ID, &sum.Type, &sum.Title, &sum.EventID,
			&sum.ParticipantCount,
			&sum.LastMessage.SenderID, &sum.LastMessage.Content, &sum.LastMessage.CreatedAt,
			&sum.Unread,
			&peerID, &peerName, &peerAvatar,
		)
		if err != nil {
			return nil, err
		}
		if peerID != nil && peerName != nil {
			sum.Peer = &models.UserProfile{ID: *peerID, DisplayName: *peerName, AvatarURL: peerAvatar}
		}
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

// MarkMessageRead flips the legacy per-message flag. It only applies to
// peer-addressed messages, where receiver_id is set.
func (s *PostgresStore) MarkMessageRead(ctx context.Context, messageID int64) error {
	ct, err := s.pool.Exec(ctx, `
		UPDATE messages SET is_read = TRUE
		WHERE id = $1 AND receiver_id IS NOT NULL
	`, messageID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkAllMessagesRead flips the legacy flag on every peer-addressed
// message delivered to the user.
func (s *PostgresStore) MarkAllMessagesRead(ctx context.Context, receiverID int64) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE messages SET is_read = TRUE
		WHERE receiver_id = $1 AND is_read = FALSE
	`, receiverID)
	return err
}

// GetUserProfile reads the public profile fields from the platform's
// users table.
func (s *PostgresStore) GetUserProfile(ctx context.Context, userID int64) (*models.UserProfile, error) {
	profile := &models.UserProfile{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, avatar FROM users WHERE id = $1
	`, userID).Scan(&profile.ID, &profile.DisplayName, &profile.AvatarURL)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return profile, nil
}

// GetEventTitle reads an event's title from the platform's events table.
func (s *PostgresStore) GetEventTitle(ctx context.Context, eventID int64) (string, error) {
	var title string
	err := s.pool.QueryRow(ctx, `
		SELECT title FROM events WHERE id = $1
	`, eventID).Scan(&title)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return title, nil
}
