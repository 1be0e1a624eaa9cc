package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// The users and events tables are owned by the main platform service;
// this schema only covers the chat core. The partial unique indexes back
// the one-conversation-per-event and one-conversation-per-pair guarantees
// so concurrent creates resolve at the storage level.
const schema = `
CREATE TABLE IF NOT EXISTS conversations (
	id BIGSERIAL PRIMARY KEY,
	type TEXT NOT NULL CHECK (type IN ('direct', 'group', 'event')),
	title TEXT,
	event_id BIGINT,
	direct_key TEXT,
	created_by BIGINT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE UNIQUE INDEX IF NOT EXISTS conversations_event_id_uniq
	ON conversations (event_id) WHERE type = 'event';

CREATE UNIQUE INDEX IF NOT EXISTS conversations_direct_key_uniq
	ON conversations (direct_key) WHERE type = 'direct';

CREATE TABLE IF NOT EXISTS conversation_participants (
	conversation_id BIGINT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
	user_id BIGINT NOT NULL,
	joined_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	last_read_at TIMESTAMPTZ,
	PRIMARY KEY (conversation_id, user_id)
);

CREATE TABLE IF NOT EXISTS messages (
	id BIGSERIAL PRIMARY KEY,
	sender_id BIGINT NOT NULL,
	conversation_id BIGINT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
	receiver_id BIGINT,
	content TEXT NOT NULL,
	is_read BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS messages_conversation_created_idx
	ON messages (conversation_id, created_at, id);
`

// RunMigrations applies the chat schema. Statements are idempotent, so
// running them on every startup is safe.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schema)
	return err
}
