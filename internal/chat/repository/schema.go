package repository

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"
)

// EnsureSchema creates the chat tables when missing. The unique pair
// constraint on chat_rooms backs EnsurePair's get-or-create; the two
// mirrored indexes on chat_messages serve pairwise history scans.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS chat_rooms (
			id              BIGSERIAL PRIMARY KEY,
			name            TEXT        NOT NULL,
			owner_id        BIGINT      NOT NULL REFERENCES members(id) ON DELETE CASCADE,
			counterparty_id BIGINT      NOT NULL REFERENCES members(id) ON DELETE CASCADE,
			created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (owner_id, counterparty_id)
		)`,
		`CREATE TABLE IF NOT EXISTS chat_messages (
			id           BIGSERIAL PRIMARY KEY,
			content      TEXT        NOT NULL,
			sender_id    BIGINT      NOT NULL REFERENCES members(id) ON DELETE CASCADE,
			recipient_id BIGINT      NOT NULL REFERENCES members(id) ON DELETE CASCADE,
			created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chat_messages_pair
			ON chat_messages (sender_id, recipient_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_chat_messages_pair_mirror
			ON chat_messages (recipient_id, sender_id, created_at)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
