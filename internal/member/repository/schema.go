package repository

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"
)

// EnsureSchema creates the members table when missing.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	_, err := db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS members (
			id         BIGSERIAL PRIMARY KEY,
			username   TEXT        NOT NULL UNIQUE,
			email      TEXT        NOT NULL UNIQUE,
			password   TEXT        NOT NULL,
			is_staff   BOOLEAN     NOT NULL DEFAULT FALSE,
			avatar     TEXT        NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	return err
}
