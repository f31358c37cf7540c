package repository

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS notifications (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	message    TEXT NOT NULL,
	category   TEXT NOT NULL,
	priority   TEXT NOT NULL,
	action_url TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL,
	is_read    INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_notifications_created_at
	ON notifications (created_at DESC);

CREATE TABLE IF NOT EXISTS auth_token (
	id           INTEGER PRIMARY KEY CHECK (id = 1),
	access_token TEXT NOT NULL,
	updated_at   TEXT NOT NULL
)`

type Repository struct {
	Notifications NotificationRepository
	Tokens        TokenRepository
}

// Open opens (creating if needed) the local database and applies the schema.
// The caller owns closing the returned *sql.DB.
func Open(ctx context.Context, path string) (*sql.DB, *Repository, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return db, New(db), nil
}

func New(db *sql.DB) *Repository {
	return &Repository{
		Notifications: &notificationRepo{db: db},
		Tokens:        &tokenRepo{db: db},
	}
}
