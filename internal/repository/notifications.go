package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kestrelhq/nfeed/internal/client/kestrel"
)

type NotificationRepository interface {
	UpsertAll(ctx context.Context, records []kestrel.Notification) error

	// Recent returns up to limit cached records, newest first.
	Recent(ctx context.Context, limit int) ([]kestrel.Notification, error)

	SetRead(ctx context.Context, id string, read bool) error
	MarkAllRead(ctx context.Context) error
	Delete(ctx context.Context, id string) error
}

type notificationRepo struct {
	db *sql.DB
}

var _ NotificationRepository = (*notificationRepo)(nil)

func (r *notificationRepo) UpsertAll(ctx context.Context, records []kestrel.Notification) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const q = `
		INSERT INTO notifications (id, title, message, category, priority, action_url, created_at, is_read)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			message = excluded.message,
			category = excluded.category,
			priority = excluded.priority,
			action_url = excluded.action_url,
			created_at = excluded.created_at,
			is_read = excluded.is_read`

	for i := range records {
		n := &records[i]
		if _, err := tx.ExecContext(ctx, q,
			n.ID, n.Title, n.Message, string(n.Category), string(n.Priority),
			n.ActionURL, n.CreatedAt.UTC().Format(time.RFC3339Nano), boolToInt(n.Read),
		); err != nil {
			return fmt.Errorf("failed to upsert notification %s: %w", n.ID, err)
		}
	}

	return tx.Commit()
}

func (r *notificationRepo) Recent(ctx context.Context, limit int) ([]kestrel.Notification, error) {
	const q = `
		SELECT id, title, message, category, priority, action_url, created_at, is_read
		FROM notifications
		ORDER BY created_at DESC
		LIMIT ?`

	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []kestrel.Notification
	for rows.Next() {
		var (
			n         kestrel.Notification
			createdAt string
			read      int
		)
		if err := rows.Scan(&n.ID, &n.Title, &n.Message, &n.Category, &n.Priority, &n.ActionURL, &createdAt, &read); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		t, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			continue
		}
		n.CreatedAt = t
		n.Read = read != 0
		records = append(records, n)
	}

	return records, rows.Err()
}

func (r *notificationRepo) SetRead(ctx context.Context, id string, read bool) error {
	_, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read = ? WHERE id = ?`, boolToInt(read), id)
	if err != nil {
		return fmt.Errorf("failed to update read state: %w", err)
	}
	return nil
}

func (r *notificationRepo) MarkAllRead(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read = 1 WHERE is_read = 0`); err != nil {
		return fmt.Errorf("failed to mark all read: %w", err)
	}
	return nil
}

func (r *notificationRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
