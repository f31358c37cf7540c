package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var ErrNoToken = errors.New("no access token stored")

type TokenRepository interface {
	Save(ctx context.Context, accessToken string) error

	// Get returns the stored access token, or ErrNoToken.
	Get(ctx context.Context) (string, error)

	Clear(ctx context.Context) error
}

type tokenRepo struct {
	db *sql.DB
}

var _ TokenRepository = (*tokenRepo)(nil)

func (r *tokenRepo) Save(ctx context.Context, accessToken string) error {
	const q = `
		INSERT INTO auth_token (id, access_token, updated_at)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			access_token = excluded.access_token,
			updated_at = excluded.updated_at`

	if _, err := r.db.ExecContext(ctx, q, accessToken, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

func (r *tokenRepo) Get(ctx context.Context) (string, error) {
	var token string
	err := r.db.QueryRowContext(ctx, `SELECT access_token FROM auth_token WHERE id = 1`).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNoToken
	}
	if err != nil {
		return "", fmt.Errorf("failed to load token: %w", err)
	}
	return token, nil
}

func (r *tokenRepo) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM auth_token WHERE id = 1`); err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}
	return nil
}
