package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/threadspire/threadspire/internal/models"
)

type TokenStore struct {
	pool *pgxpool.Pool
}

func NewTokenStore(pool *pgxpool.Pool) *TokenStore {
	return &TokenStore{pool: pool}
}

func (s *TokenStore) Create(ctx context.Context, userID uuid.UUID, token string) (*models.RefreshToken, error) {
	query := `
		INSERT INTO refresh_tokens (id, user_id, token, created_at)
		VALUES (gen_random_uuid(), $1, $2, now())
		RETURNING id, user_id, token, created_at`

	var t models.RefreshToken
	err := s.pool.QueryRow(ctx, query, userID, token).Scan(
		&t.ID,
		&t.UserID,
		&t.Token,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert refresh token: %w", err)
	}
	return &t, nil
}

func (s *TokenStore) GetByToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	query := `
		SELECT id, user_id, token, created_at
		FROM refresh_tokens
		WHERE token = $1`

	var t models.RefreshToken
	err := s.pool.QueryRow(ctx, query, token).Scan(
		&t.ID,
		&t.UserID,
		&t.Token,
		&t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get refresh token: %w", err)
	}
	return &t, nil
}

func (s *TokenStore) DeleteByToken(ctx context.Context, token string) error {
	query := `DELETE FROM refresh_tokens WHERE token = $1`

	if _, err := s.pool.Exec(ctx, query, token); err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}
	return nil
}

// Rotate consumes the old token row and stores the replacement in one
// transaction. There is no instant at which both tokens are redeemable.
func (s *TokenStore) Rotate(ctx context.Context, oldID uuid.UUID, userID uuid.UUID, newToken string) (*models.RefreshToken, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin rotate: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM refresh_tokens WHERE id = $1`, oldID); err != nil {
		return nil, fmt.Errorf("delete old refresh token: %w", err)
	}

	query := `
		INSERT INTO refresh_tokens (id, user_id, token, created_at)
		VALUES (gen_random_uuid(), $1, $2, now())
		RETURNING id, user_id, token, created_at`

	var t models.RefreshToken
	err = tx.QueryRow(ctx, query, userID, newToken).Scan(
		&t.ID,
		&t.UserID,
		&t.Token,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert rotated refresh token: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit rotate: %w", err)
	}
	return &t, nil
}
