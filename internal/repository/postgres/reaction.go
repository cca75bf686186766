package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/threadspire/threadspire/internal/models"
)

type ReactionStore struct {
	pool *pgxpool.Pool
}

func NewReactionStore(pool *pgxpool.Pool) *ReactionStore {
	return &ReactionStore{pool: pool}
}

// Set upserts against the unique index on (user_id, thread_id): one
// atomic statement, so two concurrent reactions from the same user can
// never produce two rows. The later emoji wins.
func (s *ReactionStore) Set(ctx context.Context, threadID, userID uuid.UUID, emoji string) (*models.Reaction, error) {
	query := `
		INSERT INTO reactions (id, thread_id, user_id, emoji, created_at)
		VALUES (gen_random_uuid(), $1, $2, $3, now())
		ON CONFLICT (user_id, thread_id) DO UPDATE SET emoji = EXCLUDED.emoji
		RETURNING id, thread_id, user_id, emoji, created_at`

	var r models.Reaction
	err := s.pool.QueryRow(ctx, query, threadID, userID, emoji).Scan(
		&r.ID,
		&r.ThreadID,
		&r.UserID,
		&r.Emoji,
		&r.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("set reaction: %w", err)
	}
	return &r, nil
}

func (s *ReactionStore) Clear(ctx context.Context, threadID, userID uuid.UUID) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM reactions WHERE thread_id = $1 AND user_id = $2`,
		threadID, userID)
	if err != nil {
		return false, fmt.Errorf("clear reaction: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *ReactionStore) ListByThread(ctx context.Context, threadID uuid.UUID) ([]models.Reaction, error) {
	query := `
		SELECT id, thread_id, user_id, emoji, created_at
		FROM reactions
		WHERE thread_id = $1
		ORDER BY created_at ASC`

	rows, err := s.pool.Query(ctx, query, threadID)
	if err != nil {
		return nil, fmt.Errorf("list reactions: %w", err)
	}
	defer rows.Close()

	reactions := make([]models.Reaction, 0)
	for rows.Next() {
		var r models.Reaction
		if err := rows.Scan(&r.ID, &r.ThreadID, &r.UserID, &r.Emoji, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan reaction: %w", err)
		}
		reactions = append(reactions, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reactions: %w", err)
	}

	return reactions, nil
}
