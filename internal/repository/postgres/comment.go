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

type CommentStore struct {
	pool *pgxpool.Pool
}

func NewCommentStore(pool *pgxpool.Pool) *CommentStore {
	return &CommentStore{pool: pool}
}

func (s *CommentStore) Create(ctx context.Context, threadID, userID uuid.UUID, content string) (*models.Comment, error) {
	query := `
		INSERT INTO comments (id, thread_id, user_id, content, created_at, updated_at)
		VALUES (gen_random_uuid(), $1, $2, $3, now(), now())
		RETURNING id, thread_id, user_id, content, created_at, updated_at`

	var c models.Comment
	err := s.pool.QueryRow(ctx, query, threadID, userID, content).Scan(
		&c.ID,
		&c.ThreadID,
		&c.UserID,
		&c.Content,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	return &c, nil
}

func (s *CommentStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	query := `
		SELECT id, thread_id, user_id, content, created_at, updated_at
		FROM comments
		WHERE id = $1`

	var c models.Comment
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&c.ID,
		&c.ThreadID,
		&c.UserID,
		&c.Content,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get comment: %w", err)
	}
	return &c, nil
}

func (s *CommentStore) Update(ctx context.Context, id uuid.UUID, content string) (*models.Comment, error) {
	query := `
		UPDATE comments
		SET content = $1, updated_at = now()
		WHERE id = $2
		RETURNING id, thread_id, user_id, content, created_at, updated_at`

	var c models.Comment
	err := s.pool.QueryRow(ctx, query, content, id).Scan(
		&c.ID,
		&c.ThreadID,
		&c.UserID,
		&c.Content,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}
	return &c, nil
}

func (s *CommentStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}

func (s *CommentStore) ListByThread(ctx context.Context, threadID uuid.UUID) ([]models.Comment, error) {
	// Oldest first: a comment section reads top-down.
	query := `
		SELECT c.id, c.thread_id, c.user_id, c.content, c.created_at, c.updated_at,
		       u.id, u.name
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.thread_id = $1
		ORDER BY c.created_at ASC`

	rows, err := s.pool.Query(ctx, query, threadID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	comments := make([]models.Comment, 0)
	for rows.Next() {
		var c models.Comment
		var author models.UserSummary
		if err := rows.Scan(
			&c.ID,
			&c.ThreadID,
			&c.UserID,
			&c.Content,
			&c.CreatedAt,
			&c.UpdatedAt,
			&author.ID,
			&author.Name,
		); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		c.Author = &author
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}

	return comments, nil
}
