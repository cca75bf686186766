package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/threadspire/threadspire/internal/apperr"
	"github.com/threadspire/threadspire/internal/models"
)

type BookmarkStore struct {
	pool *pgxpool.Pool
}

func NewBookmarkStore(pool *pgxpool.Pool) *BookmarkStore {
	return &BookmarkStore{pool: pool}
}

func (s *BookmarkStore) Create(ctx context.Context, userID, threadID uuid.UUID, collectionID *uuid.UUID) (*models.Bookmark, error) {
	query := `
		INSERT INTO bookmarks (id, user_id, thread_id, collection_id, created_at)
		VALUES (gen_random_uuid(), $1, $2, $3, now())
		RETURNING id, user_id, thread_id, collection_id, created_at`

	var b models.Bookmark
	err := s.pool.QueryRow(ctx, query, userID, threadID, collectionID).Scan(
		&b.ID,
		&b.UserID,
		&b.ThreadID,
		&b.CollectionID,
		&b.CreatedAt,
	)
	if err != nil {
		// The unique index on (user_id, thread_id) is the authority on
		// duplicates; a concurrent double-add loses here, not in an
		// application-level existence check.
		if isUniqueViolation(err) {
			return nil, apperr.Conflict("thread already bookmarked")
		}
		return nil, fmt.Errorf("insert bookmark: %w", err)
	}
	return &b, nil
}

func (s *BookmarkStore) Delete(ctx context.Context, userID, threadID uuid.UUID) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM bookmarks WHERE user_id = $1 AND thread_id = $2`,
		userID, threadID)
	if err != nil {
		return false, fmt.Errorf("delete bookmark: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *BookmarkStore) Exists(ctx context.Context, userID, threadID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM bookmarks
			WHERE user_id = $1 AND thread_id = $2
		)`

	var exists bool
	if err := s.pool.QueryRow(ctx, query, userID, threadID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check bookmark: %w", err)
	}
	return exists, nil
}

func (s *BookmarkStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Bookmark, error) {
	query := `
		SELECT b.id, b.user_id, b.thread_id, b.collection_id, b.created_at,
		       t.id, t.title, t.tags, t.author_id, t.is_published, t.remix_of_thread_id,
		       t.created_at, t.updated_at, u.id, u.name
		FROM bookmarks b
		JOIN threads t ON t.id = b.thread_id
		JOIN users u ON u.id = t.author_id
		WHERE b.user_id = $1
		ORDER BY b.created_at DESC`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	defer rows.Close()

	bookmarks := make([]models.Bookmark, 0)
	for rows.Next() {
		var b models.Bookmark
		var t models.Thread
		var author models.UserSummary
		if err := rows.Scan(
			&b.ID,
			&b.UserID,
			&b.ThreadID,
			&b.CollectionID,
			&b.CreatedAt,
			&t.ID,
			&t.Title,
			&t.Tags,
			&t.AuthorID,
			&t.IsPublished,
			&t.RemixOfThreadID,
			&t.CreatedAt,
			&t.UpdatedAt,
			&author.ID,
			&author.Name,
		); err != nil {
			return nil, fmt.Errorf("scan bookmark: %w", err)
		}
		t.Author = &author
		b.Thread = &t
		bookmarks = append(bookmarks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookmarks: %w", err)
	}

	return bookmarks, nil
}
