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

type CollectionStore struct {
	pool *pgxpool.Pool
}

func NewCollectionStore(pool *pgxpool.Pool) *CollectionStore {
	return &CollectionStore{pool: pool}
}

func (s *CollectionStore) Create(ctx context.Context, userID uuid.UUID, name string, isPrivate bool) (*models.Collection, error) {
	query := `
		INSERT INTO collections (id, user_id, name, is_private, created_at)
		VALUES (gen_random_uuid(), $1, $2, $3, now())
		RETURNING id, user_id, name, is_private, created_at`

	var col models.Collection
	err := s.pool.QueryRow(ctx, query, userID, name, isPrivate).Scan(
		&col.ID,
		&col.UserID,
		&col.Name,
		&col.IsPrivate,
		&col.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert collection: %w", err)
	}
	return &col, nil
}

func (s *CollectionStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Collection, error) {
	query := `
		SELECT id, user_id, name, is_private, created_at
		FROM collections
		WHERE id = $1`

	var col models.Collection
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&col.ID,
		&col.UserID,
		&col.Name,
		&col.IsPrivate,
		&col.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get collection: %w", err)
	}
	return &col, nil
}

func (s *CollectionStore) Update(ctx context.Context, id uuid.UUID, name string, isPrivate *bool) (*models.Collection, error) {
	query := `
		UPDATE collections
		SET name = COALESCE(NULLIF($1, ''), name),
		    is_private = COALESCE($2, is_private)
		WHERE id = $3
		RETURNING id, user_id, name, is_private, created_at`

	var col models.Collection
	err := s.pool.QueryRow(ctx, query, name, isPrivate, id).Scan(
		&col.ID,
		&col.UserID,
		&col.Name,
		&col.IsPrivate,
		&col.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("update collection: %w", err)
	}
	return &col, nil
}

func (s *CollectionStore) Delete(ctx context.Context, id uuid.UUID) error {
	// bookmarks.collection_id is ON DELETE SET NULL: the collection goes,
	// its bookmarks stay and become uncategorized.
	if _, err := s.pool.Exec(ctx, `DELETE FROM collections WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	return nil
}

func (s *CollectionStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Collection, error) {
	query := `
		SELECT id, user_id, name, is_private, created_at
		FROM collections
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	defer rows.Close()

	collections := make([]models.Collection, 0)
	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var col models.Collection
		if err := rows.Scan(&col.ID, &col.UserID, &col.Name, &col.IsPrivate, &col.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan collection: %w", err)
		}
		col.Bookmarks = make([]models.Bookmark, 0)
		collections = append(collections, col)
		ids = append(ids, col.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate collections: %w", err)
	}

	if len(ids) == 0 {
		return collections, nil
	}

	// One query for every nested bookmark, grouped in memory.
	nested := `
		SELECT b.id, b.user_id, b.thread_id, b.collection_id, b.created_at,
		       t.id, t.title, t.tags, t.author_id, t.is_published, t.remix_of_thread_id,
		       t.created_at, t.updated_at, u.id, u.name
		FROM bookmarks b
		JOIN threads t ON t.id = b.thread_id
		JOIN users u ON u.id = t.author_id
		WHERE b.collection_id = ANY($1)
		ORDER BY b.created_at DESC`

	brows, err := s.pool.Query(ctx, nested, ids)
	if err != nil {
		return nil, fmt.Errorf("list collection bookmarks: %w", err)
	}
	defer brows.Close()

	byCollection := make(map[uuid.UUID][]models.Bookmark)
	for brows.Next() {
		var b models.Bookmark
		var t models.Thread
		var author models.UserSummary
		if err := brows.Scan(
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
			return nil, fmt.Errorf("scan collection bookmark: %w", err)
		}
		t.Author = &author
		b.Thread = &t
		byCollection[*b.CollectionID] = append(byCollection[*b.CollectionID], b)
	}
	if err := brows.Err(); err != nil {
		return nil, fmt.Errorf("iterate collection bookmarks: %w", err)
	}

	for i := range collections {
		if bs, ok := byCollection[collections[i].ID]; ok {
			collections[i].Bookmarks = bs
		}
	}

	return collections, nil
}
