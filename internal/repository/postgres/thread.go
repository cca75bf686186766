package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/threadspire/threadspire/internal/apperr"
	"github.com/threadspire/threadspire/internal/models"
	"github.com/threadspire/threadspire/internal/repository"
)

type ThreadStore struct {
	pool *pgxpool.Pool
}

func NewThreadStore(pool *pgxpool.Pool) *ThreadStore {
	return &ThreadStore{pool: pool}
}

func (s *ThreadStore) Create(ctx context.Context, authorID uuid.UUID, title string, tags []string, segments []repository.SegmentInput) (*models.Thread, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin create thread: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO threads (id, title, tags, author_id, is_published, remix_of_thread_id, created_at, updated_at)
		VALUES (gen_random_uuid(), $1, $2, $3, false, NULL, now(), now())
		RETURNING id, title, tags, author_id, is_published, remix_of_thread_id, created_at, updated_at`

	var t models.Thread
	err = tx.QueryRow(ctx, query, title, tags, authorID).Scan(
		&t.ID,
		&t.Title,
		&t.Tags,
		&t.AuthorID,
		&t.IsPublished,
		&t.RemixOfThreadID,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert thread: %w", err)
	}

	t.Segments, err = insertSegments(ctx, tx, t.ID, segments)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit create thread: %w", err)
	}
	return &t, nil
}

func (s *ThreadStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Thread, error) {
	query := `
		SELECT t.id, t.title, t.tags, t.author_id, t.is_published, t.remix_of_thread_id,
		       t.created_at, t.updated_at, u.id, u.name, u.email
		FROM threads t
		JOIN users u ON u.id = t.author_id
		WHERE t.id = $1`

	var t models.Thread
	var author models.UserSummary
	err := s.pool.QueryRow(ctx, query, id).Scan(
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
		&author.Email,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get thread: %w", err)
	}
	t.Author = &author

	t.Segments, err = s.listSegments(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Update replaces title and/or segments on a draft. The handler checks
// ownership, but publication state is enforced here: the first UPDATE
// carries an is_published = false predicate and locks the row, so a
// concurrent publish either commits before it (zero rows, Conflict) or
// waits behind the transaction. A published thread can never lose its
// segments to an in-flight edit.
func (s *ThreadStore) Update(ctx context.Context, id uuid.UUID, title string, segments []repository.SegmentInput) (*models.Thread, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin update thread: %w", err)
	}
	defer tx.Rollback(ctx)

	var tag pgconn.CommandTag
	if title != "" {
		tag, err = tx.Exec(ctx, `UPDATE threads SET title = $1, updated_at = now() WHERE id = $2 AND is_published = false`, title, id)
		if err != nil {
			return nil, fmt.Errorf("update thread title: %w", err)
		}
	} else {
		tag, err = tx.Exec(ctx, `UPDATE threads SET updated_at = now() WHERE id = $1 AND is_published = false`, id)
		if err != nil {
			return nil, fmt.Errorf("touch thread: %w", err)
		}
	}
	if tag.RowsAffected() == 0 {
		return nil, s.missingOrPublished(ctx, id, "cannot edit a published thread")
	}

	if segments != nil {
		if _, err := tx.Exec(ctx, `DELETE FROM thread_segments WHERE thread_id = $1`, id); err != nil {
			return nil, fmt.Errorf("delete thread segments: %w", err)
		}
		if _, err := insertSegments(ctx, tx, id, segments); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit update thread: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *ThreadStore) Publish(ctx context.Context, id uuid.UUID) (*models.Thread, error) {
	// Publish refreshes created_at: feeds order by publish time, not by
	// when the draft was started. The is_published predicate makes the
	// transition one-way at the storage layer: of two racing publishes,
	// exactly one flips the row and the other gets Conflict.
	query := `
		UPDATE threads
		SET is_published = true, created_at = now(), updated_at = now()
		WHERE id = $1 AND is_published = false`

	tag, err := s.pool.Exec(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("publish thread: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, s.missingOrPublished(ctx, id, "thread already published")
	}
	return s.GetByID(ctx, id)
}

// missingOrPublished resolves a zero-row guarded write: the thread is
// either gone (NotFound) or already published (Conflict with msg).
func (s *ThreadStore) missingOrPublished(ctx context.Context, id uuid.UUID, msg string) error {
	var exists bool
	if err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM threads WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("check thread existence: %w", err)
	}
	if !exists {
		return apperr.NotFound("thread not found")
	}
	return apperr.Conflict(msg)
}

func (s *ThreadStore) Delete(ctx context.Context, id uuid.UUID) error {
	// Segments, comments, reactions, and bookmarks go with it via
	// ON DELETE CASCADE.
	if _, err := s.pool.Exec(ctx, `DELETE FROM threads WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete thread: %w", err)
	}
	return nil
}

func (s *ThreadStore) Remix(ctx context.Context, originalID, authorID uuid.UUID, title string, tags []string, segments []repository.SegmentInput) (*models.Thread, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin remix thread: %w", err)
	}
	defer tx.Rollback(ctx)

	// remix_of_thread_id is a plain column, not a foreign key: deleting
	// the original later must not touch its remixes.
	query := `
		INSERT INTO threads (id, title, tags, author_id, is_published, remix_of_thread_id, created_at, updated_at)
		VALUES (gen_random_uuid(), $1, $2, $3, false, $4, now(), now())
		RETURNING id, title, tags, author_id, is_published, remix_of_thread_id, created_at, updated_at`

	var t models.Thread
	err = tx.QueryRow(ctx, query, title, tags, authorID, originalID).Scan(
		&t.ID,
		&t.Title,
		&t.Tags,
		&t.AuthorID,
		&t.IsPublished,
		&t.RemixOfThreadID,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert remix thread: %w", err)
	}

	t.Segments, err = insertSegments(ctx, tx, t.ID, segments)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit remix thread: %w", err)
	}
	return &t, nil
}

func (s *ThreadStore) ListByAuthor(ctx context.Context, authorID uuid.UUID, published bool) ([]models.Thread, error) {
	query := `
		SELECT id, title, tags, author_id, is_published, remix_of_thread_id, created_at, updated_at
		FROM threads
		WHERE author_id = $1 AND is_published = $2
		ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, authorID, published)
	if err != nil {
		return nil, fmt.Errorf("list threads by author: %w", err)
	}
	defer rows.Close()

	threads := make([]models.Thread, 0)
	for rows.Next() {
		var t models.Thread
		if err := rows.Scan(
			&t.ID,
			&t.Title,
			&t.Tags,
			&t.AuthorID,
			&t.IsPublished,
			&t.RemixOfThreadID,
			&t.CreatedAt,
			&t.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan thread: %w", err)
		}
		threads = append(threads, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate threads: %w", err)
	}

	for i := range threads {
		threads[i].Segments, err = s.listSegments(ctx, threads[i].ID)
		if err != nil {
			return nil, err
		}
	}

	return threads, nil
}

func (s *ThreadStore) listSegments(ctx context.Context, threadID uuid.UUID) ([]models.ThreadSegment, error) {
	query := `
		SELECT id, thread_id, order_index, content, image_url
		FROM thread_segments
		WHERE thread_id = $1
		ORDER BY order_index ASC`

	rows, err := s.pool.Query(ctx, query, threadID)
	if err != nil {
		return nil, fmt.Errorf("list segments: %w", err)
	}
	defer rows.Close()

	segments := make([]models.ThreadSegment, 0)
	for rows.Next() {
		var seg models.ThreadSegment
		if err := rows.Scan(&seg.ID, &seg.ThreadID, &seg.OrderIndex, &seg.Content, &seg.ImageURL); err != nil {
			return nil, fmt.Errorf("scan segment: %w", err)
		}
		segments = append(segments, seg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate segments: %w", err)
	}

	return segments, nil
}

// insertSegments writes the segment list with order_index assigned from
// slice position, 0..n-1. Runs inside the caller's transaction so a
// thread is never visible without its segments.
func insertSegments(ctx context.Context, tx pgx.Tx, threadID uuid.UUID, segments []repository.SegmentInput) ([]models.ThreadSegment, error) {
	query := `
		INSERT INTO thread_segments (id, thread_id, order_index, content, image_url)
		VALUES (gen_random_uuid(), $1, $2, $3, $4)
		RETURNING id, thread_id, order_index, content, image_url`

	out := make([]models.ThreadSegment, 0, len(segments))
	for i, in := range segments {
		var seg models.ThreadSegment
		err := tx.QueryRow(ctx, query, threadID, i, in.Content, in.ImageURL).Scan(
			&seg.ID,
			&seg.ThreadID,
			&seg.OrderIndex,
			&seg.Content,
			&seg.ImageURL,
		)
		if err != nil {
			return nil, fmt.Errorf("insert segment %d: %w", i, err)
		}
		out = append(out, seg)
	}
	return out, nil
}
