package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/threadspire/threadspire/internal/models"
	"github.com/threadspire/threadspire/internal/repository"
)

// FeedStore serves the read-only projections over published threads.
// No mutations live here.
type FeedStore struct {
	pool *pgxpool.Pool
}

func NewFeedStore(pool *pgxpool.Pool) *FeedStore {
	return &FeedStore{pool: pool}
}

const feedSelect = `
	SELECT t.id, t.title, t.tags, t.author_id, t.is_published, t.remix_of_thread_id,
	       t.created_at, t.updated_at, u.id, u.name, u.email
	FROM threads t
	JOIN users u ON u.id = t.author_id
	WHERE t.is_published = true`

func (s *FeedStore) Latest(ctx context.Context, sort string, limit int) ([]models.Thread, error) {
	var order string
	switch sort {
	case repository.SortMostBookmarked:
		order = `ORDER BY (SELECT count(*) FROM bookmarks b WHERE b.thread_id = t.id) DESC, t.created_at DESC`
	case repository.SortMostRemixed:
		order = `ORDER BY (SELECT count(*) FROM threads r WHERE r.remix_of_thread_id = t.id) DESC, t.created_at DESC`
	default:
		order = `ORDER BY t.created_at DESC`
	}

	query := fmt.Sprintf("%s %s LIMIT $1", feedSelect, order)
	return s.queryThreads(ctx, query, limit)
}

func (s *FeedStore) ByTag(ctx context.Context, tag string) ([]models.Thread, error) {
	query := feedSelect + ` AND $1 = ANY(t.tags) ORDER BY t.created_at DESC`
	return s.queryThreads(ctx, query, tag)
}

func (s *FeedStore) PopularTags(ctx context.Context, limit int) ([]models.TagCount, error) {
	query := `
		SELECT tag, count(*) AS n
		FROM threads t, unnest(t.tags) AS tag
		WHERE t.is_published = true
		GROUP BY tag
		ORDER BY n DESC, tag ASC
		LIMIT $1`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("popular tags: %w", err)
	}
	defer rows.Close()

	tags := make([]models.TagCount, 0)
	for rows.Next() {
		var tc models.TagCount
		if err := rows.Scan(&tc.Tag, &tc.Count); err != nil {
			return nil, fmt.Errorf("scan tag count: %w", err)
		}
		tags = append(tags, tc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tag counts: %w", err)
	}

	return tags, nil
}

func (s *FeedStore) queryThreads(ctx context.Context, query string, args ...any) ([]models.Thread, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query feed: %w", err)
	}
	defer rows.Close()

	threads := make([]models.Thread, 0)
	for rows.Next() {
		var t models.Thread
		var author models.UserSummary
		if err := rows.Scan(
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
		); err != nil {
			return nil, fmt.Errorf("scan feed thread: %w", err)
		}
		t.Author = &author
		threads = append(threads, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feed threads: %w", err)
	}

	return threads, nil
}
