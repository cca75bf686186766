package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/threadspire/threadspire/internal/models"
)

// Every method takes a context so request cancellation reaches the
// database. Not-found is reported as (nil, nil) on single-row getters;
// list methods return an empty slice, never nil, so JSON serializes to [].
//
// Methods that mutate more than one row run inside a single transaction
// in the Postgres implementations: a reader never observes a thread
// without segments or a rotation with two live refresh tokens.

// SegmentInput is caller-supplied segment content. Order comes from slice
// position; the stores assign order_index 0..n-1 and never trust a
// client-provided index.
type SegmentInput struct {
	Content  string  `json:"content"`
	ImageURL *string `json:"image_url"`
}

// Feed sort modes.
const (
	SortNewest         = "newest"
	SortMostBookmarked = "most_bookmarked"
	SortMostRemixed    = "most_remixed"
)

type UserRepository interface {
	Create(ctx context.Context, email, name, passwordHash string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// TokenRepository is the session store: one row per live refresh token.
type TokenRepository interface {
	Create(ctx context.Context, userID uuid.UUID, token string) (*models.RefreshToken, error)
	GetByToken(ctx context.Context, token string) (*models.RefreshToken, error)

	// DeleteByToken removes a token by value. No-op if absent (logout is
	// idempotent).
	DeleteByToken(ctx context.Context, token string) error

	// Rotate deletes the consumed token row and inserts the replacement
	// atomically, so the old and new token are never both redeemable.
	Rotate(ctx context.Context, oldID uuid.UUID, userID uuid.UUID, newToken string) (*models.RefreshToken, error)
}

type ThreadRepository interface {
	// Create inserts the thread and its segments together; the new thread
	// starts as a draft.
	Create(ctx context.Context, authorID uuid.UUID, title string, tags []string, segments []SegmentInput) (*models.Thread, error)

	// GetByID returns the thread with ordered segments and author summary.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Thread, error)

	// Update replaces title and/or segments on a draft. Empty title keeps
	// the old one; nil segments keep the old list; a non-nil list replaces
	// it wholesale with order re-derived. The write itself is guarded on
	// publication state: an already-published thread (including one
	// published by a concurrent request) yields apperr.Conflict.
	Update(ctx context.Context, id uuid.UUID, title string, segments []SegmentInput) (*models.Thread, error)

	// Publish flips is_published and refreshes created_at to the publish
	// instant, so feeds order by publish time. One-way at the storage
	// layer: an already-published thread yields apperr.Conflict.
	Publish(ctx context.Context, id uuid.UUID) (*models.Thread, error)

	Delete(ctx context.Context, id uuid.UUID) error

	// Remix creates a new draft owned by authorID with lineage back to
	// originalID. Content is caller-supplied, not copied.
	Remix(ctx context.Context, originalID, authorID uuid.UUID, title string, tags []string, segments []SegmentInput) (*models.Thread, error)

	ListByAuthor(ctx context.Context, authorID uuid.UUID, published bool) ([]models.Thread, error)
}

type CommentRepository interface {
	Create(ctx context.Context, threadID, userID uuid.UUID, content string) (*models.Comment, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	Update(ctx context.Context, id uuid.UUID, content string) (*models.Comment, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// ListByThread returns comments oldest first with author names joined.
	ListByThread(ctx context.Context, threadID uuid.UUID) ([]models.Comment, error)
}

type ReactionRepository interface {
	// Set upserts on the (user_id, thread_id) unique index: at most one
	// row per pair, latest emoji wins.
	Set(ctx context.Context, threadID, userID uuid.UUID, emoji string) (*models.Reaction, error)

	// Clear removes the pair's row, reporting whether one existed.
	Clear(ctx context.Context, threadID, userID uuid.UUID) (bool, error)

	ListByThread(ctx context.Context, threadID uuid.UUID) ([]models.Reaction, error)
}

type BookmarkRepository interface {
	// Create inserts a bookmark; a duplicate (user, thread) surfaces as
	// apperr.Conflict from the unique index.
	Create(ctx context.Context, userID, threadID uuid.UUID, collectionID *uuid.UUID) (*models.Bookmark, error)

	// Delete removes the pair's row, reporting whether one existed.
	Delete(ctx context.Context, userID, threadID uuid.UUID) (bool, error)

	Exists(ctx context.Context, userID, threadID uuid.UUID) (bool, error)

	// ListByUser returns bookmarks newest first with thread and author
	// summaries joined.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Bookmark, error)
}

type CollectionRepository interface {
	Create(ctx context.Context, userID uuid.UUID, name string, isPrivate bool) (*models.Collection, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Collection, error)
	Update(ctx context.Context, id uuid.UUID, name string, isPrivate *bool) (*models.Collection, error)

	// Delete removes the collection only; its bookmarks are detached
	// (collection_id nulled), never deleted.
	Delete(ctx context.Context, id uuid.UUID) error

	// ListByUser returns collections newest first with nested bookmarks
	// and thread summaries.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Collection, error)
}

// FeedRepository is read-only projections over published threads.
type FeedRepository interface {
	Latest(ctx context.Context, sort string, limit int) ([]models.Thread, error)
	ByTag(ctx context.Context, tag string) ([]models.Thread, error)
	PopularTags(ctx context.Context, limit int) ([]models.TagCount, error)
}
