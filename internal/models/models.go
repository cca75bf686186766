package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an account. PasswordHash never leaves the server: the json tag
// drops it from every response.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserSummary is the author shape embedded in thread and comment
// responses. No email on comment authors, so Email is omitempty.
type UserSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email,omitempty"`
}

// RefreshToken is one row per issued refresh token. Rotation deletes the
// consumed row and inserts the replacement in the same transaction.
type RefreshToken struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Token     string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// Thread is an ordered sequence of segments. Drafts (is_published=false)
// are visible only to their author; publish is a one-way transition after
// which title and segments are frozen.
//
// RemixOfThreadID is a weak lineage pointer: it is validated when the
// remix is created but carries no foreign key, so deleting the original
// leaves remixes untouched.
type Thread struct {
	ID              uuid.UUID       `json:"id"`
	Title           string          `json:"title"`
	Tags            []string        `json:"tags"`
	AuthorID        uuid.UUID       `json:"author_id"`
	IsPublished     bool            `json:"is_published"`
	RemixOfThreadID *uuid.UUID      `json:"remix_of_thread_id"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Segments        []ThreadSegment `json:"segments,omitempty"`
	Author          *UserSummary    `json:"author,omitempty"`
}

// ThreadSegment is one block of a thread. OrderIndex is always derived
// server-side from list position, contiguous from 0.
type ThreadSegment struct {
	ID         uuid.UUID `json:"id"`
	ThreadID   uuid.UUID `json:"thread_id"`
	OrderIndex int       `json:"order_index"`
	Content    string    `json:"content"`
	ImageURL   *string   `json:"image_url"`
}

type Comment struct {
	ID        uuid.UUID    `json:"id"`
	ThreadID  uuid.UUID    `json:"thread_id"`
	UserID    uuid.UUID    `json:"user_id"`
	Content   string       `json:"content"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
	Author    *UserSummary `json:"user,omitempty"`
}

// Emoji values allowed on a reaction.
const (
	EmojiBrain   = "brain"
	EmojiFire    = "fire"
	EmojiClap    = "clap"
	EmojiEyes    = "eyes"
	EmojiWarning = "warning"
)

// ValidEmoji reports whether e is one of the fixed reaction emoji.
func ValidEmoji(e string) bool {
	switch e {
	case EmojiBrain, EmojiFire, EmojiClap, EmojiEyes, EmojiWarning:
		return true
	}
	return false
}

// Reaction holds at most one row per (user, thread); setting a new emoji
// for the same pair replaces the old one.
type Reaction struct {
	ID        uuid.UUID `json:"id"`
	ThreadID  uuid.UUID `json:"thread_id"`
	UserID    uuid.UUID `json:"user_id"`
	Emoji     string    `json:"emoji"`
	CreatedAt time.Time `json:"created_at"`
}

// Bookmark holds at most one row per (user, thread). CollectionID is nil
// for an uncategorized bookmark; deleting a collection nulls it rather
// than deleting the bookmark.
type Bookmark struct {
	ID           uuid.UUID  `json:"id"`
	UserID       uuid.UUID  `json:"user_id"`
	ThreadID     uuid.UUID  `json:"thread_id"`
	CollectionID *uuid.UUID `json:"collection_id"`
	CreatedAt    time.Time  `json:"created_at"`
	Thread       *Thread    `json:"thread,omitempty"`
}

type Collection struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	Name      string     `json:"name"`
	IsPrivate bool       `json:"is_private"`
	CreatedAt time.Time  `json:"created_at"`
	Bookmarks []Bookmark `json:"bookmarks,omitempty"`
}

// TagCount is the popular-tags projection: a tag and how many published
// threads carry it.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}
