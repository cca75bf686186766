package api

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/threadspire/threadspire/internal/apperr"
	"github.com/threadspire/threadspire/internal/models"
	"github.com/threadspire/threadspire/internal/repository"
)

// memDB is shared in-memory state behind the fake repositories. Slices
// keep insertion order, which stands in for created_at ordering; the
// fake clock ticks one second per write so timestamps stay distinct.
type memDB struct {
	users       []models.User
	tokens      []models.RefreshToken
	threads     []models.Thread
	segments    map[uuid.UUID][]models.ThreadSegment
	comments    []models.Comment
	reactions   []models.Reaction
	bookmarks   []models.Bookmark
	collections []models.Collection
	clock       time.Time
}

func newMemDB() *memDB {
	return &memDB{
		segments: make(map[uuid.UUID][]models.ThreadSegment),
		clock:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (db *memDB) now() time.Time {
	db.clock = db.clock.Add(time.Second)
	return db.clock
}

func (db *memDB) addUser(name, email string) models.User {
	u := models.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		PasswordHash: "x",
		CreatedAt:    db.now(),
	}
	db.users = append(db.users, u)
	return u
}

func (db *memDB) userSummary(id uuid.UUID) *models.UserSummary {
	for _, u := range db.users {
		if u.ID == id {
			return &models.UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
		}
	}
	return nil
}

func (db *memDB) threadIndex(id uuid.UUID) int {
	for i := range db.threads {
		if db.threads[i].ID == id {
			return i
		}
	}
	return -1
}

func buildSegments(threadID uuid.UUID, in []repository.SegmentInput) []models.ThreadSegment {
	out := make([]models.ThreadSegment, 0, len(in))
	for i, seg := range in {
		out = append(out, models.ThreadSegment{
			ID:         uuid.New(),
			ThreadID:   threadID,
			OrderIndex: i,
			Content:    seg.Content,
			ImageURL:   seg.ImageURL,
		})
	}
	return out
}

// --- users ---

type fakeUsers struct{ db *memDB }

var _ repository.UserRepository = (*fakeUsers)(nil)

func (f *fakeUsers) Create(_ context.Context, email, name, passwordHash string) (*models.User, error) {
	for _, u := range f.db.users {
		if u.Email == email {
			return nil, apperr.Validation("email already exists")
		}
	}
	u := models.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		CreatedAt:    f.db.now(),
	}
	f.db.users = append(f.db.users, u)
	return &u, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.db.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	for _, u := range f.db.users {
		if u.ID == id {
			out := u
			return &out, nil
		}
	}
	return nil, nil
}

// --- refresh tokens ---

type fakeTokens struct{ db *memDB }

var _ repository.TokenRepository = (*fakeTokens)(nil)

func (f *fakeTokens) Create(_ context.Context, userID uuid.UUID, token string) (*models.RefreshToken, error) {
	t := models.RefreshToken{
		ID:        uuid.New(),
		UserID:    userID,
		Token:     token,
		CreatedAt: f.db.now(),
	}
	f.db.tokens = append(f.db.tokens, t)
	return &t, nil
}

func (f *fakeTokens) GetByToken(_ context.Context, token string) (*models.RefreshToken, error) {
	for _, t := range f.db.tokens {
		if t.Token == token {
			out := t
			return &out, nil
		}
	}
	return nil, nil
}

func (f *fakeTokens) DeleteByToken(_ context.Context, token string) error {
	kept := f.db.tokens[:0]
	for _, t := range f.db.tokens {
		if t.Token != token {
			kept = append(kept, t)
		}
	}
	f.db.tokens = kept
	return nil
}

func (f *fakeTokens) Rotate(ctx context.Context, oldID uuid.UUID, userID uuid.UUID, newToken string) (*models.RefreshToken, error) {
	kept := f.db.tokens[:0]
	for _, t := range f.db.tokens {
		if t.ID != oldID {
			kept = append(kept, t)
		}
	}
	f.db.tokens = kept
	return f.Create(ctx, userID, newToken)
}

// --- threads ---

type fakeThreads struct{ db *memDB }

var _ repository.ThreadRepository = (*fakeThreads)(nil)

func (f *fakeThreads) Create(_ context.Context, authorID uuid.UUID, title string, tags []string, segments []repository.SegmentInput) (*models.Thread, error) {
	now := f.db.now()
	t := models.Thread{
		ID:        uuid.New(),
		Title:     title,
		Tags:      tags,
		AuthorID:  authorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.db.threads = append(f.db.threads, t)
	f.db.segments[t.ID] = buildSegments(t.ID, segments)
	return f.hydrate(t), nil
}

func (f *fakeThreads) GetByID(_ context.Context, id uuid.UUID) (*models.Thread, error) {
	i := f.db.threadIndex(id)
	if i < 0 {
		return nil, nil
	}
	return f.hydrate(f.db.threads[i]), nil
}

func (f *fakeThreads) Update(_ context.Context, id uuid.UUID, title string, segments []repository.SegmentInput) (*models.Thread, error) {
	i := f.db.threadIndex(id)
	if i < 0 {
		return nil, apperr.NotFound("thread not found")
	}
	if f.db.threads[i].IsPublished {
		return nil, apperr.Conflict("cannot edit a published thread")
	}
	if title != "" {
		f.db.threads[i].Title = title
	}
	if segments != nil {
		f.db.segments[id] = buildSegments(id, segments)
	}
	f.db.threads[i].UpdatedAt = f.db.now()
	return f.hydrate(f.db.threads[i]), nil
}

func (f *fakeThreads) Publish(_ context.Context, id uuid.UUID) (*models.Thread, error) {
	i := f.db.threadIndex(id)
	if i < 0 {
		return nil, apperr.NotFound("thread not found")
	}
	if f.db.threads[i].IsPublished {
		return nil, apperr.Conflict("thread already published")
	}
	now := f.db.now()
	f.db.threads[i].IsPublished = true
	f.db.threads[i].CreatedAt = now
	f.db.threads[i].UpdatedAt = now
	return f.hydrate(f.db.threads[i]), nil
}

func (f *fakeThreads) Delete(_ context.Context, id uuid.UUID) error {
	i := f.db.threadIndex(id)
	if i < 0 {
		return apperr.NotFound("thread not found")
	}
	f.db.threads = append(f.db.threads[:i], f.db.threads[i+1:]...)
	delete(f.db.segments, id)

	// Cascades, mirroring the FK constraints.
	comments := f.db.comments[:0]
	for _, c := range f.db.comments {
		if c.ThreadID != id {
			comments = append(comments, c)
		}
	}
	f.db.comments = comments

	reactions := f.db.reactions[:0]
	for _, r := range f.db.reactions {
		if r.ThreadID != id {
			reactions = append(reactions, r)
		}
	}
	f.db.reactions = reactions

	bookmarks := f.db.bookmarks[:0]
	for _, b := range f.db.bookmarks {
		if b.ThreadID != id {
			bookmarks = append(bookmarks, b)
		}
	}
	f.db.bookmarks = bookmarks
	return nil
}

func (f *fakeThreads) Remix(_ context.Context, originalID, authorID uuid.UUID, title string, tags []string, segments []repository.SegmentInput) (*models.Thread, error) {
	now := f.db.now()
	original := originalID
	t := models.Thread{
		ID:              uuid.New(),
		Title:           title,
		Tags:            tags,
		AuthorID:        authorID,
		RemixOfThreadID: &original,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	f.db.threads = append(f.db.threads, t)
	f.db.segments[t.ID] = buildSegments(t.ID, segments)
	return f.hydrate(t), nil
}

func (f *fakeThreads) ListByAuthor(_ context.Context, authorID uuid.UUID, published bool) ([]models.Thread, error) {
	out := make([]models.Thread, 0)
	for i := len(f.db.threads) - 1; i >= 0; i-- {
		t := f.db.threads[i]
		if t.AuthorID == authorID && t.IsPublished == published {
			out = append(out, *f.hydrate(t))
		}
	}
	return out, nil
}

func (f *fakeThreads) hydrate(t models.Thread) *models.Thread {
	out := t
	out.Segments = append([]models.ThreadSegment(nil), f.db.segments[t.ID]...)
	out.Author = f.db.userSummary(t.AuthorID)
	return &out
}

// --- comments ---

type fakeComments struct{ db *memDB }

var _ repository.CommentRepository = (*fakeComments)(nil)

func (f *fakeComments) Create(_ context.Context, threadID, userID uuid.UUID, content string) (*models.Comment, error) {
	now := f.db.now()
	c := models.Comment{
		ID:        uuid.New(),
		ThreadID:  threadID,
		UserID:    userID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.db.comments = append(f.db.comments, c)
	return &c, nil
}

func (f *fakeComments) GetByID(_ context.Context, id uuid.UUID) (*models.Comment, error) {
	for _, c := range f.db.comments {
		if c.ID == id {
			out := c
			return &out, nil
		}
	}
	return nil, nil
}

func (f *fakeComments) Update(_ context.Context, id uuid.UUID, content string) (*models.Comment, error) {
	for i := range f.db.comments {
		if f.db.comments[i].ID == id {
			f.db.comments[i].Content = content
			f.db.comments[i].UpdatedAt = f.db.now()
			out := f.db.comments[i]
			return &out, nil
		}
	}
	return nil, apperr.NotFound("comment not found")
}

func (f *fakeComments) Delete(_ context.Context, id uuid.UUID) error {
	kept := f.db.comments[:0]
	for _, c := range f.db.comments {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	f.db.comments = kept
	return nil
}

func (f *fakeComments) ListByThread(_ context.Context, threadID uuid.UUID) ([]models.Comment, error) {
	out := make([]models.Comment, 0)
	for _, c := range f.db.comments {
		if c.ThreadID == threadID {
			c.Author = f.db.userSummary(c.UserID)
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// --- reactions ---

type fakeReactions struct{ db *memDB }

var _ repository.ReactionRepository = (*fakeReactions)(nil)

func (f *fakeReactions) Set(_ context.Context, threadID, userID uuid.UUID, emoji string) (*models.Reaction, error) {
	for i := range f.db.reactions {
		if f.db.reactions[i].ThreadID == threadID && f.db.reactions[i].UserID == userID {
			f.db.reactions[i].Emoji = emoji
			out := f.db.reactions[i]
			return &out, nil
		}
	}
	r := models.Reaction{
		ID:        uuid.New(),
		ThreadID:  threadID,
		UserID:    userID,
		Emoji:     emoji,
		CreatedAt: f.db.now(),
	}
	f.db.reactions = append(f.db.reactions, r)
	return &r, nil
}

func (f *fakeReactions) Clear(_ context.Context, threadID, userID uuid.UUID) (bool, error) {
	for i := range f.db.reactions {
		if f.db.reactions[i].ThreadID == threadID && f.db.reactions[i].UserID == userID {
			f.db.reactions = append(f.db.reactions[:i], f.db.reactions[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeReactions) ListByThread(_ context.Context, threadID uuid.UUID) ([]models.Reaction, error) {
	out := make([]models.Reaction, 0)
	for _, r := range f.db.reactions {
		if r.ThreadID == threadID {
			out = append(out, r)
		}
	}
	return out, nil
}

// --- bookmarks ---

type fakeBookmarks struct{ db *memDB }

var _ repository.BookmarkRepository = (*fakeBookmarks)(nil)

func (f *fakeBookmarks) Create(_ context.Context, userID, threadID uuid.UUID, collectionID *uuid.UUID) (*models.Bookmark, error) {
	for _, b := range f.db.bookmarks {
		if b.UserID == userID && b.ThreadID == threadID {
			return nil, apperr.Conflict("thread already bookmarked")
		}
	}
	b := models.Bookmark{
		ID:           uuid.New(),
		UserID:       userID,
		ThreadID:     threadID,
		CollectionID: collectionID,
		CreatedAt:    f.db.now(),
	}
	f.db.bookmarks = append(f.db.bookmarks, b)
	return &b, nil
}

func (f *fakeBookmarks) Delete(_ context.Context, userID, threadID uuid.UUID) (bool, error) {
	for i := range f.db.bookmarks {
		if f.db.bookmarks[i].UserID == userID && f.db.bookmarks[i].ThreadID == threadID {
			f.db.bookmarks = append(f.db.bookmarks[:i], f.db.bookmarks[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeBookmarks) Exists(_ context.Context, userID, threadID uuid.UUID) (bool, error) {
	for _, b := range f.db.bookmarks {
		if b.UserID == userID && b.ThreadID == threadID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeBookmarks) ListByUser(_ context.Context, userID uuid.UUID) ([]models.Bookmark, error) {
	out := make([]models.Bookmark, 0)
	for i := len(f.db.bookmarks) - 1; i >= 0; i-- {
		b := f.db.bookmarks[i]
		if b.UserID == userID {
			if j := f.db.threadIndex(b.ThreadID); j >= 0 {
				t := f.db.threads[j]
				t.Author = f.db.userSummary(t.AuthorID)
				b.Thread = &t
			}
			out = append(out, b)
		}
	}
	return out, nil
}

// --- collections ---

type fakeCollections struct{ db *memDB }

var _ repository.CollectionRepository = (*fakeCollections)(nil)

func (f *fakeCollections) Create(_ context.Context, userID uuid.UUID, name string, isPrivate bool) (*models.Collection, error) {
	col := models.Collection{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      name,
		IsPrivate: isPrivate,
		CreatedAt: f.db.now(),
	}
	f.db.collections = append(f.db.collections, col)
	return &col, nil
}

func (f *fakeCollections) GetByID(_ context.Context, id uuid.UUID) (*models.Collection, error) {
	for _, col := range f.db.collections {
		if col.ID == id {
			out := col
			return &out, nil
		}
	}
	return nil, nil
}

func (f *fakeCollections) Update(_ context.Context, id uuid.UUID, name string, isPrivate *bool) (*models.Collection, error) {
	for i := range f.db.collections {
		if f.db.collections[i].ID == id {
			if name != "" {
				f.db.collections[i].Name = name
			}
			if isPrivate != nil {
				f.db.collections[i].IsPrivate = *isPrivate
			}
			out := f.db.collections[i]
			return &out, nil
		}
	}
	return nil, apperr.NotFound("collection not found")
}

func (f *fakeCollections) Delete(_ context.Context, id uuid.UUID) error {
	kept := f.db.collections[:0]
	for _, col := range f.db.collections {
		if col.ID != id {
			kept = append(kept, col)
		}
	}
	f.db.collections = kept

	// Detach, mirroring ON DELETE SET NULL.
	for i := range f.db.bookmarks {
		if f.db.bookmarks[i].CollectionID != nil && *f.db.bookmarks[i].CollectionID == id {
			f.db.bookmarks[i].CollectionID = nil
		}
	}
	return nil
}

func (f *fakeCollections) ListByUser(_ context.Context, userID uuid.UUID) ([]models.Collection, error) {
	out := make([]models.Collection, 0)
	for i := len(f.db.collections) - 1; i >= 0; i-- {
		col := f.db.collections[i]
		if col.UserID != userID {
			continue
		}
		col.Bookmarks = make([]models.Bookmark, 0)
		for _, b := range f.db.bookmarks {
			if b.CollectionID != nil && *b.CollectionID == col.ID {
				col.Bookmarks = append(col.Bookmarks, b)
			}
		}
		out = append(out, col)
	}
	return out, nil
}

// --- feed ---

type fakeFeed struct{ db *memDB }

var _ repository.FeedRepository = (*fakeFeed)(nil)

func (f *fakeFeed) Latest(_ context.Context, _ string, limit int) ([]models.Thread, error) {
	out := f.published()
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeFeed) ByTag(_ context.Context, tag string) ([]models.Thread, error) {
	out := make([]models.Thread, 0)
	for _, t := range f.published() {
		for _, tg := range t.Tags {
			if tg == tag {
				out = append(out, t)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeFeed) PopularTags(_ context.Context, limit int) ([]models.TagCount, error) {
	counts := make(map[string]int)
	for _, t := range f.published() {
		for _, tg := range t.Tags {
			counts[tg]++
		}
	}
	out := make([]models.TagCount, 0, len(counts))
	for tag, n := range counts {
		out = append(out, models.TagCount{Tag: tag, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeFeed) published() []models.Thread {
	out := make([]models.Thread, 0)
	for _, t := range f.db.threads {
		if t.IsPublished {
			t.Author = f.db.userSummary(t.AuthorID)
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}
