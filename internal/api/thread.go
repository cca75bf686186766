package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/threadspire/threadspire/internal/authz"
	"github.com/threadspire/threadspire/internal/cache"
	"github.com/threadspire/threadspire/internal/middleware"
	"github.com/threadspire/threadspire/internal/repository"
	"go.uber.org/zap"
)

type ThreadHandler struct {
	threads   repository.ThreadRepository
	feedCache *cache.FeedCache
	logger    *zap.Logger
}

func NewThreadHandler(threads repository.ThreadRepository, feedCache *cache.FeedCache, logger *zap.Logger) *ThreadHandler {
	return &ThreadHandler{threads: threads, feedCache: feedCache, logger: logger}
}

type createThreadRequest struct {
	Title    string                    `json:"title" binding:"required"`
	Tags     []string                  `json:"tags"`
	Segments []repository.SegmentInput `json:"segments" binding:"required,min=1,dive"`
}

type updateThreadRequest struct {
	Title    string                    `json:"title"`
	Segments []repository.SegmentInput `json:"segments"`
}

type remixThreadRequest struct {
	OriginalThreadID uuid.UUID                 `json:"original_thread_id" binding:"required"`
	Title            string                    `json:"title" binding:"required"`
	Tags             []string                  `json:"tags"`
	Segments         []repository.SegmentInput `json:"segments" binding:"required,min=1,dive"`
}

// Create handles POST /threads. The thread and its segments are written
// together; order_index comes from array position. New threads are drafts.
func (h *ThreadHandler) Create(c *gin.Context) {
	var req createThreadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, "title and at least one segment are required")
		return
	}
	for _, seg := range req.Segments {
		if seg.Content == "" {
			respondFail(c, http.StatusBadRequest, "segment content must not be empty")
			return
		}
	}

	authorID := middleware.GetUserID(c)
	thread, err := h.threads.Create(c.Request.Context(), authorID, req.Title, normalizeTags(req.Tags), req.Segments)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusCreated, gin.H{"thread": thread})
}

// GetByID handles GET /threads/:id. Public for published threads; drafts
// are visible only to their author (OptionalAuth supplies the requester).
func (h *ThreadHandler) GetByID(c *gin.Context) {
	threadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondFail(c, http.StatusBadRequest, "invalid thread id")
		return
	}

	thread, err := h.threads.GetByID(c.Request.Context(), threadID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if thread == nil {
		respondFail(c, http.StatusNotFound, "thread not found")
		return
	}

	if !thread.IsPublished && !authz.CanViewDraft(thread.AuthorID, middleware.GetUserID(c)) {
		respondFail(c, http.StatusForbidden, "you are not authorized to view this draft thread")
		return
	}

	respondOK(c, http.StatusOK, gin.H{"thread": thread})
}

// Update handles PATCH /threads/:id. Drafts only: a published thread is
// immutable and edits fail with Conflict regardless of requester.
func (h *ThreadHandler) Update(c *gin.Context) {
	threadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondFail(c, http.StatusBadRequest, "invalid thread id")
		return
	}

	var req updateThreadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, err.Error())
		return
	}
	for _, seg := range req.Segments {
		if seg.Content == "" {
			respondFail(c, http.StatusBadRequest, "segment content must not be empty")
			return
		}
	}

	thread, err := h.threads.GetByID(c.Request.Context(), threadID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if thread == nil {
		respondFail(c, http.StatusNotFound, "thread not found")
		return
	}
	if !authz.CanModify(thread.AuthorID, middleware.GetUserID(c)) {
		respondFail(c, http.StatusForbidden, "you are not allowed to edit this thread")
		return
	}
	if thread.IsPublished {
		respondFail(c, http.StatusConflict, "cannot edit a published thread")
		return
	}

	updated, err := h.threads.Update(c.Request.Context(), threadID, req.Title, req.Segments)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{"thread": updated})
}

// Publish handles PATCH /threads/:id/publish. One-way: publishing twice
// is a Conflict, and created_at is refreshed to the publish instant so
// feeds order by publish time.
func (h *ThreadHandler) Publish(c *gin.Context) {
	threadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondFail(c, http.StatusBadRequest, "invalid thread id")
		return
	}

	thread, err := h.threads.GetByID(c.Request.Context(), threadID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if thread == nil {
		respondFail(c, http.StatusNotFound, "thread not found")
		return
	}
	if !authz.CanModify(thread.AuthorID, middleware.GetUserID(c)) {
		respondFail(c, http.StatusForbidden, "you are not allowed to publish this thread")
		return
	}
	if thread.IsPublished {
		respondFail(c, http.StatusConflict, "thread already published")
		return
	}

	published, err := h.threads.Publish(c.Request.Context(), threadID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.feedCache.Invalidate(c.Request.Context())
	respondOK(c, http.StatusOK, gin.H{"thread": published})
}

// Delete handles DELETE /threads/:id. Author only, any lifecycle stage;
// segments, comments, reactions, and bookmarks cascade.
func (h *ThreadHandler) Delete(c *gin.Context) {
	threadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondFail(c, http.StatusBadRequest, "invalid thread id")
		return
	}

	thread, err := h.threads.GetByID(c.Request.Context(), threadID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if thread == nil {
		respondFail(c, http.StatusNotFound, "thread not found")
		return
	}
	if !authz.CanModify(thread.AuthorID, middleware.GetUserID(c)) {
		respondFail(c, http.StatusForbidden, "you are not allowed to delete this thread")
		return
	}

	if err := h.threads.Delete(c.Request.Context(), threadID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.feedCache.Invalidate(c.Request.Context())
	respondOK(c, http.StatusOK, gin.H{"message": "thread deleted successfully"})
}

// Remix handles POST /threads/remix. Creates a brand-new draft owned by
// the requester with a lineage pointer back to the original; content is
// caller-supplied, never copied implicitly.
func (h *ThreadHandler) Remix(c *gin.Context) {
	var req remixThreadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, "original_thread_id, title and at least one segment are required")
		return
	}
	for _, seg := range req.Segments {
		if seg.Content == "" {
			respondFail(c, http.StatusBadRequest, "segment content must not be empty")
			return
		}
	}

	original, err := h.threads.GetByID(c.Request.Context(), req.OriginalThreadID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if original == nil {
		respondFail(c, http.StatusNotFound, "original thread not found")
		return
	}

	requesterID := middleware.GetUserID(c)
	remix, err := h.threads.Remix(c.Request.Context(), original.ID, requesterID, req.Title, normalizeTags(req.Tags), req.Segments)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusCreated, gin.H{"thread": remix})
}

// ListMine handles GET /my-threads?type=drafts|published.
func (h *ThreadHandler) ListMine(c *gin.Context) {
	listType := c.DefaultQuery("type", "published")

	var published bool
	switch listType {
	case "published":
		published = true
	case "drafts":
		published = false
	default:
		respondFail(c, http.StatusBadRequest, "type must be 'published' or 'drafts'")
		return
	}

	threads, err := h.threads.ListByAuthor(c.Request.Context(), middleware.GetUserID(c), published)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{"threads": threads})
}

// normalizeTags keeps tags a set: JSON null becomes [], duplicates drop.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
