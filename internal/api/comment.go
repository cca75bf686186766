package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/threadspire/threadspire/internal/authz"
	"github.com/threadspire/threadspire/internal/middleware"
	"github.com/threadspire/threadspire/internal/repository"
	"go.uber.org/zap"
)

type CommentHandler struct {
	comments repository.CommentRepository
	threads  repository.ThreadRepository
	logger   *zap.Logger
}

func NewCommentHandler(comments repository.CommentRepository, threads repository.ThreadRepository, logger *zap.Logger) *CommentHandler {
	return &CommentHandler{comments: comments, threads: threads, logger: logger}
}

type createCommentRequest struct {
	ThreadID uuid.UUID `json:"thread_id" binding:"required"`
	Content  string    `json:"content" binding:"required"`
}

type updateCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

// Create handles POST /comments. Comments attach to published threads
// only; drafts are not visible to commenters in the first place.
func (h *CommentHandler) Create(c *gin.Context) {
	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, "thread_id and content are required")
		return
	}

	thread, err := h.threads.GetByID(c.Request.Context(), req.ThreadID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if thread == nil || !thread.IsPublished {
		respondFail(c, http.StatusNotFound, "thread not found or not published")
		return
	}

	comment, err := h.comments.Create(c.Request.Context(), req.ThreadID, middleware.GetUserID(c), req.Content)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusCreated, gin.H{"comment": comment})
}

// Update handles PUT /comments/:id. Author only.
func (h *CommentHandler) Update(c *gin.Context) {
	commentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondFail(c, http.StatusBadRequest, "invalid comment id")
		return
	}

	var req updateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, "content is required")
		return
	}

	existing, err := h.comments.GetByID(c.Request.Context(), commentID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if existing == nil {
		respondFail(c, http.StatusNotFound, "comment not found")
		return
	}
	if !authz.CanModify(existing.UserID, middleware.GetUserID(c)) {
		respondFail(c, http.StatusForbidden, "you are not allowed to update this comment")
		return
	}

	updated, err := h.comments.Update(c.Request.Context(), commentID, req.Content)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{"comment": updated})
}

// Delete handles DELETE /comments/:id. Author only.
func (h *CommentHandler) Delete(c *gin.Context) {
	commentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondFail(c, http.StatusBadRequest, "invalid comment id")
		return
	}

	existing, err := h.comments.GetByID(c.Request.Context(), commentID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if existing == nil {
		respondFail(c, http.StatusNotFound, "comment not found")
		return
	}
	if !authz.CanModify(existing.UserID, middleware.GetUserID(c)) {
		respondFail(c, http.StatusForbidden, "you are not allowed to delete this comment")
		return
	}

	if err := h.comments.Delete(c.Request.Context(), commentID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{"message": "comment deleted successfully"})
}

// ListByThread handles GET /threads/:id/comments. Public; oldest first.
func (h *CommentHandler) ListByThread(c *gin.Context) {
	threadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondFail(c, http.StatusBadRequest, "invalid thread id")
		return
	}

	comments, err := h.comments.ListByThread(c.Request.Context(), threadID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{"comments": comments})
}
