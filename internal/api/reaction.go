package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/threadspire/threadspire/internal/middleware"
	"github.com/threadspire/threadspire/internal/models"
	"github.com/threadspire/threadspire/internal/repository"
	"go.uber.org/zap"
)

type ReactionHandler struct {
	reactions repository.ReactionRepository
	threads   repository.ThreadRepository
	logger    *zap.Logger
}

func NewReactionHandler(reactions repository.ReactionRepository, threads repository.ThreadRepository, logger *zap.Logger) *ReactionHandler {
	return &ReactionHandler{reactions: reactions, threads: threads, logger: logger}
}

type setReactionRequest struct {
	Emoji string `json:"emoji" binding:"required"`
}

// Set handles POST /threads/:id/reactions. Upsert: a second emoji from
// the same user replaces the first, never adds a row.
func (h *ReactionHandler) Set(c *gin.Context) {
	threadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondFail(c, http.StatusBadRequest, "invalid thread id")
		return
	}

	var req setReactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, "emoji is required")
		return
	}
	if !models.ValidEmoji(req.Emoji) {
		respondFail(c, http.StatusBadRequest, "emoji must be one of brain, fire, clap, eyes, warning")
		return
	}

	if !h.publishedThreadExists(c, threadID) {
		return
	}

	reaction, err := h.reactions.Set(c.Request.Context(), threadID, middleware.GetUserID(c), req.Emoji)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusCreated, gin.H{"reaction": reaction})
}

// Clear handles DELETE /threads/:id/reactions. Removing a reaction that
// does not exist is a 404 (same policy as bookmarks).
func (h *ReactionHandler) Clear(c *gin.Context) {
	threadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondFail(c, http.StatusBadRequest, "invalid thread id")
		return
	}

	existed, err := h.reactions.Clear(c.Request.Context(), threadID, middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if !existed {
		respondFail(c, http.StatusNotFound, "reaction not found")
		return
	}

	c.Status(http.StatusNoContent)
}

// List handles GET /threads/:id/reactions. Public.
func (h *ReactionHandler) List(c *gin.Context) {
	threadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondFail(c, http.StatusBadRequest, "invalid thread id")
		return
	}

	reactions, err := h.reactions.ListByThread(c.Request.Context(), threadID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{"reactions": reactions})
}

// publishedThreadExists answers 404 (and returns false) unless the
// thread exists and is published. Drafts take no reactions.
func (h *ReactionHandler) publishedThreadExists(c *gin.Context, threadID uuid.UUID) bool {
	thread, err := h.threads.GetByID(c.Request.Context(), threadID)
	if err != nil {
		respondError(c, h.logger, err)
		return false
	}
	if thread == nil || !thread.IsPublished {
		respondFail(c, http.StatusNotFound, "thread not found or not published")
		return false
	}
	return true
}
