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

type BookmarkHandler struct {
	bookmarks   repository.BookmarkRepository
	threads     repository.ThreadRepository
	collections repository.CollectionRepository
	logger      *zap.Logger
}

func NewBookmarkHandler(
	bookmarks repository.BookmarkRepository,
	threads repository.ThreadRepository,
	collections repository.CollectionRepository,
	logger *zap.Logger,
) *BookmarkHandler {
	return &BookmarkHandler{
		bookmarks:   bookmarks,
		threads:     threads,
		collections: collections,
		logger:      logger,
	}
}

type addBookmarkRequest struct {
	CollectionID *uuid.UUID `json:"collection_id"`
}

// Add handles POST /threads/:id/bookmarks. A duplicate (user, thread)
// bookmark is a Conflict; the unique index is the final authority.
func (h *BookmarkHandler) Add(c *gin.Context) {
	threadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondFail(c, http.StatusBadRequest, "invalid thread id")
		return
	}

	var req addBookmarkRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondFail(c, http.StatusBadRequest, err.Error())
			return
		}
	}

	thread, err := h.threads.GetByID(c.Request.Context(), threadID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if thread == nil || !thread.IsPublished {
		respondFail(c, http.StatusNotFound, "thread not found or not published")
		return
	}

	userID := middleware.GetUserID(c)

	// A bookmark may only file into a collection the bookmarker owns.
	if req.CollectionID != nil {
		col, err := h.collections.GetByID(c.Request.Context(), *req.CollectionID)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		if col == nil {
			respondFail(c, http.StatusNotFound, "collection not found")
			return
		}
		if !authz.CanModify(col.UserID, userID) {
			respondFail(c, http.StatusForbidden, "collection belongs to another user")
			return
		}
	}

	bookmark, err := h.bookmarks.Create(c.Request.Context(), userID, threadID, req.CollectionID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusCreated, gin.H{"bookmark": bookmark})
}

// Remove handles DELETE /threads/:id/bookmarks. Removing an absent
// bookmark is a 404.
func (h *BookmarkHandler) Remove(c *gin.Context) {
	threadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondFail(c, http.StatusBadRequest, "invalid thread id")
		return
	}

	existed, err := h.bookmarks.Delete(c.Request.Context(), middleware.GetUserID(c), threadID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if !existed {
		respondFail(c, http.StatusNotFound, "bookmark not found")
		return
	}

	c.Status(http.StatusNoContent)
}

// ListMine handles GET /bookmarks.
func (h *BookmarkHandler) ListMine(c *gin.Context) {
	bookmarks, err := h.bookmarks.ListByUser(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{"bookmarks": bookmarks})
}

// Check handles GET /bookmarks/check/:threadId.
func (h *BookmarkHandler) Check(c *gin.Context) {
	threadID, err := uuid.Parse(c.Param("threadId"))
	if err != nil {
		respondFail(c, http.StatusBadRequest, "invalid thread id")
		return
	}

	exists, err := h.bookmarks.Exists(c.Request.Context(), middleware.GetUserID(c), threadID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{"is_bookmarked": exists})
}
