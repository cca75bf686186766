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

type CollectionHandler struct {
	collections repository.CollectionRepository
	logger      *zap.Logger
}

func NewCollectionHandler(collections repository.CollectionRepository, logger *zap.Logger) *CollectionHandler {
	return &CollectionHandler{collections: collections, logger: logger}
}

type createCollectionRequest struct {
	Name      string `json:"name" binding:"required"`
	IsPrivate bool   `json:"is_private"`
}

type updateCollectionRequest struct {
	Name      string `json:"name"`
	IsPrivate *bool  `json:"is_private"`
}

// Create handles POST /collections.
func (h *CollectionHandler) Create(c *gin.Context) {
	var req createCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, "collection name is required")
		return
	}

	collection, err := h.collections.Create(c.Request.Context(), middleware.GetUserID(c), req.Name, req.IsPrivate)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusCreated, gin.H{"collection": collection})
}

// ListMine handles GET /collections, with nested bookmarks and thread
// summaries.
func (h *CollectionHandler) ListMine(c *gin.Context) {
	collections, err := h.collections.ListByUser(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{"collections": collections})
}

// Update handles PATCH /collections/:id. Owner only.
func (h *CollectionHandler) Update(c *gin.Context) {
	collectionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondFail(c, http.StatusBadRequest, "invalid collection id")
		return
	}

	var req updateCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == "" && req.IsPrivate == nil {
		respondFail(c, http.StatusBadRequest, "nothing to update")
		return
	}

	existing, err := h.collections.GetByID(c.Request.Context(), collectionID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if existing == nil {
		respondFail(c, http.StatusNotFound, "collection not found")
		return
	}
	if !authz.CanModify(existing.UserID, middleware.GetUserID(c)) {
		respondFail(c, http.StatusForbidden, "you are not allowed to update this collection")
		return
	}

	updated, err := h.collections.Update(c.Request.Context(), collectionID, req.Name, req.IsPrivate)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{"collection": updated})
}

// Delete handles DELETE /collections/:id. Owner only; bookmarks filed in
// the collection are detached, not deleted.
func (h *CollectionHandler) Delete(c *gin.Context) {
	collectionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondFail(c, http.StatusBadRequest, "invalid collection id")
		return
	}

	existing, err := h.collections.GetByID(c.Request.Context(), collectionID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if existing == nil {
		respondFail(c, http.StatusNotFound, "collection not found")
		return
	}
	if !authz.CanModify(existing.UserID, middleware.GetUserID(c)) {
		respondFail(c, http.StatusForbidden, "you are not allowed to delete this collection")
		return
	}

	if err := h.collections.Delete(c.Request.Context(), collectionID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{"message": "collection deleted successfully"})
}
