package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/threadspire/threadspire/internal/cache"
	"github.com/threadspire/threadspire/internal/repository"
	"go.uber.org/zap"
)

// Feed pages are capped at a fixed size.
const feedPageSize = 20

type FeedHandler struct {
	feed      repository.FeedRepository
	feedCache *cache.FeedCache
	logger    *zap.Logger
}

func NewFeedHandler(feed repository.FeedRepository, feedCache *cache.FeedCache, logger *zap.Logger) *FeedHandler {
	return &FeedHandler{feed: feed, feedCache: feedCache, logger: logger}
}

// Latest handles GET /feed?sort=newest|most_bookmarked|most_remixed.
func (h *FeedHandler) Latest(c *gin.Context) {
	sort := c.DefaultQuery("sort", repository.SortNewest)
	switch sort {
	case repository.SortNewest, repository.SortMostBookmarked, repository.SortMostRemixed:
	default:
		respondFail(c, http.StatusBadRequest, "invalid sort parameter")
		return
	}

	if threads, ok := h.feedCache.GetLatest(c.Request.Context(), sort); ok {
		respondOK(c, http.StatusOK, gin.H{"threads": threads})
		return
	}

	threads, err := h.feed.Latest(c.Request.Context(), sort, feedPageSize)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.feedCache.SetLatest(c.Request.Context(), sort, threads)
	respondOK(c, http.StatusOK, gin.H{"threads": threads})
}

// ByTag handles GET /feed/tag/:tag.
func (h *FeedHandler) ByTag(c *gin.Context) {
	tag := c.Param("tag")
	if tag == "" {
		respondFail(c, http.StatusBadRequest, "tag is required")
		return
	}

	threads, err := h.feed.ByTag(c.Request.Context(), tag)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{"threads": threads})
}

// PopularTags handles GET /tags/popular.
func (h *FeedHandler) PopularTags(c *gin.Context) {
	tags, err := h.feed.PopularTags(c.Request.Context(), feedPageSize)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{"tags": tags})
}
