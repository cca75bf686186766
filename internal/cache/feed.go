// Package cache is the optional redis layer in front of the latest-feed
// projection. Every method is safe on a nil *FeedCache, which is what
// handlers hold when REDIS_URL is not configured: cache misses all the
// way down, Postgres answers.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/threadspire/threadspire/internal/models"
	"github.com/threadspire/threadspire/internal/repository"
	"go.uber.org/zap"
)

const feedTTL = 30 * time.Second

type FeedCache struct {
	client *redis.Client
	logger *zap.Logger
}

// New connects to redis, or returns (nil, nil) when redisURL is empty.
func New(ctx context.Context, redisURL string, logger *zap.Logger) (*FeedCache, error) {
	if redisURL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	logger.Info("redis connection established")
	return &FeedCache{client: client, logger: logger}, nil
}

func (c *FeedCache) Close() {
	if c == nil {
		return
	}
	c.client.Close()
}

func feedKey(sort string) string {
	return "feed:latest:" + sort
}

// GetLatest returns the cached feed for a sort mode, or (nil, false) on
// miss or any redis failure. The cache never turns a read into an error.
func (c *FeedCache) GetLatest(ctx context.Context, sort string) ([]models.Thread, bool) {
	if c == nil {
		return nil, false
	}

	raw, err := c.client.Get(ctx, feedKey(sort)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("feed cache read failed", zap.Error(err))
		}
		return nil, false
	}

	var threads []models.Thread
	if err := json.Unmarshal(raw, &threads); err != nil {
		c.logger.Warn("feed cache decode failed", zap.Error(err))
		return nil, false
	}
	return threads, true
}

func (c *FeedCache) SetLatest(ctx context.Context, sort string, threads []models.Thread) {
	if c == nil {
		return
	}

	raw, err := json.Marshal(threads)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, feedKey(sort), raw, feedTTL).Err(); err != nil {
		c.logger.Warn("feed cache write failed", zap.Error(err))
	}
}

// Invalidate drops every cached sort mode. Called after publish and
// delete so the feed never serves a stale thread past the TTL.
func (c *FeedCache) Invalidate(ctx context.Context) {
	if c == nil {
		return
	}

	keys := []string{
		feedKey(repository.SortNewest),
		feedKey(repository.SortMostBookmarked),
		feedKey(repository.SortMostRemixed),
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("feed cache invalidate failed", zap.Error(err))
	}
}
