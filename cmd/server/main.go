package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/threadspire/threadspire/internal/api"
	"github.com/threadspire/threadspire/internal/cache"
	"github.com/threadspire/threadspire/internal/config"
	"github.com/threadspire/threadspire/internal/db"
	"github.com/threadspire/threadspire/internal/observ"
	"github.com/threadspire/threadspire/internal/repository/postgres"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := observ.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	// Startup has no deadline; per-request contexts carry them later.
	database, err := db.New(context.Background(), cfg.DatabaseURL, logger)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer database.Close()

	// Optional: no REDIS_URL means a nil cache and every feed read goes
	// to Postgres.
	feedCache, err := cache.New(context.Background(), cfg.RedisURL, logger)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer feedCache.Close()

	pool := database.Pool()
	userRepo := postgres.NewUserStore(pool)
	tokenRepo := postgres.NewTokenStore(pool)
	threadRepo := postgres.NewThreadStore(pool)
	commentRepo := postgres.NewCommentStore(pool)
	reactionRepo := postgres.NewReactionStore(pool)
	bookmarkRepo := postgres.NewBookmarkStore(pool)
	collectionRepo := postgres.NewCollectionStore(pool)
	feedRepo := postgres.NewFeedStore(pool)

	handlers := api.Handlers{
		Auth:        api.NewAuthHandler(userRepo, tokenRepo, cfg, logger),
		Users:       api.NewUserHandler(userRepo, logger),
		Threads:     api.NewThreadHandler(threadRepo, feedCache, logger),
		Feed:        api.NewFeedHandler(feedRepo, feedCache, logger),
		Reactions:   api.NewReactionHandler(reactionRepo, threadRepo, logger),
		Comments:    api.NewCommentHandler(commentRepo, threadRepo, logger),
		Bookmarks:   api.NewBookmarkHandler(bookmarkRepo, threadRepo, collectionRepo, logger),
		Collections: api.NewCollectionHandler(collectionRepo, logger),
	}

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := gin.New()
	srv.Use(gin.Logger(), gin.Recovery())

	api.RegisterRoutes(srv, cfg.AccessTokenSecret, handlers)

	logger.Info("starting ThreadSpire",
		zap.String("port", cfg.Port),
		zap.String("env", cfg.Env),
	)

	return srv.Run(":" + cfg.Port)
}
