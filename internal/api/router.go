package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/threadspire/threadspire/internal/middleware"
)

// Handlers bundles every handler the router mounts.
type Handlers struct {
	Auth        *AuthHandler
	Users       *UserHandler
	Threads     *ThreadHandler
	Feed        *FeedHandler
	Reactions   *ReactionHandler
	Comments    *CommentHandler
	Bookmarks   *BookmarkHandler
	Collections *CollectionHandler
}

// RegisterRoutes mounts the full JSON surface. Auth is per-route:
// feeds, reaction/comment listings, and published threads are public;
// GET /threads/:id takes OptionalAuth so an author can read their own
// draft; everything that mutates requires a Bearer token.
func RegisterRoutes(r *gin.Engine, accessSecret string, h Handlers) {
	requireAuth := middleware.RequireAuth(accessSecret)
	optionalAuth := middleware.OptionalAuth(accessSecret)

	// Public, unauthenticated: load balancers hit this.
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/signup", h.Auth.Signup)
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/logout", h.Auth.Logout)
		authGroup.POST("/refresh-token", h.Auth.RefreshToken)
	}

	r.GET("/users/me", requireAuth, h.Users.GetMe)

	threads := r.Group("/threads")
	{
		threads.POST("", requireAuth, h.Threads.Create)
		threads.POST("/remix", requireAuth, h.Threads.Remix)
		threads.GET("/:id", optionalAuth, h.Threads.GetByID)
		threads.PATCH("/:id", requireAuth, h.Threads.Update)
		threads.PATCH("/:id/publish", requireAuth, h.Threads.Publish)
		threads.DELETE("/:id", requireAuth, h.Threads.Delete)

		threads.GET("/:id/reactions", h.Reactions.List)
		threads.POST("/:id/reactions", requireAuth, h.Reactions.Set)
		threads.DELETE("/:id/reactions", requireAuth, h.Reactions.Clear)

		threads.GET("/:id/comments", h.Comments.ListByThread)

		threads.POST("/:id/bookmarks", requireAuth, h.Bookmarks.Add)
		threads.DELETE("/:id/bookmarks", requireAuth, h.Bookmarks.Remove)
	}

	r.GET("/my-threads", requireAuth, h.Threads.ListMine)

	r.GET("/feed", h.Feed.Latest)
	r.GET("/feed/tag/:tag", h.Feed.ByTag)
	r.GET("/tags/popular", h.Feed.PopularTags)

	comments := r.Group("/comments", requireAuth)
	{
		comments.POST("", h.Comments.Create)
		comments.PUT("/:id", h.Comments.Update)
		comments.DELETE("/:id", h.Comments.Delete)
	}

	r.GET("/bookmarks", requireAuth, h.Bookmarks.ListMine)
	r.GET("/bookmarks/check/:threadId", requireAuth, h.Bookmarks.Check)

	collections := r.Group("/collections", requireAuth)
	{
		collections.POST("", h.Collections.Create)
		collections.GET("", h.Collections.ListMine)
		collections.PATCH("/:id", h.Collections.Update)
		collections.DELETE("/:id", h.Collections.Delete)
	}
}
