package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/threadspire/threadspire/internal/auth"
)

const ContextKeyUserID = "user_id"

// RequireAuth validates the Authorization: Bearer <access token> header
// and aborts with 401 if it is missing or invalid. On success the user id
// is stored in the gin context for handlers to read via GetUserID.
func RequireAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := bearerClaims(c, secret)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success":    false,
				"statusCode": http.StatusUnauthorized,
				"message":    "invalid or missing access token",
			})
			return
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Next()
	}
}

// OptionalAuth attaches the user id when a valid token is present and
// continues anonymously otherwise. Used on reads that are public but show
// more to the owner (a draft thread to its author).
func OptionalAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := bearerClaims(c, secret); ok {
			c.Set(ContextKeyUserID, claims.UserID)
		}
		c.Next()
	}
}

func bearerClaims(c *gin.Context, secret string) (*auth.Claims, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return nil, false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, false
	}

	claims, err := auth.ParseToken(parts[1], auth.PurposeAccess, secret)
	if err != nil {
		return nil, false
	}
	return claims, true
}

// GetUserID returns the authenticated user id, or uuid.Nil for an
// anonymous request.
func GetUserID(c *gin.Context) uuid.UUID {
	val, exists := c.Get(ContextKeyUserID)
	if !exists {
		return uuid.Nil
	}
	id, ok := val.(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return id
}
