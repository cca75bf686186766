package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/threadspire/threadspire/internal/middleware"
	"github.com/threadspire/threadspire/internal/repository"
	"go.uber.org/zap"
)

type UserHandler struct {
	users  repository.UserRepository
	logger *zap.Logger
}

func NewUserHandler(users repository.UserRepository, logger *zap.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// GetMe handles GET /users/me.
func (h *UserHandler) GetMe(c *gin.Context) {
	user, err := h.users.GetByID(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if user == nil {
		respondFail(c, http.StatusNotFound, "user not found")
		return
	}

	respondOK(c, http.StatusOK, gin.H{"user": user})
}
