package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/threadspire/threadspire/internal/auth"
	"github.com/threadspire/threadspire/internal/config"
	"github.com/threadspire/threadspire/internal/repository"
	"go.uber.org/zap"
)

const refreshCookieName = "refreshToken"

// dummyPasswordHash is a valid bcrypt hash compared against when login
// hits an unknown email, so the bcrypt cost is paid on both paths and
// response timing does not reveal whether an address is registered.
const dummyPasswordHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// AuthHandler owns the public auth endpoints plus logout/refresh, which
// authenticate via the refresh cookie rather than a Bearer token.
type AuthHandler struct {
	users  repository.UserRepository
	tokens repository.TokenRepository
	cfg    *config.Config
	logger *zap.Logger
}

func NewAuthHandler(
	users repository.UserRepository,
	tokens repository.TokenRepository,
	cfg *config.Config,
	logger *zap.Logger,
) *AuthHandler {
	return &AuthHandler{
		users:  users,
		tokens: tokens,
		cfg:    cfg,
		logger: logger,
	}
}

type signupRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type authUser struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// Signup handles POST /auth/signup.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, err.Error())
		return
	}

	existing, err := h.users.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if existing != nil {
		respondFail(c, http.StatusBadRequest, "email already exists")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	user, err := h.users.Create(c.Request.Context(), req.Email, req.Name, hash)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	accessToken, err := h.issueSession(c, user.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusCreated, gin.H{
		"accessToken": accessToken,
		"user":        authUser{ID: user.ID, Name: user.Name, Email: user.Email},
	})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.users.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	// One message for unknown email and wrong password: don't reveal
	// which emails are registered.
	if user == nil {
		auth.VerifyPassword(req.Password, dummyPasswordHash)
		respondFail(c, http.StatusUnauthorized, "invalid email or password")
		return
	}
	if !auth.VerifyPassword(req.Password, user.PasswordHash) {
		respondFail(c, http.StatusUnauthorized, "invalid email or password")
		return
	}

	accessToken, err := h.issueSession(c, user.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{
		"accessToken": accessToken,
		"user":        authUser{ID: user.ID, Name: user.Name, Email: user.Email},
	})
}

// Logout handles POST /auth/logout. Idempotent: an already-deleted token
// still logs out cleanly.
func (h *AuthHandler) Logout(c *gin.Context) {
	token, err := c.Cookie(refreshCookieName)
	if err != nil || token == "" {
		respondFail(c, http.StatusBadRequest, "refresh token not found")
		return
	}

	if err := h.tokens.DeleteByToken(c.Request.Context(), token); err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.clearRefreshCookie(c)
	respondOK(c, http.StatusOK, gin.H{"message": "logged out successfully"})
}

// RefreshToken handles POST /auth/refresh-token. Single-use rotation:
// the presented token must verify, must still exist in the session
// store, and is consumed atomically with the issue of its replacement.
// A replayed token fails the existence check.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	oldToken, err := c.Cookie(refreshCookieName)
	if err != nil || oldToken == "" {
		respondFail(c, http.StatusUnauthorized, "no refresh token provided")
		return
	}

	claims, err := auth.ParseToken(oldToken, auth.PurposeRefresh, h.cfg.RefreshTokenSecret)
	if err != nil {
		respondFail(c, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	stored, err := h.tokens.GetByToken(c.Request.Context(), oldToken)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if stored == nil {
		respondFail(c, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	newRefresh, err := auth.IssueToken(claims.UserID, auth.PurposeRefresh, h.cfg.RefreshTokenSecret, h.cfg.RefreshTokenTTL)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if _, err := h.tokens.Rotate(c.Request.Context(), stored.ID, claims.UserID, newRefresh); err != nil {
		respondError(c, h.logger, err)
		return
	}

	accessToken, err := auth.IssueToken(claims.UserID, auth.PurposeAccess, h.cfg.AccessTokenSecret, h.cfg.AccessTokenTTL)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.setRefreshCookie(c, newRefresh)
	respondOK(c, http.StatusOK, gin.H{"accessToken": accessToken})
}

// issueSession creates the (access, refresh) pair for a fresh login or
// signup, persists the refresh token, and sets the cookie.
func (h *AuthHandler) issueSession(c *gin.Context, userID uuid.UUID) (string, error) {
	accessToken, err := auth.IssueToken(userID, auth.PurposeAccess, h.cfg.AccessTokenSecret, h.cfg.AccessTokenTTL)
	if err != nil {
		return "", err
	}

	refreshToken, err := auth.IssueToken(userID, auth.PurposeRefresh, h.cfg.RefreshTokenSecret, h.cfg.RefreshTokenTTL)
	if err != nil {
		return "", err
	}

	if _, err := h.tokens.Create(c.Request.Context(), userID, refreshToken); err != nil {
		return "", err
	}

	h.setRefreshCookie(c, refreshToken)
	return accessToken, nil
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookieName, token, int(h.cfg.RefreshTokenTTL.Seconds()), "/", "", h.cfg.CookieSecure, true)
}

func (h *AuthHandler) clearRefreshCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookieName, "", -1, "/", "", h.cfg.CookieSecure, true)
}
