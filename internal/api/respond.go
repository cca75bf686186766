package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/threadspire/threadspire/internal/apperr"
	"go.uber.org/zap"
)

// All responses use one of two envelopes:
//
//	{"success": true,  "data": ...}
//	{"success": false, "statusCode": N, "message": "..."}

func respondOK(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

func respondFail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"success":    false,
		"statusCode": status,
		"message":    message,
	})
}

// respondError maps a typed error to its envelope; anything untyped is a
// generic 500 with the cause logged, never leaked.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	if e := apperr.From(err); e != nil {
		respondFail(c, e.Status, e.Message)
		return
	}

	logger.Error("unexpected failure",
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	respondFail(c, http.StatusInternalServerError, "internal server error")
}
