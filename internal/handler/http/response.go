// File: internal/handler/http/response.go
package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// errorResponse writes a JSON error body. details is logged, never sent
// to the client.
func errorResponse(c *gin.Context, logger *zap.Logger, statusCode int, message string, details error) {
	if details != nil {
		logger.Info("Request failed",
			zap.Int("status", statusCode),
			zap.String("message", message),
			zap.Error(details),
		)
	}
	c.JSON(statusCode, gin.H{"status": "error", "message": message})
}
