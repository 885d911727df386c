// Package response writes JSON error bodies for classified errors.
package response

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"restaurant-backend/shared/apperr"
)

// Error writes {"error": msg} with the status from table. Internal errors are
// logged with their cause; the client only sees the generic message.
func Error(c *gin.Context, table apperr.StatusTable, err error, log zerolog.Logger) {
	status, msg := table.Response(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Msg("request failed")
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// BindOptionalJSON decodes the body into req. An empty body is not an error;
// malformed JSON answers 400 and returns false.
func BindOptionalJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return false
	}
	return true
}
