package handlers

import (
	"errors"
	"io"
	"log/slog"

	"github.com/gin-gonic/gin"

	"swachh-scan-api-server/internal/apperr"
)

// respondError writes err as {"error": ...} with the status of its kind.
// Validation failures also carry the offending fields.
func respondError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)

	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		slog.ErrorContext(c.Request.Context(), "unhandled error", "path", c.FullPath(), "error", err)
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}

	if appErr.Kind == apperr.KindStoreUnavailable {
		slog.ErrorContext(c.Request.Context(), appErr.Message, "path", c.FullPath(), "error", appErr.Err)
	}

	body := gin.H{"error": appErr.Message}
	if len(appErr.Fields) > 0 {
		body["fields"] = appErr.Fields
	}
	c.JSON(status, body)
}

// bindJSON decodes the request body into dst. When optional is set an empty
// body is accepted and leaves dst untouched.
func bindJSON(c *gin.Context, dst any, optional bool) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return true
		}
		respondError(c, apperr.Validation("Invalid request body: "+err.Error(), nil))
		return false
	}
	return true
}
