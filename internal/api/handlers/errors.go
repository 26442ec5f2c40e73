package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/bizdir-ops/internal/cors"
	"github.com/andresuchdata/bizdir-ops/internal/records"
	"github.com/andresuchdata/bizdir-ops/internal/storage"
)

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, cors.ErrConfigParse):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, records.ErrDocumentNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrAuthentication):
		return http.StatusBadGateway
	case errors.Is(err, storage.ErrNetwork):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func errorResponse(c *gin.Context, err error) {
	code := statusFor(err)
	event := log.Warn()
	if code >= http.StatusInternalServerError {
		event = log.Error()
	}
	event.Err(err).Str("path", c.Request.URL.Path).Int("status", code).Msg("request failed")
	c.JSON(code, gin.H{"error": err.Error()})
}
