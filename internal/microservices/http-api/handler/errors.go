package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"animehub/internal/ingestion/anilist"
	"animehub/internal/microservices/http-api/models"
	"animehub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

const (
	storeTimeout   = 5 * time.Second
	catalogTimeout = 20 * time.Second
)

// statusFor maps domain errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrAlreadyInList):
		return http.StatusConflict
	case errors.Is(err, service.ErrNotInList), errors.Is(err, anilist.ErrItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidRating), errors.Is(err, models.ErrUnknownListKind):
		return http.StatusBadRequest
	case errors.Is(err, anilist.ErrCatalogUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {"error": ...}; internal failures are logged and hidden
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request_failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status,
			"error", err,
		)
	}

	msg := err.Error()
	switch status {
	case http.StatusInternalServerError:
		msg = "internal server error"
	case http.StatusBadGateway:
		msg = "anime catalog is unavailable"
	case http.StatusGatewayTimeout:
		msg = "request timed out"
	}
	c.JSON(status, gin.H{"error": msg})
}

func parseAnimeID(c *gin.Context, param string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + param})
		return 0, false
	}
	return id, true
}

func parseKind(c *gin.Context) (models.ListKind, bool) {
	kind, err := models.ParseListKind(c.Param("kind"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", false
	}
	return kind, true
}
