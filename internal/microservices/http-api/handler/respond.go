package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"comicvault/internal/microservices/http-api/models"
	"comicvault/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

// bulkTimeout bounds sync, import and crawl requests, which may touch
// hundreds of rows or wait on the scraper.
const bulkTimeout = 2 * time.Minute

// respondError maps service errors to HTTP statuses.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrDuplicateIssue):
		status = http.StatusConflict
	case errors.Is(err, service.ErrCrawlFailed):
		status = http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// kindFromQuery reads ?kind= or ?collectionType=, defaulting to collection.
func kindFromQuery(c *gin.Context) (models.Kind, bool) {
	raw := c.Query("kind")
	if raw == "" {
		raw = c.Query("collectionType")
	}
	kind, err := models.ParseKind(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", false
	}
	return kind, true
}

func kindFromBody(c *gin.Context, raw string) (models.Kind, bool) {
	if raw == "" {
		return kindFromQuery(c)
	}
	kind, err := models.ParseKind(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", false
	}
	return kind, true
}

func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}
