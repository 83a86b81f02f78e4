package handler

import (
	"context"
	"errors"
	"net/http"

	"comicvault/internal/microservices/http-api/dto"
	"comicvault/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type CrawlerHandler struct {
	svc service.CrawlService
}

func NewCrawlerHandler(svc service.CrawlService) *CrawlerHandler {
	return &CrawlerHandler{svc: svc}
}

func (h *CrawlerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/locg/:series_id", h.Crawl)
}

func (h *CrawlerHandler) Crawl(c *gin.Context) {
	id, ok := idParam(c, "series_id")
	if !ok {
		return
	}
	kind, ok := kindFromQuery(c)
	if !ok {
		return
	}

	// the body is optional
	var in dto.CrawlRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), bulkTimeout)
	defer cancel()

	outcome, err := h.svc.CrawlSeries(ctx, kind, id, in.ToCredentials())
	if err != nil {
		if outcome != nil && errors.Is(err, service.ErrCrawlFailed) {
			c.JSON(http.StatusBadGateway, outcome)
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}
