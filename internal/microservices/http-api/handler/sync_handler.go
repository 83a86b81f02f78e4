package handler

import (
	"context"
	"net/http"

	"comicvault/internal/microservices/http-api/dto"
	"comicvault/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type SyncHandler struct {
	svc service.SyncService
}

func NewSyncHandler(svc service.SyncService) *SyncHandler {
	return &SyncHandler{svc: svc}
}

func (h *SyncHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/series/sync", h.SyncSeries)
	rg.POST("/issues/sync", h.SyncIssues)
}

func (h *SyncHandler) SyncSeries(c *gin.Context) {
	var in dto.SyncSeriesRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data format. Expected series array."})
		return
	}
	kind, ok := kindFromBody(c, in.CollectionType)
	if !ok {
		return
	}

	records := make([]service.SeriesRecord, 0, len(in.Series))
	for _, s := range in.Series {
		records = append(records, s.ToRecord())
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), bulkTimeout)
	defer cancel()

	result, err := h.svc.SyncSeries(ctx, kind, records)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"summary": result.Summary,
		"details": result.Details,
	})
}

func (h *SyncHandler) SyncIssues(c *gin.Context) {
	var in dto.SyncIssuesRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data format. Expected issues array."})
		return
	}
	kind, ok := kindFromBody(c, in.CollectionType)
	if !ok {
		return
	}

	records := make([]service.IssueRecord, 0, len(in.Issues))
	for _, r := range in.Issues {
		records = append(records, r.ToRecord())
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), bulkTimeout)
	defer cancel()

	result, err := h.svc.SyncIssues(ctx, kind, records)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"summary": result.Summary,
		"details": result.Details,
	})
}
