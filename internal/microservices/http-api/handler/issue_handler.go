package handler

import (
	"net/http"

	"comicvault/internal/microservices/http-api/dto"
	"comicvault/internal/microservices/http-api/models"
	"comicvault/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

// IssueHandler serves one kind: collection issues under /issues and
// wishlist items under /wishlist.
type IssueHandler struct {
	svc  service.IssueService
	kind models.Kind
}

func NewIssueHandler(svc service.IssueService, kind models.Kind) *IssueHandler {
	return &IssueHandler{svc: svc, kind: kind}
}

func (h *IssueHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:issue_id", h.Get)
	rg.PUT("/:issue_id", h.Update)
	rg.DELETE("/:issue_id", h.Delete)
}

func (h *IssueHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context(), h.kind)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

func (h *IssueHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "issue_id")
	if !ok {
		return
	}
	issue, err := h.svc.Get(c.Request.Context(), h.kind, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, issue)
}

func (h *IssueHandler) Create(c *gin.Context) {
	var in dto.CreateIssueDTO
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	input, err := in.ToInput()
	if err != nil {
		respondError(c, err)
		return
	}

	issue, err := h.svc.Create(c.Request.Context(), h.kind, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, issue)
}

func (h *IssueHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "issue_id")
	if !ok {
		return
	}

	var in dto.UpdateIssueDTO
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	update, err := in.ToUpdate()
	if err != nil {
		respondError(c, err)
		return
	}

	issue, err := h.svc.Update(c.Request.Context(), h.kind, id, update)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, issue)
}

func (h *IssueHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "issue_id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), h.kind, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
