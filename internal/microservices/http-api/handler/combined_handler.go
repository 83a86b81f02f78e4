package handler

import (
	"net/http"

	"comicvault/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

// CombinedHandler serves the reconciled collection and wishlist views.
type CombinedHandler struct {
	svc service.ReconcileService
}

func NewCombinedHandler(svc service.ReconcileService) *CombinedHandler {
	return &CombinedHandler{svc: svc}
}

func (h *CombinedHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/:series_ref", h.Get)
}

func (h *CombinedHandler) List(c *gin.Context) {
	list, err := h.svc.ListCombinedSeries(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

// Get accepts combined-{c}-{w}, regular-{c}, wishlist-{w} or a bare legacy id.
func (h *CombinedHandler) Get(c *gin.Context) {
	view, err := h.svc.GetCombinedSeriesView(c.Request.Context(), c.Param("series_ref"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
