package handler

import (
	"net/http"

	"comicvault/internal/microservices/http-api/dto"
	"comicvault/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type SeriesHandler struct {
	svc service.SeriesService
}

func NewSeriesHandler(svc service.SeriesService) *SeriesHandler {
	return &SeriesHandler{svc: svc}
}

// RegisterRoutes mounts publisher and series routes on the /api group.
func (h *SeriesHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/publishers", h.ListPublishers)
	rg.POST("/publishers", h.CreatePublisher)
	rg.GET("/series", h.List)
	rg.POST("/series", h.Create)
	rg.GET("/series/:series_id", h.Get)
	rg.PUT("/series/:series_id", h.Update)
}

func (h *SeriesHandler) ListPublishers(c *gin.Context) {
	kind, ok := kindFromQuery(c)
	if !ok {
		return
	}
	list, err := h.svc.ListPublishers(c.Request.Context(), kind)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

// createdStatus is 201 for a new row and 200 when the name resolved to an
// existing one.
func createdStatus(created bool) int {
	if created {
		return http.StatusCreated
	}
	return http.StatusOK
}

func (h *SeriesHandler) CreatePublisher(c *gin.Context) {
	var in dto.CreatePublisherDTO
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	kind, ok := kindFromBody(c, in.CollectionType)
	if !ok {
		return
	}

	p, created, err := h.svc.CreatePublisher(c.Request.Context(), kind, in.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(createdStatus(created), p)
}

func (h *SeriesHandler) Create(c *gin.Context) {
	var in dto.CreateSeriesDTO
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	kind, ok := kindFromBody(c, in.CollectionType)
	if !ok {
		return
	}

	s, created, err := h.svc.CreateSeries(c.Request.Context(), kind, in.ToInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(createdStatus(created), s)
}

func (h *SeriesHandler) List(c *gin.Context) {
	kind, ok := kindFromQuery(c)
	if !ok {
		return
	}
	list, err := h.svc.ListSeries(c.Request.Context(), kind)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

func (h *SeriesHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "series_id")
	if !ok {
		return
	}
	kind, ok := kindFromQuery(c)
	if !ok {
		return
	}
	s, err := h.svc.GetSeries(c.Request.Context(), kind, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *SeriesHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "series_id")
	if !ok {
		return
	}
	kind, ok := kindFromQuery(c)
	if !ok {
		return
	}

	var in dto.UpdateSeriesDTO
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s, err := h.svc.UpdateSeries(c.Request.Context(), kind, id, in.ToUpdate())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}
