package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"comicvault/internal/microservices/http-api/dto"
	"comicvault/internal/microservices/http-api/models"
	"comicvault/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type ImportHandler struct {
	svc service.ImportService
}

func NewImportHandler(svc service.ImportService) *ImportHandler {
	return &ImportHandler{svc: svc}
}

func (h *ImportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/validate", h.Validate)
	rg.POST("/process", h.Process)
	rg.GET("/template", h.Template)
}

// readRows accepts either a JSON body {rows, collectionType} or a multipart
// upload with a .csv or .json "file" field and a "collectionType" field.
func readRows(c *gin.Context) (models.Kind, []service.ImportRow, bool) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		header, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
			return "", nil, false
		}
		kind, ok := kindFromBody(c, c.PostForm("collectionType"))
		if !ok {
			return "", nil, false
		}
		f, err := header.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return "", nil, false
		}
		defer f.Close()

		rows, err := dto.DecodeImportFile(f, header.Filename)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return "", nil, false
		}
		return kind, rows, true
	}

	var in dto.ImportRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format. Expected an array of rows."})
		return "", nil, false
	}
	kind, ok := kindFromBody(c, in.CollectionType)
	if !ok {
		return "", nil, false
	}
	rows, err := in.ServiceRows()
	if err != nil {
		if errors.Is(err, dto.ErrNoRows) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No data found in file"})
			return "", nil, false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", nil, false
	}
	return kind, rows, true
}

func (h *ImportHandler) Validate(c *gin.Context) {
	kind, rows, ok := readRows(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), bulkTimeout)
	defer cancel()

	preview, err := h.svc.ValidateImport(ctx, kind, rows)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"summary": preview.Summary,
		"details": preview.Details,
	})
}

func (h *ImportHandler) Process(c *gin.Context) {
	kind, rows, ok := readRows(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), bulkTimeout)
	defer cancel()

	result, err := h.svc.ProcessImport(ctx, kind, rows)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"runId":   result.RunID,
		"summary": result.Summary,
		"added":   result.Added,
		"errors":  result.Errors,
	})
}

// Template answers CSV unless ?format=json is given.
func (h *ImportHandler) Template(c *gin.Context) {
	kind, ok := kindFromQuery(c)
	if !ok {
		return
	}
	tmpl, err := h.svc.Template(c.Request.Context(), kind)
	if err != nil {
		respondError(c, err)
		return
	}

	if c.Query("format") == "json" {
		c.JSON(http.StatusOK, tmpl)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-import-template.csv"`, kind))
	c.Header("Content-Type", "text/csv")
	c.Status(http.StatusOK)
	if err := dto.EncodeTemplateCSV(c.Writer, tmpl); err != nil {
		_ = c.Error(err)
	}
}
