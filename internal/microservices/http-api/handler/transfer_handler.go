package handler

import (
	"net/http"

	"comicvault/internal/microservices/http-api/dto"
	"comicvault/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type TransferHandler struct {
	svc service.TransferService
}

func NewTransferHandler(svc service.TransferService) *TransferHandler {
	return &TransferHandler{svc: svc}
}

func (h *TransferHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/wishlist-to-collection", h.Transfer)
}

// Transfer moves one wishlist item, or several when wishlistItemIds is set.
// A batch answers 400 if any item failed; the body always carries every
// per-item result.
func (h *TransferHandler) Transfer(c *gin.Context) {
	var in dto.TransferRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	batch, err := in.Batch()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if batch {
		result := h.svc.TransferBatch(c.Request.Context(), in.WishlistItemIDs)
		status := http.StatusOK
		if !result.Success {
			status = http.StatusBadRequest
		}
		c.JSON(status, result)
		return
	}

	newID, err := h.svc.TransferOne(c.Request.Context(), *in.WishlistItemID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.TransferResponse{
		Success:        true,
		WishlistItemID: *in.WishlistItemID,
		NewIssueID:     newID,
	})
}
