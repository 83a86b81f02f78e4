package handler_test

import (
	"fmt"
	"net/http"
	"testing"

	"comicvault/internal/microservices/http-api/handler"
	"comicvault/internal/microservices/http-api/models"
	"comicvault/internal/microservices/http-api/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const transferPath = "/api/transfer/wishlist-to-collection"

func TestTransferHandler_Single(t *testing.T) {
	mockService := new(MockTransferService)
	r := setupRouter(handler.Services{Transfer: mockService})

	t.Run("Success", func(t *testing.T) {
		mockService.On("TransferOne", mock.Anything, int64(12)).Return(int64(40), nil).Once()

		w := doJSON(r, http.MethodPost, transferPath, `{"wishlistItemId":12}`)

		assert.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(w)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, 12.0, body["wishlistItemId"])
		assert.Equal(t, 40.0, body["newIssueId"])
	})

	t.Run("Duplicate", func(t *testing.T) {
		dup := &service.DuplicateIssueError{Kind: models.KindCollection, SeriesName: "Saga", IssueNo: 3, Variant: "Cover B"}
		mockService.On("TransferOne", mock.Anything, int64(13)).Return(int64(0), dup).Once()

		w := doJSON(r, http.MethodPost, transferPath, `{"wishlistItemId":13}`)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "Saga #3 (Cover B) already exists in the collection", decodeBody(w)["error"])
	})

	t.Run("NotFound", func(t *testing.T) {
		mockService.On("TransferOne", mock.Anything, int64(14)).
			Return(int64(0), fmt.Errorf("wishlist item 14: %w", service.ErrNotFound)).Once()

		w := doJSON(r, http.MethodPost, transferPath, `{"wishlistItemId":14}`)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	mockService.AssertExpectations(t)
}

func TestTransferHandler_Batch(t *testing.T) {
	mockService := new(MockTransferService)
	r := setupRouter(handler.Services{Transfer: mockService})

	t.Run("AllSucceeded", func(t *testing.T) {
		mockService.On("TransferBatch", mock.Anything, []int64{1, 2}).Return(&service.BatchTransferResult{
			Success: true,
			Results: []service.TransferItemResult{
				{WishlistItemID: 1, Success: true, NewIssueID: int64Ptr(10)},
				{WishlistItemID: 2, Success: true, NewIssueID: int64Ptr(11)},
			},
			Summary: service.TransferSummary{Total: 2, Transferred: 2},
		}).Once()

		w := doJSON(r, http.MethodPost, transferPath, `{"wishlistItemIds":[1,2]}`)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("PartialFailureIs400WithResults", func(t *testing.T) {
		mockService.On("TransferBatch", mock.Anything, []int64{3, 4}).Return(&service.BatchTransferResult{
			Success: false,
			Results: []service.TransferItemResult{
				{WishlistItemID: 3, Success: true, NewIssueID: int64Ptr(12)},
				{WishlistItemID: 4, Error: "Saga #1 already exists in the collection"},
			},
			Summary: service.TransferSummary{Total: 2, Transferred: 1, Failed: 1},
		}).Once()

		w := doJSON(r, http.MethodPost, transferPath, `{"wishlistItemIds":[3,4]}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		body := decodeBody(w)
		assert.Len(t, body["results"], 2)
		summary := body["summary"].(map[string]interface{})
		assert.Equal(t, 1.0, summary["failed"])
	})

	mockService.AssertExpectations(t)
}

func TestTransferHandler_RequestValidation(t *testing.T) {
	mockService := new(MockTransferService)
	r := setupRouter(handler.Services{Transfer: mockService})

	for name, body := range map[string]string{
		"Neither":    `{}`,
		"Both":       `{"wishlistItemId":1,"wishlistItemIds":[2]}`,
		"EmptyBatch": `{"wishlistItemIds":[]}`,
		"NotJSON":    `wishlist`,
	} {
		t.Run(name, func(t *testing.T) {
			w := doJSON(r, http.MethodPost, transferPath, body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
	mockService.AssertNotCalled(t, "TransferOne", mock.Anything, mock.Anything)
	mockService.AssertNotCalled(t, "TransferBatch", mock.Anything, mock.Anything)
}
