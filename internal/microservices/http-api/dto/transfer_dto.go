package dto

import (
	"errors"

	"comicvault/internal/microservices/http-api/service"
)

var ErrTransferTarget = errors.New("provide either wishlistItemId or wishlistItemIds")

// TransferRequest used for POST /api/transfer. Exactly one of the two
// fields must be set.
type TransferRequest struct {
	WishlistItemID  *int64  `json:"wishlistItemId,omitempty"`
	WishlistItemIDs []int64 `json:"wishlistItemIds,omitempty"`
}

// Batch reports whether the request names several items.
func (r TransferRequest) Batch() (bool, error) {
	switch {
	case r.WishlistItemID != nil && r.WishlistItemIDs != nil:
		return false, ErrTransferTarget
	case r.WishlistItemID != nil:
		return false, nil
	case len(r.WishlistItemIDs) > 0:
		return true, nil
	default:
		return false, ErrTransferTarget
	}
}

type TransferResponse struct {
	Success        bool  `json:"success"`
	WishlistItemID int64 `json:"wishlistItemId"`
	NewIssueID     int64 `json:"newIssueId"`
}

// BatchTransferResponse wraps the service result unchanged.
type BatchTransferResponse = service.BatchTransferResult
