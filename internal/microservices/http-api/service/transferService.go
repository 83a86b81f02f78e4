package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"comicvault/internal/cache"
	"comicvault/internal/microservices/http-api/models"
	"comicvault/internal/microservices/http-api/repository"
)

// TransferItemResult is the outcome for one wishlist item of a batch.
type TransferItemResult struct {
	WishlistItemID int64  `json:"wishlistItemId"`
	Success        bool   `json:"success"`
	NewIssueID     *int64 `json:"newIssueId,omitempty"`
	Error          string `json:"error,omitempty"`
}

type TransferSummary struct {
	Total       int `json:"total"`
	Transferred int `json:"transferred"`
	Failed      int `json:"failed"`
}

type BatchTransferResult struct {
	Success bool                 `json:"success"`
	Results []TransferItemResult `json:"results"`
	Summary TransferSummary      `json:"summary"`
}

type TransferService interface {
	// TransferOne moves a wishlist item into the collection and returns the
	// new collection issue id. Either every step happens or none does.
	TransferOne(ctx context.Context, wishlistItemID int64) (int64, error)
	// TransferBatch transfers each item independently, in order.
	TransferBatch(ctx context.Context, wishlistItemIDs []int64) *BatchTransferResult
}

type transferService struct {
	store  *repository.Store
	cache  cache.ViewCache
	logger *slog.Logger
}

func NewTransferService(store *repository.Store, c cache.ViewCache, logger *slog.Logger) TransferService {
	return &transferService{store: store, cache: c, logger: logger}
}

func (s *transferService) TransferOne(ctx context.Context, wishlistItemID int64) (int64, error) {
	var newID int64
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		id, err := transfer(ctx, tx, wishlistItemID)
		newID = id
		return err
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, fmt.Errorf("wishlist item %d: %w", wishlistItemID, ErrNotFound)
		}
		return 0, mapStoreError(err)
	}

	invalidateViews(ctx, s.cache, s.logger)
	s.logger.Info("wishlist item transferred", "wishlist_item_id", wishlistItemID, "issue_id", newID)
	return newID, nil
}

func (s *transferService) TransferBatch(ctx context.Context, wishlistItemIDs []int64) *BatchTransferResult {
	result := &BatchTransferResult{
		Results: make([]TransferItemResult, 0, len(wishlistItemIDs)),
		Summary: TransferSummary{Total: len(wishlistItemIDs)},
	}

	for _, id := range wishlistItemIDs {
		item := TransferItemResult{WishlistItemID: id}
		newID, err := s.TransferOne(ctx, id)
		if err != nil {
			item.Error = err.Error()
			result.Summary.Failed++
			s.logger.Warn("wishlist transfer failed", "wishlist_item_id", id, "error", err)
		} else {
			item.Success = true
			item.NewIssueID = &newID
			result.Summary.Transferred++
		}
		result.Results = append(result.Results, item)
	}

	result.Success = result.Summary.Failed == 0
	return result
}

// transfer performs the move on tx. Publisher and series are resolved in the
// collection by the wishlist item's names, the issue is inserted there and
// the wishlist row removed.
func transfer(ctx context.Context, tx *repository.Store, wishlistItemID int64) (int64, error) {
	item, err := tx.Issues.GetByID(ctx, models.KindWishlist, wishlistItemID)
	if err != nil {
		return 0, err
	}
	if item.Series == nil || item.Publisher == nil {
		return 0, fmt.Errorf("wishlist item %d has no series or publisher", wishlistItemID)
	}

	publisher, _, err := tx.Resolver.FindOrCreatePublisher(ctx, models.KindCollection, item.PublisherName())
	if err != nil {
		return 0, err
	}

	defaults := repository.SeriesDefaults{
		TotalIssues: item.Series.TotalIssues,
		LocgLink:    item.Series.LocgLink,
		StartDate:   item.Series.StartDate,
		EndDate:     item.Series.EndDate,
	}
	series, _, err := tx.Resolver.FindOrCreateSeries(ctx, models.KindCollection, item.SeriesName(), publisher.ID, defaults)
	if err != nil {
		return 0, err
	}

	duplicate := &DuplicateIssueError{Kind: models.KindCollection, SeriesName: series.Name, IssueNo: item.IssueNo, Variant: item.VariantKey}
	existing, err := tx.Issues.FindDuplicate(ctx, models.KindCollection, series.ID, item.IssueNo, item.VariantKey, 0)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		return 0, duplicate
	}

	issue := &models.Issue{
		Kind:               models.KindCollection,
		Name:               item.Name,
		SeriesID:           series.ID,
		IssueNo:            item.IssueNo,
		PublisherID:        publisher.ID,
		VariantDescription: item.VariantDescription,
		CoverURL:           item.CoverURL,
		ReleaseDate:        item.ReleaseDate,
		UPC:                item.UPC,
		LocgLink:           item.LocgLink,
		Plot:               item.Plot,
	}
	if err := tx.Issues.Create(ctx, issue); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return 0, duplicate
		}
		return 0, err
	}

	deleted, err := tx.Issues.Delete(ctx, models.KindWishlist, wishlistItemID)
	if err != nil {
		return 0, err
	}
	if !deleted {
		return 0, fmt.Errorf("remove wishlist item %d: %w", wishlistItemID, repository.ErrNotFound)
	}
	return issue.ID, nil
}
