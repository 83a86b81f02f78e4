package repository

import (
	"context"
	"errors"
	"fmt"

	"comicvault/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

type IssueRepo struct {
	db *gorm.DB
}

func NewIssueRepo(db *gorm.DB) *IssueRepo {
	return &IssueRepo{db: db}
}

func (r *IssueRepo) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Series").
		Preload("Series.Publisher").
		Preload("Publisher")
}

// List returns every issue of a kind ordered by series then issue number.
func (r *IssueRepo) List(ctx context.Context, kind models.Kind) ([]models.Issue, error) {
	var list []models.Issue
	if err := r.preloaded(ctx).
		Where("kind = ?", kind).
		Order("series_id asc").
		Order("issue_no asc").
		Order("id asc").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list issues: %w", err)
	}
	return list, nil
}

func (r *IssueRepo) ListBySeries(ctx context.Context, kind models.Kind, seriesID int64) ([]models.Issue, error) {
	var list []models.Issue
	if err := r.preloaded(ctx).
		Where("kind = ? AND series_id = ?", kind, seriesID).
		Order("issue_no asc").
		Order("id asc").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list issues of series %d: %w", seriesID, err)
	}
	return list, nil
}

// ListByReconcileKey returns issues whose series and publisher names match
// case-insensitively. This is the only join between kinds.
func (r *IssueRepo) ListByReconcileKey(ctx context.Context, kind models.Kind, seriesName, publisherName string) ([]models.Issue, error) {
	var list []models.Issue
	if err := r.preloaded(ctx).
		Joins("JOIN series s ON s.id = issues.series_id").
		Joins("JOIN publishers p ON p.id = s.publisher_id").
		Where("issues.kind = ? AND s.name_key = ? AND p.name_key = ?",
			kind, models.NormalizeName(seriesName), models.NormalizeName(publisherName)).
		Order("issues.issue_no asc").
		Order("issues.id asc").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list issues for %q: %w", seriesName, err)
	}
	return list, nil
}

func (r *IssueRepo) GetByID(ctx context.Context, kind models.Kind, id int64) (*models.Issue, error) {
	var i models.Issue
	if err := r.preloaded(ctx).
		Where("issues.kind = ?", kind).
		First(&i, id).Error; err != nil {
		return nil, fmt.Errorf("get issue %d: %w", id, translate(err))
	}
	return &i, nil
}

// FindDuplicate returns the issue holding the identity, or nil if it is free.
// excludeID skips the row being edited; pass 0 on create.
func (r *IssueRepo) FindDuplicate(ctx context.Context, kind models.Kind, seriesID int64, issueNo float64, variantKey string, excludeID int64) (*models.Issue, error) {
	var i models.Issue
	q := r.db.WithContext(ctx).
		Where("kind = ? AND series_id = ? AND issue_no = ? AND variant_key = ?", kind, seriesID, issueNo, variantKey)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.First(&i).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("check duplicate issue: %w", err)
	}
	return &i, nil
}

// Create inserts i. A clash on the issue identity returns ErrDuplicateKey.
func (r *IssueRepo) Create(ctx context.Context, i *models.Issue) error {
	i.VariantKey = models.NormalizeVariant(i.VariantDescription)
	if err := r.db.WithContext(ctx).Omit("Series", "Publisher").Create(i).Error; err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("create issue: %w", ErrDuplicateKey)
		}
		return fmt.Errorf("create issue: %w", err)
	}
	return nil
}

func (r *IssueRepo) Update(ctx context.Context, i *models.Issue) error {
	i.VariantKey = models.NormalizeVariant(i.VariantDescription)
	if err := r.db.WithContext(ctx).Omit("Series", "Publisher").Save(i).Error; err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("update issue %d: %w", i.ID, ErrDuplicateKey)
		}
		return fmt.Errorf("update issue %d: %w", i.ID, err)
	}
	return nil
}

// Delete removes the issue and reports whether a row was deleted.
func (r *IssueRepo) Delete(ctx context.Context, kind models.Kind, id int64) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND kind = ?", id, kind).
		Delete(&models.Issue{})
	if result.Error != nil {
		return false, fmt.Errorf("delete issue %d: %w", id, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// ReassignPublisher rewrites the publisher copy on every issue of a series.
// Call it in the transaction that moves the series to another publisher.
func (r *IssueRepo) ReassignPublisher(ctx context.Context, kind models.Kind, seriesID, publisherID int64) error {
	if err := r.db.WithContext(ctx).
		Model(&models.Issue{}).
		Where("kind = ? AND series_id = ?", kind, seriesID).
		Update("publisher_id", publisherID).Error; err != nil {
		return fmt.Errorf("reassign publisher of series %d: %w", seriesID, err)
	}
	return nil
}

// CountBySeries returns the number of issues per series id.
func (r *IssueRepo) CountBySeries(ctx context.Context, kind models.Kind) (map[int64]int64, error) {
	var rows []struct {
		SeriesID int64
		Count    int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Issue{}).
		Select("series_id, COUNT(*) AS count").
		Where("kind = ?", kind).
		Group("series_id").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("count issues by series: %w", err)
	}

	counts := make(map[int64]int64, len(rows))
	for _, row := range rows {
		counts[row.SeriesID] = row.Count
	}
	return counts, nil
}
