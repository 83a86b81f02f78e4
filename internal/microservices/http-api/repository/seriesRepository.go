package repository

import (
	"context"
	"fmt"
	"time"

	"comicvault/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

type SeriesRepo struct {
	db *gorm.DB
}

func NewSeriesRepo(db *gorm.DB) *SeriesRepo {
	return &SeriesRepo{db: db}
}

// List returns every series of a kind with its publisher, ordered by name.
func (r *SeriesRepo) List(ctx context.Context, kind models.Kind) ([]models.Series, error) {
	var list []models.Series
	if err := r.db.WithContext(ctx).
		Preload("Publisher").
		Where("kind = ?", kind).
		Order("name_key asc").
		Order("id asc").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list series: %w", err)
	}
	return list, nil
}

func (r *SeriesRepo) GetByID(ctx context.Context, kind models.Kind, id int64) (*models.Series, error) {
	var s models.Series
	if err := r.db.WithContext(ctx).
		Preload("Publisher").
		Where("kind = ?", kind).
		First(&s, id).Error; err != nil {
		return nil, fmt.Errorf("get series %d: %w", id, translate(err))
	}
	return &s, nil
}

// FindByKey looks a series up by its normalized series and publisher names.
func (r *SeriesRepo) FindByKey(ctx context.Context, kind models.Kind, seriesName, publisherName string) (*models.Series, error) {
	var s models.Series
	if err := r.db.WithContext(ctx).
		Preload("Publisher").
		Joins("JOIN publishers p ON p.id = series.publisher_id").
		Where("series.kind = ? AND series.name_key = ? AND p.name_key = ?",
			kind, models.NormalizeName(seriesName), models.NormalizeName(publisherName)).
		First(&s).Error; err != nil {
		return nil, fmt.Errorf("find series %q: %w", seriesName, translate(err))
	}
	return &s, nil
}

// Update saves every column of s. Name and NameKey are kept in step.
func (r *SeriesRepo) Update(ctx context.Context, s *models.Series) error {
	s.NameKey = models.NormalizeName(s.Name)
	if err := r.db.WithContext(ctx).Omit("Publisher").Save(s).Error; err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("update series %d: %w", s.ID, ErrDuplicateKey)
		}
		return fmt.Errorf("update series %d: %w", s.ID, err)
	}
	return nil
}

// ApplyCrawl writes only the advisory LOCG fields of a series.
func (r *SeriesRepo) ApplyCrawl(ctx context.Context, kind models.Kind, id int64, issueCount int, runLabel *string, crawledAt time.Time) error {
	updates := map[string]any{
		"locg_issue_count": issueCount,
		"last_crawled_at":  crawledAt,
	}
	if runLabel != nil {
		updates["run_label"] = *runLabel
	}

	result := r.db.WithContext(ctx).
		Model(&models.Series{}).
		Where("id = ? AND kind = ?", id, kind).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("apply crawl to series %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("apply crawl to series %d: %w", id, ErrNotFound)
	}
	return nil
}

// NeedingCrawl lists series with a LOCG link that were never crawled or were
// last crawled before the cutoff.
func (r *SeriesRepo) NeedingCrawl(ctx context.Context, kind models.Kind, cutoff time.Time) ([]models.Series, error) {
	var list []models.Series
	if err := r.db.WithContext(ctx).
		Preload("Publisher").
		Where("kind = ? AND locg_link IS NOT NULL AND locg_link <> ''", kind).
		Where("last_crawled_at IS NULL OR last_crawled_at < ?", cutoff).
		Order("last_crawled_at asc").
		Order("id asc").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list series needing crawl: %w", err)
	}
	return list, nil
}
