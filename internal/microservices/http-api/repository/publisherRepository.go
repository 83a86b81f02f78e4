package repository

import (
	"context"
	"fmt"

	"comicvault/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

type PublisherRepo struct {
	db *gorm.DB
}

func NewPublisherRepo(db *gorm.DB) *PublisherRepo {
	return &PublisherRepo{db: db}
}

func (r *PublisherRepo) List(ctx context.Context, kind models.Kind) ([]models.Publisher, error) {
	var list []models.Publisher
	if err := r.db.WithContext(ctx).
		Where("kind = ?", kind).
		Order("name_key asc").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list publishers: %w", err)
	}
	return list, nil
}

func (r *PublisherRepo) GetByID(ctx context.Context, kind models.Kind, id int64) (*models.Publisher, error) {
	var p models.Publisher
	if err := r.db.WithContext(ctx).Where("kind = ?", kind).First(&p, id).Error; err != nil {
		return nil, fmt.Errorf("get publisher %d: %w", id, translate(err))
	}
	return &p, nil
}

// FindByName matches case-insensitively on the trimmed name.
func (r *PublisherRepo) FindByName(ctx context.Context, kind models.Kind, name string) (*models.Publisher, error) {
	var p models.Publisher
	if err := r.db.WithContext(ctx).
		Where("kind = ? AND name_key = ?", kind, models.NormalizeName(name)).
		First(&p).Error; err != nil {
		return nil, fmt.Errorf("find publisher %q: %w", name, translate(err))
	}
	return &p, nil
}
