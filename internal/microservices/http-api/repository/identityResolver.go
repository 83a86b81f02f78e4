package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"comicvault/internal/microservices/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// maxResolveAttempts bounds the read, insert, re-read loop. A lost insert
// race is resolved on the next read, so more than one retry means the
// winning row is being deleted concurrently.
const maxResolveAttempts = 3

// SeriesDefaults are applied only when a new series is created.
type SeriesDefaults struct {
	TotalIssues int
	LocgLink    *string
	StartDate   *string
	EndDate     *string
}

// IdentityResolver finds or creates publishers and series by normalized
// name. It never returns two rows for one identity, including when two
// callers race on the same name.
type IdentityResolver struct {
	db *gorm.DB
}

func NewIdentityResolver(db *gorm.DB) *IdentityResolver {
	return &IdentityResolver{db: db}
}

// FindOrCreatePublisher returns the publisher of kind matching name, creating
// it with the trimmed name if absent. created reports whether a row was inserted.
func (r *IdentityResolver) FindOrCreatePublisher(ctx context.Context, kind models.Kind, name string) (*models.Publisher, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false, fmt.Errorf("resolve publisher: %w", ErrEmptyName)
	}
	key := models.NormalizeName(name)
	db := r.db.WithContext(ctx)

	for attempt := 0; attempt < maxResolveAttempts; attempt++ {
		var existing models.Publisher
		err := db.Where("kind = ? AND name_key = ?", kind, key).First(&existing).Error
		if err == nil {
			return &existing, false, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, fmt.Errorf("find publisher %q: %w", name, err)
		}

		p := &models.Publisher{Kind: kind, Name: name, NameKey: key}
		inserted, err := insertIfAbsent(db, p, "kind", "name_key")
		if err != nil {
			return nil, false, fmt.Errorf("create publisher %q: %w", name, err)
		}
		if inserted {
			return p, true, nil
		}
		// another writer won; its row is visible on the next read
	}
	return nil, false, fmt.Errorf("resolve publisher %q: %w", name, ErrIdentityConflict)
}

// FindOrCreateSeries returns the series of kind matching name under
// publisherID, creating it with defaults if absent.
func (r *IdentityResolver) FindOrCreateSeries(ctx context.Context, kind models.Kind, name string, publisherID int64, defaults SeriesDefaults) (*models.Series, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false, fmt.Errorf("resolve series: %w", ErrEmptyName)
	}
	key := models.NormalizeName(name)
	db := r.db.WithContext(ctx)

	for attempt := 0; attempt < maxResolveAttempts; attempt++ {
		var existing models.Series
		err := db.Preload("Publisher").
			Where("kind = ? AND publisher_id = ? AND name_key = ?", kind, publisherID, key).
			First(&existing).Error
		if err == nil {
			return &existing, false, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, fmt.Errorf("find series %q: %w", name, err)
		}

		s := &models.Series{
			Kind:        kind,
			Name:        name,
			NameKey:     key,
			PublisherID: publisherID,
			TotalIssues: defaults.TotalIssues,
			LocgLink:    defaults.LocgLink,
			StartDate:   defaults.StartDate,
			EndDate:     defaults.EndDate,
		}
		inserted, err := insertIfAbsent(db, s, "kind", "publisher_id", "name_key")
		if err != nil {
			return nil, false, fmt.Errorf("create series %q: %w", name, err)
		}
		if inserted {
			return s, true, nil
		}
	}
	return nil, false, fmt.Errorf("resolve series %q: %w", name, ErrIdentityConflict)
}

// insertIfAbsent inserts value unless a row with the same conflict columns
// exists. The insert runs in its own savepoint so a constraint error does
// not poison an enclosing Postgres transaction.
func insertIfAbsent(db *gorm.DB, value any, conflictColumns ...string) (bool, error) {
	columns := make([]clause.Column, 0, len(conflictColumns))
	for _, name := range conflictColumns {
		columns = append(columns, clause.Column{Name: name})
	}

	var inserted bool
	err := db.Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{Columns: columns, DoNothing: true}).
			Omit(clause.Associations).
			Create(value)
		if result.Error != nil {
			return result.Error
		}
		inserted = result.RowsAffected > 0
		return nil
	})
	if err != nil {
		if IsUniqueViolation(err) {
			return false, nil
		}
		return false, err
	}
	return inserted, nil
}
