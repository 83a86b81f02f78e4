package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store bundles the repositories over one gorm handle. A Store built inside
// Transaction routes every statement through the same transaction.
type Store struct {
	db *gorm.DB

	Publishers *PublisherRepo
	Series     *SeriesRepo
	Issues     *IssueRepo
	Resolver   *IdentityResolver
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:         db,
		Publishers: NewPublisherRepo(db),
		Series:     NewSeriesRepo(db),
		Issues:     NewIssueRepo(db),
		Resolver:   NewIdentityResolver(db),
	}
}

// Transaction runs fn in a transaction. Nested calls use savepoints.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

// Ping checks database connectivity for health checks.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
