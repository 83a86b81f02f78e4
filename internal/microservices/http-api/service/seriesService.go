package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"comicvault/internal/cache"
	"comicvault/internal/microservices/http-api/models"
	"comicvault/internal/microservices/http-api/repository"
)

// SeriesUpdate carries an explicit edit. Nil fields are left alone; an empty
// string clears an optional field.
type SeriesUpdate struct {
	Name          *string
	PublisherName *string
	TotalIssues   *int
	LocgLink      *string
	StartDate     *string
	EndDate       *string
}

// SeriesInput describes a series created directly rather than through an
// issue. A blank publisher resolves to the default publisher.
type SeriesInput struct {
	Name          string
	PublisherName string
	TotalIssues   int
	LocgLink      *string
	StartDate     *string
	EndDate       *string
}

// CrawlUpdate is the advisory data a scraper run produced for one series.
type CrawlUpdate struct {
	IssueCount int
	RunLabel   *string
	CrawledAt  time.Time
}

type SeriesService interface {
	ListPublishers(ctx context.Context, kind models.Kind) ([]models.Publisher, error)
	ListSeries(ctx context.Context, kind models.Kind) ([]models.Series, error)
	// CreatePublisher and CreateSeries go through the identity resolver, so
	// an existing row is returned with created=false instead of a duplicate.
	CreatePublisher(ctx context.Context, kind models.Kind, name string) (*models.Publisher, bool, error)
	CreateSeries(ctx context.Context, kind models.Kind, in SeriesInput) (*models.Series, bool, error)
	GetSeries(ctx context.Context, kind models.Kind, id int64) (*models.Series, error)
	UpdateSeries(ctx context.Context, kind models.Kind, id int64, in SeriesUpdate) (*models.Series, error)
	ApplyCrawlResult(ctx context.Context, kind models.Kind, id int64, in CrawlUpdate) (*models.Series, error)
	SeriesNeedingCrawl(ctx context.Context, kind models.Kind, maxAge time.Duration) ([]models.Series, error)
}

type seriesService struct {
	store  *repository.Store
	cache  cache.ViewCache
	logger *slog.Logger
}

func NewSeriesService(store *repository.Store, c cache.ViewCache, logger *slog.Logger) SeriesService {
	return &seriesService{store: store, cache: c, logger: logger}
}

func (s *seriesService) ListPublishers(ctx context.Context, kind models.Kind) ([]models.Publisher, error) {
	return s.store.Publishers.List(ctx, kind)
}

func (s *seriesService) ListSeries(ctx context.Context, kind models.Kind) ([]models.Series, error) {
	return s.store.Series.List(ctx, kind)
}

func (s *seriesService) CreatePublisher(ctx context.Context, kind models.Kind, name string) (*models.Publisher, bool, error) {
	if strings.TrimSpace(name) == "" {
		return nil, false, invalid("name", "publisher name is required")
	}
	publisher, created, err := s.store.Resolver.FindOrCreatePublisher(ctx, kind, name)
	if err != nil {
		return nil, false, mapStoreError(err)
	}
	if created {
		s.logger.Info("publisher created", "kind", kind, "id", publisher.ID, "name", publisher.Name)
		invalidateViews(ctx, s.cache, s.logger)
	}
	return publisher, created, nil
}

func (s *seriesService) CreateSeries(ctx context.Context, kind models.Kind, in SeriesInput) (*models.Series, bool, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, false, invalid("name", "series name is required")
	}
	if in.TotalIssues < 0 {
		return nil, false, invalid("totalIssues", "total issues cannot be negative")
	}
	publisherName := strings.TrimSpace(in.PublisherName)
	if publisherName == "" {
		publisherName = DefaultPublisherName
	}

	var (
		series  *models.Series
		created bool
	)
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		publisher, _, err := tx.Resolver.FindOrCreatePublisher(ctx, kind, publisherName)
		if err != nil {
			return err
		}
		series, created, err = tx.Resolver.FindOrCreateSeries(ctx, kind, in.Name, publisher.ID, repository.SeriesDefaults{
			TotalIssues: in.TotalIssues,
			LocgLink:    optional(deref(in.LocgLink)),
			StartDate:   optional(deref(in.StartDate)),
			EndDate:     optional(deref(in.EndDate)),
		})
		if err != nil {
			return err
		}
		if series.Publisher == nil {
			series.Publisher = publisher
		}
		return nil
	})
	if err != nil {
		return nil, false, mapStoreError(err)
	}

	if created {
		s.logger.Info("series created", "kind", kind, "id", series.ID, "name", series.Name)
		invalidateViews(ctx, s.cache, s.logger)
	}
	return series, created, nil
}

func (s *seriesService) GetSeries(ctx context.Context, kind models.Kind, id int64) (*models.Series, error) {
	series, err := s.store.Series.GetByID(ctx, kind, id)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return series, nil
}

func (s *seriesService) UpdateSeries(ctx context.Context, kind models.Kind, id int64, in SeriesUpdate) (*models.Series, error) {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, invalid("name", "series name cannot be empty")
	}
	if in.TotalIssues != nil && *in.TotalIssues < 0 {
		return nil, invalid("totalIssues", "total issues cannot be negative")
	}

	var updated *models.Series
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		series, err := tx.Series.GetByID(ctx, kind, id)
		if err != nil {
			return err
		}

		previousPublisher := series.PublisherID
		if in.PublisherName != nil && strings.TrimSpace(*in.PublisherName) != "" {
			publisher, _, err := tx.Resolver.FindOrCreatePublisher(ctx, kind, *in.PublisherName)
			if err != nil {
				return err
			}
			series.PublisherID = publisher.ID
			series.Publisher = publisher
		}
		if in.Name != nil {
			series.Name = strings.TrimSpace(*in.Name)
		}
		if in.TotalIssues != nil {
			series.TotalIssues = *in.TotalIssues
		}
		if in.LocgLink != nil {
			series.LocgLink = optional(*in.LocgLink)
		}
		if in.StartDate != nil {
			series.StartDate = optional(*in.StartDate)
		}
		if in.EndDate != nil {
			series.EndDate = optional(*in.EndDate)
		}

		if err := tx.Series.Update(ctx, series); err != nil {
			if errors.Is(err, repository.ErrDuplicateKey) {
				return invalid("name", "a series named %q already exists for this publisher", series.Name)
			}
			return err
		}
		if series.PublisherID != previousPublisher {
			if err := tx.Issues.ReassignPublisher(ctx, kind, series.ID, series.PublisherID); err != nil {
				return err
			}
		}
		updated = series
		return nil
	})
	if err != nil {
		return nil, mapStoreError(err)
	}

	invalidateViews(ctx, s.cache, s.logger)
	return updated, nil
}

func (s *seriesService) ApplyCrawlResult(ctx context.Context, kind models.Kind, id int64, in CrawlUpdate) (*models.Series, error) {
	if in.IssueCount < 0 {
		return nil, invalid("issueCount", "issue count cannot be negative")
	}
	if in.CrawledAt.IsZero() {
		in.CrawledAt = time.Now()
	}

	if err := s.store.Series.ApplyCrawl(ctx, kind, id, in.IssueCount, in.RunLabel, in.CrawledAt); err != nil {
		return nil, mapStoreError(err)
	}
	invalidateViews(ctx, s.cache, s.logger)

	series, err := s.store.Series.GetByID(ctx, kind, id)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return series, nil
}

func (s *seriesService) SeriesNeedingCrawl(ctx context.Context, kind models.Kind, maxAge time.Duration) ([]models.Series, error) {
	if maxAge < 0 {
		return nil, invalid("maxAge", "max age cannot be negative")
	}
	list, err := s.store.Series.NeedingCrawl(ctx, kind, time.Now().Add(-maxAge))
	if err != nil {
		return nil, fmt.Errorf("series needing crawl: %w", err)
	}
	return list, nil
}
