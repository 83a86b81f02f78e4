package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"comicvault/internal/cache"
	"comicvault/internal/microservices/http-api/models"
	"comicvault/internal/microservices/http-api/repository"
)

const (
	DefaultPublisherName = "Unknown Publisher"
	DefaultSeriesName    = "Unknown Series"
)

// IssueInput describes a new issue by names; publisher and series are resolved.
type IssueInput struct {
	Name               string
	SeriesName         string
	PublisherName      string
	IssueNo            float64
	VariantDescription *string
	CoverURL           *string
	ReleaseDate        *string
	UPC                *string
	LocgLink           *string
	Plot               *string

	// applied only if the series has to be created
	SeriesDefaults repository.SeriesDefaults
}

// IssueUpdate is a partial edit. Nil fields are kept; an empty string clears
// an optional field. A blank publisher or series name keeps the current one.
type IssueUpdate struct {
	Name               *string
	SeriesName         *string
	PublisherName      *string
	IssueNo            *float64
	VariantDescription *string
	CoverURL           *string
	ReleaseDate        *string
	UPC                *string
	LocgLink           *string
	Plot               *string
}

// IssueService manages issues of either kind. Wishlist items are issues of
// KindWishlist.
type IssueService interface {
	List(ctx context.Context, kind models.Kind) ([]models.Issue, error)
	Get(ctx context.Context, kind models.Kind, id int64) (*models.Issue, error)
	Create(ctx context.Context, kind models.Kind, in IssueInput) (*models.Issue, error)
	Update(ctx context.Context, kind models.Kind, id int64, in IssueUpdate) (*models.Issue, error)
	Delete(ctx context.Context, kind models.Kind, id int64) error
}

type issueService struct {
	store  *repository.Store
	cache  cache.ViewCache
	logger *slog.Logger
}

func NewIssueService(store *repository.Store, c cache.ViewCache, logger *slog.Logger) IssueService {
	return &issueService{store: store, cache: c, logger: logger}
}

func (s *issueService) List(ctx context.Context, kind models.Kind) ([]models.Issue, error) {
	return s.store.Issues.List(ctx, kind)
}

func (s *issueService) Get(ctx context.Context, kind models.Kind, id int64) (*models.Issue, error) {
	issue, err := s.store.Issues.GetByID(ctx, kind, id)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return issue, nil
}

func (s *issueService) Create(ctx context.Context, kind models.Kind, in IssueInput) (*models.Issue, error) {
	var created *models.Issue
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		issue, _, err := createIssue(ctx, tx, kind, in)
		created = issue
		return err
	})
	if err != nil {
		return nil, mapStoreError(err)
	}

	invalidateViews(ctx, s.cache, s.logger)
	s.logger.Info("issue created", "kind", kind, "id", created.ID, "series", created.SeriesName())
	return created, nil
}

func (s *issueService) Update(ctx context.Context, kind models.Kind, id int64, in IssueUpdate) (*models.Issue, error) {
	var updated *models.Issue
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		issue, err := tx.Issues.GetByID(ctx, kind, id)
		if err != nil {
			return err
		}
		if err := updateIssue(ctx, tx, kind, issue, in); err != nil {
			return err
		}
		updated = issue
		return nil
	})
	if err != nil {
		return nil, mapStoreError(err)
	}

	invalidateViews(ctx, s.cache, s.logger)
	return updated, nil
}

func (s *issueService) Delete(ctx context.Context, kind models.Kind, id int64) error {
	deleted, err := s.store.Issues.Delete(ctx, kind, id)
	if err != nil {
		return err
	}
	if !deleted {
		return mapStoreError(repository.ErrNotFound)
	}

	invalidateViews(ctx, s.cache, s.logger)
	return nil
}

// resolution reports which parents a create had to insert.
type resolution struct {
	PublisherCreated bool
	SeriesCreated    bool
}

// createIssue resolves the publisher and series by name, then inserts the
// issue unless its identity already exists in kind. tx must be transactional
// for the three writes to be atomic.
func createIssue(ctx context.Context, tx *repository.Store, kind models.Kind, in IssueInput) (*models.Issue, resolution, error) {
	var res resolution

	seriesName := strings.TrimSpace(in.SeriesName)
	if seriesName == "" {
		return nil, res, invalid("seriesName", "series name is required")
	}
	if in.IssueNo < 0 {
		return nil, res, invalid("issueNo", "issue number cannot be negative")
	}
	publisherName := strings.TrimSpace(in.PublisherName)
	if publisherName == "" {
		publisherName = DefaultPublisherName
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = seriesName + " #" + FormatIssueNo(in.IssueNo)
	}

	publisher, created, err := tx.Resolver.FindOrCreatePublisher(ctx, kind, publisherName)
	if err != nil {
		return nil, res, err
	}
	res.PublisherCreated = created

	series, created, err := tx.Resolver.FindOrCreateSeries(ctx, kind, seriesName, publisher.ID, in.SeriesDefaults)
	if err != nil {
		return nil, res, err
	}
	res.SeriesCreated = created

	variant := models.NormalizeVariant(in.VariantDescription)
	dup, err := tx.Issues.FindDuplicate(ctx, kind, series.ID, in.IssueNo, variant, 0)
	if err != nil {
		return nil, res, err
	}
	if dup != nil {
		return nil, res, &DuplicateIssueError{Kind: kind, SeriesName: series.Name, IssueNo: in.IssueNo, Variant: variant}
	}

	issue := &models.Issue{
		Kind:               kind,
		Name:               name,
		SeriesID:           series.ID,
		IssueNo:            in.IssueNo,
		PublisherID:        publisher.ID,
		VariantDescription: optional(deref(in.VariantDescription)),
		CoverURL:           optional(deref(in.CoverURL)),
		ReleaseDate:        optional(deref(in.ReleaseDate)),
		UPC:                optional(deref(in.UPC)),
		LocgLink:           optional(deref(in.LocgLink)),
		Plot:               optional(deref(in.Plot)),
	}
	if err := tx.Issues.Create(ctx, issue); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, res, &DuplicateIssueError{Kind: kind, SeriesName: series.Name, IssueNo: in.IssueNo, Variant: variant}
		}
		return nil, res, err
	}

	series.Publisher = publisher
	issue.Series = series
	issue.Publisher = publisher
	return issue, res, nil
}

// updateIssue applies in to issue and saves it. Moving an issue onto an
// identity that is already taken fails with a DuplicateIssueError.
func updateIssue(ctx context.Context, tx *repository.Store, kind models.Kind, issue *models.Issue, in IssueUpdate) error {
	publisher := issue.Publisher
	publisherChanged := false
	if in.PublisherName != nil && strings.TrimSpace(*in.PublisherName) != "" {
		p, _, err := tx.Resolver.FindOrCreatePublisher(ctx, kind, *in.PublisherName)
		if err != nil {
			return err
		}
		publisherChanged = publisher == nil || p.ID != publisher.ID
		publisher = p
	}

	seriesName := issue.SeriesName()
	if in.SeriesName != nil && strings.TrimSpace(*in.SeriesName) != "" {
		seriesName = strings.TrimSpace(*in.SeriesName)
	}
	if publisherChanged || models.NormalizeName(seriesName) != models.NormalizeName(issue.SeriesName()) {
		series, _, err := tx.Resolver.FindOrCreateSeries(ctx, kind, seriesName, publisher.ID, repository.SeriesDefaults{})
		if err != nil {
			return err
		}
		issue.SeriesID = series.ID
		issue.Series = series
	}
	issue.PublisherID = publisher.ID
	issue.Publisher = publisher

	if in.Name != nil && strings.TrimSpace(*in.Name) != "" {
		issue.Name = strings.TrimSpace(*in.Name)
	}
	if in.IssueNo != nil {
		if *in.IssueNo < 0 {
			return invalid("issueNo", "issue number cannot be negative")
		}
		issue.IssueNo = *in.IssueNo
	}
	if in.VariantDescription != nil {
		issue.VariantDescription = optional(*in.VariantDescription)
	}
	if in.CoverURL != nil {
		issue.CoverURL = optional(*in.CoverURL)
	}
	if in.ReleaseDate != nil {
		issue.ReleaseDate = optional(*in.ReleaseDate)
	}
	if in.UPC != nil {
		issue.UPC = optional(*in.UPC)
	}
	if in.LocgLink != nil {
		issue.LocgLink = optional(*in.LocgLink)
	}
	if in.Plot != nil {
		issue.Plot = optional(*in.Plot)
	}

	variant := models.NormalizeVariant(issue.VariantDescription)
	dup, err := tx.Issues.FindDuplicate(ctx, kind, issue.SeriesID, issue.IssueNo, variant, issue.ID)
	if err != nil {
		return err
	}
	duplicate := &DuplicateIssueError{Kind: kind, SeriesName: issue.SeriesName(), IssueNo: issue.IssueNo, Variant: variant}
	if dup != nil {
		return duplicate
	}
	if err := tx.Issues.Update(ctx, issue); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return duplicate
		}
		return err
	}
	return nil
}
