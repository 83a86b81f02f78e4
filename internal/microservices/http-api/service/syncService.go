package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"comicvault/internal/cache"
	"comicvault/internal/microservices/http-api/models"
	"comicvault/internal/microservices/http-api/repository"
)

// SeriesRecord is one series of a sync payload. Blank fields and a nil or
// zero TotalIssues leave the stored value untouched on update.
type SeriesRecord struct {
	Name          string
	PublisherName string
	TotalIssues   *int
	LocgLink      string
	StartDate     string
	EndDate       string
}

// IssueRecord is one issue of a sync payload. IssueNo is kept raw so a bad
// number becomes a per-record error.
type IssueRecord struct {
	Name               string
	SeriesName         string
	PublisherName      string
	IssueNo            string
	VariantDescription string
	CoverURL           string
	ReleaseDate        string
	UPC                string
	LocgLink           string
	Plot               string
}

type SyncSummary struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Errors  int `json:"errors"`
}

// SyncError names the record that failed.
type SyncError struct {
	Index   int    `json:"index"`
	Record  string `json:"record"`
	Message string `json:"message"`
}

type SeriesSyncDetails struct {
	Created []models.Series `json:"created"`
	Updated []models.Series `json:"updated"`
	Errors  []SyncError     `json:"errors"`
}

type SeriesSyncResult struct {
	Summary SyncSummary       `json:"summary"`
	Details SeriesSyncDetails `json:"details"`
}

type IssueSyncDetails struct {
	Created []models.Issue `json:"created"`
	Updated []models.Issue `json:"updated"`
	Errors  []SyncError    `json:"errors"`
}

type IssueSyncResult struct {
	Summary SyncSummary      `json:"summary"`
	Details IssueSyncDetails `json:"details"`
}

// SyncService upserts batches keyed by natural key. Existing records are
// matched against a snapshot loaded once per run; a failing record is
// reported and the run continues.
type SyncService interface {
	SyncSeries(ctx context.Context, kind models.Kind, records []SeriesRecord) (*SeriesSyncResult, error)
	SyncIssues(ctx context.Context, kind models.Kind, records []IssueRecord) (*IssueSyncResult, error)
}

type syncService struct {
	store  *repository.Store
	cache  cache.ViewCache
	logger *slog.Logger
}

func NewSyncService(store *repository.Store, c cache.ViewCache, logger *slog.Logger) SyncService {
	return &syncService{store: store, cache: c, logger: logger}
}

func (s *syncService) SyncSeries(ctx context.Context, kind models.Kind, records []SeriesRecord) (*SeriesSyncResult, error) {
	snapshot, err := s.store.Series.List(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("load series snapshot: %w", err)
	}
	byName := make(map[string]models.Series, len(snapshot))
	for _, series := range snapshot {
		if _, seen := byName[series.Name]; !seen {
			byName[series.Name] = series
		}
	}

	result := &SeriesSyncResult{Details: SeriesSyncDetails{
		Created: []models.Series{},
		Updated: []models.Series{},
		Errors:  []SyncError{},
	}}

	for i, rec := range records {
		name := strings.TrimSpace(rec.Name)
		if name == "" {
			s.seriesFailed(result, i, rec.Name, invalid("name", "series name is required"))
			continue
		}

		var (
			saved   *models.Series
			created bool
		)
		err := s.store.Transaction(ctx, func(tx *repository.Store) error {
			var err error
			if existing, ok := byName[name]; ok {
				saved, err = applySeriesRecord(ctx, tx, kind, &existing, rec)
				return err
			}
			saved, created, err = createSeriesFromRecord(ctx, tx, kind, name, rec)
			return err
		})
		if err != nil {
			s.seriesFailed(result, i, name, mapStoreError(err))
			continue
		}

		// later records with the same name update this one
		byName[name] = *saved
		if created {
			result.Summary.Created++
			result.Details.Created = append(result.Details.Created, *saved)
		} else {
			result.Summary.Updated++
			result.Details.Updated = append(result.Details.Updated, *saved)
		}
	}

	if result.Summary.Created+result.Summary.Updated > 0 {
		invalidateViews(ctx, s.cache, s.logger)
	}
	s.logger.Info("series sync finished", "kind", kind,
		"created", result.Summary.Created, "updated", result.Summary.Updated, "errors", result.Summary.Errors)
	return result, nil
}

func (s *syncService) seriesFailed(result *SeriesSyncResult, index int, name string, err error) {
	result.Summary.Errors++
	result.Details.Errors = append(result.Details.Errors, SyncError{
		Index:   index,
		Record:  name,
		Message: fmt.Sprintf("series %q: %v", name, err),
	})
}

// createSeriesFromRecord resolves the series; if it already existed under a
// differently cased name it is updated from the record instead.
func createSeriesFromRecord(ctx context.Context, tx *repository.Store, kind models.Kind, name string, rec SeriesRecord) (*models.Series, bool, error) {
	publisherName := strings.TrimSpace(rec.PublisherName)
	if publisherName == "" {
		publisherName = DefaultPublisherName
	}
	publisher, _, err := tx.Resolver.FindOrCreatePublisher(ctx, kind, publisherName)
	if err != nil {
		return nil, false, err
	}

	defaults := repository.SeriesDefaults{
		LocgLink:  optional(rec.LocgLink),
		StartDate: optional(rec.StartDate),
		EndDate:   optional(rec.EndDate),
	}
	if rec.TotalIssues != nil && *rec.TotalIssues > 0 {
		defaults.TotalIssues = *rec.TotalIssues
	}

	series, created, err := tx.Resolver.FindOrCreateSeries(ctx, kind, name, publisher.ID, defaults)
	if err != nil {
		return nil, false, err
	}
	if created {
		series.Publisher = publisher
		return series, true, nil
	}

	updated, err := applySeriesRecord(ctx, tx, kind, series, rec)
	return updated, false, err
}

// applySeriesRecord is a partial update: only non-empty record fields are written.
func applySeriesRecord(ctx context.Context, tx *repository.Store, kind models.Kind, series *models.Series, rec SeriesRecord) (*models.Series, error) {
	previousPublisher := series.PublisherID
	if name := strings.TrimSpace(rec.PublisherName); name != "" {
		publisher, _, err := tx.Resolver.FindOrCreatePublisher(ctx, kind, name)
		if err != nil {
			return nil, err
		}
		series.PublisherID = publisher.ID
		series.Publisher = publisher
	}
	if rec.TotalIssues != nil && *rec.TotalIssues > 0 {
		series.TotalIssues = *rec.TotalIssues
	}
	if v := optional(rec.LocgLink); v != nil {
		series.LocgLink = v
	}
	if v := optional(rec.StartDate); v != nil {
		series.StartDate = v
	}
	if v := optional(rec.EndDate); v != nil {
		series.EndDate = v
	}

	if err := tx.Series.Update(ctx, series); err != nil {
		return nil, err
	}
	if series.PublisherID != previousPublisher {
		if err := tx.Issues.ReassignPublisher(ctx, kind, series.ID, series.PublisherID); err != nil {
			return nil, err
		}
	}
	return series, nil
}

func issueKey(seriesName string, issueNo float64) string {
	return seriesName + "#" + FormatIssueNo(issueNo)
}

func (s *syncService) SyncIssues(ctx context.Context, kind models.Kind, records []IssueRecord) (*IssueSyncResult, error) {
	snapshot, err := s.store.Issues.List(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("load issue snapshot: %w", err)
	}
	byKey := make(map[string]int64, len(snapshot))
	for _, issue := range snapshot {
		key := issueKey(issue.SeriesName(), issue.IssueNo)
		if _, seen := byKey[key]; !seen {
			byKey[key] = issue.ID
		}
	}

	result := &IssueSyncResult{Details: IssueSyncDetails{
		Created: []models.Issue{},
		Updated: []models.Issue{},
		Errors:  []SyncError{},
	}}

	for i, rec := range records {
		seriesName := strings.TrimSpace(rec.SeriesName)
		label := strings.TrimSpace(seriesName + " #" + strings.TrimSpace(rec.IssueNo))
		if seriesName == "" {
			s.issueFailed(result, i, label, invalid("seriesName", "series name is required"))
			continue
		}
		issueNo, err := ParseIssueNo(rec.IssueNo)
		if err != nil {
			s.issueFailed(result, i, label, err)
			continue
		}
		key := issueKey(seriesName, issueNo)

		var (
			saved   *models.Issue
			created bool
		)
		err = s.store.Transaction(ctx, func(tx *repository.Store) error {
			if id, ok := byKey[key]; ok {
				existing, err := tx.Issues.GetByID(ctx, kind, id)
				if err != nil {
					return err
				}
				if err := updateIssue(ctx, tx, kind, existing, issueRecordUpdate(rec)); err != nil {
					return err
				}
				saved = existing
				return nil
			}

			issue, _, err := createIssue(ctx, tx, kind, IssueInput{
				Name:               rec.Name,
				SeriesName:         seriesName,
				PublisherName:      rec.PublisherName,
				IssueNo:            issueNo,
				VariantDescription: optional(rec.VariantDescription),
				CoverURL:           optional(rec.CoverURL),
				ReleaseDate:        optional(rec.ReleaseDate),
				UPC:                optional(rec.UPC),
				LocgLink:           optional(rec.LocgLink),
				Plot:               optional(rec.Plot),
			})
			saved = issue
			created = true
			return err
		})
		if err != nil {
			s.issueFailed(result, i, label, mapStoreError(err))
			continue
		}

		byKey[key] = saved.ID
		if created {
			result.Summary.Created++
			result.Details.Created = append(result.Details.Created, *saved)
		} else {
			result.Summary.Updated++
			result.Details.Updated = append(result.Details.Updated, *saved)
		}
	}

	if result.Summary.Created+result.Summary.Updated > 0 {
		invalidateViews(ctx, s.cache, s.logger)
	}
	s.logger.Info("issue sync finished", "kind", kind,
		"created", result.Summary.Created, "updated", result.Summary.Updated, "errors", result.Summary.Errors)
	return result, nil
}

func (s *syncService) issueFailed(result *IssueSyncResult, index int, label string, err error) {
	if label == "" || label == "#" {
		label = fmt.Sprintf("record %d", index+1)
	}
	result.Summary.Errors++
	result.Details.Errors = append(result.Details.Errors, SyncError{
		Index:   index,
		Record:  label,
		Message: fmt.Sprintf("issue %s: %v", label, err),
	})
}

// issueRecordUpdate keeps stored values wherever the record is blank.
func issueRecordUpdate(rec IssueRecord) IssueUpdate {
	return IssueUpdate{
		Name:               optional(rec.Name),
		PublisherName:      optional(rec.PublisherName),
		VariantDescription: optional(rec.VariantDescription),
		CoverURL:           optional(rec.CoverURL),
		ReleaseDate:        optional(rec.ReleaseDate),
		UPC:                optional(rec.UPC),
		LocgLink:           optional(rec.LocgLink),
		Plot:               optional(rec.Plot),
	}
}
