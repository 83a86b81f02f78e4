package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"comicvault/internal/cache"
	"comicvault/internal/microservices/http-api/models"
	"comicvault/internal/microservices/http-api/repository"

	"github.com/google/uuid"
)

// ImportRow is one loosely typed spreadsheet row. Every field is optional;
// see normalize for the defaults.
type ImportRow struct {
	Name               string
	SeriesName         string
	PublisherName      string
	IssueNo            string
	VariantDescription string
	CoverURL           string
	ReleaseDate        string
	UPC                string
	LocgLink           string
}

// ImportColumns is the header row of the import template, in order.
var ImportColumns = []string{
	"name", "series_name", "publisher_name", "issue_no", "variant_description",
	"cover_url", "release_date", "upc", "locg_link",
}

// normalize applies the row defaults and parses the issue number.
func (r ImportRow) normalize() (IssueInput, error) {
	in := IssueInput{
		SeriesName:         strings.TrimSpace(r.SeriesName),
		PublisherName:      strings.TrimSpace(r.PublisherName),
		VariantDescription: optional(r.VariantDescription),
		CoverURL:           optional(r.CoverURL),
		ReleaseDate:        optional(r.ReleaseDate),
		UPC:                optional(r.UPC),
		LocgLink:           optional(r.LocgLink),
		// a series first seen through an import keeps the row's link
		SeriesDefaults: repository.SeriesDefaults{LocgLink: optional(r.LocgLink)},
	}
	if in.SeriesName == "" {
		in.SeriesName = DefaultSeriesName
	}
	if in.PublisherName == "" {
		in.PublisherName = DefaultPublisherName
	}

	raw := strings.TrimSpace(r.IssueNo)
	if raw == "" {
		raw = "1"
	}
	no, err := ParseIssueNo(raw)
	if err != nil {
		return in, err
	}
	in.IssueNo = no

	in.Name = strings.TrimSpace(r.Name)
	if in.Name == "" {
		in.Name = in.SeriesName + " #" + FormatIssueNo(no)
	}
	return in, nil
}

type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

type PreviewSeries struct {
	Name      string `json:"name"`
	Publisher string `json:"publisher"`
}

type PreviewIssue struct {
	Row                int     `json:"row"`
	Name               string  `json:"name"`
	SeriesName         string  `json:"seriesName"`
	PublisherName      string  `json:"publisherName"`
	IssueNo            float64 `json:"issueNo"`
	VariantDescription string  `json:"variantDescription,omitempty"`
}

type ImportPreviewSummary struct {
	TotalRows               int `json:"totalRows"`
	ValidRows               int `json:"validRows"`
	IssuesWillBeAdded       int `json:"issuesWillBeAdded"`
	SeriesWillBeCreated     int `json:"seriesWillBeCreated"`
	PublishersWillBeCreated int `json:"publishersWillBeCreated"`
	Duplicates              int `json:"duplicates"`
	Errors                  int `json:"errors"`
}

type ImportPreviewDetails struct {
	NewPublishers []string        `json:"newPublishers"`
	NewSeries     []PreviewSeries `json:"newSeries"`
	NewIssues     []PreviewIssue  `json:"newIssues"`
	Duplicates    []PreviewIssue  `json:"duplicates"`
	Errors        []RowError      `json:"errors"`
}

type ImportPreview struct {
	Summary ImportPreviewSummary `json:"summary"`
	Details ImportPreviewDetails `json:"details"`
}

type ImportSummary struct {
	TotalRows         int `json:"totalRows"`
	IssuesAdded       int `json:"issuesAdded"`
	SeriesCreated     int `json:"seriesCreated"`
	PublishersCreated int `json:"publishersCreated"`
	Duplicates        int `json:"duplicates"`
	Errors            int `json:"errors"`
}

type ImportResult struct {
	RunID   string         `json:"runId"`
	Summary ImportSummary  `json:"summary"`
	Added   []models.Issue `json:"added"`
	Errors  []RowError     `json:"errors"`
}

// ImportTemplate is the CSV header plus a few sample rows.
type ImportTemplate struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

type ImportService interface {
	// ValidateImport reports what ProcessImport would do without writing.
	ValidateImport(ctx context.Context, kind models.Kind, rows []ImportRow) (*ImportPreview, error)
	ProcessImport(ctx context.Context, kind models.Kind, rows []ImportRow) (*ImportResult, error)
	Template(ctx context.Context, kind models.Kind) (*ImportTemplate, error)
}

type importService struct {
	store  *repository.Store
	cache  cache.ViewCache
	logger *slog.Logger
}

func NewImportService(store *repository.Store, c cache.ViewCache, logger *slog.Logger) ImportService {
	return &importService{store: store, cache: c, logger: logger}
}

func previewIssueKey(seriesKey string, issueNo float64, variant string) string {
	return seriesKey + "#" + FormatIssueNo(issueNo) + "#" + variant
}

func (s *importService) ValidateImport(ctx context.Context, kind models.Kind, rows []ImportRow) (*ImportPreview, error) {
	publishers, err := s.store.Publishers.List(ctx, kind)
	if err != nil {
		return nil, err
	}
	series, err := s.store.Series.List(ctx, kind)
	if err != nil {
		return nil, err
	}
	issues, err := s.store.Issues.List(ctx, kind)
	if err != nil {
		return nil, err
	}

	knownPublishers := make(map[string]bool, len(publishers))
	for _, p := range publishers {
		knownPublishers[p.NameKey] = true
	}
	knownSeries := make(map[string]bool, len(series))
	for _, sr := range series {
		knownSeries[models.ReconcileKey(sr.Name, sr.PublisherName())] = true
	}
	knownIssues := make(map[string]bool, len(issues))
	for _, is := range issues {
		seriesKey := models.ReconcileKey(is.SeriesName(), is.PublisherName())
		knownIssues[previewIssueKey(seriesKey, is.IssueNo, is.VariantKey)] = true
	}

	preview := &ImportPreview{
		Summary: ImportPreviewSummary{TotalRows: len(rows)},
		Details: ImportPreviewDetails{
			NewPublishers: []string{},
			NewSeries:     []PreviewSeries{},
			NewIssues:     []PreviewIssue{},
			Duplicates:    []PreviewIssue{},
			Errors:        []RowError{},
		},
	}

	for i, row := range rows {
		rowNo := i + 1
		in, err := row.normalize()
		if err != nil {
			preview.Summary.Errors++
			preview.Details.Errors = append(preview.Details.Errors, RowError{Row: rowNo, Message: fmt.Sprintf("Row %d: %v", rowNo, err)})
			continue
		}

		// the snapshot maps double as the set of creations pending in this batch
		if publisherKey := models.NormalizeName(in.PublisherName); !knownPublishers[publisherKey] {
			knownPublishers[publisherKey] = true
			preview.Summary.PublishersWillBeCreated++
			preview.Details.NewPublishers = append(preview.Details.NewPublishers, in.PublisherName)
		}
		seriesKey := models.ReconcileKey(in.SeriesName, in.PublisherName)
		if !knownSeries[seriesKey] {
			knownSeries[seriesKey] = true
			preview.Summary.SeriesWillBeCreated++
			preview.Details.NewSeries = append(preview.Details.NewSeries, PreviewSeries{Name: in.SeriesName, Publisher: in.PublisherName})
		}

		item := PreviewIssue{
			Row:                rowNo,
			Name:               in.Name,
			SeriesName:         in.SeriesName,
			PublisherName:      in.PublisherName,
			IssueNo:            in.IssueNo,
			VariantDescription: deref(in.VariantDescription),
		}
		key := previewIssueKey(seriesKey, in.IssueNo, models.NormalizeVariant(in.VariantDescription))
		if knownIssues[key] {
			preview.Summary.Duplicates++
			preview.Details.Duplicates = append(preview.Details.Duplicates, item)
			continue
		}
		knownIssues[key] = true
		preview.Summary.ValidRows++
		preview.Summary.IssuesWillBeAdded++
		preview.Details.NewIssues = append(preview.Details.NewIssues, item)
	}
	return preview, nil
}

func (s *importService) ProcessImport(ctx context.Context, kind models.Kind, rows []ImportRow) (*ImportResult, error) {
	result := &ImportResult{
		RunID:   uuid.NewString(),
		Summary: ImportSummary{TotalRows: len(rows)},
		Added:   []models.Issue{},
		Errors:  []RowError{},
	}
	log := s.logger.With("import_run", result.RunID, "kind", kind)
	log.Info("import started", "rows", len(rows))

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rowNo := i + 1

		in, err := row.normalize()
		if err != nil {
			result.Summary.Errors++
			result.Errors = append(result.Errors, RowError{Row: rowNo, Message: fmt.Sprintf("Row %d: %v", rowNo, err)})
			continue
		}

		var (
			issue *models.Issue
			res   resolution
		)
		err = s.store.Transaction(ctx, func(tx *repository.Store) error {
			var err error
			issue, res, err = createIssue(ctx, tx, kind, in)
			return err
		})
		if err != nil {
			if errors.Is(err, ErrDuplicateIssue) {
				result.Summary.Duplicates++
			} else {
				result.Summary.Errors++
			}
			result.Errors = append(result.Errors, RowError{Row: rowNo, Message: fmt.Sprintf("Row %d: %v", rowNo, mapStoreError(err))})
			continue
		}

		result.Summary.IssuesAdded++
		if res.PublisherCreated {
			result.Summary.PublishersCreated++
		}
		if res.SeriesCreated {
			result.Summary.SeriesCreated++
		}
		result.Added = append(result.Added, *issue)
	}

	if result.Summary.IssuesAdded > 0 {
		invalidateViews(ctx, s.cache, s.logger)
	}
	log.Info("import finished",
		"added", result.Summary.IssuesAdded,
		"duplicates", result.Summary.Duplicates,
		"errors", result.Summary.Errors)
	return result, nil
}

func (s *importService) Template(ctx context.Context, kind models.Kind) (*ImportTemplate, error) {
	const sampleRows = 3

	issues, err := s.store.Issues.List(ctx, kind)
	if err != nil {
		return nil, err
	}

	tpl := &ImportTemplate{Headers: ImportColumns, Rows: [][]string{}}
	for _, issue := range issues {
		if len(tpl.Rows) == sampleRows {
			break
		}
		if issue.SeriesName() == "" || issue.PublisherName() == "" {
			continue
		}
		tpl.Rows = append(tpl.Rows, []string{
			issue.Name,
			issue.SeriesName(),
			issue.PublisherName(),
			FormatIssueNo(issue.IssueNo),
			deref(issue.VariantDescription),
			deref(issue.CoverURL),
			deref(issue.ReleaseDate),
			deref(issue.UPC),
			deref(issue.LocgLink),
		})
	}
	if len(tpl.Rows) == 0 {
		tpl.Rows = append(tpl.Rows, []string{
			"Saga #1", "Saga", "Image Comics", "1", "", "", "2012-03-14", "", "",
		})
	}
	return tpl, nil
}
