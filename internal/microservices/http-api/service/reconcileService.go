package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"comicvault/internal/cache"
	"comicvault/internal/microservices/http-api/models"
	"comicvault/internal/microservices/http-api/repository"
)

// View types tag where a series or issue comes from.
const (
	SeriesTypeCombined     = "combined"
	SeriesTypeCollection   = "regular"
	SeriesTypeWishlistOnly = "wishlist-only"

	IssueTypeCollection = "collection"
	IssueTypeWishlist   = "wishlist"
)

// SeriesRef identifies a combined view. Legacy refs are bare numbers that may
// name a series of either kind.
type SeriesRef struct {
	CollectionID *int64
	WishlistID   *int64
	Legacy       bool
}

// ParseSeriesRef accepts "combined-{c}-{w}" (either side may be "null"),
// "regular-{c}", "wishlist-{w}" and a bare numeric id.
func ParseSeriesRef(raw string) (SeriesRef, error) {
	raw = strings.TrimSpace(raw)
	var ref SeriesRef

	switch {
	case strings.HasPrefix(raw, "combined-"):
		parts := strings.Split(strings.TrimPrefix(raw, "combined-"), "-")
		if len(parts) != 2 {
			return ref, invalid("id", "malformed combined series id %q", raw)
		}
		var err error
		if ref.CollectionID, err = parseRefID(parts[0]); err != nil {
			return ref, invalid("id", "malformed combined series id %q", raw)
		}
		if ref.WishlistID, err = parseRefID(parts[1]); err != nil {
			return ref, invalid("id", "malformed combined series id %q", raw)
		}
		if ref.CollectionID == nil && ref.WishlistID == nil {
			return ref, invalid("id", "combined series id %q names no series", raw)
		}
	case strings.HasPrefix(raw, "regular-"):
		id, err := strconv.ParseInt(strings.TrimPrefix(raw, "regular-"), 10, 64)
		if err != nil {
			return ref, invalid("id", "malformed series id %q", raw)
		}
		ref.CollectionID = &id
	case strings.HasPrefix(raw, "wishlist-"):
		id, err := strconv.ParseInt(strings.TrimPrefix(raw, "wishlist-"), 10, 64)
		if err != nil {
			return ref, invalid("id", "malformed series id %q", raw)
		}
		ref.WishlistID = &id
	default:
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return ref, invalid("id", "malformed series id %q", raw)
		}
		ref.CollectionID = &id
		ref.Legacy = true
	}
	return ref, nil
}

func parseRefID(s string) (*int64, error) {
	if s == "null" || s == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// CombinedID formats the id used by ListCombinedSeries and accepted by
// ParseSeriesRef.
func CombinedID(collectionID, wishlistID *int64) string {
	switch {
	case collectionID != nil && wishlistID != nil:
		return fmt.Sprintf("combined-%d-%d", *collectionID, *wishlistID)
	case collectionID != nil:
		return fmt.Sprintf("regular-%d", *collectionID)
	case wishlistID != nil:
		return fmt.Sprintf("wishlist-%d", *wishlistID)
	default:
		return ""
	}
}

type SeriesMeta struct {
	ID                 string     `json:"id"`
	CollectionSeriesID *int64     `json:"collectionSeriesId"`
	WishlistSeriesID   *int64     `json:"wishlistSeriesId"`
	Name               string     `json:"name"`
	PublisherName      string     `json:"publisherName"`
	TotalIssues        int        `json:"totalIssues"`
	LocgLink           *string    `json:"locgLink,omitempty"`
	LocgIssueCount     *int       `json:"locgIssueCount,omitempty"`
	LastCrawledAt      *time.Time `json:"lastCrawledAt,omitempty"`
	RunLabel           *string    `json:"runLabel,omitempty"`
	StartDate          *string    `json:"startDate,omitempty"`
	EndDate            *string    `json:"endDate,omitempty"`
	Type               string     `json:"type"`
}

// ViewIssue is an issue tagged with the kind it was read from.
type ViewIssue struct {
	ID                 int64   `json:"id"`
	Type               string  `json:"type"`
	Name               string  `json:"name"`
	SeriesID           int64   `json:"seriesId"`
	SeriesName         string  `json:"seriesName"`
	PublisherName      string  `json:"publisherName"`
	IssueNo            float64 `json:"issueNo"`
	VariantDescription *string `json:"variantDescription,omitempty"`
	CoverURL           *string `json:"coverUrl,omitempty"`
	ReleaseDate        *string `json:"releaseDate,omitempty"`
	UPC                *string `json:"upc,omitempty"`
	LocgLink           *string `json:"locgLink,omitempty"`
	Plot               *string `json:"plot,omitempty"`
}

type ViewStats struct {
	CollectionCount int `json:"collectionCount"`
	WishlistCount   int `json:"wishlistCount"`
	TotalCount      int `json:"totalCount"`
	MissingCount    int `json:"missingCount"`
}

type CombinedSeriesView struct {
	Series           SeriesMeta  `json:"series"`
	CollectionIssues []ViewIssue `json:"collectionIssues"`
	WishlistItems    []ViewIssue `json:"wishlistItems"`
	AllIssues        []ViewIssue `json:"allIssues"`
	MissingIssues    []int       `json:"missingIssues"`
	Stats            ViewStats   `json:"stats"`
}

// CombinedSeriesSummary is one row of the combined series list.
type CombinedSeriesSummary struct {
	ID                 string  `json:"id"`
	CollectionSeriesID *int64  `json:"collectionSeriesId"`
	WishlistSeriesID   *int64  `json:"wishlistSeriesId"`
	Name               string  `json:"name"`
	PublisherName      string  `json:"publisherName"`
	TotalIssues        int     `json:"totalIssues"`
	LocgLink           *string `json:"locgLink,omitempty"`
	Type               string  `json:"type"`
	CollectionCount    int64   `json:"collectionCount"`
	WishlistCount      int64   `json:"wishlistCount"`
}

type ReconcileService interface {
	GetCombinedSeriesView(ctx context.Context, ref string) (*CombinedSeriesView, error)
	ListCombinedSeries(ctx context.Context) ([]CombinedSeriesSummary, error)
}

type reconcileService struct {
	store  *repository.Store
	cache  cache.ViewCache
	logger *slog.Logger
}

func NewReconcileService(store *repository.Store, c cache.ViewCache, logger *slog.Logger) ReconcileService {
	return &reconcileService{store: store, cache: c, logger: logger}
}

func (s *reconcileService) GetCombinedSeriesView(ctx context.Context, raw string) (*CombinedSeriesView, error) {
	ref, err := ParseSeriesRef(raw)
	if err != nil {
		return nil, err
	}

	cacheKey := "series:" + strings.TrimSpace(raw)
	var cached CombinedSeriesView
	found, version, cacheErr := s.cache.Get(ctx, cacheKey, &cached)
	if cacheErr != nil {
		s.logger.Warn("view cache read failed", "key", cacheKey, "error", cacheErr)
	} else if found {
		return &cached, nil
	}

	view, err := s.buildView(ctx, ref)
	if err != nil {
		return nil, err
	}

	if cacheErr == nil {
		s.storeView(ctx, cacheKey, version, view)
	}
	return view, nil
}

// storeView caches a freshly built view under the version its lookup saw.
func (s *reconcileService) storeView(ctx context.Context, key string, version int64, view any) {
	if err := s.cache.Set(ctx, key, version, view); err != nil {
		s.logger.Warn("view cache write failed", "key", key, "error", err)
	}
}

func (s *reconcileService) buildView(ctx context.Context, ref SeriesRef) (*CombinedSeriesView, error) {
	collection, err := s.lookupSeries(ctx, models.KindCollection, ref.CollectionID)
	if err != nil {
		return nil, err
	}

	var wishlist *models.Series
	switch {
	case ref.WishlistID != nil:
		wishlist, err = s.lookupSeries(ctx, models.KindWishlist, ref.WishlistID)
	case ref.Legacy && collection == nil:
		wishlist, err = s.lookupSeries(ctx, models.KindWishlist, ref.CollectionID)
	}
	if err != nil {
		return nil, err
	}

	var owned, wanted []models.Issue
	if collection != nil {
		if owned, err = s.store.Issues.ListBySeries(ctx, models.KindCollection, collection.ID); err != nil {
			return nil, err
		}
	}
	switch {
	case wishlist != nil:
		wanted, err = s.store.Issues.ListBySeries(ctx, models.KindWishlist, wishlist.ID)
	case collection != nil && ref.WishlistID == nil:
		// no wishlist side named: fall back to the name join
		wanted, err = s.store.Issues.ListByReconcileKey(ctx, models.KindWishlist, collection.Name, collection.PublisherName())
	}
	if err != nil {
		return nil, err
	}

	if collection == nil && wishlist == nil {
		return nil, fmt.Errorf("series %s: %w", CombinedID(ref.CollectionID, ref.WishlistID), ErrNotFound)
	}

	view := &CombinedSeriesView{
		CollectionIssues: tagIssues(owned, IssueTypeCollection),
		WishlistItems:    tagIssues(wanted, IssueTypeWishlist),
		MissingIssues:    []int{},
	}

	base := collection
	view.Series.Type = SeriesTypeCollection
	if base == nil {
		base = wishlist
		view.Series.Type = SeriesTypeWishlistOnly
	}
	if collection != nil {
		view.Series.CollectionSeriesID = &collection.ID
	}
	switch {
	case wishlist != nil:
		view.Series.WishlistSeriesID = &wishlist.ID
	case len(wanted) > 0:
		view.Series.WishlistSeriesID = &wanted[0].SeriesID
	}
	if collection != nil && view.Series.WishlistSeriesID != nil {
		view.Series.Type = SeriesTypeCombined
	}
	view.Series.ID = CombinedID(view.Series.CollectionSeriesID, view.Series.WishlistSeriesID)
	view.Series.Name = base.Name
	view.Series.PublisherName = base.PublisherName()
	view.Series.TotalIssues = base.TotalIssues
	view.Series.LocgLink = base.LocgLink
	view.Series.LocgIssueCount = base.LocgIssueCount
	view.Series.LastCrawledAt = base.LastCrawledAt
	view.Series.RunLabel = base.RunLabel
	view.Series.StartDate = base.StartDate
	view.Series.EndDate = base.EndDate

	view.AllIssues = make([]ViewIssue, 0, len(view.CollectionIssues)+len(view.WishlistItems))
	view.AllIssues = append(view.AllIssues, view.CollectionIssues...)
	view.AllIssues = append(view.AllIssues, view.WishlistItems...)
	sort.SliceStable(view.AllIssues, func(i, j int) bool {
		return view.AllIssues[i].IssueNo < view.AllIssues[j].IssueNo
	})

	if collection != nil && collection.TotalIssues > 0 {
		nos := make([]float64, 0, len(owned))
		for _, issue := range owned {
			nos = append(nos, issue.IssueNo)
		}
		view.MissingIssues = MissingIssues(collection.TotalIssues, nos)
	}

	view.Stats = ViewStats{
		CollectionCount: len(view.CollectionIssues),
		WishlistCount:   len(view.WishlistItems),
		TotalCount:      len(view.AllIssues),
		MissingCount:    len(view.MissingIssues),
	}
	return view, nil
}

// lookupSeries returns nil without error when id is nil or does not exist.
func (s *reconcileService) lookupSeries(ctx context.Context, kind models.Kind, id *int64) (*models.Series, error) {
	if id == nil {
		return nil, nil
	}
	series, err := s.store.Series.GetByID(ctx, kind, *id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return series, err
}

func (s *reconcileService) ListCombinedSeries(ctx context.Context) ([]CombinedSeriesSummary, error) {
	const cacheKey = "series-list"
	var cached []CombinedSeriesSummary
	found, version, cacheErr := s.cache.Get(ctx, cacheKey, &cached)
	if cacheErr != nil {
		s.logger.Warn("view cache read failed", "key", cacheKey, "error", cacheErr)
	} else if found {
		return cached, nil
	}

	owned, err := s.store.Series.List(ctx, models.KindCollection)
	if err != nil {
		return nil, err
	}
	wanted, err := s.store.Series.List(ctx, models.KindWishlist)
	if err != nil {
		return nil, err
	}
	ownedCounts, err := s.store.Issues.CountBySeries(ctx, models.KindCollection)
	if err != nil {
		return nil, err
	}
	wantedCounts, err := s.store.Issues.CountBySeries(ctx, models.KindWishlist)
	if err != nil {
		return nil, err
	}

	byKey := make(map[string]*CombinedSeriesSummary, len(owned)+len(wanted))
	keys := make([]string, 0, len(owned)+len(wanted))

	for _, series := range owned {
		id := series.ID
		key := models.ReconcileKey(series.Name, series.PublisherName())
		byKey[key] = &CombinedSeriesSummary{
			CollectionSeriesID: &id,
			Name:               series.Name,
			PublisherName:      series.PublisherName(),
			TotalIssues:        series.TotalIssues,
			LocgLink:           series.LocgLink,
			CollectionCount:    ownedCounts[series.ID],
		}
		keys = append(keys, key)
	}
	for _, series := range wanted {
		id := series.ID
		key := models.ReconcileKey(series.Name, series.PublisherName())
		if row, ok := byKey[key]; ok {
			row.WishlistSeriesID = &id
			row.WishlistCount = wantedCounts[series.ID]
			if row.LocgLink == nil {
				row.LocgLink = series.LocgLink
			}
			continue
		}
		byKey[key] = &CombinedSeriesSummary{
			WishlistSeriesID: &id,
			Name:             series.Name,
			PublisherName:    series.PublisherName(),
			TotalIssues:      series.TotalIssues,
			LocgLink:         series.LocgLink,
			WishlistCount:    wantedCounts[series.ID],
		}
		keys = append(keys, key)
	}

	list := make([]CombinedSeriesSummary, 0, len(keys))
	for _, key := range keys {
		row := byKey[key]
		row.ID = CombinedID(row.CollectionSeriesID, row.WishlistSeriesID)
		switch {
		case row.CollectionSeriesID != nil && row.WishlistSeriesID != nil:
			row.Type = SeriesTypeCombined
		case row.CollectionSeriesID != nil:
			row.Type = SeriesTypeCollection
		default:
			row.Type = SeriesTypeWishlistOnly
		}
		list = append(list, *row)
	}
	sortSummaries(list)

	if cacheErr == nil {
		s.storeView(ctx, cacheKey, version, list)
	}
	return list, nil
}

// sortSummaries orders rows by normalized series name, then publisher name.
// Comparing the fields separately keeps "Saga" ahead of "Saga 2".
func sortSummaries(list []CombinedSeriesSummary) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := models.NormalizeName(list[i].Name), models.NormalizeName(list[j].Name)
		if a != b {
			return a < b
		}
		return models.NormalizeName(list[i].PublisherName) < models.NormalizeName(list[j].PublisherName)
	})
}

// MissingIssues lists the whole numbers 1..total that no owned issue covers.
// A fractional issue such as 2.5 counts as its integer part.
func MissingIssues(total int, owned []float64) []int {
	missing := []int{}
	if total <= 0 {
		return missing
	}

	have := make(map[int]bool, len(owned))
	for _, no := range owned {
		have[int(math.Floor(no))] = true
	}
	for n := 1; n <= total; n++ {
		if !have[n] {
			missing = append(missing, n)
		}
	}
	return missing
}

func tagIssues(issues []models.Issue, tag string) []ViewIssue {
	out := make([]ViewIssue, 0, len(issues))
	for _, issue := range issues {
		out = append(out, ViewIssue{
			ID:                 issue.ID,
			Type:               tag,
			Name:               issue.Name,
			SeriesID:           issue.SeriesID,
			SeriesName:         issue.SeriesName(),
			PublisherName:      issue.PublisherName(),
			IssueNo:            issue.IssueNo,
			VariantDescription: issue.VariantDescription,
			CoverURL:           issue.CoverURL,
			ReleaseDate:        issue.ReleaseDate,
			UPC:                issue.UPC,
			LocgLink:           issue.LocgLink,
			Plot:               issue.Plot,
		})
	}
	return out
}
