package service

import (
	"context"
	"testing"

	"comicvault/internal/cache"
	"comicvault/internal/microservices/http-api/models"
	"comicvault/internal/microservices/http-api/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSyncService(store *repository.Store) SyncService {
	return NewSyncService(store, cache.NoopCache{}, discardLogger())
}

func intPtr(v int) *int { return &v }

func TestSyncIssues_BadRecordDoesNotAbort(t *testing.T) {
	store := newTestStore(t)

	result, err := newSyncService(store).SyncIssues(context.Background(), models.KindCollection, []IssueRecord{
		{SeriesName: "Saga", PublisherName: "Image", IssueNo: "1"},
		{PublisherName: "Image", IssueNo: "2"},
		{SeriesName: "Saga", PublisherName: "Image", IssueNo: "3"},
	})
	require.NoError(t, err)

	assert.Equal(t, SyncSummary{Created: 2, Updated: 0, Errors: 1}, result.Summary)
	require.Len(t, result.Details.Errors, 1)
	assert.Equal(t, 1, result.Details.Errors[0].Index)
	assert.Contains(t, result.Details.Errors[0].Message, "series name is required")
	assert.Equal(t, 2, countIssues(t, store, models.KindCollection))
}

func TestSyncIssues_InvalidIssueNumberIsPerRecord(t *testing.T) {
	store := newTestStore(t)

	result, err := newSyncService(store).SyncIssues(context.Background(), models.KindWishlist, []IssueRecord{
		{SeriesName: "Saga", IssueNo: "one"},
		{SeriesName: "Saga", IssueNo: "2.5"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Summary.Created)
	assert.Equal(t, 1, result.Summary.Errors)
	assert.Contains(t, result.Details.Errors[0].Message, `invalid issue number "one"`)
	assert.Equal(t, 2.5, result.Details.Created[0].IssueNo)
	assert.Equal(t, DefaultPublisherName, result.Details.Created[0].PublisherName())
}

func TestSyncIssues_UpdatesMatchingIssuePartially(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	existing := seedIssue(t, store, models.KindCollection, IssueInput{
		Name: "Saga #1", SeriesName: "Saga", PublisherName: "Image", IssueNo: 1,
		CoverURL: strPtr("https://covers.example/1.jpg"), UPC: strPtr("123"),
	})

	result, err := newSyncService(store).SyncIssues(ctx, models.KindCollection, []IssueRecord{
		{SeriesName: "Saga", IssueNo: "1", ReleaseDate: "2012-03-14"},
	})
	require.NoError(t, err)
	assert.Equal(t, SyncSummary{Updated: 1}, result.Summary)

	got, err := store.Issues.GetByID(ctx, models.KindCollection, existing.ID)
	require.NoError(t, err)
	assert.Equal(t, "2012-03-14", *got.ReleaseDate)
	assert.Equal(t, "https://covers.example/1.jpg", *got.CoverURL)
	assert.Equal(t, "123", *got.UPC)
	assert.Equal(t, "Saga #1", got.Name)
	assert.Equal(t, "Image", got.PublisherName())
}

func TestSyncIssues_RepeatedKeyInOneBatchUpdates(t *testing.T) {
	store := newTestStore(t)

	result, err := newSyncService(store).SyncIssues(context.Background(), models.KindCollection, []IssueRecord{
		{SeriesName: "Saga", IssueNo: "1"},
		{SeriesName: "Saga", IssueNo: "1", Plot: "Alana and Marko run."},
	})
	require.NoError(t, err)
	assert.Equal(t, SyncSummary{Created: 1, Updated: 1}, result.Summary)
	assert.Equal(t, 1, countIssues(t, store, models.KindCollection))
}

func TestSyncSeries_PartialUpdatePreservesFields(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	svc := newSyncService(store)

	created, err := svc.SyncSeries(ctx, models.KindCollection, []SeriesRecord{{
		Name:          "Saga",
		PublisherName: "Image",
		TotalIssues:   intPtr(54),
		LocgLink:      "https://leagueofcomicgeeks.com/comics/series/1/saga",
		StartDate:     "2012-03-14",
		EndDate:       "2018-07-25",
	}})
	require.NoError(t, err)
	require.Equal(t, 1, created.Summary.Created)

	updated, err := svc.SyncSeries(ctx, models.KindCollection, []SeriesRecord{{Name: "Saga", TotalIssues: intPtr(66)}})
	require.NoError(t, err)
	require.Equal(t, SyncSummary{Updated: 1}, updated.Summary)

	got, err := store.Series.GetByID(ctx, models.KindCollection, created.Details.Created[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 66, got.TotalIssues)
	assert.Equal(t, "https://leagueofcomicgeeks.com/comics/series/1/saga", *got.LocgLink)
	assert.Equal(t, "2012-03-14", *got.StartDate)
	assert.Equal(t, "2018-07-25", *got.EndDate)
	assert.Equal(t, "Image", got.PublisherName())
}

func TestSyncSeries_PublisherChangeRewritesIssues(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	svc := newSyncService(store)

	issue := seedIssue(t, store, models.KindCollection, IssueInput{SeriesName: "Saga", PublisherName: "Image", IssueNo: 1})

	result, err := svc.SyncSeries(ctx, models.KindCollection, []SeriesRecord{{Name: "saga", PublisherName: "Image Comics"}})
	require.NoError(t, err)
	require.Equal(t, SyncSummary{Updated: 1}, result.Summary)

	got, err := store.Issues.GetByID(ctx, models.KindCollection, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, "Image Comics", got.PublisherName())
	assert.Equal(t, "Image Comics", got.Series.PublisherName())
}

func TestSyncSeries_ZeroTotalKeepsExisting(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	svc := newSyncService(store)

	_, err := svc.SyncSeries(ctx, models.KindWishlist, []SeriesRecord{{Name: "Saga", TotalIssues: intPtr(54)}})
	require.NoError(t, err)
	result, err := svc.SyncSeries(ctx, models.KindWishlist, []SeriesRecord{{Name: "Saga", TotalIssues: intPtr(0)}})
	require.NoError(t, err)

	assert.Equal(t, 54, result.Details.Updated[0].TotalIssues)
}

func TestSyncSeries_MissingNameIsRecordedAndRunContinues(t *testing.T) {
	store := newTestStore(t)

	result, err := newSyncService(store).SyncSeries(context.Background(), models.KindCollection, []SeriesRecord{
		{Name: "  "},
		{Name: "Monstress", PublisherName: "Image"},
	})
	require.NoError(t, err)

	assert.Equal(t, SyncSummary{Created: 1, Errors: 1}, result.Summary)
	assert.Equal(t, "Image", mustSeries(t, store, "Monstress").PublisherName())
}

func TestSyncSeries_CaseVariantOfExistingNameUpdates(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	svc := newSyncService(store)

	_, err := svc.SyncSeries(ctx, models.KindCollection, []SeriesRecord{{Name: "Saga", PublisherName: "Image"}})
	require.NoError(t, err)
	result, err := svc.SyncSeries(ctx, models.KindCollection, []SeriesRecord{{Name: "SAGA", PublisherName: "image", TotalIssues: intPtr(10)}})
	require.NoError(t, err)

	assert.Equal(t, SyncSummary{Updated: 1}, result.Summary)
	list, err := store.Series.List(ctx, models.KindCollection)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func mustSeries(t *testing.T, store *repository.Store, name string) models.Series {
	t.Helper()
	list, err := store.Series.List(context.Background(), models.KindCollection)
	require.NoError(t, err)
	for _, s := range list {
		if s.Name == name {
			return s
		}
	}
	t.Fatalf("series %q not found", name)
	return models.Series{}
}
