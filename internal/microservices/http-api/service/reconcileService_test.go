package service

import (
	"context"
	"strconv"
	"testing"
	"time"

	"comicvault/internal/cache"
	"comicvault/internal/microservices/http-api/models"
	"comicvault/internal/microservices/http-api/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64 { return &v }

func TestParseSeriesRef(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    SeriesRef
		wantErr bool
	}{
		{name: "combined both", raw: "combined-4-9", want: SeriesRef{CollectionID: int64Ptr(4), WishlistID: int64Ptr(9)}},
		{name: "combined no wishlist", raw: "combined-4-null", want: SeriesRef{CollectionID: int64Ptr(4)}},
		{name: "combined no collection", raw: "combined-null-9", want: SeriesRef{WishlistID: int64Ptr(9)}},
		{name: "regular", raw: "regular-12", want: SeriesRef{CollectionID: int64Ptr(12)}},
		{name: "wishlist", raw: "wishlist-3", want: SeriesRef{WishlistID: int64Ptr(3)}},
		{name: "legacy", raw: "17", want: SeriesRef{CollectionID: int64Ptr(17), Legacy: true}},
		{name: "combined both null", raw: "combined-null-null", wantErr: true},
		{name: "combined too short", raw: "combined-4", wantErr: true},
		{name: "garbage", raw: "saga", wantErr: true},
		{name: "regular garbage", raw: "regular-x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSeriesRef(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMissingIssues(t *testing.T) {
	assert.Equal(t, []int{3, 5}, MissingIssues(5, []float64{1, 2, 4}))
	assert.Equal(t, []int{}, MissingIssues(0, []float64{1}))
	assert.Equal(t, []int{1, 3}, MissingIssues(3, []float64{2.5}), "2.5 covers issue 2")
	assert.Equal(t, []int{}, MissingIssues(2, []float64{1, 2, 3, 0.5}))
}

func TestCombinedID(t *testing.T) {
	assert.Equal(t, "combined-1-2", CombinedID(int64Ptr(1), int64Ptr(2)))
	assert.Equal(t, "regular-1", CombinedID(int64Ptr(1), nil))
	assert.Equal(t, "wishlist-2", CombinedID(nil, int64Ptr(2)))
}

func newReconcileService(store *repository.Store) ReconcileService {
	return NewReconcileService(store, cache.NoopCache{}, discardLogger())
}

func TestGetCombinedSeriesView_UnionIsSortedAndTagged(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	owned := seedIssue(t, store, models.KindCollection, IssueInput{
		SeriesName: "Saga", PublisherName: "Image", IssueNo: 1,
		SeriesDefaults: repository.SeriesDefaults{TotalIssues: 5},
	})
	seedIssue(t, store, models.KindCollection, IssueInput{SeriesName: "Saga", PublisherName: "Image", IssueNo: 4})
	wanted := seedIssue(t, store, models.KindWishlist, IssueInput{SeriesName: "Saga", PublisherName: "Image", IssueNo: 2})

	view, err := newReconcileService(store).GetCombinedSeriesView(ctx, CombinedID(&owned.SeriesID, &wanted.SeriesID))
	require.NoError(t, err)

	assert.Equal(t, SeriesTypeCombined, view.Series.Type)
	assert.Equal(t, "Saga", view.Series.Name)
	assert.Equal(t, "Image", view.Series.PublisherName)

	require.Len(t, view.AllIssues, 3)
	assert.Equal(t, 1.0, view.AllIssues[0].IssueNo)
	assert.Equal(t, IssueTypeCollection, view.AllIssues[0].Type)
	assert.Equal(t, 2.0, view.AllIssues[1].IssueNo)
	assert.Equal(t, IssueTypeWishlist, view.AllIssues[1].Type)
	assert.Equal(t, 4.0, view.AllIssues[2].IssueNo)

	assert.Equal(t, []int{2, 3, 5}, view.MissingIssues)
	assert.Equal(t, ViewStats{CollectionCount: 2, WishlistCount: 1, TotalCount: 3, MissingCount: 3}, view.Stats)
}

func TestGetCombinedSeriesView_ImplicitJoinByName(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	owned := seedIssue(t, store, models.KindCollection, IssueInput{SeriesName: "Saga", PublisherName: "Image Comics", IssueNo: 1})
	wanted := seedIssue(t, store, models.KindWishlist, IssueInput{SeriesName: "SAGA", PublisherName: "image comics", IssueNo: 2})
	// same series name under another publisher is a different series
	seedIssue(t, store, models.KindWishlist, IssueInput{SeriesName: "Saga", PublisherName: "Marvel", IssueNo: 3})

	view, err := newReconcileService(store).GetCombinedSeriesView(ctx, CombinedID(&owned.SeriesID, nil))
	require.NoError(t, err)

	require.Len(t, view.WishlistItems, 1)
	assert.Equal(t, wanted.ID, view.WishlistItems[0].ID)
	require.NotNil(t, view.Series.WishlistSeriesID)
	assert.Equal(t, wanted.SeriesID, *view.Series.WishlistSeriesID)
	assert.Equal(t, SeriesTypeCombined, view.Series.Type)
	assert.Empty(t, view.MissingIssues, "no total declared")
}

func TestGetCombinedSeriesView_WishlistOnly(t *testing.T) {
	store := newTestStore(t)
	wanted := seedIssue(t, store, models.KindWishlist, IssueInput{SeriesName: "Monstress", PublisherName: "Image", IssueNo: 1})

	view, err := newReconcileService(store).GetCombinedSeriesView(context.Background(), CombinedID(nil, &wanted.SeriesID))
	require.NoError(t, err)

	assert.Equal(t, SeriesTypeWishlistOnly, view.Series.Type)
	assert.Nil(t, view.Series.CollectionSeriesID)
	assert.Empty(t, view.CollectionIssues)
	assert.Len(t, view.WishlistItems, 1)
}

func TestGetCombinedSeriesView_LegacyIdFallsBackToWishlist(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	wanted := seedIssue(t, store, models.KindWishlist, IssueInput{SeriesName: "B", PublisherName: "Image", IssueNo: 1})

	view, err := newReconcileService(store).GetCombinedSeriesView(ctx, strconv.FormatInt(wanted.SeriesID, 10))
	require.NoError(t, err)
	assert.Equal(t, "B", view.Series.Name)
	assert.Equal(t, SeriesTypeWishlistOnly, view.Series.Type)
}

func TestGetCombinedSeriesView_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := newReconcileService(store).GetCombinedSeriesView(context.Background(), "combined-41-42")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = newReconcileService(store).GetCombinedSeriesView(context.Background(), "combined-x-1")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestListCombinedSeries_MergesByReconcileKey(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seedIssue(t, store, models.KindCollection, IssueInput{SeriesName: "Saga", PublisherName: "Image", IssueNo: 1})
	seedIssue(t, store, models.KindCollection, IssueInput{SeriesName: "Saga", PublisherName: "Image", IssueNo: 2})
	seedIssue(t, store, models.KindWishlist, IssueInput{SeriesName: "saga", PublisherName: "IMAGE", IssueNo: 3})
	seedIssue(t, store, models.KindCollection, IssueInput{SeriesName: "Batman", PublisherName: "DC", IssueNo: 1})
	seedIssue(t, store, models.KindWishlist, IssueInput{SeriesName: "Monstress", PublisherName: "Image", IssueNo: 1})

	list, err := newReconcileService(store).ListCombinedSeries(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)

	assert.Equal(t, "Batman", list[0].Name)
	assert.Equal(t, SeriesTypeCollection, list[0].Type)
	assert.Equal(t, "Monstress", list[1].Name)
	assert.Equal(t, SeriesTypeWishlistOnly, list[1].Type)
	assert.Equal(t, "Saga", list[2].Name)
	assert.Equal(t, SeriesTypeCombined, list[2].Type)
	assert.Equal(t, int64(2), list[2].CollectionCount)
	assert.Equal(t, int64(1), list[2].WishlistCount)

	// every listed id opens the detail view
	for _, row := range list {
		_, err := newReconcileService(store).GetCombinedSeriesView(ctx, row.ID)
		assert.NoError(t, err, row.ID)
	}
}

func TestReconcile_CachedViewIsInvalidatedByTransfer(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	viewCache := cache.NewRedisViewCacheFromClient(client, time.Minute)

	owned := seedIssue(t, store, models.KindCollection, IssueInput{SeriesName: "Saga", PublisherName: "Image", IssueNo: 1})
	item := seedIssue(t, store, models.KindWishlist, IssueInput{SeriesName: "Saga", PublisherName: "Image", IssueNo: 2})

	reconcile := NewReconcileService(store, viewCache, discardLogger())
	ref := CombinedID(&owned.SeriesID, nil)

	before, err := reconcile.GetCombinedSeriesView(ctx, ref)
	require.NoError(t, err)
	assert.Len(t, before.WishlistItems, 1)

	_, err = NewTransferService(store, viewCache, discardLogger()).TransferOne(ctx, item.ID)
	require.NoError(t, err)

	after, err := reconcile.GetCombinedSeriesView(ctx, ref)
	require.NoError(t, err)
	assert.Empty(t, after.WishlistItems)
	assert.Len(t, after.CollectionIssues, 2)
}

func TestListCombinedSeries_OrdersByNameThenPublisher(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seedIssue(t, store, models.KindCollection, IssueInput{SeriesName: "Saga 2", PublisherName: "Image", IssueNo: 1})
	seedIssue(t, store, models.KindWishlist, IssueInput{SeriesName: "saga", PublisherName: "Image", IssueNo: 1})
	seedIssue(t, store, models.KindCollection, IssueInput{SeriesName: "Saga", PublisherName: "Dark Horse", IssueNo: 1})

	list, err := newReconcileService(store).ListCombinedSeries(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)

	assert.Equal(t, "Saga", list[0].Name)
	assert.Equal(t, "Dark Horse", list[0].PublisherName)
	assert.Equal(t, "saga", list[1].Name)
	assert.Equal(t, "Image", list[1].PublisherName)
	assert.Equal(t, "Saga 2", list[2].Name)
}

// racingCache bumps the version right after a miss, as a concurrent write
// would while the caller rebuilds the view.
type racingCache struct {
	*cache.RedisViewCache
}

func (c racingCache) Get(ctx context.Context, key string, dest any) (bool, int64, error) {
	found, version, err := c.RedisViewCache.Get(ctx, key, dest)
	if err == nil && !found {
		err = c.RedisViewCache.Invalidate(ctx)
	}
	return found, version, err
}

func TestReconcile_ViewBuiltDuringWriteIsNotServedLater(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	viewCache := cache.NewRedisViewCacheFromClient(client, time.Minute)

	seedIssue(t, store, models.KindCollection, IssueInput{SeriesName: "Saga", PublisherName: "Image", IssueNo: 1})

	_, err := NewReconcileService(store, racingCache{viewCache}, discardLogger()).ListCombinedSeries(ctx)
	require.NoError(t, err)

	var cached []CombinedSeriesSummary
	found, _, err := viewCache.Get(ctx, "series-list", &cached)
	require.NoError(t, err)
	assert.False(t, found)

	// an undisturbed rebuild is cached as usual
	_, err = NewReconcileService(store, viewCache, discardLogger()).ListCombinedSeries(ctx)
	require.NoError(t, err)
	found, _, err = viewCache.Get(ctx, "series-list", &cached)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Len(t, cached, 1)
}

func BenchmarkMissingIssues(b *testing.B) {
	owned := make([]float64, 0, 500)
	for i := 1; i <= 1000; i += 2 {
		owned = append(owned, float64(i))
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		MissingIssues(1000, owned)
	}
}
