package handler_test

import (
	"context"
	"time"

	"comicvault/internal/ingestion/locg"
	"comicvault/internal/microservices/http-api/models"
	"comicvault/internal/microservices/http-api/service"

	"github.com/stretchr/testify/mock"
)

// --- HELPER FUNCTIONS FOR POINTERS ---
func int64Ptr(i int64) *int64 { return &i }

// --- MOCK SERVICES ---

type MockIssueService struct {
	mock.Mock
}

func (m *MockIssueService) List(ctx context.Context, kind models.Kind) ([]models.Issue, error) {
	args := m.Called(ctx, kind)
	return args.Get(0).([]models.Issue), args.Error(1)
}

func (m *MockIssueService) Get(ctx context.Context, kind models.Kind, id int64) (*models.Issue, error) {
	args := m.Called(ctx, kind, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Issue), args.Error(1)
}

func (m *MockIssueService) Create(ctx context.Context, kind models.Kind, in service.IssueInput) (*models.Issue, error) {
	args := m.Called(ctx, kind, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Issue), args.Error(1)
}

func (m *MockIssueService) Update(ctx context.Context, kind models.Kind, id int64, in service.IssueUpdate) (*models.Issue, error) {
	args := m.Called(ctx, kind, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Issue), args.Error(1)
}

func (m *MockIssueService) Delete(ctx context.Context, kind models.Kind, id int64) error {
	args := m.Called(ctx, kind, id)
	return args.Error(0)
}

type MockSeriesService struct {
	mock.Mock
}

func (m *MockSeriesService) ListPublishers(ctx context.Context, kind models.Kind) ([]models.Publisher, error) {
	args := m.Called(ctx, kind)
	return args.Get(0).([]models.Publisher), args.Error(1)
}

func (m *MockSeriesService) ListSeries(ctx context.Context, kind models.Kind) ([]models.Series, error) {
	args := m.Called(ctx, kind)
	return args.Get(0).([]models.Series), args.Error(1)
}

func (m *MockSeriesService) CreatePublisher(ctx context.Context, kind models.Kind, name string) (*models.Publisher, bool, error) {
	args := m.Called(ctx, kind, name)
	if args.Get(0) == nil {
		return nil, false, args.Error(2)
	}
	return args.Get(0).(*models.Publisher), args.Bool(1), args.Error(2)
}

func (m *MockSeriesService) CreateSeries(ctx context.Context, kind models.Kind, in service.SeriesInput) (*models.Series, bool, error) {
	args := m.Called(ctx, kind, in)
	if args.Get(0) == nil {
		return nil, false, args.Error(2)
	}
	return args.Get(0).(*models.Series), args.Bool(1), args.Error(2)
}

func (m *MockSeriesService) GetSeries(ctx context.Context, kind models.Kind, id int64) (*models.Series, error) {
	args := m.Called(ctx, kind, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Series), args.Error(1)
}

func (m *MockSeriesService) UpdateSeries(ctx context.Context, kind models.Kind, id int64, in service.SeriesUpdate) (*models.Series, error) {
	args := m.Called(ctx, kind, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Series), args.Error(1)
}

func (m *MockSeriesService) ApplyCrawlResult(ctx context.Context, kind models.Kind, id int64, in service.CrawlUpdate) (*models.Series, error) {
	args := m.Called(ctx, kind, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Series), args.Error(1)
}

func (m *MockSeriesService) SeriesNeedingCrawl(ctx context.Context, kind models.Kind, maxAge time.Duration) ([]models.Series, error) {
	args := m.Called(ctx, kind, maxAge)
	return args.Get(0).([]models.Series), args.Error(1)
}

type MockSyncService struct {
	mock.Mock
}

func (m *MockSyncService) SyncSeries(ctx context.Context, kind models.Kind, records []service.SeriesRecord) (*service.SeriesSyncResult, error) {
	args := m.Called(ctx, kind, records)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SeriesSyncResult), args.Error(1)
}

func (m *MockSyncService) SyncIssues(ctx context.Context, kind models.Kind, records []service.IssueRecord) (*service.IssueSyncResult, error) {
	args := m.Called(ctx, kind, records)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.IssueSyncResult), args.Error(1)
}

type MockReconcileService struct {
	mock.Mock
}

func (m *MockReconcileService) GetCombinedSeriesView(ctx context.Context, ref string) (*service.CombinedSeriesView, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CombinedSeriesView), args.Error(1)
}

func (m *MockReconcileService) ListCombinedSeries(ctx context.Context) ([]service.CombinedSeriesSummary, error) {
	args := m.Called(ctx)
	return args.Get(0).([]service.CombinedSeriesSummary), args.Error(1)
}

type MockTransferService struct {
	mock.Mock
}

func (m *MockTransferService) TransferOne(ctx context.Context, wishlistItemID int64) (int64, error) {
	args := m.Called(ctx, wishlistItemID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTransferService) TransferBatch(ctx context.Context, wishlistItemIDs []int64) *service.BatchTransferResult {
	args := m.Called(ctx, wishlistItemIDs)
	return args.Get(0).(*service.BatchTransferResult)
}

type MockImportService struct {
	mock.Mock
}

func (m *MockImportService) ValidateImport(ctx context.Context, kind models.Kind, rows []service.ImportRow) (*service.ImportPreview, error) {
	args := m.Called(ctx, kind, rows)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ImportPreview), args.Error(1)
}

func (m *MockImportService) ProcessImport(ctx context.Context, kind models.Kind, rows []service.ImportRow) (*service.ImportResult, error) {
	args := m.Called(ctx, kind, rows)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ImportResult), args.Error(1)
}

func (m *MockImportService) Template(ctx context.Context, kind models.Kind) (*service.ImportTemplate, error) {
	args := m.Called(ctx, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ImportTemplate), args.Error(1)
}

type MockCrawlService struct {
	mock.Mock
}

func (m *MockCrawlService) CrawlSeries(ctx context.Context, kind models.Kind, seriesID int64, creds *locg.Credentials) (*service.CrawlOutcome, error) {
	args := m.Called(ctx, kind, seriesID, creds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CrawlOutcome), args.Error(1)
}

func (m *MockCrawlService) CrawlStale(ctx context.Context, kind models.Kind, maxAge time.Duration, workers int) (*service.CrawlBatchResult, error) {
	args := m.Called(ctx, kind, maxAge, workers)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CrawlBatchResult), args.Error(1)
}

type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
