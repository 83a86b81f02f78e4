package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"comicvault/internal/cache"
	"comicvault/internal/microservices/http-api/models"
	"comicvault/internal/microservices/http-api/repository"
	"comicvault/internal/testutil"

	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T) *repository.Store {
	t.Helper()
	return repository.NewStore(testutil.NewDB(t))
}

// seedIssue creates an issue of kind through the same path the API uses.
func seedIssue(t *testing.T, store *repository.Store, kind models.Kind, in IssueInput) *models.Issue {
	t.Helper()
	issue, err := NewIssueService(store, cache.NoopCache{}, discardLogger()).Create(context.Background(), kind, in)
	require.NoError(t, err)
	return issue
}

func countIssues(t *testing.T, store *repository.Store, kind models.Kind) int {
	t.Helper()
	list, err := store.Issues.List(context.Background(), kind)
	require.NoError(t, err)
	return len(list)
}
