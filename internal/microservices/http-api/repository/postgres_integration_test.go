//go:build integration

package repository

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"comicvault/database"
	"comicvault/internal/config"
	"comicvault/internal/microservices/http-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

// newPostgresDB starts a throwaway Postgres and returns a migrated handle
// with a real connection pool, so concurrent resolvers race on separate
// connections.
func newPostgresDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "comicvault",
				"POSTGRES_PASSWORD": "comicvault",
				"POSTGRES_DB":       "comicvault",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	cfg := &config.Config{
		DatabaseDriver: "postgres",
		DatabaseURL:    fmt.Sprintf("postgres://comicvault:comicvault@%s:%s/comicvault?sslmode=disable", host, port.Port()),
		LogLevel:       "error",
	}
	db, err := database.Open(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func TestPostgres_ConcurrentResolutionCreatesOneRow(t *testing.T) {
	db := newPostgresDB(t)
	r := NewIdentityResolver(db)
	ctx := context.Background()

	const callers = 16
	var wg sync.WaitGroup
	seriesIDs := make([]int64, callers)
	created := make([]bool, callers)
	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := "Image"
			if i%2 == 0 {
				name = " image "
			}
			pub, _, err := r.FindOrCreatePublisher(ctx, models.KindCollection, name)
			if err != nil {
				errs[i] = err
				return
			}
			s, c, err := r.FindOrCreateSeries(ctx, models.KindCollection, "Saga", pub.ID, SeriesDefaults{})
			if err != nil {
				errs[i] = err
				return
			}
			seriesIDs[i], created[i] = s.ID, c
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	creators := 0
	for i := range seriesIDs {
		assert.Equal(t, seriesIDs[0], seriesIDs[i])
		if created[i] {
			creators++
		}
	}
	assert.Equal(t, 1, creators)

	var publishers, series int64
	require.NoError(t, db.Model(&models.Publisher{}).Count(&publishers).Error)
	require.NoError(t, db.Model(&models.Series{}).Count(&series).Error)
	assert.Equal(t, int64(1), publishers)
	assert.Equal(t, int64(1), series)
}

func TestPostgres_DuplicateIssueIsUniqueViolation(t *testing.T) {
	db := newPostgresDB(t)
	store := NewStore(db)
	ctx := context.Background()

	pub, _, err := store.Resolver.FindOrCreatePublisher(ctx, models.KindCollection, "Image")
	require.NoError(t, err)
	series, _, err := store.Resolver.FindOrCreateSeries(ctx, models.KindCollection, "Saga", pub.ID, SeriesDefaults{})
	require.NoError(t, err)

	issue := func() *models.Issue {
		return &models.Issue{Kind: models.KindCollection, Name: "Saga #1", SeriesID: series.ID, PublisherID: pub.ID, IssueNo: 1}
	}
	require.NoError(t, store.Issues.Create(ctx, issue()))
	assert.ErrorIs(t, store.Issues.Create(ctx, issue()), ErrDuplicateKey)
}
