package command

import (
	"fmt"
	"log/slog"
	"time"

	"comicvault/database"
	"comicvault/internal/cache"
	"comicvault/internal/config"
	"comicvault/internal/ingestion/locg"
	"comicvault/internal/microservices/http-api/handler"
	"comicvault/internal/microservices/http-api/models"
	"comicvault/internal/microservices/http-api/repository"
	"comicvault/internal/microservices/http-api/service"

	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

// app holds the wired dependencies shared by the commands.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *gorm.DB
	store  *repository.Store
	cache  cache.ViewCache
	closer func() error

	series    service.SeriesService
	issues    service.IssueService
	sync      service.SyncService
	reconcile service.ReconcileService
	transfer  service.TransferService
	imports   service.ImportService
	crawl     service.CrawlService
}

// bootstrap loads config, opens the database and builds every service.
func bootstrap() (*app, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("could not load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := cfg.NewLogger()

	db, err := database.Open(cfg, logger)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger, db: db, store: repository.NewStore(db), cache: cache.NoopCache{}}
	a.closer = func() error { return database.Close(db) }

	if cfg.CacheEnabled() {
		redisCache, err := cache.NewRedisViewCache(cfg.RedisURL, cfg.RedisPassword, time.Duration(cfg.CacheTTL)*time.Second)
		if err != nil {
			// views are rebuilt from the database without a cache
			logger.Warn("view cache unavailable, continuing without it", "error", err)
		} else {
			a.cache = redisCache
			a.closer = func() error {
				redisCache.Close()
				return database.Close(db)
			}
			logger.Info("view cache enabled", "ttl_seconds", cfg.CacheTTL)
		}
	}

	a.series = service.NewSeriesService(a.store, a.cache, logger)
	a.issues = service.NewIssueService(a.store, a.cache, logger)
	a.sync = service.NewSyncService(a.store, a.cache, logger)
	a.reconcile = service.NewReconcileService(a.store, a.cache, logger)
	a.transfer = service.NewTransferService(a.store, a.cache, logger)
	a.imports = service.NewImportService(a.store, a.cache, logger)

	crawler := locg.NewClient(cfg.ScraperURL, cfg.ScraperRateLimit, logger)
	a.crawl = service.NewCrawlService(a.series, crawler, logger)

	return a, nil
}

func (a *app) Close() {
	if err := a.closer(); err != nil {
		a.logger.Error("shutdown failed", "error", err)
	}
}

func (a *app) services() handler.Services {
	return handler.Services{
		Health:    a.store,
		Series:    a.series,
		Issues:    a.issues,
		Sync:      a.sync,
		Reconcile: a.reconcile,
		Transfer:  a.transfer,
		Import:    a.imports,
		Crawl:     a.crawl,
	}
}

func parseKind() (models.Kind, error) {
	return models.ParseKind(kindFlag)
}
