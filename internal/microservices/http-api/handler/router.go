package handler

import (
	"log/slog"
	"time"

	"comicvault/internal/microservices/http-api/middleware"
	"comicvault/internal/microservices/http-api/models"
	"comicvault/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

// Services groups what the router needs.
type Services struct {
	Health    Pinger
	Series    service.SeriesService
	Issues    service.IssueService
	Sync      service.SyncService
	Reconcile service.ReconcileService
	Transfer  service.TransferService
	Import    service.ImportService
	Crawl     service.CrawlService
}

// NewRouter builds the API engine. requestTimeout bounds the ordinary
// routes; bulk routes set their own deadline.
func NewRouter(svc Services, logger *slog.Logger, requestTimeout time.Duration) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(logger))

	r.GET("/health", NewHealthHandler(svc.Health).Health)

	api := r.Group("/api")
	bounded := api.Group("", middleware.Timeout(requestTimeout))

	NewSeriesHandler(svc.Series).RegisterRoutes(bounded)
	NewIssueHandler(svc.Issues, models.KindCollection).RegisterRoutes(bounded.Group("/issues"))
	NewIssueHandler(svc.Issues, models.KindWishlist).RegisterRoutes(bounded.Group("/wishlist"))
	NewCombinedHandler(svc.Reconcile).RegisterRoutes(bounded.Group("/combined-series"))
	NewTransferHandler(svc.Transfer).RegisterRoutes(bounded.Group("/transfer"))

	NewSyncHandler(svc.Sync).RegisterRoutes(api)
	NewImportHandler(svc.Import).RegisterRoutes(api.Group("/import"))
	NewCrawlerHandler(svc.Crawl).RegisterRoutes(api.Group("/crawler"))

	return r
}
