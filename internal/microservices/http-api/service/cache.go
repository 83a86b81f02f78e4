package service

import (
	"context"
	"log/slog"

	"comicvault/internal/cache"
)

// invalidateViews drops cached views after a committed write. A failure is
// logged; the entries still expire after the cache TTL.
func invalidateViews(ctx context.Context, c cache.ViewCache, logger *slog.Logger) {
	if err := c.Invalidate(ctx); err != nil {
		logger.Warn("view cache invalidation failed", "error", err)
	}
}
