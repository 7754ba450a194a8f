package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// CatalogRefresher re-reads the catalog source on a fixed interval. On the
// same tick it evicts sessions idle for longer than sessionIdle; a zero
// sessionIdle keeps sessions forever.
type CatalogRefresher struct {
	service     *CartService
	interval    time.Duration
	sessionIdle time.Duration
	logger      *zap.Logger
}

func NewCatalogRefresher(service *CartService, interval, sessionIdle time.Duration, logger *zap.Logger) *CatalogRefresher {
	return &CatalogRefresher{
		service:     service,
		interval:    interval,
		sessionIdle: sessionIdle,
		logger:      logger,
	}
}

func (r *CatalogRefresher) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.tick(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (r *CatalogRefresher) tick(ctx context.Context) {
	if err := r.service.RefreshCatalog(ctx); err != nil {
		r.logger.Warn("catalog refresh failed, keeping previous snapshot", zap.Error(err))
	}
	if r.sessionIdle <= 0 {
		return
	}
	if n := r.service.EvictIdle(r.sessionIdle); n > 0 {
		r.logger.Debug("evicted idle sessions",
			zap.Int("evicted", n),
			zap.Int("remaining", r.service.SessionCount()))
	}
}
