// Package worker runs background maintenance loops next to the HTTP server.
package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Purger deletes expired entries from a store. *database.KVStore implements it.
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// Janitor periodically purges expired session and mapping records from stores
// that do not expire keys on their own.
type Janitor struct {
	purger   Purger
	interval time.Duration
	logger   *zap.Logger
}

// NewJanitor creates a janitor that purges every interval.
func NewJanitor(purger Purger, interval time.Duration, logger *zap.Logger) *Janitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Janitor{purger: purger, interval: interval, logger: logger.With(zap.String("component", "janitor"))}
}

// RunOnce executes one purge and returns the number of removed entries.
func (j *Janitor) RunOnce(ctx context.Context) (int64, error) {
	n, err := j.purger.PurgeExpired(ctx)
	if err != nil {
		j.logger.Error("purge failed", zap.Error(err))
		return 0, err
	}
	if n > 0 {
		j.logger.Info("purged expired entries", zap.Int64("count", n))
	}
	return n, nil
}

// Run purges on every tick until ctx is done. A failed purge is retried on
// the next tick.
func (j *Janitor) Run(ctx context.Context) {
	if j.interval <= 0 {
		j.logger.Info("janitor disabled")
		return
	}
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			j.logger.Info("janitor stopping")
			return
		case <-ticker.C:
			_, _ = j.RunOnce(ctx)
		}
	}
}
