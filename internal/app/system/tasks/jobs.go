// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	apistatsstore "github.com/dalemusser/stratasite/internal/app/store/apistats"
	"github.com/dalemusser/stratasite/internal/app/store/audit"
	ledgerstore "github.com/dalemusser/stratasite/internal/app/store/ledger"
	"github.com/dalemusser/stratasite/internal/app/store/ratelimit"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// pruneTimeout bounds a single delete pass.
const pruneTimeout = 5 * time.Minute

// RateLimitCleanupJob removes rate limit keys that have been idle for longer
// than window and are not under lockout.
func RateLimitCleanupJob(db *mongo.Database, logger *zap.Logger, window time.Duration) Job {
	return Job{
		Name:     "rate-limit-cleanup",
		Interval: 1 * time.Hour,
		Timeout:  pruneTimeout,
		Run: func(ctx context.Context) error {
			deleted, err := ratelimit.DeleteStale(ctx, db, time.Now().UTC().Add(-window))
			if err != nil {
				return err
			}
			if deleted > 0 {
				logger.Info("cleaned up stale rate limit keys",
					zap.Int64("deleted", deleted))
			}
			return nil
		},
	}
}

// AuditRetentionJob deletes audit events older than retention.
// A non-positive retention keeps events forever and the job is a no-op.
func AuditRetentionJob(db *mongo.Database, logger *zap.Logger, retention time.Duration) Job {
	store := audit.New(db)
	return Job{
		Name:     "audit-retention",
		Interval: 24 * time.Hour,
		Timeout:  pruneTimeout,
		Run: func(ctx context.Context) error {
			if retention <= 0 {
				return nil
			}
			deleted, err := store.DeleteOlderThan(ctx, time.Now().UTC().Add(-retention))
			if err != nil {
				return err
			}
			if deleted > 0 {
				logger.Info("pruned audit events",
					zap.Int64("deleted", deleted),
					zap.Duration("retention", retention))
			}
			return nil
		},
	}
}

// APIStatsRetentionJob deletes API traffic buckets older than retention.
func APIStatsRetentionJob(db *mongo.Database, logger *zap.Logger, retention time.Duration) Job {
	store := apistatsstore.New(db)
	return Job{
		Name:     "api-stats-retention",
		Interval: 24 * time.Hour,
		Timeout:  pruneTimeout,
		Run: func(ctx context.Context) error {
			if retention <= 0 {
				return nil
			}
			deleted, err := store.DeleteOlderThan(ctx, time.Now().UTC().Add(-retention), "")
			if err != nil {
				return err
			}
			if deleted > 0 {
				logger.Info("pruned api stats buckets",
					zap.Int64("deleted", deleted))
			}
			return nil
		},
	}
}

// LedgerRetentionJob deletes recorded API requests older than retention.
func LedgerRetentionJob(db *mongo.Database, logger *zap.Logger, retention time.Duration) Job {
	store := ledgerstore.New(db)
	return Job{
		Name:     "ledger-retention",
		Interval: 24 * time.Hour,
		Timeout:  pruneTimeout,
		Run: func(ctx context.Context) error {
			if retention <= 0 {
				return nil
			}
			deleted, err := store.DeleteOlderThan(ctx, time.Now().UTC().Add(-retention))
			if err != nil {
				return err
			}
			if deleted > 0 {
				logger.Info("pruned ledger entries",
					zap.Int64("deleted", deleted))
			}
			return nil
		},
	}
}
