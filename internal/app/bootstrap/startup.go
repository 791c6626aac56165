// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/stratasite/internal/app/system/seeding"
	"github.com/dalemusser/stratasite/internal/app/system/tasks"
	"github.com/dalemusser/stratasite/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Startup runs once after DB connections and schema/index setup are complete,
// but before the HTTP handler is built and requests are served.
//
// Returning a non-nil error will abort startup and prevent the server from
// starting. The context will be cancelled if the process is asked to shut
// down while Startup is running.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if n := timeouts.ConfigureFromEnv(); n > 0 {
		logger.Info("database timeouts overridden from environment", zap.Int("count", n))
	}

	// Note: Indexes are created in EnsureSchema via indexes.EnsureAll().

	if appCfg.SeedAdminEmail != "" {
		err := seeding.EnsureAdmin(ctx, deps.MongoDatabase, seeding.AdminInput{
			Email:    appCfg.SeedAdminEmail,
			Name:     appCfg.SeedAdminName,
			Password: appCfg.SeedAdminPassword,
		}, logger)
		if err != nil {
			logger.Error("failed to seed admin user", zap.Error(err))
			return err
		}
	}

	startTaskRunner(deps.MongoDatabase, appCfg, logger)
	return nil
}

// taskRunner is the global task runner instance, used for graceful shutdown.
var taskRunner *tasks.Runner

// newTaskRunner registers the maintenance jobs. sitectl reuses it to run
// them on demand.
func newTaskRunner(db *mongo.Database, appCfg AppConfig, logger *zap.Logger) *tasks.Runner {
	r := tasks.New(logger)

	window := appCfg.RateLimitLoginWindow
	if appCfg.RateLimitContactWindow > window {
		window = appCfg.RateLimitContactWindow
	}
	r.Register(tasks.RateLimitCleanupJob(db, logger, window))
	r.Register(tasks.AuditRetentionJob(db, logger, appCfg.AuditRetention))
	if appCfg.APIStatsEnabled {
		r.Register(tasks.APIStatsRetentionJob(db, logger, appCfg.APIStatsRetention))
	}
	if appCfg.LedgerEnabled {
		r.Register(tasks.LedgerRetentionJob(db, logger, appCfg.LedgerRetention))
	}
	return r
}

// startTaskRunner initializes and starts the background task runner.
func startTaskRunner(db *mongo.Database, appCfg AppConfig, logger *zap.Logger) {
	taskRunner = newTaskRunner(db, appCfg, logger)
	taskRunner.Start()
}

// NewMaintenanceRunner exposes the maintenance job set without starting it.
func NewMaintenanceRunner(db *mongo.Database, appCfg AppConfig, logger *zap.Logger) *tasks.Runner {
	return newTaskRunner(db, appCfg, logger)
}
