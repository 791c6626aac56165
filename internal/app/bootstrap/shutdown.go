package bootstrap

import (
	"context"
	"errors"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown runs once the HTTP server has drained. Jobs stop and buffered
// stats and ledger writes are flushed before MongoDB disconnects; all
// failures are returned together.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	var errs []error
	step := func(what string, fn func(context.Context) error) {
		if err := fn(ctx); err != nil {
			logger.Warn("shutdown: "+what, zap.Error(err))
			errs = append(errs, err)
		}
	}

	if taskRunner != nil {
		step("stop maintenance jobs", taskRunner.Stop)
	}
	if statsRecorder != nil {
		step("flush api stats", statsRecorder.Wait)
	}
	if requestLedger != nil {
		step("flush request ledger", requestLedger.Wait)
	}
	if deps.MongoClient != nil {
		step("disconnect MongoDB", deps.MongoClient.Disconnect)
	}
	return errors.Join(errs...)
}
