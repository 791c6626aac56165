package main

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/stratasite/internal/app/bootstrap"
	"github.com/spf13/cobra"
)

func maintenanceCmd() *cobra.Command {
	var job string
	cmd := &cobra.Command{
		Use:   "maintenance",
		Short: "Run the background cleanup jobs once",
		Long: `Run the cleanup jobs the server schedules (rate limit records,
audit, API stats and ledger retention) immediately.

Use --job to run a single job; --list prints the job names.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, func(ctx context.Context, e *env) error {
				runner := bootstrap.NewMaintenanceRunner(e.db, maintenanceConfig(e), e.logger)
				if list, _ := cmd.Flags().GetBool("list"); list {
					for _, name := range runner.Names() {
						fmt.Fprintln(cmd.OutOrStdout(), name)
					}
					return nil
				}
				if job != "" {
					return runner.RunOnce(ctx, job)
				}
				return runner.RunAll(ctx)
			})
		},
	}
	cmd.Flags().StringVar(&job, "job", "", "run only the named job")
	cmd.Flags().Bool("list", false, "list job names and exit")
	return cmd
}

// maintenanceConfig picks the settings the cleanup jobs depend on.
func maintenanceConfig(e *env) bootstrap.AppConfig {
	v := e.v
	return bootstrap.AppConfig{
		RateLimitLoginWindow:   v.GetDuration("rate_limit_login_window"),
		RateLimitContactWindow: v.GetDuration("rate_limit_contact_window"),
		AuditRetention:         v.GetDuration("audit_retention"),
		APIStatsEnabled:        v.GetBool("api_stats_enabled"),
		APIStatsRetention:      durationOr(v.GetDuration("api_stats_retention"), 90*24*time.Hour),
		LedgerEnabled:          v.GetBool("ledger_enabled"),
		LedgerRetention:        durationOr(v.GetDuration("ledger_retention"), 30*24*time.Hour),
	}
}

func durationOr(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}
