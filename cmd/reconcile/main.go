// Command reconcile runs one reconciliation pass: pending payment emails
// are classified, posted to tenant ledgers, and moved to their disposition
// labels. Intended to run from cron.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/rentledger/rentledger-backend/internal/cli"
	"github.com/rentledger/rentledger-backend/internal/domain/tenant"
	"github.com/rentledger/rentledger-backend/internal/infrastructure/config"
	"github.com/rentledger/rentledger-backend/internal/infrastructure/logging"
)

func main() {
	_ = godotenv.Load()
	flags := cli.ParseRunFlags()

	var cfg *config.Config
	if flags.ConfigPath != "" {
		cfg = config.LoadOrEnvWithPath(flags.ConfigPath)
	} else {
		cfg = config.LoadOrEnv()
	}

	loggingCfg := cfg.Observability.Logging
	if flags.Verbose {
		loggingCfg.Level = "debug"
	}
	logger := logging.NewLoggerWithSystem(loggingCfg, "reconcile")

	ctx := context.Background()
	app, err := cli.BuildApp(ctx, cfg, logger, cli.BuildOptions{WithMailbox: true, DryRun: flags.DryRun})
	if err != nil {
		logger.Error("startup failed", "error", err.Error())
		os.Exit(1)
	}
	defer func() { _ = app.Close() }()

	cli.PrintHeader("reconcile", flags.DryRun)

	if flags.Tenant != "" {
		res, err := app.Engine.RunTenant(ctx, tenant.ID(flags.Tenant))
		if err != nil {
			logger.Error("reconciliation failed", "tenant", flags.Tenant, "error", err.Error())
			os.Exit(1)
		}
		cli.PrintTenantResult(flags.Tenant, res)
		return
	}

	report, err := app.Engine.RunAll(ctx, app.Directory)
	if err != nil {
		logger.Error("reconciliation batch failed", "error", err.Error())
		os.Exit(1)
	}
	cli.PrintRunSummary(report)

	for _, tr := range report.Tenants {
		if tr.Err != nil {
			// Per-tenant failures are reported but exit nonzero so cron
			// alerting notices.
			fmt.Fprintln(os.Stderr, "one or more tenants failed")
			os.Exit(2)
		}
	}
}
