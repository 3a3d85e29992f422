// Command accrue posts today's scheduled charges: rent on each tenant's
// due day, interest on loan tenants' interest day. Intended to run daily
// from cron; days with nothing due only refresh the ledger status block.
package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"github.com/rentledger/rentledger-backend/internal/application/accrual"
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
	logger := logging.NewLoggerWithSystem(loggingCfg, "accrual")

	ctx := context.Background()
	if flags.DryRun {
		logger.Error("accrue does not support -dry-run")
		os.Exit(1)
	}

	app, err := cli.BuildApp(ctx, cfg, logger, cli.BuildOptions{})
	if err != nil {
		logger.Error("startup failed", "error", err.Error())
		os.Exit(1)
	}
	defer func() { _ = app.Close() }()

	cli.PrintHeader("accrue", false)

	if flags.Tenant != "" {
		out, err := app.Accruals.RunTenant(ctx, tenant.ID(flags.Tenant))
		if err != nil {
			logger.Error("accrual failed", "tenant", flags.Tenant, "error", err.Error())
			os.Exit(1)
		}
		cli.PrintAccrualSummary([]accrual.TenantOutcome{*out})
		return
	}

	outcomes, err := app.Accruals.RunAll(ctx, app.Directory)
	if err != nil {
		logger.Error("accrual batch failed", "error", err.Error())
		os.Exit(1)
	}
	cli.PrintAccrualSummary(outcomes)
}
