package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rentledger/rentledger-backend/internal/api"
	"github.com/rentledger/rentledger-backend/internal/infrastructure/config"
	"github.com/rentledger/rentledger-backend/internal/infrastructure/logging"
)

// RunServe runs the API server until interrupted.
func RunServe(cfg *config.Config, flags *ServeFlags) error {
	loggingCfg := cfg.Observability.Logging
	if flags.Verbose {
		loggingCfg.Level = "debug"
	}
	logger := logging.NewLoggerWithSystem(loggingCfg, "api")

	ctx := context.Background()

	// The mailbox is optional for the server: without credentials the
	// run-trigger endpoints are simply not mounted.
	withMailbox := cfg.Mailbox.CredentialsPath != ""
	app, err := BuildApp(ctx, cfg, logger, BuildOptions{WithMailbox: withMailbox})
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()

	apiCfg := api.Config{
		Port:           cfg.API.Port,
		AllowedOrigins: cfg.API.AllowedOrigins,
	}
	if flags.Port > 0 {
		apiCfg.Port = flags.Port
	}

	server := api.NewServer(apiCfg, api.Deps{
		Tenants:   app.Tenants,
		Directory: app.Directory,
		Poster:    app.Poster,
		Engine:    app.Engine,
		Accruals:  app.Accruals,
		RunLog:    app.Store,
	}, logger)

	// Handle graceful shutdown
	done := make(chan bool, 1)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info("received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", slog.Any("error", err))
		}
		close(done)
	}()

	// Start server (blocks until shutdown)
	if err := server.Start(); err != nil {
		return err
	}

	<-done
	logger.Info("server stopped")
	return nil
}
