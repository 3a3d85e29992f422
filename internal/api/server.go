// Package api exposes the reconciliation backend over HTTP: tenant
// registration, ledger views, manual run triggers, and run history.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rentledger/rentledger-backend/internal/api/handlers"
	"github.com/rentledger/rentledger-backend/internal/api/middleware"
	"github.com/rentledger/rentledger-backend/internal/application/accrual"
	"github.com/rentledger/rentledger-backend/internal/application/reconcile"
	"github.com/rentledger/rentledger-backend/internal/directory"
	"github.com/rentledger/rentledger-backend/internal/domain/ledger"
	"github.com/rentledger/rentledger-backend/internal/domain/tenant"
	"github.com/rentledger/rentledger-backend/internal/infrastructure/storage"
)

// Config holds API server configuration.
type Config struct {
	Port           int
	AllowedOrigins []string
}

// DefaultConfig returns sensible defaults for the API server.
func DefaultConfig() Config {
	return Config{
		Port:           8080,
		AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
	}
}

// Deps are the collaborators the server exposes over HTTP. Engine and
// Accruals may be nil when the mailbox is not configured; the run trigger
// endpoints are then not mounted.
type Deps struct {
	Tenants   *tenant.KVProvider
	Directory *directory.Directory
	Poster    *ledger.Poster
	Engine    *reconcile.Engine
	Accruals  *accrual.Runner
	RunLog    storage.RunLogger
}

// Server is the HTTP API server.
type Server struct {
	config     Config
	router     chi.Router
	httpServer *http.Server
	logger     *slog.Logger
	deps       Deps
}

// NewServer creates a new API server.
func NewServer(cfg Config, deps Deps, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		config: cfg,
		router: chi.NewRouter(),
		logger: logger,
		deps:   deps,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures global middleware.
func (s *Server) setupMiddleware() {
	corsConfig := middleware.CORSConfig{
		AllowedOrigins: s.config.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}
	s.router.Use(middleware.CORS(corsConfig))
	s.router.Use(middleware.Logging(s.logger))
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check (no /api prefix - for load balancers)
	healthHandler := handlers.NewHealthHandler()
	s.router.Get("/health", healthHandler.ServeHTTP)

	s.router.Route("/api", func(r chi.Router) {
		// Tenants
		tenantsHandler := handlers.NewTenantsHandler(s.deps.Tenants, s.deps.Directory, s.deps.Poster)
		r.Get("/tenants", tenantsHandler.List)
		r.Get("/tenants/{id}", tenantsHandler.Get)
		r.Put("/tenants/{id}", tenantsHandler.Upsert)
		r.Delete("/tenants/{id}", tenantsHandler.Delete)

		// Ledger views
		ledgerHandler := handlers.NewLedgerHandler(s.deps.Tenants, s.deps.Poster)
		r.Get("/tenants/{id}/ledger", ledgerHandler.Get)

		// Run history
		if s.deps.RunLog != nil {
			runsHandler := handlers.NewRunsHandler(s.deps.RunLog)
			r.Get("/runs", runsHandler.List)

			statsHandler := handlers.NewStatsHandler(s.deps.RunLog)
			r.Get("/stats", statsHandler.Get)
		}

		// Manual run triggers. Reconciliation needs the mailbox; accruals
		// only touch the ledger, so they mount even without one.
		reconcileHandler := handlers.NewReconcileHandler(s.deps.Engine, s.deps.Accruals, s.deps.Directory)
		if s.deps.Engine != nil {
			r.Post("/reconcile", reconcileHandler.RunAll)
			r.Post("/tenants/{id}/reconcile", reconcileHandler.RunTenant)
		}
		if s.deps.Accruals != nil {
			r.Post("/accruals", reconcileHandler.Accrue)
			r.Post("/tenants/{id}/accrue", reconcileHandler.AccrueTenant)
		}
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting API server", "system", "api", "addr", addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server", "system", "api")

	if s.httpServer == nil {
		return nil
	}

	return s.httpServer.Shutdown(ctx)
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}
