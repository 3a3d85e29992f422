// Package accrual runs the scheduled charge pass: rent becomes due on each
// tenant's due day, interest accrues on loan tenants' interest day. It is
// driven by an external scheduler (cron), never by the reconciliation loop.
package accrual

import (
	"context"
	"log/slog"
	"time"

	"github.com/rentledger/rentledger-backend/internal/directory"
	"github.com/rentledger/rentledger-backend/internal/domain/ledger"
	"github.com/rentledger/rentledger-backend/internal/domain/tenant"
)

// TenantOutcome is one tenant's accrual result. Amount is nil when no
// charge fired (not the tenant's due or interest day).
type TenantOutcome struct {
	TenantID tenant.ID
	Amount   *string
	Err      error
}

// Runner posts scheduled charges across all registered tenants.
type Runner struct {
	tenants tenant.Provider
	poster  *ledger.Poster
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithClock replaces the runner's clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// NewRunner creates an accrual Runner.
func NewRunner(tenants tenant.Provider, poster *ledger.Poster, logger *slog.Logger, opts ...Option) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Runner{tenants: tenants, poster: poster, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunTenant posts today's charge for a single tenant, if one is due.
func (r *Runner) RunTenant(ctx context.Context, id tenant.ID) (*TenantOutcome, error) {
	cfg, err := r.tenants.GetConfig(ctx, id)
	if err != nil {
		return nil, err
	}

	txn, err := r.poster.PostAccrual(cfg, r.now())
	if err != nil {
		return nil, err
	}

	out := &TenantOutcome{TenantID: id}
	if txn != nil {
		amount := txn.StringFixed(2)
		out.Amount = &amount
		r.logger.Info("accrual posted",
			"system", "accrual",
			"tenant", id.String(),
			"amount", amount)
	}
	return out, nil
}

// RunAll posts today's charges for every registered tenant. One tenant's
// failure is recorded and does not stop the remaining tenants.
func (r *Runner) RunAll(ctx context.Context, dir *directory.Directory) ([]TenantOutcome, error) {
	var outcomes []TenantOutcome
	_, err := dir.ForEach(ctx, func(tcx context.Context, id tenant.ID) error {
		out, runErr := r.RunTenant(tcx, id)
		if out == nil {
			out = &TenantOutcome{TenantID: id}
		}
		out.Err = runErr
		outcomes = append(outcomes, *out)
		return runErr
	})
	if err != nil {
		return nil, err
	}
	return outcomes, nil
}
