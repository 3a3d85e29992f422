// Package reconcile implements the payment reconciliation pipeline: pending
// inbox threads are classified into payment events, posted to the tenant's
// ledger exactly once, and moved to a terminal disposition label.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rentledger/rentledger-backend/internal/adapters/mailbox"
	"github.com/rentledger/rentledger-backend/internal/adapters/notify"
	"github.com/rentledger/rentledger-backend/internal/directory"
	"github.com/rentledger/rentledger-backend/internal/domain/classifier"
	"github.com/rentledger/rentledger-backend/internal/domain/ledger"
	"github.com/rentledger/rentledger-backend/internal/domain/tenant"
	"github.com/rentledger/rentledger-backend/internal/infrastructure/storage"
)

// Labels names the three disposition labels in the mailbox. Pending is the
// only entry state; done and failed are terminal per message id.
type Labels struct {
	Pending string
	Done    string
	Failed  string
}

// Result summarizes one tenant's reconciliation pass.
type Result struct {
	Posted  int
	Skipped int
	Failed  int
}

// TenantReport is one tenant's outcome within a batch run.
type TenantReport struct {
	TenantID tenant.ID
	Result   *Result
	Err      error
}

// BatchReport is the outcome of a run across all registered tenants.
type BatchReport struct {
	RunID   string
	Tenants []TenantReport
}

// Engine drives the per-tenant reconciliation state machine. It is not safe
// for concurrent invocation against the same tenant: the dedup store and the
// ledger assume a single writer.
type Engine struct {
	tenants    tenant.Provider
	mbox       mailbox.Mailbox
	classifier *classifier.Classifier
	poster     *ledger.Poster
	dedup      *DedupStore
	notifier   notify.Notifier
	labels     Labels
	runLog     storage.RunLogger
	logger     *slog.Logger
	now        func() time.Time
	dryRun     bool
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithRunLogger records per-tenant batch outcomes for later inspection.
func WithRunLogger(rl storage.RunLogger) EngineOption {
	return func(e *Engine) { e.runLog = rl }
}

// WithClock replaces the engine's clock, for tests.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// WithDryRun makes the engine classify and report without posting, labeling
// or notifying.
func WithDryRun(dryRun bool) EngineOption {
	return func(e *Engine) { e.dryRun = dryRun }
}

// NewEngine wires the reconciliation pipeline.
func NewEngine(
	tenants tenant.Provider,
	mbox mailbox.Mailbox,
	cls *classifier.Classifier,
	poster *ledger.Poster,
	dedup *DedupStore,
	notifier notify.Notifier,
	labels Labels,
	logger *slog.Logger,
	opts ...EngineOption,
) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		tenants:    tenants,
		mbox:       mbox,
		classifier: cls,
		poster:     poster,
		dedup:      dedup,
		notifier:   notifier,
		labels:     labels,
		logger:     logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RunTenant reconciles a single tenant's pending threads. Errors propagate
// unmodified; callers running a batch isolate them per tenant via RunAll.
func (e *Engine) RunTenant(ctx context.Context, id tenant.ID) (*Result, error) {
	cfg, err := e.tenants.GetConfig(ctx, id)
	if err != nil {
		return nil, err
	}

	if !e.dryRun {
		if err := e.dedup.Prune(id); err != nil {
			return nil, err
		}
	}

	pendingID, err := e.mbox.LabelID(ctx, e.labels.Pending)
	if err != nil {
		return nil, err
	}
	doneID, err := e.mbox.LabelID(ctx, e.labels.Done)
	if err != nil {
		return nil, err
	}
	failedID, err := e.mbox.LabelID(ctx, e.labels.Failed)
	if err != nil {
		return nil, err
	}
	requiredID := ""
	if cfg.RequiredLabel != "" {
		requiredID, err = e.mbox.LabelID(ctx, cfg.RequiredLabel)
		if err != nil {
			return nil, err
		}
	}

	threadIDs, err := e.mbox.ThreadsWithLabel(ctx, pendingID)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	for _, threadID := range threadIDs {
		if err := e.reconcileThread(ctx, id, cfg, threadID, requiredID, pendingID, doneID, failedID, res); err != nil {
			return nil, err
		}
	}

	e.logger.Info("reconciliation pass complete",
		"system", "reconcile",
		"tenant", id.String(),
		"posted", res.Posted,
		"skipped", res.Skipped,
		"failed", res.Failed)
	return res, nil
}

// reconcileThread disposes of one pending thread. Messages are visited in
// message order; the thread's disposition is derived from the union of its
// messages: a gating required-label miss leaves the thread pending, even
// when sibling messages posted; otherwise any posted or previously-processed
// message marks it done, and zero matches move it to failed with an
// operator alert.
func (e *Engine) reconcileThread(ctx context.Context, id tenant.ID, cfg *tenant.Config, threadID, requiredID, pendingID, doneID, failedID string, res *Result) error {
	msgs, err := e.mbox.Messages(ctx, threadID)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		return nil
	}

	handled := false
	gated := false
	for i := range msgs {
		msg := &msgs[i]

		seen, err := e.dedup.Seen(id, msg.ID)
		if err != nil {
			return err
		}
		if seen {
			// Already posted on a previous run whose label move may have
			// failed; skip the posting but still drive the label forward.
			res.Skipped++
			handled = true
			continue
		}

		if requiredID != "" && !msg.HasLabel(requiredID) {
			gated = true
			continue
		}

		event := e.classifier.Classify(msg, cfg)
		if event == nil {
			continue
		}

		if e.dryRun {
			e.logger.Info("would post payment",
				"system", "reconcile",
				"tenant", id.String(),
				"message_id", msg.ID,
				"amount", event.Amount.StringFixed(2))
			res.Posted++
			handled = true
			continue
		}

		if err := e.poster.AddPayment(cfg, event.Amount, event.PostedAt); err != nil {
			return fmt.Errorf("posting payment from message %s: %w", msg.ID, err)
		}
		// The dedup write must land before the label move is attempted:
		// a crash or label failure after this point still leaves the
		// posting guarded against reprocessing.
		if err := e.dedup.Record(id, msg.ID); err != nil {
			return err
		}
		e.notifier.PaymentThanked(ctx, id, threadID, event.Amount)
		res.Posted++
		handled = true
	}

	switch {
	case gated:
		// Not ready yet: no disposition change, even when sibling
		// messages posted. The dedup store keeps those from posting
		// twice once the gate clears and the thread completes.
	case handled:
		e.moveThread(ctx, id, threadID, pendingID, doneID)
	default:
		res.Failed++
		if !e.dryRun {
			subjects := make([]string, len(msgs))
			for i := range msgs {
				subjects[i] = msgs[i].Subject
			}
			e.notifier.UnparsableThread(ctx, id, threadID, subjects)
		}
		e.moveThread(ctx, id, threadID, pendingID, failedID)
	}
	return nil
}

// moveThread transitions a thread between disposition labels. Label-move
// failures are transient: logged and swallowed, never fatal for the run.
// The dedup store, not the label, is the idempotency guard.
func (e *Engine) moveThread(ctx context.Context, id tenant.ID, threadID, fromID, toID string) {
	if e.dryRun {
		return
	}
	if err := e.mbox.AddLabel(ctx, threadID, toID); err != nil {
		e.swallowLabelError(id, err)
		return
	}
	if err := e.mbox.RemoveLabel(ctx, threadID, fromID); err != nil {
		e.swallowLabelError(id, err)
	}
}

func (e *Engine) swallowLabelError(id tenant.ID, err error) {
	var labelErr *mailbox.LabelError
	if errors.As(err, &labelErr) {
		e.logger.Warn("label move failed, will retry on next run",
			"system", "reconcile",
			"tenant", id.String(),
			"thread_id", labelErr.ThreadID,
			"op", labelErr.Op,
			"error", err.Error())
		return
	}
	e.logger.Error("unexpected error moving thread label",
		"system", "reconcile",
		"tenant", id.String(),
		"error", err.Error())
}

// RunAll reconciles every registered tenant sequentially through the
// directory iterator. One tenant's failure is recorded in the batch report
// and does not stop the remaining tenants.
func (e *Engine) RunAll(ctx context.Context, dir *directory.Directory) (*BatchReport, error) {
	report := &BatchReport{RunID: uuid.NewString()}

	_, err := dir.ForEach(ctx, func(tcx context.Context, id tenant.ID) error {
		started := e.now()
		res, runErr := e.RunTenant(tcx, id)
		report.Tenants = append(report.Tenants, TenantReport{TenantID: id, Result: res, Err: runErr})
		e.saveRunEntry(report.RunID, id, started, res, runErr)
		return runErr
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (e *Engine) saveRunEntry(runID string, id tenant.ID, started time.Time, res *Result, runErr error) {
	if e.runLog == nil || e.dryRun {
		return
	}
	entry := &storage.RunLogEntry{
		RunID:     runID,
		TenantID:  id.String(),
		StartedAt: started,
	}
	if res != nil {
		entry.Posted = res.Posted
		entry.Skipped = res.Skipped
		entry.Failed = res.Failed
	}
	if runErr != nil {
		entry.ErrorMessage = runErr.Error()
	}
	if err := e.runLog.SaveRunEntry(entry); err != nil {
		e.logger.Error("failed to record run outcome",
			"system", "reconcile",
			"tenant", id.String(),
			"error", err.Error())
	}
}
