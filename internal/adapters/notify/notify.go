// Package notify delivers out-of-band signals produced by a reconciliation
// run: thank-you acknowledgements for posted payments and operator alerts
// for threads that could not be classified.
package notify

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/rentledger/rentledger-backend/internal/domain/tenant"
)

// Notifier receives reconciliation side-channel events. Failures must be
// absorbed by implementations; notification is never allowed to fail a run.
type Notifier interface {
	// PaymentThanked fires after a payment has been durably posted.
	PaymentThanked(ctx context.Context, id tenant.ID, threadID string, amount decimal.Decimal)

	// UnparsableThread fires when no enabled matcher claimed a pending
	// thread; subjects carries every message subject in the thread.
	UnparsableThread(ctx context.Context, id tenant.ID, threadID string, subjects []string)
}

// LogNotifier writes notifications to the structured log. It is the default
// sink; richer channels (outbound mail, chat webhooks) wrap or replace it.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a LogNotifier. A nil logger falls back to the
// process default.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) PaymentThanked(ctx context.Context, id tenant.ID, threadID string, amount decimal.Decimal) {
	n.logger.Info("payment acknowledged",
		"system", "reconcile",
		"tenant", id.String(),
		"thread_id", threadID,
		"amount", amount.StringFixed(2))
}

func (n *LogNotifier) UnparsableThread(ctx context.Context, id tenant.ID, threadID string, subjects []string) {
	n.logger.Warn("unparsable payment thread needs manual review",
		"system", "reconcile",
		"tenant", id.String(),
		"thread_id", threadID,
		"subjects", strings.Join(subjects, "; "))
}

// ThankedEvent is one captured PaymentThanked call.
type ThankedEvent struct {
	Tenant   tenant.ID
	ThreadID string
	Amount   decimal.Decimal
}

// AlertEvent is one captured UnparsableThread call.
type AlertEvent struct {
	Tenant   tenant.ID
	ThreadID string
	Subjects []string
}

// Recorder is a Notifier that captures every event, for tests.
type Recorder struct {
	mu      sync.Mutex
	Thanked []ThankedEvent
	Alerts  []AlertEvent
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) PaymentThanked(ctx context.Context, id tenant.ID, threadID string, amount decimal.Decimal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Thanked = append(r.Thanked, ThankedEvent{Tenant: id, ThreadID: threadID, Amount: amount})
}

func (r *Recorder) UnparsableThread(ctx context.Context, id tenant.ID, threadID string, subjects []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Alerts = append(r.Alerts, AlertEvent{Tenant: id, ThreadID: threadID, Subjects: subjects})
}
