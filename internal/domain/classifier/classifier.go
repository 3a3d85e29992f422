// Package classifier decides whether an inbound message is a payment
// confirmation and extracts the amount.
package classifier

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rentledger/rentledger-backend/internal/adapters/mailbox"
	"github.com/rentledger/rentledger-backend/internal/domain/tenant"
)

// PaymentEvent is a classified payment. Derived, never stored.
type PaymentEvent struct {
	Amount          decimal.Decimal
	PostedAt        time.Time
	SourceMessageID string
	PaymentType     tenant.PaymentType
}

// Matcher is one payment type's pure classification function.
// It must reject out-of-domain messages (wrong sender domain) cheaply
// before attempting extraction. A malformed amount is a no-match,
// never an error.
type Matcher interface {
	// Type names the payment type this matcher handles.
	Type() tenant.PaymentType

	// Match returns the payment amount when msg is a confirmation for
	// the tenant identified by searchID. The bool is false on no-match.
	Match(msg *mailbox.Message, searchID string) (decimal.Decimal, bool)
}

// Classifier runs a tenant's enabled matchers in configured order.
type Classifier struct {
	registry *Registry
}

// NewClassifier creates a classifier over the given matcher registry.
func NewClassifier(registry *Registry) *Classifier {
	return &Classifier{registry: registry}
}

// Classify runs the enabled payment types in order against the message.
// The first matcher returning an amount wins; remaining matchers are
// skipped (first-match-wins, not highest-confidence). A nil return means
// no enabled type recognized the message, which is not an error at this
// level.
func (c *Classifier) Classify(msg *mailbox.Message, cfg *tenant.Config) *PaymentEvent {
	for _, pt := range cfg.EnabledPaymentTypes {
		matcher, ok := c.registry.Get(pt)
		if !ok {
			continue
		}
		amount, matched := matcher.Match(msg, cfg.SearchIdentifier)
		if !matched {
			continue
		}
		if !amount.IsPositive() {
			continue
		}
		return &PaymentEvent{
			Amount:          amount,
			PostedAt:        msg.Timestamp,
			SourceMessageID: msg.ID,
			PaymentType:     pt,
		}
	}
	return nil
}
