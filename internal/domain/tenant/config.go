package tenant

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// PaymentType names one payment-confirmation source (e.g. "zelle", "venmo").
type PaymentType string

// RentRule schedules a fixed monthly amount due on a day of the month.
type RentRule struct {
	DueDay        int             `json:"due_day"`
	MonthlyAmount decimal.Decimal `json:"monthly_amount"`
}

// LoanRule schedules monthly interest accrual at an annual rate.
// A zero rate is valid and accrues nothing.
type LoanRule struct {
	InterestDay int             `json:"interest_day"`
	AnnualRate  decimal.Decimal `json:"annual_rate"`
}

// Config is one tenant's settings snapshot.
// Exactly one of Rent or Loan must be set.
type Config struct {
	EnabledPaymentTypes []PaymentType `json:"enabled_payment_types"`
	SearchIdentifier    string        `json:"search_identifier"`
	RequiredLabel       string        `json:"required_label,omitempty"`
	Rent                *RentRule     `json:"rent,omitempty"`
	Loan                *LoanRule     `json:"loan,omitempty"`
	ContactEmails       []string      `json:"contact_emails"`
	DisplayName         string        `json:"display_name"`
	LedgerName          string        `json:"ledger_name"`
}

// ValidationError describes a semantically invalid tenant config.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid tenant config: %s: %s", e.Field, e.Reason)
}

// Validate checks the config invariants. It returns a *ValidationError
// describing the first violated rule.
func (c *Config) Validate() error {
	if len(c.EnabledPaymentTypes) == 0 {
		return &ValidationError{Field: "enabled_payment_types", Reason: "must not be empty"}
	}
	seen := make(map[PaymentType]bool, len(c.EnabledPaymentTypes))
	for _, pt := range c.EnabledPaymentTypes {
		if seen[pt] {
			return &ValidationError{Field: "enabled_payment_types", Reason: fmt.Sprintf("duplicate type %q", pt)}
		}
		seen[pt] = true
	}
	if c.SearchIdentifier == "" {
		return &ValidationError{Field: "search_identifier", Reason: "must not be empty"}
	}
	if c.Rent != nil && c.Loan != nil {
		return &ValidationError{Field: "accrual", Reason: "rent and loan rules are mutually exclusive"}
	}
	if c.Rent == nil && c.Loan == nil {
		return &ValidationError{Field: "accrual", Reason: "either a rent or a loan rule is required"}
	}
	if c.Rent != nil {
		if c.Rent.DueDay < 1 || c.Rent.DueDay > 28 {
			return &ValidationError{Field: "rent.due_day", Reason: "must be between 1 and 28"}
		}
		if !c.Rent.MonthlyAmount.IsPositive() {
			return &ValidationError{Field: "rent.monthly_amount", Reason: "must be positive"}
		}
	}
	if c.Loan != nil {
		if c.Loan.InterestDay < 1 || c.Loan.InterestDay > 28 {
			return &ValidationError{Field: "loan.interest_day", Reason: "must be between 1 and 28"}
		}
		if c.Loan.AnnualRate.IsNegative() {
			return &ValidationError{Field: "loan.annual_rate", Reason: "must not be negative"}
		}
	}
	if c.LedgerName == "" {
		return &ValidationError{Field: "ledger_name", Reason: "must not be empty"}
	}
	return nil
}

// IsRent reports whether the tenant uses rent semantics (vs. loan).
func (c *Config) IsRent() bool {
	return c.Rent != nil
}
