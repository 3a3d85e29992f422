package dto

// RentRuleRequest configures rent semantics for a tenant. Amounts travel
// as decimal strings to avoid float drift.
type RentRuleRequest struct {
	DueDay        int    `json:"due_day"`
	MonthlyAmount string `json:"monthly_amount"`
}

// LoanRuleRequest configures loan semantics for a tenant.
type LoanRuleRequest struct {
	InterestDay int    `json:"interest_day"`
	AnnualRate  string `json:"annual_rate"`
}

// TenantConfigRequest is the PUT /api/tenants/{id} body. Exactly one of
// rent or loan must be set.
type TenantConfigRequest struct {
	EnabledPaymentTypes []string         `json:"enabled_payment_types"`
	SearchIdentifier    string           `json:"search_identifier"`
	RequiredLabel       string           `json:"required_label,omitempty"`
	DisplayName         string           `json:"display_name,omitempty"`
	LedgerName          string           `json:"ledger_name"`
	ContactEmails       []string         `json:"contact_emails,omitempty"`
	Rent                *RentRuleRequest `json:"rent,omitempty"`
	Loan                *LoanRuleRequest `json:"loan,omitempty"`

	// OpeningBalance, when set, seeds a fresh ledger for the tenant if
	// one does not exist yet.
	OpeningBalance string `json:"opening_balance,omitempty"`
}
