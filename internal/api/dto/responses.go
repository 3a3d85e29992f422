package dto

import "time"

// HealthResponse is returned by the health check endpoint.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Uptime    string `json:"uptime,omitempty"`
}

// NewHealthResponse creates a healthy response with the current timestamp.
func NewHealthResponse() HealthResponse {
	return HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// TenantResponse represents a registered tenant in API responses.
type TenantResponse struct {
	ID                  string   `json:"id"`
	DisplayName         string   `json:"display_name,omitempty"`
	LedgerName          string   `json:"ledger_name,omitempty"`
	SearchIdentifier    string   `json:"search_identifier,omitempty"`
	EnabledPaymentTypes []string `json:"enabled_payment_types,omitempty"`
	Kind                string   `json:"kind,omitempty"`
	ConfigError         string   `json:"config_error,omitempty"`
}

// TenantListResponse is returned when listing tenants.
type TenantListResponse struct {
	Tenants []TenantResponse `json:"tenants"`
	Count   int              `json:"count"`
}

// LedgerEntryResponse is one ledger row, newest first.
type LedgerEntryResponse struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	Transaction string `json:"transaction"`
	Balance     string `json:"balance"`
}

// LedgerResponse is a tenant's ledger view.
type LedgerResponse struct {
	TenantID string                `json:"tenant_id"`
	Ledger   string                `json:"ledger"`
	Balance  string                `json:"balance"`
	Entries  []LedgerEntryResponse `json:"entries"`
}

// ReconcileTenantResponse is one tenant's outcome in a reconciliation run.
type ReconcileTenantResponse struct {
	TenantID string `json:"tenant_id"`
	Posted   int    `json:"posted"`
	Skipped  int    `json:"skipped"`
	Failed   int    `json:"failed"`
	Error    string `json:"error,omitempty"`
}

// ReconcileRunResponse is returned by the reconciliation trigger endpoints.
type ReconcileRunResponse struct {
	RunID   string                    `json:"run_id"`
	Tenants []ReconcileTenantResponse `json:"tenants"`
}

// AccrualOutcomeResponse is one tenant's outcome in an accrual pass.
// Amount is absent when no charge fired for that tenant today.
type AccrualOutcomeResponse struct {
	TenantID string  `json:"tenant_id"`
	Amount   *string `json:"amount,omitempty"`
	Error    string  `json:"error,omitempty"`
}

// AccrualRunResponse is returned by the accrual trigger endpoint.
type AccrualRunResponse struct {
	Outcomes []AccrualOutcomeResponse `json:"outcomes"`
}

// RunEntryResponse is one historical run-log entry.
type RunEntryResponse struct {
	ID           int64     `json:"id"`
	RunID        string    `json:"run_id"`
	TenantID     string    `json:"tenant_id"`
	StartedAt    time.Time `json:"started_at"`
	Posted       int       `json:"posted"`
	Skipped      int       `json:"skipped"`
	Failed       int       `json:"failed"`
	ErrorMessage string    `json:"error_message,omitempty"`
}

// RunListResponse is returned when listing historical runs.
type RunListResponse struct {
	Runs  []RunEntryResponse `json:"runs"`
	Count int                `json:"count"`
}

// TenantStatsResponse aggregates one tenant's historical outcomes.
type TenantStatsResponse struct {
	TenantID string `json:"tenant_id"`
	Runs     int    `json:"runs"`
	Posted   int    `json:"posted"`
	Skipped  int    `json:"skipped"`
	Failed   int    `json:"failed"`
}

// StatsResponse aggregates run-log history across all tenants.
type StatsResponse struct {
	TotalRuns    int                   `json:"total_runs"`
	TotalPosted  int                   `json:"total_posted"`
	TotalSkipped int                   `json:"total_skipped"`
	TotalFailed  int                   `json:"total_failed"`
	TenantStats  []TenantStatsResponse `json:"tenant_stats"`
}
