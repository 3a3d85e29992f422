package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rentledger/rentledger-backend/internal/api/dto"
	"github.com/rentledger/rentledger-backend/internal/domain/ledger"
	"github.com/rentledger/rentledger-backend/internal/domain/tenant"
)

// LedgerHandler serves ledger views.
type LedgerHandler struct {
	*Base
	tenants tenant.Provider
	poster  *ledger.Poster
}

// NewLedgerHandler creates a new ledger handler.
func NewLedgerHandler(tenants tenant.Provider, poster *ledger.Poster) *LedgerHandler {
	return &LedgerHandler{
		Base:    &Base{},
		tenants: tenants,
		poster:  poster,
	}
}

// Get handles GET /api/tenants/{id}/ledger - returns the tenant's ledger
// entries, newest first, with the current balance.
func (h *LedgerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := tenant.ID(chi.URLParam(r, "id"))

	cfg, err := h.tenants.GetConfig(r.Context(), id)
	if err != nil {
		h.WriteDomainError(w, err)
		return
	}

	rows, err := h.poster.Entries(cfg)
	if err != nil {
		h.WriteDomainError(w, err)
		return
	}
	balance, err := h.poster.Balance(cfg)
	if err != nil {
		h.WriteDomainError(w, err)
		return
	}

	limit := ParseIntParam(r, "limit", 0)
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}

	response := dto.LedgerResponse{
		TenantID: id.String(),
		Ledger:   cfg.LedgerName,
		Balance:  balance.StringFixed(2),
		Entries:  make([]dto.LedgerEntryResponse, 0, len(rows)),
	}
	for _, row := range rows {
		response.Entries = append(response.Entries, dto.LedgerEntryResponse{
			Date:        row.Date,
			Description: row.Description,
			Transaction: row.Transaction.StringFixed(2),
			Balance:     row.Balance.StringFixed(2),
		})
	}

	h.WriteJSON(w, http.StatusOK, response)
}
