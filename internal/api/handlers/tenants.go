package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/rentledger/rentledger-backend/internal/api/dto"
	"github.com/rentledger/rentledger-backend/internal/directory"
	"github.com/rentledger/rentledger-backend/internal/domain/ledger"
	"github.com/rentledger/rentledger-backend/internal/domain/tenant"
)

// TenantsHandler handles tenant registration and configuration requests.
type TenantsHandler struct {
	*Base
	tenants *tenant.KVProvider
	dir     *directory.Directory
	poster  *ledger.Poster
	now     func() time.Time
}

// NewTenantsHandler creates a new tenants handler.
func NewTenantsHandler(tenants *tenant.KVProvider, dir *directory.Directory, poster *ledger.Poster) *TenantsHandler {
	return &TenantsHandler{
		Base:    &Base{},
		tenants: tenants,
		dir:     dir,
		poster:  poster,
		now:     time.Now,
	}
}

// List handles GET /api/tenants - returns all registered tenants.
func (h *TenantsHandler) List(w http.ResponseWriter, r *http.Request) {
	ids, err := h.dir.List(r.Context())
	if err != nil {
		h.WriteDomainError(w, err)
		return
	}

	response := dto.TenantListResponse{
		Tenants: make([]dto.TenantResponse, 0, len(ids)),
		Count:   len(ids),
	}
	for _, id := range ids {
		cfg, err := h.tenants.GetConfig(r.Context(), id)
		if err != nil {
			response.Tenants = append(response.Tenants, dto.TenantResponse{
				ID:          id.String(),
				ConfigError: err.Error(),
			})
			continue
		}
		response.Tenants = append(response.Tenants, toTenantResponse(id, cfg))
	}

	h.WriteJSON(w, http.StatusOK, response)
}

// Get handles GET /api/tenants/{id} - returns a single tenant.
func (h *TenantsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := tenant.ID(chi.URLParam(r, "id"))
	registered, err := h.isRegistered(r, id)
	if err != nil {
		h.WriteDomainError(w, err)
		return
	}
	if !registered {
		h.WriteError(w, http.StatusNotFound, dto.NotFoundError("tenant"))
		return
	}

	cfg, err := h.tenants.GetConfig(r.Context(), id)
	if err != nil {
		h.WriteDomainError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, toTenantResponse(id, cfg))
}

// Upsert handles PUT /api/tenants/{id} - stores config and registers the
// tenant. Registration of an invalid tenant fails closed: the tenant is
// not added and the underlying error is reported.
func (h *TenantsHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	id := tenant.ID(chi.URLParam(r, "id"))
	if id == "" {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("tenant ID is required"))
		return
	}

	var req dto.TenantConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid request body"))
		return
	}

	cfg, err := toTenantConfig(&req)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError(err.Error()))
		return
	}

	if err := h.tenants.PutConfig(r.Context(), id, cfg); err != nil {
		h.WriteDomainError(w, err)
		return
	}

	if req.OpeningBalance != "" {
		seed, err := decimal.NewFromString(req.OpeningBalance)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid opening_balance"))
			return
		}
		if err := h.poster.EnsureLedger(cfg, seed, h.now()); err != nil {
			h.WriteDomainError(w, err)
			return
		}
	}

	if err := h.dir.Register(r.Context(), id); err != nil {
		h.WriteDomainError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, toTenantResponse(id, cfg))
}

// Delete handles DELETE /api/tenants/{id} - unregisters the tenant and
// removes its stored config. The ledger itself is left untouched.
func (h *TenantsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := tenant.ID(chi.URLParam(r, "id"))

	if err := h.dir.Unregister(r.Context(), id); err != nil {
		h.WriteDomainError(w, err)
		return
	}
	if err := h.tenants.DeleteConfig(r.Context(), id); err != nil {
		h.WriteDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *TenantsHandler) isRegistered(r *http.Request, id tenant.ID) (bool, error) {
	ids, err := h.dir.List(r.Context())
	if err != nil {
		return false, err
	}
	for _, existing := range ids {
		if existing == id {
			return true, nil
		}
	}
	return false, nil
}

func toTenantResponse(id tenant.ID, cfg *tenant.Config) dto.TenantResponse {
	types := make([]string, 0, len(cfg.EnabledPaymentTypes))
	for _, pt := range cfg.EnabledPaymentTypes {
		types = append(types, string(pt))
	}
	kind := "loan"
	if cfg.IsRent() {
		kind = "rent"
	}
	return dto.TenantResponse{
		ID:                  id.String(),
		DisplayName:         cfg.DisplayName,
		LedgerName:          cfg.LedgerName,
		SearchIdentifier:    cfg.SearchIdentifier,
		EnabledPaymentTypes: types,
		Kind:                kind,
	}
}

func toTenantConfig(req *dto.TenantConfigRequest) (*tenant.Config, error) {
	cfg := &tenant.Config{
		SearchIdentifier: req.SearchIdentifier,
		RequiredLabel:    req.RequiredLabel,
		DisplayName:      req.DisplayName,
		LedgerName:       req.LedgerName,
		ContactEmails:    req.ContactEmails,
	}
	for _, pt := range req.EnabledPaymentTypes {
		cfg.EnabledPaymentTypes = append(cfg.EnabledPaymentTypes, tenant.PaymentType(pt))
	}
	if req.Rent != nil {
		amount, err := decimal.NewFromString(req.Rent.MonthlyAmount)
		if err != nil {
			return nil, err
		}
		cfg.Rent = &tenant.RentRule{DueDay: req.Rent.DueDay, MonthlyAmount: amount}
	}
	if req.Loan != nil {
		rate, err := decimal.NewFromString(req.Loan.AnnualRate)
		if err != nil {
			return nil, err
		}
		cfg.Loan = &tenant.LoanRule{InterestDay: req.Loan.InterestDay, AnnualRate: rate}
	}
	return cfg, nil
}
