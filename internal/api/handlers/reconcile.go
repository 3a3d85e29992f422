package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rentledger/rentledger-backend/internal/api/dto"
	"github.com/rentledger/rentledger-backend/internal/application/accrual"
	"github.com/rentledger/rentledger-backend/internal/application/reconcile"
	"github.com/rentledger/rentledger-backend/internal/directory"
	"github.com/rentledger/rentledger-backend/internal/domain/tenant"
)

// ReconcileHandler exposes the reconciliation and accrual triggers.
type ReconcileHandler struct {
	*Base
	engine   *reconcile.Engine
	accruals *accrual.Runner
	dir      *directory.Directory
}

// NewReconcileHandler creates a new reconcile handler.
func NewReconcileHandler(engine *reconcile.Engine, accruals *accrual.Runner, dir *directory.Directory) *ReconcileHandler {
	return &ReconcileHandler{
		Base:     &Base{},
		engine:   engine,
		accruals: accruals,
		dir:      dir,
	}
}

// RunAll handles POST /api/reconcile - reconciles every registered tenant.
func (h *ReconcileHandler) RunAll(w http.ResponseWriter, r *http.Request) {
	report, err := h.engine.RunAll(r.Context(), h.dir)
	if err != nil {
		h.WriteDomainError(w, err)
		return
	}

	response := dto.ReconcileRunResponse{
		RunID:   report.RunID,
		Tenants: make([]dto.ReconcileTenantResponse, 0, len(report.Tenants)),
	}
	for _, tr := range report.Tenants {
		response.Tenants = append(response.Tenants, toReconcileTenantResponse(tr))
	}

	h.WriteJSON(w, http.StatusOK, response)
}

// RunTenant handles POST /api/tenants/{id}/reconcile - reconciles one
// tenant. Errors propagate to the caller unmodified, unlike the batch run.
func (h *ReconcileHandler) RunTenant(w http.ResponseWriter, r *http.Request) {
	id := tenant.ID(chi.URLParam(r, "id"))

	res, err := h.engine.RunTenant(r.Context(), id)
	if err != nil {
		h.WriteDomainError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, dto.ReconcileTenantResponse{
		TenantID: id.String(),
		Posted:   res.Posted,
		Skipped:  res.Skipped,
		Failed:   res.Failed,
	})
}

// Accrue handles POST /api/accruals - posts today's scheduled charges for
// every registered tenant.
func (h *ReconcileHandler) Accrue(w http.ResponseWriter, r *http.Request) {
	outcomes, err := h.accruals.RunAll(r.Context(), h.dir)
	if err != nil {
		h.WriteDomainError(w, err)
		return
	}

	response := dto.AccrualRunResponse{
		Outcomes: make([]dto.AccrualOutcomeResponse, 0, len(outcomes)),
	}
	for _, out := range outcomes {
		entry := dto.AccrualOutcomeResponse{
			TenantID: out.TenantID.String(),
			Amount:   out.Amount,
		}
		if out.Err != nil {
			entry.Error = out.Err.Error()
		}
		response.Outcomes = append(response.Outcomes, entry)
	}

	h.WriteJSON(w, http.StatusOK, response)
}

// AccrueTenant handles POST /api/tenants/{id}/accrue - posts today's
// scheduled charge for one tenant, if one is due.
func (h *ReconcileHandler) AccrueTenant(w http.ResponseWriter, r *http.Request) {
	id := tenant.ID(chi.URLParam(r, "id"))

	out, err := h.accruals.RunTenant(r.Context(), id)
	if err != nil {
		h.WriteDomainError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, dto.AccrualOutcomeResponse{
		TenantID: out.TenantID.String(),
		Amount:   out.Amount,
	})
}

func toReconcileTenantResponse(tr reconcile.TenantReport) dto.ReconcileTenantResponse {
	resp := dto.ReconcileTenantResponse{TenantID: tr.TenantID.String()}
	if tr.Result != nil {
		resp.Posted = tr.Result.Posted
		resp.Skipped = tr.Result.Skipped
		resp.Failed = tr.Result.Failed
	}
	if tr.Err != nil {
		resp.Error = tr.Err.Error()
	}
	return resp
}
