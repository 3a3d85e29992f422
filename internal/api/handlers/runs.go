package handlers

import (
	"net/http"

	"github.com/rentledger/rentledger-backend/internal/api/dto"
	"github.com/rentledger/rentledger-backend/internal/infrastructure/storage"
)

// RunsHandler serves historical run-log entries.
type RunsHandler struct {
	*Base
	runLog storage.RunLogger
}

// NewRunsHandler creates a new runs handler.
func NewRunsHandler(runLog storage.RunLogger) *RunsHandler {
	return &RunsHandler{
		Base:   &Base{},
		runLog: runLog,
	}
}

// List handles GET /api/runs - returns run history, most recent first.
func (h *RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := ParseIntParam(r, "limit", 20)

	entries, err := h.runLog.ListRunEntries(limit)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	response := dto.RunListResponse{
		Runs:  make([]dto.RunEntryResponse, 0, len(entries)),
		Count: len(entries),
	}
	for _, e := range entries {
		response.Runs = append(response.Runs, dto.RunEntryResponse{
			ID:           e.ID,
			RunID:        e.RunID,
			TenantID:     e.TenantID,
			StartedAt:    e.StartedAt,
			Posted:       e.Posted,
			Skipped:      e.Skipped,
			Failed:       e.Failed,
			ErrorMessage: e.ErrorMessage,
		})
	}

	h.WriteJSON(w, http.StatusOK, response)
}
