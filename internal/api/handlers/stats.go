package handlers

import (
	"net/http"
	"sort"

	"github.com/rentledger/rentledger-backend/internal/api/dto"
	"github.com/rentledger/rentledger-backend/internal/infrastructure/storage"
)

// StatsHandler aggregates run-log history.
type StatsHandler struct {
	*Base
	runLog storage.RunLogger
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(runLog storage.RunLogger) *StatsHandler {
	return &StatsHandler{
		Base:   &Base{},
		runLog: runLog,
	}
}

// Get handles GET /api/stats - returns aggregate statistics.
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	entries, err := h.runLog.ListRunEntries(0)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	perTenant := make(map[string]*dto.TenantStatsResponse)
	response := dto.StatsResponse{TotalRuns: len(entries)}
	for _, e := range entries {
		response.TotalPosted += e.Posted
		response.TotalSkipped += e.Skipped
		response.TotalFailed += e.Failed

		ts, ok := perTenant[e.TenantID]
		if !ok {
			ts = &dto.TenantStatsResponse{TenantID: e.TenantID}
			perTenant[e.TenantID] = ts
		}
		ts.Runs++
		ts.Posted += e.Posted
		ts.Skipped += e.Skipped
		ts.Failed += e.Failed
	}

	response.TenantStats = make([]dto.TenantStatsResponse, 0, len(perTenant))
	for _, ts := range perTenant {
		response.TenantStats = append(response.TenantStats, *ts)
	}
	sort.Slice(response.TenantStats, func(i, j int) bool {
		return response.TenantStats[i].TenantID < response.TenantStats[j].TenantID
	})

	h.WriteJSON(w, http.StatusOK, response)
}
