package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rentledger/rentledger-backend/internal/api/dto"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	started time.Time
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{started: time.Now()}
}

// ServeHTTP handles the health check request.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	response := dto.NewHealthResponse()
	response.Uptime = time.Since(h.started).Round(time.Second).String()
	_ = json.NewEncoder(w).Encode(response)
}
