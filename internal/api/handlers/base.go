package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rentledger/rentledger-backend/internal/api/dto"
	"github.com/rentledger/rentledger-backend/internal/domain/ledger"
	"github.com/rentledger/rentledger-backend/internal/domain/tenant"
	"github.com/rentledger/rentledger-backend/internal/infrastructure/storage"
)

// Base provides shared functionality for all handlers.
type Base struct{}

// WriteJSON writes a JSON response with the given status code.
func (b *Base) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError writes an error response with the given status code.
func (b *Base) WriteError(w http.ResponseWriter, status int, err dto.APIError) {
	b.WriteJSON(w, status, err)
}

// WriteDomainError maps a domain error to the appropriate HTTP response.
func (b *Base) WriteDomainError(w http.ResponseWriter, err error) {
	var validationErr *tenant.ValidationError
	var structErr *ledger.StructuralError
	var formatErr *storage.FormatError
	switch {
	case errors.As(err, &validationErr):
		b.WriteError(w, http.StatusUnprocessableEntity, dto.ValidationError(validationErr.Error()))
	case errors.As(err, &structErr):
		b.WriteError(w, http.StatusConflict, dto.LedgerStructureError(structErr.Error()))
	case errors.As(err, &formatErr):
		b.WriteError(w, http.StatusInternalServerError, dto.InternalError())
	default:
		b.WriteError(w, http.StatusInternalServerError, dto.InternalError())
	}
}

// ParseIntParam parses an integer query parameter with a default value.
func ParseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return parsed
}
