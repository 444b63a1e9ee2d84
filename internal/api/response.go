package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/autopneuma/pneuma/internal/contracts"
	"github.com/autopneuma/pneuma/internal/domain"
	"github.com/autopneuma/pneuma/internal/tools"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError answers with the {"detail": ...} body clients read messages from
func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, contracts.ErrorResponse{Detail: detail})
}

// validationResponse keeps the {"detail"} shape and lists the failed fields
type validationResponse struct {
	Detail string                  `json:"detail"`
	Errors domain.ValidationErrors `json:"errors"`
}

// writeDomainError maps service errors to a status. Unexpected errors keep
// their message out of the response.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	code := mapDomainError(err)
	var invalid domain.ValidationErrors
	if errors.As(err, &invalid) {
		writeJSON(w, code, validationResponse{Detail: invalid.Error(), Errors: invalid})
		return
	}
	if code == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, code, "An unexpected error occurred. Please try again.")
		return
	}
	writeError(w, code, err.Error())
}

func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, tools.ErrDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// decode reads a JSON body, answering 422 when it is malformed
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid request body")
		return false
	}
	return true
}

// intParam parses a query integer, returning def when absent or invalid
func intParam(r *http.Request, name string, def int) int {
	if v := r.URL.Query().Get(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
