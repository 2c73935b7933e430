package api

import (
	"errors"
	"net/http"

	"github.com/trogers1052/portfolio-tracker/internal/portfolio"
)

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// statusFor maps service errors to HTTP status codes
func statusFor(err error) int {
	var (
		validation *portfolio.ValidationError
		funds      *portfolio.InsufficientFundsError
		holdings   *portfolio.InsufficientHoldingsError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &funds), errors.As(err, &holdings):
		return http.StatusUnprocessableEntity
	case portfolio.IsNotFound(err):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as JSON. Internal errors are logged and replaced
// with a generic message.
func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	resp := errorResponse{Error: err.Error()}

	var validation *portfolio.ValidationError
	if errors.As(err, &validation) {
		resp.Field = validation.Field
	}

	if status == http.StatusInternalServerError {
		h.logger.Error().Err(err).
			Str("user_id", userID(r)).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("Request failed")
		resp.Error = "internal error"
	}
	respondJSON(w, status, resp)
}
