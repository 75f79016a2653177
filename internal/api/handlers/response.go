package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	apperrors "github.com/fleetshare/coverage-engine/pkg/errors"
)

// errorResponse is the body of every failed request
type errorResponse struct {
	Error   string                 `json:"error"`
	Type    apperrors.ErrorType    `json:"type,omitempty"`
	Reason  string                 `json:"reason,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, errorResponse{Error: message})
}

// respondWithAppError maps the error taxonomy onto HTTP statuses. Rejection
// details are returned as-is so callers can explain them.
func respondWithAppError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperrors.As(err)
	if !ok {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("unhandled error")
		respondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	status := statusFor(appErr.Type)
	body := errorResponse{
		Error:   appErr.Message,
		Type:    appErr.Type,
		Reason:  appErr.Reason,
		Details: appErr.Details,
	}
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		if appErr.Type != apperrors.ErrorTypeInvariant {
			body.Error = "internal server error"
		}
	}
	respondWithJSON(w, status, body)
}

func statusFor(t apperrors.ErrorType) int {
	switch t {
	case apperrors.ErrorTypeNotFound:
		return http.StatusNotFound
	case apperrors.ErrorTypeValidation:
		return http.StatusBadRequest
	case apperrors.ErrorTypePrecondition:
		return http.StatusUnprocessableEntity
	case apperrors.ErrorTypeConflict:
		return http.StatusConflict
	case apperrors.ErrorTypeDataAccess:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
