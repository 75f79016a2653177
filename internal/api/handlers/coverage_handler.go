package handlers

import (
	"context"
	"net/http"

	"github.com/fleetshare/coverage-engine/internal/domain/entities"
)

// CoverageService defines the per-operator coverage lookups
type CoverageService interface {
	CoverageForOperator(ctx context.Context, operatorID string) (*entities.OperatorCoverage, error)
	PreviewProviderForFleet(ctx context.Context, operatorID, providerID string) (*entities.FleetPreview, error)
}

// CoverageHandler handles coverage lookup requests
type CoverageHandler struct {
	service CoverageService
}

// NewCoverageHandler creates a new coverage handler
func NewCoverageHandler(service CoverageService) *CoverageHandler {
	return &CoverageHandler{
		service: service,
	}
}

// GetOperatorCoverage handles GET /api/operators/{id}/coverage
func (h *CoverageHandler) GetOperatorCoverage(w http.ResponseWriter, r *http.Request) {
	operatorID := r.PathValue("id")
	if operatorID == "" {
		respondWithError(w, http.StatusBadRequest, "operator ID is required")
		return
	}

	coverage, err := h.service.CoverageForOperator(r.Context(), operatorID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, coverage)
}

// PreviewProvider handles GET /api/operators/{id}/coverage/preview?provider_id=
func (h *CoverageHandler) PreviewProvider(w http.ResponseWriter, r *http.Request) {
	operatorID := r.PathValue("id")
	providerID := r.URL.Query().Get("provider_id")
	if operatorID == "" || providerID == "" {
		respondWithError(w, http.StatusBadRequest, "operator ID and provider_id are required")
		return
	}

	preview, err := h.service.PreviewProviderForFleet(r.Context(), operatorID, providerID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, preview)
}
