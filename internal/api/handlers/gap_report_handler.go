package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/fleetshare/coverage-engine/internal/application/services"
	"github.com/fleetshare/coverage-engine/internal/domain/entities"
)

// GapScanner defines the fleet-wide coverage scan
type GapScanner interface {
	ScanFleet(ctx context.Context, scope services.ScanScope) (*entities.GapReport, error)
}

// GapReportHandler serves the admin coverage gap report
type GapReportHandler struct {
	scanner GapScanner
}

// NewGapReportHandler creates a new gap report handler
func NewGapReportHandler(scanner GapScanner) *GapReportHandler {
	return &GapReportHandler{
		scanner: scanner,
	}
}

// GetCoverageGaps handles GET /api/admin/coverage-gaps?include_inactive=
func (h *GapReportHandler) GetCoverageGaps(w http.ResponseWriter, r *http.Request) {
	scope := services.ScanScope{}
	if raw := r.URL.Query().Get("include_inactive"); raw != "" {
		includeInactive, err := strconv.ParseBool(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "include_inactive must be a boolean")
			return
		}
		scope.IncludeInactiveVehicles = includeInactive
	}

	report, err := h.scanner.ScanFleet(r.Context(), scope)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, report)
}
