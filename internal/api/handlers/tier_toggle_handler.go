package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/fleetshare/coverage-engine/internal/domain/entities"
)

// Actor headers set by the authenticating gateway
const (
	HeaderActorID   = "X-Actor-ID"
	HeaderActorType = "X-Actor-Type"
)

// TierToggler defines the coverage tier switch
type TierToggler interface {
	ToggleCoverage(ctx context.Context, operatorID string, target entities.CoverageTier, actor entities.Actor) (*entities.ToggleResult, error)
}

// TierToggleHandler handles coverage tier changes
type TierToggleHandler struct {
	service TierToggler
}

// NewTierToggleHandler creates a new tier toggle handler
func NewTierToggleHandler(service TierToggler) *TierToggleHandler {
	return &TierToggleHandler{
		service: service,
	}
}

type toggleRequest struct {
	Tier entities.CoverageTier `json:"tier"`
}

// ToggleTier handles POST /api/operators/{id}/coverage-tier
func (h *TierToggleHandler) ToggleTier(w http.ResponseWriter, r *http.Request) {
	operatorID := r.PathValue("id")
	if operatorID == "" {
		respondWithError(w, http.StatusBadRequest, "operator ID is required")
		return
	}

	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	result, err := h.service.ToggleCoverage(r.Context(), operatorID, entities.CoverageTier(strings.ToUpper(string(req.Tier))), actorFrom(r, operatorID))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// actorFrom reads the acting identity; without headers the operator acts on itself
func actorFrom(r *http.Request, operatorID string) entities.Actor {
	actor := entities.Actor{
		ID:   r.Header.Get(HeaderActorID),
		Type: entities.ActorType(strings.ToUpper(r.Header.Get(HeaderActorType))),
	}
	if actor.ID == "" {
		actor.ID = operatorID
	}
	switch actor.Type {
	case entities.ActorOperator, entities.ActorStaff, entities.ActorSystem:
	default:
		actor.Type = entities.ActorOperator
	}
	return actor
}
