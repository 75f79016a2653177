package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fleetshare/coverage-engine/internal/domain/entities"
	"github.com/fleetshare/coverage-engine/internal/domain/providers"
	"github.com/fleetshare/coverage-engine/internal/domain/repositories"
	"github.com/fleetshare/coverage-engine/internal/infrastructure/observability"
	apperrors "github.com/fleetshare/coverage-engine/pkg/errors"
)

// Rejection reasons reported by ToggleCoverage
const (
	ReasonOperatorRequired     = "OPERATOR_REQUIRED"
	ReasonOperatorNotFound     = "OPERATOR_NOT_FOUND"
	ReasonAccountBlocked       = "ACCOUNT_BLOCKED"
	ReasonInvalidTier          = "INVALID_TIER"
	ReasonAlreadyActive        = "ALREADY_ACTIVE"
	ReasonInsuranceMissing     = "INSURANCE_MISSING"
	ReasonInsuranceNotApproved = "INSURANCE_NOT_APPROVED"
	ReasonProviderUnavailable  = "PROVIDER_UNAVAILABLE"
	ReasonBookingsInFlight     = "BOOKINGS_IN_FLIGHT"
)

const auditEntityOperator = "operator"

// TierToggleService moves operators between the two coverage tiers
type TierToggleService struct {
	operators repositories.OperatorRepository
	providers repositories.ProviderRepository
	bookings  providers.BookingLockOracle
	audit     providers.AuditSink
	notifier  providers.NotificationSink
	metrics   *observability.Metrics
	now       func() time.Time
	newID     func() string
}

// NewTierToggleService creates a new tier toggle service
func NewTierToggleService(
	operators repositories.OperatorRepository,
	providerRepo repositories.ProviderRepository,
	bookings providers.BookingLockOracle,
	audit providers.AuditSink,
	notifier providers.NotificationSink,
) *TierToggleService {
	return &TierToggleService{
		operators: operators,
		providers: providerRepo,
		bookings:  bookings,
		audit:     audit,
		notifier:  notifier,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// SetMetrics sets the metrics the service reports to
func (s *TierToggleService) SetMetrics(metrics *observability.Metrics) {
	s.metrics = metrics
}

// ToggleCoverage activates target for the operator and deactivates the other
// tier. Every precondition is checked under the operator's row lock, in the
// same transaction as the write; a rejected or failed toggle leaves the
// operator unchanged.
func (s *TierToggleService) ToggleCoverage(
	ctx context.Context,
	operatorID string,
	target entities.CoverageTier,
	actor entities.Actor,
) (*entities.ToggleResult, error) {
	ctx, span := observability.StartSpan(ctx, "TierToggleService.ToggleCoverage",
		attribute.String("operator.id", operatorID),
		attribute.String("coverage.tier", string(target)))
	defer span.End()

	logger := observability.LoggerFromContext(ctx).With().
		Str("operator_id", operatorID).
		Str("target_tier", string(target)).
		Str("actor_id", actor.ID).
		Logger()

	if operatorID == "" {
		err := apperrors.NewValidationError(ReasonOperatorRequired, "operator id is required")
		s.recordOutcome(ctx, target, err)
		return nil, err
	}

	var result *entities.ToggleResult
	err := s.operators.WithOperatorLock(ctx, operatorID, func(ctx context.Context, tx repositories.OperatorTx) error {
		op := tx.Operator()

		if err := op.CheckExclusive(); err != nil {
			logger.Error().Err(err).
				Str("p2p_status", string(op.P2P.Status)).
				Str("commercial_status", string(op.Commercial.Status)).
				Msg("INVARIANT VIOLATION: operator has two active coverage slots; refusing to toggle")
			return apperrors.NewInvariantError(err.Error())
		}
		if !op.DerivedFieldsMatch() {
			logger.Error().
				Str("earnings_tier", string(op.EarningsTier)).
				Str("commission_rate", op.CommissionRate.String()).
				Str("state", string(op.State())).
				Msg("stored earnings tier does not match the tier table")
		}

		catalog, err := s.checkPreconditions(ctx, op, target)
		if err != nil {
			return err
		}

		change := s.apply(op, target, actor)
		if err := tx.Save(ctx, op); err != nil {
			return err
		}

		result = buildToggleResult(op, target, catalog, change)
		return nil
	})
	if err != nil {
		err = classifyToggleError(err)
		observability.RecordError(span, err)
		s.recordOutcome(ctx, target, err)
		logger.Info().Err(err).Msg("coverage tier toggle rejected")
		return nil, err
	}

	s.recordOutcome(ctx, target, nil)
	logger.Info().
		Str("from_tier", string(result.Change.FromTier)).
		Str("to_tier", string(result.Change.ToTier)).
		Str("previous_commission", result.Change.PreviousCommission.String()).
		Str("new_commission", result.Change.NewCommission.String()).
		Msg("coverage tier toggled")

	s.emit(ctx, operatorID, actor, result)
	return result, nil
}

// checkPreconditions runs the ordered precondition chain and returns the
// catalog snapshot it consulted
func (s *TierToggleService) checkPreconditions(
	ctx context.Context,
	op *entities.Operator,
	target entities.CoverageTier,
) (*ProviderCatalog, error) {
	if op.Standing.Blocked() {
		return nil, apperrors.NewPreconditionError(ReasonAccountBlocked,
			fmt.Sprintf("account standing %s does not allow coverage changes", op.Standing)).
			WithDetail("accountStanding", op.Standing)
	}

	if !target.Valid() {
		return nil, apperrors.NewValidationError(ReasonInvalidTier,
			fmt.Sprintf("invalid coverage tier %q, expected %s or %s", target, entities.TierP2P, entities.TierCommercial))
	}

	slot := op.Slot(target)
	if slot.Status == entities.SlotStatusActive {
		return nil, apperrors.NewPreconditionError(ReasonAlreadyActive,
			fmt.Sprintf("%s coverage is already active", target)).
			WithDetail("tier", target)
	}
	if !slot.OnFile() {
		return nil, apperrors.NewPreconditionError(ReasonInsuranceMissing,
			fmt.Sprintf("no %s insurance policy is on file", target)).
			WithDetail("tier", target)
	}
	if !slot.Switchable() {
		return nil, apperrors.NewPreconditionError(ReasonInsuranceNotApproved,
			fmt.Sprintf("%s insurance is %s and cannot be activated", target, slot.Status)).
			WithDetail("tier", target).
			WithDetail("status", slot.Status)
	}

	catalog, err := LoadProviderCatalog(ctx, s.providers)
	if err != nil {
		return nil, apperrors.NewDataAccessError("list active providers", err)
	}
	if catalog.Get(slot.ProviderID) == nil {
		return nil, apperrors.NewPreconditionError(ReasonProviderUnavailable,
			fmt.Sprintf("insurance provider %s is not active", slot.ProviderID)).
			WithDetail("providerId", slot.ProviderID)
	}

	blocking, err := s.bookings.CountBlockingBookings(ctx, op.ID, s.now())
	if err != nil {
		return nil, apperrors.NewDataAccessError("count blocking bookings", err)
	}
	if blocking.Count > 0 {
		rejection := apperrors.NewPreconditionError(ReasonBookingsInFlight,
			fmt.Sprintf("%d active or upcoming booking(s) must finish before switching coverage", blocking.Count)).
			WithDetail("blockingBookings", blocking.Count)
		if blocking.LatestEndDate != nil {
			rejection.WithDetail("eligibleAfter", blocking.LatestEndDate.UTC().Format(time.RFC3339))
		}
		return nil, rejection
	}

	return catalog, nil
}

// apply mutates the locked operator in memory. Activating one slot and
// deactivating the other happen together here and nowhere else.
func (s *TierToggleService) apply(op *entities.Operator, target entities.CoverageTier, actor entities.Actor) entities.TierChange {
	fromState := op.State()
	fromTier := op.EarningsTier
	previousCommission := op.CommissionRate

	other := op.Slot(otherTier(target))
	if other.Status == entities.SlotStatusActive {
		other.Status = entities.SlotStatusInactive
	}
	op.Slot(target).Status = entities.SlotStatusActive

	toState := entities.StateForTier(target)
	terms := entities.TermsFor(toState)
	op.EarningsTier = terms.EarningsTier
	op.CommissionRate = terms.CommissionRate

	action := entities.ActionTierSwitched
	if fromState == entities.StateNoCoverage {
		action = entities.ActionTierActivated
	}

	change := entities.TierChange{
		ID:                 s.newID(),
		Action:             action,
		FromTier:           fromTier,
		ToTier:             terms.EarningsTier,
		FromState:          fromState,
		ToState:            toState,
		PreviousCommission: previousCommission,
		NewCommission:      terms.CommissionRate,
		ChangedAt:          s.now().UTC(),
		ActorID:            actor.ID,
		ActorType:          actor.Type,
	}
	op.TierHistory = append(op.TierHistory, change)
	return change
}

// emit records the audit entry and the operator notification. The toggle has
// already committed; failures here are logged and dropped.
func (s *TierToggleService) emit(ctx context.Context, operatorID string, actor entities.Actor, result *entities.ToggleResult) {
	logger := observability.LoggerFromContext(ctx)
	change := result.Change

	if s.audit != nil {
		record := &entities.AuditRecord{
			ID:         s.newID(),
			EntityType: auditEntityOperator,
			EntityID:   operatorID,
			Action:     string(change.Action),
			ActorID:    actor.ID,
			Metadata: map[string]interface{}{
				"change_id":           change.ID,
				"from_tier":           change.FromTier,
				"to_tier":             change.ToTier,
				"from_state":          change.FromState,
				"to_state":            change.ToState,
				"previous_commission": change.PreviousCommission.String(),
				"new_commission":      change.NewCommission.String(),
				"actor_type":          actor.Type,
			},
			CreatedAt: change.ChangedAt,
		}
		if err := s.audit.Record(ctx, record); err != nil {
			logger.Warn().Err(err).Str("operator_id", operatorID).Msg("failed to record coverage toggle audit entry")
		}
	}

	if s.notifier != nil {
		notification := &entities.Notification{
			ID:         s.newID(),
			OperatorID: operatorID,
			Category:   entities.NotificationCoverageTierChanged,
			Subject:    fmt.Sprintf("Your coverage is now %s", result.NewTier),
			Body: fmt.Sprintf("Your fleet is now on the %s earnings tier. You keep %s%% of each booking (platform commission %s%%).",
				result.EarningsTier,
				result.HostEarningsFraction.Shift(2).StringFixed(0),
				result.PlatformCommissionFraction.Shift(2).StringFixed(0)),
			Status:    entities.NotificationStatusPending,
			CreatedAt: change.ChangedAt,
		}
		if err := s.notifier.Notify(ctx, notification); err != nil {
			logger.Warn().Err(err).Str("operator_id", operatorID).Msg("failed to record coverage toggle notification")
		}
	}
}

func (s *TierToggleService) recordOutcome(ctx context.Context, target entities.CoverageTier, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
		if appErr, ok := apperrors.As(err); ok {
			outcome = string(appErr.Type)
			if appErr.Reason != "" {
				outcome = appErr.Reason
			}
		}
	}
	observability.RecordToggle(ctx, s.metrics, string(target), outcome)
}

// classifyToggleError maps store errors onto the toggle's taxonomy
func classifyToggleError(err error) error {
	appErr, ok := apperrors.As(err)
	if !ok {
		return apperrors.NewDataAccessError("toggle coverage", err)
	}
	switch appErr.Type {
	case apperrors.ErrorTypeNotFound:
		return apperrors.NewValidationError(ReasonOperatorNotFound, appErr.Message)
	case apperrors.ErrorTypeInternal:
		return apperrors.NewDataAccessError("toggle coverage", appErr)
	}
	return appErr
}

func buildToggleResult(
	op *entities.Operator,
	target entities.CoverageTier,
	catalog *ProviderCatalog,
	change entities.TierChange,
) *entities.ToggleResult {
	terms := entities.TermsFor(op.State())
	return &entities.ToggleResult{
		OperatorID:                 op.ID,
		NewTier:                    target,
		State:                      op.State(),
		EarningsTier:               terms.EarningsTier,
		PlatformCommissionFraction: terms.CommissionRate,
		HostEarningsFraction:       terms.HostEarnings(),
		P2PSlot:                    slotView(op.P2P, catalog),
		CommercialSlot:             slotView(op.Commercial, catalog),
		Change:                     change,
	}
}

func slotView(slot entities.CoverageSlot, catalog *ProviderCatalog) entities.SlotView {
	view := entities.SlotView{Status: slot.Status, PolicyNumber: slot.PolicyNumber}
	if slot.ProviderID == "" {
		return view
	}
	if p := catalog.Get(slot.ProviderID); p != nil {
		view.Provider = p.Ref()
	} else {
		view.Provider = &entities.ProviderRef{ID: slot.ProviderID}
	}
	return view
}

func otherTier(tier entities.CoverageTier) entities.CoverageTier {
	if tier == entities.TierCommercial {
		return entities.TierP2P
	}
	return entities.TierCommercial
}
