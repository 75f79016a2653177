package services_test

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/fleetshare/coverage-engine/internal/domain/entities"
	"github.com/fleetshare/coverage-engine/internal/domain/repositories"
	apperrors "github.com/fleetshare/coverage-engine/pkg/errors"
)

// Mocks

type MockProviderRepository struct {
	mock.Mock
}

func (m *MockProviderRepository) ListActive(ctx context.Context) ([]*entities.InsuranceProvider, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.InsuranceProvider), args.Error(1)
}

type MockFleetRepository struct {
	mock.Mock
}

func (m *MockFleetRepository) ListFleetVehicles(ctx context.Context, filter repositories.FleetFilter) ([]*entities.FleetVehicle, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.FleetVehicle), args.Error(1)
}

func (m *MockFleetRepository) ListOverrides(ctx context.Context, operatorID string) ([]*entities.CoverageOverride, error) {
	args := m.Called(ctx, operatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.CoverageOverride), args.Error(1)
}

func (m *MockFleetRepository) GetOperator(ctx context.Context, operatorID string) (*entities.Operator, error) {
	args := m.Called(ctx, operatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Operator), args.Error(1)
}

type MockBookingLockOracle struct {
	mock.Mock
}

func (m *MockBookingLockOracle) CountBlockingBookings(ctx context.Context, operatorID string, asOf time.Time) (entities.BlockingBookings, error) {
	args := m.Called(ctx, operatorID, asOf)
	return args.Get(0).(entities.BlockingBookings), args.Error(1)
}

type MockAuditSink struct {
	mock.Mock
}

func (m *MockAuditSink) Record(ctx context.Context, record *entities.AuditRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

type MockNotificationSink struct {
	mock.Mock
}

func (m *MockNotificationSink) Notify(ctx context.Context, notification *entities.Notification) error {
	args := m.Called(ctx, notification)
	return args.Error(0)
}

// fakeOperatorStore is an in-memory OperatorRepository. Changes made inside
// the lock are applied to a copy and only published when fn succeeds, the
// way a rolled back transaction leaves the row untouched.
type fakeOperatorStore struct {
	operators map[string]*entities.Operator
	saveErr   error
	saves     int
}

func newFakeOperatorStore(ops ...*entities.Operator) *fakeOperatorStore {
	store := &fakeOperatorStore{operators: make(map[string]*entities.Operator)}
	for _, op := range ops {
		store.operators[op.ID] = op
	}
	return store
}

func (s *fakeOperatorStore) WithOperatorLock(ctx context.Context, operatorID string, fn func(ctx context.Context, tx repositories.OperatorTx) error) error {
	stored, ok := s.operators[operatorID]
	if !ok {
		return apperrors.NewNotFoundError("operator " + operatorID + " not found")
	}
	working := cloneOperator(stored)
	tx := &fakeOperatorTx{store: s, op: working}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if tx.saved != nil {
		s.operators[operatorID] = tx.saved
	}
	return nil
}

func (s *fakeOperatorStore) get(id string) *entities.Operator {
	return s.operators[id]
}

type fakeOperatorTx struct {
	store *fakeOperatorStore
	op    *entities.Operator
	saved *entities.Operator
}

func (t *fakeOperatorTx) Operator() *entities.Operator {
	return t.op
}

func (t *fakeOperatorTx) Save(ctx context.Context, op *entities.Operator) error {
	t.store.saves++
	if t.store.saveErr != nil {
		return t.store.saveErr
	}
	saved := cloneOperator(op)
	saved.Version++
	t.saved = saved
	return nil
}

func cloneOperator(op *entities.Operator) *entities.Operator {
	c := *op
	c.TierHistory = append([]entities.TierChange(nil), op.TierHistory...)
	return &c
}

// Fixtures

func dec(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func newProvider(id, name string, min, max *decimal.Decimal, excludedMakes ...string) *entities.InsuranceProvider {
	return &entities.InsuranceProvider{
		ID:       id,
		Name:     name,
		Type:     "commercial",
		IsActive: true,
		Rules: entities.EligibilityRules{
			VehicleValueMin: min,
			VehicleValueMax: max,
			ExcludedMakes:   entities.NewStringSet(excludedMakes...),
			ExcludedModels:  entities.NewStringSet(),
		},
	}
}

func newVehicle(id, operatorID, vehicleMake string, value int64) *entities.Vehicle {
	return &entities.Vehicle{
		ID:            id,
		OperatorID:    operatorID,
		Make:          vehicleMake,
		Model:         "Model " + id,
		Year:          2022,
		IsActive:      true,
		ValueEstimate: dec(value),
		DailyRate:     decimal.NewFromInt(90),
	}
}

func newFleetVehicle(id, operatorID, providerID, vehicleMake string, value int64) *entities.FleetVehicle {
	return &entities.FleetVehicle{
		Vehicle:            *newVehicle(id, operatorID, vehicleMake, value),
		OperatorName:       "Operator " + operatorID,
		AssignedProviderID: providerID,
	}
}
