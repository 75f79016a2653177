package repositories

import (
	"context"

	"github.com/fleetshare/coverage-engine/internal/domain/entities"
)

// OperatorTx is the locked unit of work over one operator row
type OperatorTx interface {
	// Operator returns the row as read under the lock
	Operator() *entities.Operator

	// Save writes the operator back, guarded by the version read under the lock
	Save(ctx context.Context, operator *entities.Operator) error
}

// OperatorRepository guards the only mutable resource of the engine
type OperatorRepository interface {
	// WithOperatorLock runs fn inside one transaction holding a row lock on
	// the operator. The transaction commits when fn returns nil and rolls
	// back otherwise. ctx passed to fn carries the transaction so that
	// collaborators reading through it observe the same snapshot.
	WithOperatorLock(ctx context.Context, operatorID string, fn func(ctx context.Context, tx OperatorTx) error) error
}
