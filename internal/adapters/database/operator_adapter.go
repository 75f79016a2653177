package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/fleetshare/coverage-engine/internal/domain/entities"
	"github.com/fleetshare/coverage-engine/internal/domain/repositories"
	"github.com/fleetshare/coverage-engine/internal/infrastructure/clients/postgres"
	apperrors "github.com/fleetshare/coverage-engine/pkg/errors"
)

var operatorColumns = []interface{}{
	"id", "name", "account_standing",
	"p2p_status", "p2p_provider_id", "p2p_policy_number",
	"commercial_status", "commercial_provider_id", "commercial_policy_number",
	"earnings_tier", "commission_rate", "tier_history",
	"version", "updated_at",
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanOperator reads one row selected with operatorColumns
func scanOperator(row rowScanner) (*entities.Operator, error) {
	op := &entities.Operator{}
	var p2pProvider, p2pPolicy, commercialProvider, commercialPolicy sql.NullString
	var history []byte

	if err := row.Scan(
		&op.ID,
		&op.Name,
		&op.Standing,
		&op.P2P.Status,
		&p2pProvider,
		&p2pPolicy,
		&op.Commercial.Status,
		&commercialProvider,
		&commercialPolicy,
		&op.EarningsTier,
		&op.CommissionRate,
		&history,
		&op.Version,
		&op.UpdatedAt,
	); err != nil {
		return nil, err
	}

	op.P2P.ProviderID = p2pProvider.String
	op.P2P.PolicyNumber = p2pPolicy.String
	op.Commercial.ProviderID = commercialProvider.String
	op.Commercial.PolicyNumber = commercialPolicy.String

	op.TierHistory = []entities.TierChange{}
	if len(history) > 0 {
		if err := json.Unmarshal(history, &op.TierHistory); err != nil {
			return nil, fmt.Errorf("failed to decode tier history: %w", err)
		}
	}

	return op, nil
}

// OperatorAdapter implements OperatorRepository
type OperatorAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewOperatorAdapter creates a new operator adapter
func NewOperatorAdapter(client *postgres.Client) repositories.OperatorRepository {
	return &OperatorAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// WithOperatorLock reads the operator with SELECT ... FOR UPDATE and runs fn
// while the row lock is held
func (a *OperatorAdapter) WithOperatorLock(
	ctx context.Context,
	operatorID string,
	fn func(ctx context.Context, tx repositories.OperatorTx) error,
) error {
	query, args, err := a.db.Select(operatorColumns...).
		From("operators").
		Where(goqu.Ex{"id": operatorID}).
		ForUpdate(exp.Wait).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build query", err)
	}

	return a.client.WithTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		op, err := scanOperator(tx.QueryRowContext(ctx, query, args...))
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NewNotFoundError(fmt.Sprintf("operator with id %s not found", operatorID))
		}
		if err != nil {
			return apperrors.NewInternalError("failed to lock operator", err)
		}

		return fn(ctx, &lockedOperator{adapter: a, tx: tx, op: op})
	})
}

type lockedOperator struct {
	adapter *OperatorAdapter
	tx      *sql.Tx
	op      *entities.Operator
}

func (l *lockedOperator) Operator() *entities.Operator {
	return l.op
}

// Save writes the coverage fields back. The UPDATE is guarded by the version
// read under the lock; zero affected rows means a concurrent writer won.
func (l *lockedOperator) Save(ctx context.Context, op *entities.Operator) error {
	history, err := json.Marshal(op.TierHistory)
	if err != nil {
		return apperrors.NewInternalError("failed to encode tier history", err)
	}

	updatedAt := time.Now().UTC()
	query, args, err := l.adapter.db.Update("operators").
		Set(goqu.Record{
			"p2p_status":        op.P2P.Status,
			"commercial_status": op.Commercial.Status,
			"earnings_tier":     op.EarningsTier,
			"commission_rate":   op.CommissionRate.String(),
			"tier_history":      goqu.L("?::jsonb", string(history)),
			"version":           goqu.L(`"version" + 1`),
			"updated_at":        updatedAt,
		}).
		Where(goqu.Ex{"id": op.ID, "version": op.Version}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := l.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update operator", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewConflictError(fmt.Sprintf("operator %s was modified concurrently", op.ID))
	}

	op.Version++
	op.UpdatedAt = updatedAt
	return nil
}
