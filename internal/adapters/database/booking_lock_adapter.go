package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/fleetshare/coverage-engine/internal/domain/entities"
	"github.com/fleetshare/coverage-engine/internal/domain/providers"
	"github.com/fleetshare/coverage-engine/internal/infrastructure/clients/postgres"
	apperrors "github.com/fleetshare/coverage-engine/pkg/errors"
)

// terminalBookingStatuses never block a coverage change
var terminalBookingStatuses = []string{"COMPLETED", "CANCELLED", "REJECTED", "EXPIRED"}

// BookingLockAdapter implements BookingLockOracle over the bookings table.
// It reads through the transaction carried by ctx, so inside a toggle it
// observes the same snapshot as the operator row lock.
type BookingLockAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewBookingLockAdapter creates a new booking lock adapter
func NewBookingLockAdapter(client *postgres.Client) providers.BookingLockOracle {
	return &BookingLockAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// CountBlockingBookings counts the operator's non-terminal bookings that have
// not ended by asOf
func (a *BookingLockAdapter) CountBlockingBookings(ctx context.Context, operatorID string, asOf time.Time) (entities.BlockingBookings, error) {
	query, args, err := a.db.Select(
		goqu.COUNT("*"),
		goqu.MAX("end_date"),
	).From("bookings").
		Where(
			goqu.C("operator_id").Eq(operatorID),
			goqu.C("status").NotIn(terminalBookingStatuses),
			goqu.C("end_date").Gte(asOf.UTC()),
		).
		ToSQL()
	if err != nil {
		return entities.BlockingBookings{}, apperrors.NewInternalError("failed to build query", err)
	}

	var count int
	var latest sql.NullTime
	if err := a.client.Querier(ctx).QueryRowContext(ctx, query, args...).Scan(&count, &latest); err != nil {
		return entities.BlockingBookings{}, apperrors.NewInternalError("failed to count blocking bookings", err)
	}

	result := entities.BlockingBookings{Count: count}
	if latest.Valid {
		end := latest.Time.UTC()
		result.LatestEndDate = &end
	}
	return result, nil
}
