package providers

import (
	"context"
	"time"

	"github.com/fleetshare/coverage-engine/internal/domain/entities"
)

// BookingLockOracle answers whether an operator has bookings that would
// cross a coverage transition. It is implemented by the booking subsystem.
type BookingLockOracle interface {
	// CountBlockingBookings counts the operator's bookings with a non-terminal
	// status whose date range has not fully elapsed at asOf
	CountBlockingBookings(ctx context.Context, operatorID string, asOf time.Time) (entities.BlockingBookings, error)
}
