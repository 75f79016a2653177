package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	assert.Equal(t, "NOT_FOUND: operator op-1 not found", NewNotFoundError("operator op-1 not found").Error())
	assert.Equal(t,
		"PRECONDITION(ALREADY_ACTIVE): P2P coverage is already active",
		NewPreconditionError("ALREADY_ACTIVE", "P2P coverage is already active").Error())
	assert.Equal(t,
		"DATA_ACCESS: list active providers failed: connection reset",
		NewDataAccessError("list active providers", errors.New("connection reset")).Error())
}

func TestAs_FindsWrappedAppError(t *testing.T) {
	cause := errors.New("deadlock detected")
	wrapped := fmt.Errorf("toggle: %w", NewDataAccessError("lock operator", cause))

	appErr, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrorTypeDataAccess, appErr.Type)
	assert.ErrorIs(t, wrapped, cause)
	assert.True(t, IsType(wrapped, ErrorTypeDataAccess))
	assert.False(t, IsType(errors.New("plain"), ErrorTypeDataAccess))
}

func TestWithDetail(t *testing.T) {
	err := NewPreconditionError("BOOKINGS_IN_FLIGHT", "operator has bookings in flight").
		WithDetail("blockingBookings", 2).
		WithDetail("eligibleAfter", "2026-11-01T10:00:00Z")

	assert.True(t, HasReason(err, "BOOKINGS_IN_FLIGHT"))
	assert.Equal(t, 2, err.Details["blockingBookings"])
	assert.Equal(t, "2026-11-01T10:00:00Z", err.Details["eligibleAfter"])
}
