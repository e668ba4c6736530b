package lending

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"library-lending/internal/pkg/apperrors"
)

func TestGateTryAcquire_Success(t *testing.T) {
	mockStore := new(MockStore)
	gate := NewAvailabilityGate(mockStore, logger)
	ctx := context.Background()
	bookID := uuid.New()

	mockStore.On("AcquireBookInTx", ctx, tx, bookID).Return(nil)

	err := gate.TryAcquire(ctx, tx, bookID)

	assert.NoError(t, err)
	mockStore.AssertExpectations(t)
}

func TestGateTryAcquire_BookNotFound(t *testing.T) {
	mockStore := new(MockStore)
	gate := NewAvailabilityGate(mockStore, logger)
	ctx := context.Background()
	bookID := uuid.New()

	mockStore.On("AcquireBookInTx", ctx, tx, bookID).Return(apperrors.ErrNotFound)

	err := gate.TryAcquire(ctx, tx, bookID)

	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestGateTryAcquire_AlreadyOnLoan(t *testing.T) {
	mockStore := new(MockStore)
	gate := NewAvailabilityGate(mockStore, logger)
	ctx := context.Background()
	bookID := uuid.New()

	mockStore.On("AcquireBookInTx", ctx, tx, bookID).
		Return(fmt.Errorf("%w: book %s is on loan", apperrors.ErrConflict, bookID))

	err := gate.TryAcquire(ctx, tx, bookID)

	assert.ErrorIs(t, err, ErrBookUnavailable)
}

func TestGateTryAcquire_PassesThroughUnknownErrors(t *testing.T) {
	mockStore := new(MockStore)
	gate := NewAvailabilityGate(mockStore, logger)
	ctx := context.Background()
	bookID := uuid.New()

	dbErr := fmt.Errorf("%w: boom", apperrors.ErrDatabase)
	mockStore.On("AcquireBookInTx", ctx, tx, bookID).Return(dbErr)

	err := gate.TryAcquire(ctx, tx, bookID)

	assert.ErrorIs(t, err, apperrors.ErrDatabase)
	assert.NotErrorIs(t, err, ErrBookUnavailable)
}

func TestGateRelease_Success(t *testing.T) {
	mockStore := new(MockStore)
	gate := NewAvailabilityGate(mockStore, logger)
	ctx := context.Background()
	bookID := uuid.New()

	mockStore.On("ReleaseBookInTx", ctx, tx, bookID).Return(nil)

	err := gate.Release(ctx, tx, bookID)

	assert.NoError(t, err)
	mockStore.AssertExpectations(t)
}

func TestGateRelease_BookNotFound(t *testing.T) {
	mockStore := new(MockStore)
	gate := NewAvailabilityGate(mockStore, logger)
	ctx := context.Background()
	bookID := uuid.New()

	mockStore.On("ReleaseBookInTx", ctx, tx, bookID).Return(apperrors.ErrNotFound)

	err := gate.Release(ctx, tx, bookID)

	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestNewAvailabilityGate_NilStorePanics(t *testing.T) {
	assert.Panics(t, func() {
		NewAvailabilityGate(nil, logger)
	})
}
