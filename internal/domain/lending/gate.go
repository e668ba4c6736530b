package lending

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"library-lending/internal/pkg/apperrors"
)

// AvailabilityGate is the per-book state machine Available <-> OnLoan. Its
// state is physically the is_available column; both transitions run as
// compare-and-swap updates on the caller's transaction, so there is no
// separate in-memory state to drift.
type AvailabilityGate struct {
	store  Store
	logger *slog.Logger
}

func NewAvailabilityGate(store Store, logger *slog.Logger) *AvailabilityGate {
	if store == nil {
		panic("store cannot be nil for AvailabilityGate")
	}
	return &AvailabilityGate{
		store:  store,
		logger: logger.With("component", "AvailabilityGate"),
	}
}

// TryAcquire moves the book Available -> OnLoan. It fails with
// ErrBookUnavailable when the book is already on loan and ErrBookNotFound
// when the id does not exist.
func (g *AvailabilityGate) TryAcquire(ctx context.Context, tx pgx.Tx, bookID uuid.UUID) error {
	err := g.store.AcquireBookInTx(ctx, tx, bookID)
	if err == nil {
		g.logger.DebugContext(ctx, "Acquired book", "book_id", bookID)
		return nil
	}

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return fmt.Errorf("%w: %s", ErrBookNotFound, bookID)
	case errors.Is(err, apperrors.ErrConflict):
		return fmt.Errorf("%w: %s", ErrBookUnavailable, bookID)
	default:
		return err
	}
}

// Release moves the book OnLoan -> Available. Calling it on a book that is
// already available is tolerated as a no-op so duplicate return calls
// cannot corrupt state.
func (g *AvailabilityGate) Release(ctx context.Context, tx pgx.Tx, bookID uuid.UUID) error {
	err := g.store.ReleaseBookInTx(ctx, tx, bookID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrBookNotFound, bookID)
		}
		return err
	}
	g.logger.DebugContext(ctx, "Released book", "book_id", bookID)
	return nil
}
