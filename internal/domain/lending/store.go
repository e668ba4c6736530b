package lending

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"library-lending/internal/domain/book"
	"library-lending/internal/domain/customer"
)

// Store is the single persistence port for the lending core. Methods taking
// a pgx.Tx participate in a caller-managed transaction so the availability
// flip and the loan write commit or roll back together.
type Store interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)

	CommitTx(ctx context.Context, tx pgx.Tx) error

	RollbackTx(ctx context.Context, tx pgx.Tx) error

	GetBook(ctx context.Context, bookID uuid.UUID) (*book.Book, error)

	GetCustomer(ctx context.Context, customerID uuid.UUID) (*customer.Customer, error)

	// AcquireBookInTx flips is_available true -> false as a compare-and-swap.
	// Returns apperrors.ErrNotFound if the book row does not exist and
	// apperrors.ErrConflict if the book is already on loan.
	AcquireBookInTx(ctx context.Context, tx pgx.Tx, bookID uuid.UUID) error

	// ReleaseBookInTx flips is_available back to true. Releasing a book that
	// is already available is a no-op, not an error.
	ReleaseBookInTx(ctx context.Context, tx pgx.Tx, bookID uuid.UUID) error

	CreateTransactionInTx(ctx context.Context, tx pgx.Tx, txn *Transaction) error

	// SetReturnDateInTx closes an open loan. The update is guarded on
	// return_date IS NULL; zero affected rows surface as apperrors.ErrNotFound.
	SetReturnDateInTx(ctx context.Context, tx pgx.Tx, txn *Transaction) error

	// FindForBookForUpdate returns all loans referencing the book, earliest
	// borrow date first (transaction id as tie-break), locking the rows for
	// the duration of the transaction.
	FindForBookForUpdate(ctx context.Context, tx pgx.Tx, bookID uuid.UUID) ([]Transaction, error)

	FindByID(ctx context.Context, transactionID uuid.UUID) (*Transaction, error)

	FindForCustomer(ctx context.Context, customerID uuid.UUID, page, size int, sortColumn string) ([]Transaction, int64, error)

	CountOpenLoans(ctx context.Context) (int64, error)

	// FindAvailabilityMismatches returns book ids whose availability flag
	// disagrees with the presence of an open loan.
	FindAvailabilityMismatches(ctx context.Context) ([]uuid.UUID, error)
}
