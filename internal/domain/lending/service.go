package lending

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"library-lending/internal/domain/book"
	"library-lending/internal/domain/customer"
	"library-lending/internal/event"
	"library-lending/internal/infrastructure/monitoring"
	"library-lending/internal/pkg/apperrors"
)

const DefaultOperationTimeout = 5 * time.Second

// Ledger owns the loan lifecycle. Every mutating operation executes the
// availability flip and the transaction write inside one database
// transaction; there is never a committed state where one exists without
// the other.
type Ledger interface {
	CreateLoan(ctx context.Context, borrowDate, dueDate time.Time, customerID, bookID uuid.UUID) (*Transaction, error)

	BorrowNow(ctx context.Context, customerID, bookID uuid.UUID) (*Transaction, error)

	BorrowWithDate(ctx context.Context, customerID, bookID uuid.UUID, borrowDate time.Time) (*Transaction, error)

	ReturnByBook(ctx context.Context, bookID uuid.UUID) (uuid.UUID, error)

	ReturnWithDate(ctx context.Context, bookID uuid.UUID, returnDate time.Time) error
}

type ledgerService struct {
	store     Store
	gate      *AvailabilityGate
	publisher event.Publisher
	logger    *slog.Logger
	opTimeout time.Duration
}

var _ Ledger = (*ledgerService)(nil)

func NewLedgerService(store Store, gate *AvailabilityGate, publisher event.Publisher, logger *slog.Logger, opTimeout time.Duration) Ledger {
	if store == nil {
		panic("store cannot be nil for LedgerService")
	}
	if gate == nil {
		panic("availability gate cannot be nil for LedgerService")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewLedgerService, using default stderr handler")
	}
	if publisher == nil {
		publisher = event.NoopPublisher{}
	}
	if opTimeout <= 0 {
		opTimeout = DefaultOperationTimeout
	}
	return &ledgerService{
		store:     store,
		gate:      gate,
		publisher: publisher,
		logger:    logger.With(slog.String("component", "LedgerService")),
		opTimeout: opTimeout,
	}
}

func (s *ledgerService) CreateLoan(ctx context.Context, borrowDate, dueDate time.Time, customerID, bookID uuid.UUID) (*Transaction, error) {
	s.logger.InfoContext(ctx, "Creating loan", "customer_id", customerID, "book_id", bookID)

	borrowDate = Midnight(borrowDate)
	dueDate = Midnight(dueDate)
	if borrowDate.After(dueDate) {
		return nil, fmt.Errorf("%w: borrow %s, due %s",
			ErrInvalidDateRange, borrowDate.Format(time.DateOnly), dueDate.Format(time.DateOnly))
	}
	if dueDate.Before(Midnight(time.Now())) {
		return nil, fmt.Errorf("%w: due %s", ErrDueDateInPast, dueDate.Format(time.DateOnly))
	}

	return s.openLoan(ctx, customerID, bookID, borrowDate, dueDate)
}

func (s *ledgerService) BorrowNow(ctx context.Context, customerID, bookID uuid.UUID) (*Transaction, error) {
	s.logger.InfoContext(ctx, "Borrowing book", "customer_id", customerID, "book_id", bookID)

	today := Midnight(time.Now())
	return s.openLoan(ctx, customerID, bookID, today, today.AddDate(0, 0, LoanPeriodDays))
}

func (s *ledgerService) BorrowWithDate(ctx context.Context, customerID, bookID uuid.UUID, borrowDate time.Time) (*Transaction, error) {
	s.logger.InfoContext(ctx, "Borrowing book with explicit date",
		"customer_id", customerID, "book_id", bookID, "borrow_date", borrowDate.Format(time.DateOnly))

	// Backdated administrative path: the borrow date is taken as given and
	// deliberately not validated against today.
	borrowDate = Midnight(borrowDate)
	return s.openLoan(ctx, customerID, bookID, borrowDate, borrowDate.AddDate(0, 0, LoanPeriodDays))
}

// openLoan is the single loan-creating path: resolve both parties, check
// privileges, then acquire the gate and insert the loan atomically.
func (s *ledgerService) openLoan(ctx context.Context, customerID, bookID uuid.UUID, borrowDate, dueDate time.Time) (txn *Transaction, err error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	defer func() {
		monitoring.RecordBorrow(borrowOutcome(err))
	}()

	bk, err := s.resolveBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if !bk.IsAvailable {
		s.logger.WarnContext(ctx, "Book is not available", "book_id", bookID)
		return nil, fmt.Errorf("%w: %s", ErrBookUnavailable, bookID)
	}

	cust, err := s.resolveCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if !cust.Privileges {
		s.logger.WarnContext(ctx, "Customer lacks borrowing privileges", "customer_id", customerID)
		return nil, fmt.Errorf("%w: %s", ErrNoBorrowingPrivilege, customerID)
	}

	txn, err = NewTransaction(borrowDate, dueDate, cust, bk)
	if err != nil {
		return nil, err
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, s.asContention(ctx, err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = s.store.RollbackTx(ctx, tx)
			panic(p)
		}
		if err != nil {
			_ = s.store.RollbackTx(ctx, tx)
		}
	}()

	if err = s.gate.TryAcquire(ctx, tx, bookID); err != nil {
		s.logger.WarnContext(ctx, "Failed to acquire availability gate", "book_id", bookID, "error", err)
		return nil, s.asContention(ctx, err)
	}

	if err = s.store.CreateTransactionInTx(ctx, tx, txn); err != nil {
		s.logger.ErrorContext(ctx, "Failed to persist transaction", "error", err)
		return nil, s.asContention(ctx, err)
	}

	if err = s.store.CommitTx(ctx, tx); err != nil {
		return nil, s.asContention(ctx, err)
	}

	txn.Book.IsAvailable = false
	s.logger.InfoContext(ctx, "Loan created",
		"transaction_id", txn.TransactionID, "customer_id", customerID, "book_id", bookID,
		"due_date", txn.DueDate.Format(time.DateOnly))

	s.publishBorrowed(ctx, txn)
	return txn, nil
}

func (s *ledgerService) ReturnByBook(ctx context.Context, bookID uuid.UUID) (id uuid.UUID, err error) {
	s.logger.InfoContext(ctx, "Returning book", "book_id", bookID)

	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	defer func() {
		monitoring.RecordReturn(returnOutcome(err))
	}()

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return uuid.Nil, s.asContention(ctx, err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = s.store.RollbackTx(ctx, tx)
			panic(p)
		}
		if err != nil {
			_ = s.store.RollbackTx(ctx, tx)
		}
	}()

	loans, err := s.store.FindForBookForUpdate(ctx, tx, bookID)
	if err != nil {
		return uuid.Nil, s.asContention(ctx, err)
	}

	// Earliest open loan by borrow date wins; rows arrive in that order.
	var target *Transaction
	for i := range loans {
		if loans[i].Open() {
			target = &loans[i]
			break
		}
	}
	if target == nil {
		s.logger.WarnContext(ctx, "No open loan for book", "book_id", bookID, "loan_count", len(loans))
		return uuid.Nil, fmt.Errorf("%w: book %s", ErrNoOpenLoan, bookID)
	}

	if err = target.Close(time.Now()); err != nil {
		return uuid.Nil, err
	}
	if err = s.store.SetReturnDateInTx(ctx, tx, target); err != nil {
		return uuid.Nil, s.asContention(ctx, err)
	}
	if err = s.gate.Release(ctx, tx, bookID); err != nil {
		return uuid.Nil, s.asContention(ctx, err)
	}

	if err = s.store.CommitTx(ctx, tx); err != nil {
		return uuid.Nil, s.asContention(ctx, err)
	}

	s.logger.InfoContext(ctx, "Book returned", "transaction_id", target.TransactionID, "book_id", bookID)
	s.publishReturned(ctx, target)
	return target.TransactionID, nil
}

func (s *ledgerService) ReturnWithDate(ctx context.Context, bookID uuid.UUID, returnDate time.Time) (err error) {
	s.logger.InfoContext(ctx, "Returning book with explicit date",
		"book_id", bookID, "return_date", returnDate.Format(time.DateOnly))

	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	defer func() {
		monitoring.RecordReturn(returnOutcome(err))
	}()

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return s.asContention(ctx, err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = s.store.RollbackTx(ctx, tx)
			panic(p)
		}
		if err != nil {
			_ = s.store.RollbackTx(ctx, tx)
		}
	}()

	loans, err := s.store.FindForBookForUpdate(ctx, tx, bookID)
	if err != nil {
		return s.asContention(ctx, err)
	}
	if len(loans) == 0 {
		s.logger.WarnContext(ctx, "No loans recorded for book", "book_id", bookID)
		return fmt.Errorf("%w: book %s has no loans", ErrNoOpenLoan, bookID)
	}

	closed := make([]*Transaction, 0, 1)
	for i := range loans {
		if !loans[i].Open() {
			continue
		}
		if err = loans[i].Close(returnDate); err != nil {
			return err
		}
		if err = s.store.SetReturnDateInTx(ctx, tx, &loans[i]); err != nil {
			return s.asContention(ctx, err)
		}
		if err = s.gate.Release(ctx, tx, bookID); err != nil {
			return s.asContention(ctx, err)
		}
		closed = append(closed, &loans[i])
	}

	if err = s.store.CommitTx(ctx, tx); err != nil {
		return s.asContention(ctx, err)
	}

	s.logger.InfoContext(ctx, "Bulk return completed", "book_id", bookID, "closed", len(closed))
	for _, txn := range closed {
		s.publishReturned(ctx, txn)
	}
	return nil
}

func (s *ledgerService) resolveBook(ctx context.Context, bookID uuid.UUID) (*book.Book, error) {
	bk, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Book not found", "book_id", bookID)
			return nil, fmt.Errorf("%w: %s", ErrBookNotFound, bookID)
		}
		s.logger.ErrorContext(ctx, "Failed to resolve book", "book_id", bookID, "error", err)
		return nil, fmt.Errorf("failed to resolve book %s: %w", bookID, err)
	}
	return bk, nil
}

func (s *ledgerService) resolveCustomer(ctx context.Context, customerID uuid.UUID) (*customer.Customer, error) {
	cust, err := s.store.GetCustomer(ctx, customerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Customer not found", "customer_id", customerID)
			return nil, fmt.Errorf("%w: %s", ErrCustomerNotFound, customerID)
		}
		s.logger.ErrorContext(ctx, "Failed to resolve customer", "customer_id", customerID, "error", err)
		return nil, fmt.Errorf("failed to resolve customer %s: %w", customerID, err)
	}
	return cust, nil
}

// asContention maps deadline expiry to the retryable contention error;
// serialization and lock conflicts are already translated by the store.
func (s *ledgerService) asContention(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, ErrContention) {
		return fmt.Errorf("%w: %v", ErrContention, err)
	}
	return err
}

func (s *ledgerService) publishBorrowed(ctx context.Context, txn *Transaction) {
	evt := event.BookBorrowedEvent{
		TransactionID: txn.TransactionID,
		CustomerID:    txn.CustomerID,
		BookID:        txn.BookID,
		BorrowDate:    txn.BorrowDate,
		DueDate:       txn.DueDate,
		Timestamp:     time.Now(),
	}
	if err := s.publisher.PublishBookBorrowed(ctx, evt); err != nil {
		s.logger.ErrorContext(ctx, "Loan committed but borrow event publish failed",
			"transaction_id", txn.TransactionID, "error", err)
	}
}

func (s *ledgerService) publishReturned(ctx context.Context, txn *Transaction) {
	evt := event.BookReturnedEvent{
		TransactionID: txn.TransactionID,
		CustomerID:    txn.CustomerID,
		BookID:        txn.BookID,
		ReturnDate:    *txn.ReturnDate,
		Timestamp:     time.Now(),
	}
	if err := s.publisher.PublishBookReturned(ctx, evt); err != nil {
		s.logger.ErrorContext(ctx, "Return committed but return event publish failed",
			"transaction_id", txn.TransactionID, "error", err)
	}
}

func borrowOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrBookUnavailable):
		return "failure_unavailable"
	case errors.Is(err, ErrNoBorrowingPrivilege):
		return "failure_privilege"
	case errors.Is(err, ErrBookNotFound), errors.Is(err, ErrCustomerNotFound):
		return "failure_not_found"
	case errors.Is(err, ErrInvalidDateRange), errors.Is(err, ErrDueDateInPast):
		return "failure_dates"
	case errors.Is(err, ErrContention):
		return "failure_contention"
	default:
		return "failure_internal"
	}
}

func returnOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrNoOpenLoan):
		return "failure_no_open_loan"
	case errors.Is(err, ErrContention):
		return "failure_contention"
	default:
		return "failure_internal"
	}
}
