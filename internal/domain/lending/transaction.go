package lending

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"library-lending/internal/domain/book"
	"library-lending/internal/domain/customer"
	"library-lending/internal/pkg/apperrors"
)

// LoanPeriodDays is the standard loan period applied by the borrow paths.
const LoanPeriodDays = 14

var (
	ErrBookNotFound = errors.New("book not found")

	ErrCustomerNotFound = errors.New("customer not found")

	ErrBookUnavailable = errors.New("book is not available for borrowing")

	ErrNoBorrowingPrivilege = errors.New("customer does not have borrowing privileges")

	ErrInvalidDateRange = errors.New("borrow date must not be after due date")

	ErrDueDateInPast = errors.New("due date must not be in the past")

	ErrNoOpenLoan = errors.New("no open loan found for the given book")

	ErrContention = errors.New("transient lending conflict, retry the operation")
)

// Transaction is one loan of one book to one customer. ReturnDate nil means
// the loan is open. Customer and Book are snapshots for read paths; the ids
// are authoritative.
type Transaction struct {
	TransactionID uuid.UUID          `json:"transactionId"`
	CustomerID    uuid.UUID          `json:"customerId"`
	BookID        uuid.UUID          `json:"bookId"`
	BorrowDate    time.Time          `json:"borrowDate"`
	DueDate       time.Time          `json:"dueDate"`
	ReturnDate    *time.Time         `json:"returnDate,omitempty"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
	Customer      *customer.Customer `json:"customer,omitempty"`
	Book          *book.Book         `json:"book,omitempty"`
}

func NewTransaction(borrowDate, dueDate time.Time, cust *customer.Customer, bk *book.Book) (*Transaction, error) {
	if cust == nil {
		return nil, fmt.Errorf("%w: customer cannot be nil", apperrors.ErrInvalidArgument)
	}
	if bk == nil {
		return nil, fmt.Errorf("%w: book cannot be nil", apperrors.ErrInvalidArgument)
	}

	borrowDate = Midnight(borrowDate)
	dueDate = Midnight(dueDate)
	if borrowDate.After(dueDate) {
		return nil, fmt.Errorf("%w: borrow %s, due %s",
			ErrInvalidDateRange, borrowDate.Format(time.DateOnly), dueDate.Format(time.DateOnly))
	}

	return &Transaction{
		TransactionID: uuid.New(),
		CustomerID:    cust.CustomerID,
		BookID:        bk.BookID,
		BorrowDate:    borrowDate,
		DueDate:       dueDate,
		Customer:      cust,
		Book:          bk,
	}, nil
}

// Open reports whether the book has not been returned yet.
func (t *Transaction) Open() bool {
	return t.ReturnDate == nil
}

// Close sets the return date exactly once. Once set it is never cleared.
func (t *Transaction) Close(returnDate time.Time) error {
	if t.ReturnDate != nil {
		return fmt.Errorf("%w: transaction %s already closed", ErrNoOpenLoan, t.TransactionID)
	}
	d := Midnight(returnDate)
	t.ReturnDate = &d
	return nil
}

// Midnight truncates a timestamp to its calendar date in UTC. The ledger
// works in whole days.
func Midnight(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
