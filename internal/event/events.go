package event

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Publisher emits lending lifecycle events after the owning database
// transaction has committed. Delivery to downstream consumers is not this
// service's concern.
type Publisher interface {
	PublishBookBorrowed(ctx context.Context, event BookBorrowedEvent) error
	PublishBookReturned(ctx context.Context, event BookReturnedEvent) error
}

type BookBorrowedEvent struct {
	TransactionID uuid.UUID `json:"transactionId"`
	CustomerID    uuid.UUID `json:"customerId"`
	BookID        uuid.UUID `json:"bookId"`
	BorrowDate    time.Time `json:"borrowDate"`
	DueDate       time.Time `json:"dueDate"`
	Timestamp     time.Time `json:"timestamp"`
}

type BookReturnedEvent struct {
	TransactionID uuid.UUID `json:"transactionId"`
	CustomerID    uuid.UUID `json:"customerId"`
	BookID        uuid.UUID `json:"bookId"`
	ReturnDate    time.Time `json:"returnDate"`
	Timestamp     time.Time `json:"timestamp"`
}

// NoopPublisher is used when no message broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishBookBorrowed(context.Context, BookBorrowedEvent) error { return nil }

func (NoopPublisher) PublishBookReturned(context.Context, BookReturnedEvent) error { return nil }
