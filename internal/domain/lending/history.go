package lending

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"library-lending/internal/pkg/apperrors"
)

const (
	DefaultPageSize = 5
	MaxPageSize     = 100

	SortByBorrowDate = "borrowDate"
	SortByDueDate    = "dueDate"
	SortByReturnDate = "returnDate"
)

var sortColumns = map[string]string{
	SortByBorrowDate: "borrow_date",
	SortByDueDate:    "due_date",
	SortByReturnDate: "return_date",
}

// TransactionPage is one page of a customer's borrowing history.
type TransactionPage struct {
	Items      []Transaction `json:"items"`
	Page       int           `json:"page"`
	Size       int           `json:"size"`
	TotalItems int64         `json:"totalItems"`
	TotalPages int           `json:"totalPages"`
}

// TransactionCache is a read-through cache over immutable-ish loan lookups.
// Implementations must never serve a loan that was not durably committed.
type TransactionCache interface {
	Get(ctx context.Context, transactionID uuid.UUID) (*Transaction, bool)
	Set(ctx context.Context, txn *Transaction)
}

// History is the read-only side of the ledger. No invariants to enforce;
// it only ever sees committed rows.
type History interface {
	ViewHistory(ctx context.Context, customerID uuid.UUID, page, size int, sortBy string) (*TransactionPage, error)

	FindByID(ctx context.Context, transactionID uuid.UUID) (*Transaction, error)
}

type historyService struct {
	store  Store
	cache  TransactionCache
	logger *slog.Logger
}

var _ History = (*historyService)(nil)

func NewHistoryService(store Store, cache TransactionCache, logger *slog.Logger) History {
	if store == nil {
		panic("store cannot be nil for HistoryService")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	}
	return &historyService{
		store:  store,
		cache:  cache,
		logger: logger.With(slog.String("component", "HistoryService")),
	}
}

func (s *historyService) ViewHistory(ctx context.Context, customerID uuid.UUID, page, size int, sortBy string) (*TransactionPage, error) {
	s.logger.InfoContext(ctx, "Viewing borrowing history",
		"customer_id", customerID, "page", page, "size", size, "sort_by", sortBy)

	if page < 0 {
		return nil, fmt.Errorf("%w: page must not be negative", apperrors.ErrInvalidArgument)
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	if sortBy == "" {
		sortBy = SortByBorrowDate
	}
	column, ok := sortColumns[sortBy]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported sort field %q", apperrors.ErrInvalidArgument, sortBy)
	}

	// A missing customer is an error; a customer without loans gets an
	// empty page.
	if _, err := s.store.GetCustomer(ctx, customerID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Customer not found", "customer_id", customerID)
			return nil, fmt.Errorf("%w: %s", ErrCustomerNotFound, customerID)
		}
		return nil, fmt.Errorf("failed to resolve customer %s: %w", customerID, err)
	}

	items, total, err := s.store.FindForCustomer(ctx, customerID, page, size, column)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to query borrowing history", "customer_id", customerID, "error", err)
		return nil, fmt.Errorf("failed to query history for customer %s: %w", customerID, err)
	}

	totalPages := int((total + int64(size) - 1) / int64(size))
	return &TransactionPage{
		Items:      items,
		Page:       page,
		Size:       size,
		TotalItems: total,
		TotalPages: totalPages,
	}, nil
}

func (s *historyService) FindByID(ctx context.Context, transactionID uuid.UUID) (*Transaction, error) {
	if s.cache != nil {
		if txn, ok := s.cache.Get(ctx, transactionID); ok {
			s.logger.DebugContext(ctx, "Transaction served from cache", "transaction_id", transactionID)
			return txn, nil
		}
	}

	txn, err := s.store.FindByID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Transaction not found", "transaction_id", transactionID)
			return nil, apperrors.ErrNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to find transaction", "transaction_id", transactionID, "error", err)
		return nil, fmt.Errorf("failed to find transaction %s: %w", transactionID, err)
	}

	if s.cache != nil {
		s.cache.Set(ctx, txn)
	}
	return txn, nil
}
