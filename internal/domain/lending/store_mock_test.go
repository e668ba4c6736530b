package lending

import (
	"context"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"

	"library-lending/internal/domain/book"
	"library-lending/internal/domain/customer"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, nil))

type MockStore struct {
	mock.Mock
}

type TxMock struct {
	pgx.Tx
}

var tx pgx.Tx = &TxMock{}

func (m *MockStore) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockStore) CommitTx(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockStore) RollbackTx(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockStore) GetBook(ctx context.Context, bookID uuid.UUID) (*book.Book, error) {
	args := m.Called(ctx, bookID)
	var b *book.Book
	if args.Get(0) != nil {
		b = args.Get(0).(*book.Book)
	}
	return b, args.Error(1)
}

func (m *MockStore) GetCustomer(ctx context.Context, customerID uuid.UUID) (*customer.Customer, error) {
	args := m.Called(ctx, customerID)
	var c *customer.Customer
	if args.Get(0) != nil {
		c = args.Get(0).(*customer.Customer)
	}
	return c, args.Error(1)
}

func (m *MockStore) AcquireBookInTx(ctx context.Context, tx pgx.Tx, bookID uuid.UUID) error {
	args := m.Called(ctx, tx, bookID)
	return args.Error(0)
}

func (m *MockStore) ReleaseBookInTx(ctx context.Context, tx pgx.Tx, bookID uuid.UUID) error {
	args := m.Called(ctx, tx, bookID)
	return args.Error(0)
}

func (m *MockStore) CreateTransactionInTx(ctx context.Context, tx pgx.Tx, txn *Transaction) error {
	args := m.Called(ctx, tx, txn)
	return args.Error(0)
}

func (m *MockStore) SetReturnDateInTx(ctx context.Context, tx pgx.Tx, txn *Transaction) error {
	args := m.Called(ctx, tx, txn)
	return args.Error(0)
}

func (m *MockStore) FindForBookForUpdate(ctx context.Context, tx pgx.Tx, bookID uuid.UUID) ([]Transaction, error) {
	args := m.Called(ctx, tx, bookID)
	var txns []Transaction
	if args.Get(0) != nil {
		txns = args.Get(0).([]Transaction)
	}
	return txns, args.Error(1)
}

func (m *MockStore) FindByID(ctx context.Context, transactionID uuid.UUID) (*Transaction, error) {
	args := m.Called(ctx, transactionID)
	var txn *Transaction
	if args.Get(0) != nil {
		txn = args.Get(0).(*Transaction)
	}
	return txn, args.Error(1)
}

func (m *MockStore) FindForCustomer(ctx context.Context, customerID uuid.UUID, page, size int, sortColumn string) ([]Transaction, int64, error) {
	args := m.Called(ctx, customerID, page, size, sortColumn)
	var txns []Transaction
	if args.Get(0) != nil {
		txns = args.Get(0).([]Transaction)
	}
	return txns, args.Get(1).(int64), args.Error(2)
}

func (m *MockStore) CountOpenLoans(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) FindAvailabilityMismatches(ctx context.Context) ([]uuid.UUID, error) {
	args := m.Called(ctx)
	var ids []uuid.UUID
	if args.Get(0) != nil {
		ids = args.Get(0).([]uuid.UUID)
	}
	return ids, args.Error(1)
}
