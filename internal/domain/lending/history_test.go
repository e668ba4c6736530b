package lending

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"library-lending/internal/pkg/apperrors"
)

type MockTransactionCache struct {
	mock.Mock
}

func (m *MockTransactionCache) Get(ctx context.Context, transactionID uuid.UUID) (*Transaction, bool) {
	args := m.Called(ctx, transactionID)
	var txn *Transaction
	if args.Get(0) != nil {
		txn = args.Get(0).(*Transaction)
	}
	return txn, args.Bool(1)
}

func (m *MockTransactionCache) Set(ctx context.Context, txn *Transaction) {
	m.Called(ctx, txn)
}

func TestViewHistory_Defaults(t *testing.T) {
	mockStore := new(MockStore)
	service := NewHistoryService(mockStore, nil, logger)
	ctx := context.Background()

	cust := testCustomer()
	items := []Transaction{
		{TransactionID: uuid.New(), CustomerID: cust.CustomerID},
		{TransactionID: uuid.New(), CustomerID: cust.CustomerID},
	}

	mockStore.On("GetCustomer", ctx, cust.CustomerID).Return(cust, nil)
	mockStore.On("FindForCustomer", ctx, cust.CustomerID, 0, DefaultPageSize, "borrow_date").
		Return(items, int64(12), nil)

	page, err := service.ViewHistory(ctx, cust.CustomerID, 0, 0, "")

	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 0, page.Page)
	assert.Equal(t, DefaultPageSize, page.Size)
	assert.Equal(t, int64(12), page.TotalItems)
	assert.Equal(t, 3, page.TotalPages)
	mockStore.AssertExpectations(t)
}

func TestViewHistory_SortByReturnDate(t *testing.T) {
	mockStore := new(MockStore)
	service := NewHistoryService(mockStore, nil, logger)
	ctx := context.Background()
	cust := testCustomer()

	mockStore.On("GetCustomer", ctx, cust.CustomerID).Return(cust, nil)
	mockStore.On("FindForCustomer", ctx, cust.CustomerID, 1, 10, "return_date").
		Return([]Transaction{}, int64(0), nil)

	page, err := service.ViewHistory(ctx, cust.CustomerID, 1, 10, SortByReturnDate)

	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 0, page.TotalPages)
}

func TestViewHistory_SizeClamped(t *testing.T) {
	mockStore := new(MockStore)
	service := NewHistoryService(mockStore, nil, logger)
	ctx := context.Background()
	cust := testCustomer()

	mockStore.On("GetCustomer", ctx, cust.CustomerID).Return(cust, nil)
	mockStore.On("FindForCustomer", ctx, cust.CustomerID, 0, MaxPageSize, "borrow_date").
		Return([]Transaction{}, int64(0), nil)

	_, err := service.ViewHistory(ctx, cust.CustomerID, 0, 5000, SortByBorrowDate)

	require.NoError(t, err)
	mockStore.AssertExpectations(t)
}

func TestViewHistory_NegativePage(t *testing.T) {
	mockStore := new(MockStore)
	service := NewHistoryService(mockStore, nil, logger)

	_, err := service.ViewHistory(context.Background(), uuid.New(), -1, 5, "")

	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
	mockStore.AssertNotCalled(t, "FindForCustomer", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestViewHistory_UnsupportedSortField(t *testing.T) {
	mockStore := new(MockStore)
	service := NewHistoryService(mockStore, nil, logger)

	_, err := service.ViewHistory(context.Background(), uuid.New(), 0, 5, "title; DROP TABLE transactions")

	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
	mockStore.AssertNotCalled(t, "GetCustomer", mock.Anything, mock.Anything)
}

func TestViewHistory_CustomerNotFound(t *testing.T) {
	mockStore := new(MockStore)
	service := NewHistoryService(mockStore, nil, logger)
	ctx := context.Background()
	customerID := uuid.New()

	mockStore.On("GetCustomer", ctx, customerID).Return(nil, apperrors.ErrNotFound)

	_, err := service.ViewHistory(ctx, customerID, 0, 5, "")

	assert.ErrorIs(t, err, ErrCustomerNotFound)
	mockStore.AssertNotCalled(t, "FindForCustomer", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestFindByID_CacheMiss(t *testing.T) {
	mockStore := new(MockStore)
	mockCache := new(MockTransactionCache)
	service := NewHistoryService(mockStore, mockCache, logger)
	ctx := context.Background()

	txn := &Transaction{TransactionID: uuid.New(), BorrowDate: Midnight(time.Now())}

	mockCache.On("Get", ctx, txn.TransactionID).Return(nil, false)
	mockStore.On("FindByID", ctx, txn.TransactionID).Return(txn, nil)
	mockCache.On("Set", ctx, txn).Return()

	got, err := service.FindByID(ctx, txn.TransactionID)

	require.NoError(t, err)
	assert.Equal(t, txn, got)
	mockCache.AssertExpectations(t)
}

func TestFindByID_CacheHit(t *testing.T) {
	mockStore := new(MockStore)
	mockCache := new(MockTransactionCache)
	service := NewHistoryService(mockStore, mockCache, logger)
	ctx := context.Background()

	txn := &Transaction{TransactionID: uuid.New()}

	mockCache.On("Get", ctx, txn.TransactionID).Return(txn, true)

	got, err := service.FindByID(ctx, txn.TransactionID)

	require.NoError(t, err)
	assert.Equal(t, txn, got)
	mockStore.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestFindByID_NotFound(t *testing.T) {
	mockStore := new(MockStore)
	service := NewHistoryService(mockStore, nil, logger)
	ctx := context.Background()
	transactionID := uuid.New()

	mockStore.On("FindByID", ctx, transactionID).Return(nil, apperrors.ErrNotFound)

	_, err := service.FindByID(ctx, transactionID)

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
