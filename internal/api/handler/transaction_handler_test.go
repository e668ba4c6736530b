package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"library-lending/internal/api/handler/dto"
	"library-lending/internal/domain/lending"
	"library-lending/internal/pkg/apperrors"
)

type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) CreateLoan(ctx context.Context, borrowDate, dueDate time.Time, customerID, bookID uuid.UUID) (*lending.Transaction, error) {
	args := m.Called(ctx, borrowDate, dueDate, customerID, bookID)
	if txn, ok := args.Get(0).(*lending.Transaction); ok {
		return txn, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLedger) BorrowNow(ctx context.Context, customerID, bookID uuid.UUID) (*lending.Transaction, error) {
	args := m.Called(ctx, customerID, bookID)
	if txn, ok := args.Get(0).(*lending.Transaction); ok {
		return txn, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLedger) BorrowWithDate(ctx context.Context, customerID, bookID uuid.UUID, borrowDate time.Time) (*lending.Transaction, error) {
	args := m.Called(ctx, customerID, bookID, borrowDate)
	if txn, ok := args.Get(0).(*lending.Transaction); ok {
		return txn, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLedger) ReturnByBook(ctx context.Context, bookID uuid.UUID) (uuid.UUID, error) {
	args := m.Called(ctx, bookID)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockLedger) ReturnWithDate(ctx context.Context, bookID uuid.UUID, returnDate time.Time) error {
	args := m.Called(ctx, bookID, returnDate)
	return args.Error(0)
}

type MockHistory struct {
	mock.Mock
}

func (m *MockHistory) ViewHistory(ctx context.Context, customerID uuid.UUID, page, size int, sortBy string) (*lending.TransactionPage, error) {
	args := m.Called(ctx, customerID, page, size, sortBy)
	if p, ok := args.Get(0).(*lending.TransactionPage); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockHistory) FindByID(ctx context.Context, transactionID uuid.UUID) (*lending.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if txn, ok := args.Get(0).(*lending.Transaction); ok {
		return txn, args.Error(1)
	}
	return nil, args.Error(1)
}

func newTestHandler(ledger *MockLedger, history *MockHistory) *TransactionHandler {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	return NewTransactionHandler(ledger, history, logger)
}

func withURLParams(req *http.Request, keys, values []string) *http.Request {
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, &chi.Context{
		URLParams: chi.RouteParams{Keys: keys, Values: values},
	}))
}

func TestTransactionHandlerBorrowBook(t *testing.T) {
	mockLedger := new(MockLedger)
	mockHistory := new(MockHistory)
	handler := newTestHandler(mockLedger, mockHistory)

	customerID := uuid.New()
	bookID := uuid.New()

	t.Run("successfully borrows a book", func(t *testing.T) {
		borrowDate := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
		txn := &lending.Transaction{
			TransactionID: uuid.New(),
			CustomerID:    customerID,
			BookID:        bookID,
			BorrowDate:    borrowDate,
			DueDate:       borrowDate.AddDate(0, 0, 14),
		}
		mockLedger.On("BorrowNow", mock.Anything, customerID, bookID).Return(txn, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/transactions/borrowBook/x/y", nil)
		req = withURLParams(req, []string{"customerId", "bookId"}, []string{customerID.String(), bookID.String()})
		rec := httptest.NewRecorder()

		handler.BorrowBook(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		var resp dto.TransactionResponse
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, txn.TransactionID.String(), resp.TransactionID)
		assert.Equal(t, "2025-03-24", resp.DueDate)
		mockLedger.AssertExpectations(t)
	})

	t.Run("returns 400 for a malformed customer id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/transactions/borrowBook/x/y", nil)
		req = withURLParams(req, []string{"customerId", "bookId"}, []string{"not-a-uuid", bookID.String()})
		rec := httptest.NewRecorder()

		handler.BorrowBook(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("returns 409 when the book is on loan", func(t *testing.T) {
		mockLedger.On("BorrowNow", mock.Anything, customerID, bookID).
			Return(nil, fmt.Errorf("%w: %s", lending.ErrBookUnavailable, bookID)).Once()

		req := httptest.NewRequest(http.MethodPost, "/transactions/borrowBook/x/y", nil)
		req = withURLParams(req, []string{"customerId", "bookId"}, []string{customerID.String(), bookID.String()})
		rec := httptest.NewRecorder()

		handler.BorrowBook(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("returns 403 when privileges are missing", func(t *testing.T) {
		mockLedger.On("BorrowNow", mock.Anything, customerID, bookID).
			Return(nil, fmt.Errorf("%w: %s", lending.ErrNoBorrowingPrivilege, customerID)).Once()

		req := httptest.NewRequest(http.MethodPost, "/transactions/borrowBook/x/y", nil)
		req = withURLParams(req, []string{"customerId", "bookId"}, []string{customerID.String(), bookID.String()})
		rec := httptest.NewRecorder()

		handler.BorrowBook(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("returns 404 when the book does not exist", func(t *testing.T) {
		mockLedger.On("BorrowNow", mock.Anything, customerID, bookID).
			Return(nil, fmt.Errorf("%w: %s", lending.ErrBookNotFound, bookID)).Once()

		req := httptest.NewRequest(http.MethodPost, "/transactions/borrowBook/x/y", nil)
		req = withURLParams(req, []string{"customerId", "bookId"}, []string{customerID.String(), bookID.String()})
		rec := httptest.NewRecorder()

		handler.BorrowBook(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("returns 503 on contention", func(t *testing.T) {
		mockLedger.On("BorrowNow", mock.Anything, customerID, bookID).
			Return(nil, fmt.Errorf("%w: busy", lending.ErrContention)).Once()

		req := httptest.NewRequest(http.MethodPost, "/transactions/borrowBook/x/y", nil)
		req = withURLParams(req, []string{"customerId", "bookId"}, []string{customerID.String(), bookID.String()})
		rec := httptest.NewRecorder()

		handler.BorrowBook(rec, req)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestTransactionHandlerCreateTransaction(t *testing.T) {
	mockLedger := new(MockLedger)
	mockHistory := new(MockHistory)
	handler := newTestHandler(mockLedger, mockHistory)

	customerID := uuid.New()
	bookID := uuid.New()

	t.Run("successfully creates a loan with explicit dates", func(t *testing.T) {
		borrowDate := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
		dueDate := time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC)
		txn := &lending.Transaction{
			TransactionID: uuid.New(),
			CustomerID:    customerID,
			BookID:        bookID,
			BorrowDate:    borrowDate,
			DueDate:       dueDate,
		}
		mockLedger.On("CreateLoan", mock.Anything, borrowDate, dueDate, customerID, bookID).Return(txn, nil).Once()

		body := fmt.Sprintf(`{"customerId":%q,"bookId":%q,"borrowDate":"2025-03-10","dueDate":"2025-04-10"}`,
			customerID, bookID)
		req := httptest.NewRequest(http.MethodPost, "/transactions", strings.NewReader(body))
		rec := httptest.NewRecorder()

		handler.CreateTransaction(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		mockLedger.AssertExpectations(t)
	})

	t.Run("returns 400 for a malformed date", func(t *testing.T) {
		body := fmt.Sprintf(`{"customerId":%q,"bookId":%q,"borrowDate":"10/03/2025","dueDate":"2025-04-10"}`,
			customerID, bookID)
		req := httptest.NewRequest(http.MethodPost, "/transactions", strings.NewReader(body))
		rec := httptest.NewRecorder()

		handler.CreateTransaction(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("returns 400 when the range is inverted", func(t *testing.T) {
		borrowDate := time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC)
		dueDate := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
		mockLedger.On("CreateLoan", mock.Anything, borrowDate, dueDate, customerID, bookID).
			Return(nil, fmt.Errorf("%w: inverted", lending.ErrInvalidDateRange)).Once()

		body := fmt.Sprintf(`{"customerId":%q,"bookId":%q,"borrowDate":"2025-04-10","dueDate":"2025-03-10"}`,
			customerID, bookID)
		req := httptest.NewRequest(http.MethodPost, "/transactions", strings.NewReader(body))
		rec := httptest.NewRecorder()

		handler.CreateTransaction(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestTransactionHandlerReturnBook(t *testing.T) {
	mockLedger := new(MockLedger)
	mockHistory := new(MockHistory)
	handler := newTestHandler(mockLedger, mockHistory)

	bookID := uuid.New()

	t.Run("successfully returns a book", func(t *testing.T) {
		transactionID := uuid.New()
		mockLedger.On("ReturnByBook", mock.Anything, bookID).Return(transactionID, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/transactions/returnBook/x", nil)
		req = withURLParams(req, []string{"bookId"}, []string{bookID.String()})
		rec := httptest.NewRecorder()

		handler.ReturnBook(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp dto.ReturnResponse
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, transactionID.String(), resp.TransactionID)
	})

	t.Run("returns 409 when no open loan exists", func(t *testing.T) {
		mockLedger.On("ReturnByBook", mock.Anything, bookID).
			Return(uuid.Nil, fmt.Errorf("%w: book %s", lending.ErrNoOpenLoan, bookID)).Once()

		req := httptest.NewRequest(http.MethodPost, "/transactions/returnBook/x", nil)
		req = withURLParams(req, []string{"bookId"}, []string{bookID.String()})
		rec := httptest.NewRecorder()

		handler.ReturnBook(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestTransactionHandlerReturnBookWithDate(t *testing.T) {
	mockLedger := new(MockLedger)
	mockHistory := new(MockHistory)
	handler := newTestHandler(mockLedger, mockHistory)

	bookID := uuid.New()

	t.Run("closes open loans with the given date", func(t *testing.T) {
		returnDate := time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC)
		mockLedger.On("ReturnWithDate", mock.Anything, bookID, returnDate).Return(nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/transactions/returnBook/x/withDate",
			strings.NewReader(`{"returnDate":"2025-05-02"}`))
		req = withURLParams(req, []string{"bookId"}, []string{bookID.String()})
		rec := httptest.NewRecorder()

		handler.ReturnBookWithDate(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		mockLedger.AssertExpectations(t)
	})

	t.Run("returns 400 for a malformed payload", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/transactions/returnBook/x/withDate",
			strings.NewReader(`{"returnDate":"yesterday"}`))
		req = withURLParams(req, []string{"bookId"}, []string{bookID.String()})
		rec := httptest.NewRecorder()

		handler.ReturnBookWithDate(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestTransactionHandlerGetHistory(t *testing.T) {
	mockLedger := new(MockLedger)
	mockHistory := new(MockHistory)
	handler := newTestHandler(mockLedger, mockHistory)

	customerID := uuid.New()

	t.Run("returns a page of history", func(t *testing.T) {
		page := &lending.TransactionPage{
			Items:      []lending.Transaction{{TransactionID: uuid.New(), CustomerID: customerID}},
			Page:       2,
			Size:       10,
			TotalItems: 21,
			TotalPages: 3,
		}
		mockHistory.On("ViewHistory", mock.Anything, customerID, 2, 10, "dueDate").Return(page, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/transactions/history/x?page=2&size=10&sortBy=dueDate", nil)
		req = withURLParams(req, []string{"customerId"}, []string{customerID.String()})
		rec := httptest.NewRecorder()

		handler.GetHistory(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp dto.HistoryResponse
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Len(t, resp.Data, 1)
		assert.Equal(t, 2, resp.CurrentPage)
		assert.Equal(t, int64(21), resp.TotalItems)
		mockHistory.AssertExpectations(t)
	})

	t.Run("returns 404 for an unknown customer", func(t *testing.T) {
		mockHistory.On("ViewHistory", mock.Anything, customerID, 0, lending.DefaultPageSize, "").
			Return(nil, fmt.Errorf("%w: %s", lending.ErrCustomerNotFound, customerID)).Once()

		req := httptest.NewRequest(http.MethodGet, "/transactions/history/x", nil)
		req = withURLParams(req, []string{"customerId"}, []string{customerID.String()})
		rec := httptest.NewRecorder()

		handler.GetHistory(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("returns 400 for a non-numeric page", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/transactions/history/x?page=abc", nil)
		req = withURLParams(req, []string{"customerId"}, []string{customerID.String()})
		rec := httptest.NewRecorder()

		handler.GetHistory(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestTransactionHandlerGetTransaction(t *testing.T) {
	mockLedger := new(MockLedger)
	mockHistory := new(MockHistory)
	handler := newTestHandler(mockLedger, mockHistory)

	t.Run("returns the loan", func(t *testing.T) {
		txn := &lending.Transaction{TransactionID: uuid.New()}
		mockHistory.On("FindByID", mock.Anything, txn.TransactionID).Return(txn, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/transactions/x", nil)
		req = withURLParams(req, []string{"transactionId"}, []string{txn.TransactionID.String()})
		rec := httptest.NewRecorder()

		handler.GetTransaction(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("returns 404 when the loan does not exist", func(t *testing.T) {
		transactionID := uuid.New()
		mockHistory.On("FindByID", mock.Anything, transactionID).
			Return(nil, apperrors.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/transactions/x", nil)
		req = withURLParams(req, []string{"transactionId"}, []string{transactionID.String()})
		rec := httptest.NewRecorder()

		handler.GetTransaction(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
