package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"library-lending/internal/api/handler/dto"
	"library-lending/internal/domain/lending"
	"library-lending/internal/pkg/apperrors"
)

type TransactionHandler struct {
	ledger  lending.Ledger
	history lending.History
	logger  *slog.Logger
}

func NewTransactionHandler(ledger lending.Ledger, history lending.History, l *slog.Logger) *TransactionHandler {
	return &TransactionHandler{
		ledger:  ledger,
		history: history,
		logger:  l.With("component", "TransactionHandler"),
	}
}

func decodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return fmt.Errorf("no request body")
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Default().Error("Failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":{"message":"Internal server error"}}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}

func respondError(w http.ResponseWriter, err error) {
	status, message, field := http.StatusInternalServerError, "An unexpected error occurred.", ""
	var validationError *apperrors.ValidationError
	var appErr *apperrors.AppError

	switch {
	case errors.Is(err, lending.ErrBookNotFound),
		errors.Is(err, lending.ErrCustomerNotFound),
		errors.Is(err, apperrors.ErrNotFound):
		status, message = http.StatusNotFound, err.Error()
	case errors.Is(err, lending.ErrBookUnavailable), errors.Is(err, lending.ErrNoOpenLoan):
		status, message = http.StatusConflict, err.Error()
	case errors.Is(err, lending.ErrNoBorrowingPrivilege):
		status, message = http.StatusForbidden, err.Error()
	case errors.Is(err, lending.ErrInvalidDateRange), errors.Is(err, lending.ErrDueDateInPast):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, lending.ErrContention):
		status, message = http.StatusServiceUnavailable, "The book is busy, please retry."
	case errors.Is(err, apperrors.ErrInvalidArgument), errors.Is(err, apperrors.ErrValidation):
		status, message = http.StatusBadRequest, err.Error()
	case errors.As(err, &validationError):
		status, message, field = http.StatusBadRequest, validationError.Message, validationError.Field
	case errors.As(err, &appErr):
		message = appErr.Error()
	default:
		slog.Default().Error("Unhandled internal error", "error", err)
	}

	resp := dto.ErrorResponse{
		Error: dto.ErrorDetail{
			Message: message,
			Field:   field,
		},
	}
	respondJSON(w, status, resp)
}

func getUUIDFromURL(r *http.Request, param string) (uuid.UUID, error) {
	idStr := chi.URLParam(r, param)
	if idStr == "" {
		return uuid.Nil, fmt.Errorf("%s not found in URL path", param)
	}
	return uuid.Parse(idStr)
}

// CreateTransaction records a loan with explicit borrow and due dates.
//
// @Summary Create a loan with explicit dates
// @Description Records a loan of a book to a customer using caller-supplied borrow and due dates. The book must be available and the customer must hold borrowing privileges.
// @Tags Transactions
// @Accept json
// @Produce json
// @Param request body dto.CreateTransactionRequest true "Loan creation request payload"
// @Success 201 {object} dto.TransactionResponse "Loan successfully created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload or date range"
// @Failure 403 {object} dto.ErrorResponse "Customer lacks borrowing privileges"
// @Failure 404 {object} dto.ErrorResponse "Book or customer not found"
// @Failure 409 {object} dto.ErrorResponse "Book is already on loan"
// @Failure 503 {object} dto.ErrorResponse "Transient conflict, retry"
// @Router /transactions [post]
// @Security BearerAuth
func (h *TransactionHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	customerID, _ := uuid.Parse(req.CustomerID)
	bookID, _ := uuid.Parse(req.BookID)
	borrowDate, _ := time.Parse(time.DateOnly, req.BorrowDate)
	dueDate, _ := time.Parse(time.DateOnly, req.DueDate)

	txn, err := h.ledger.CreateLoan(r.Context(), borrowDate, dueDate, customerID, bookID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, dto.NewTransactionResponse(txn))
}

// BorrowBook lends a book starting today with the standard due date.
//
// @Summary Borrow a book
// @Description Lends the book to the customer starting today. The due date is set two weeks out.
// @Tags Transactions
// @Produce json
// @Param customerId path string true "Customer ID"
// @Param bookId path string true "Book ID"
// @Success 201 {object} dto.TransactionResponse "Loan successfully created"
// @Failure 400 {object} dto.ErrorResponse "Invalid identifiers"
// @Failure 403 {object} dto.ErrorResponse "Customer lacks borrowing privileges"
// @Failure 404 {object} dto.ErrorResponse "Book or customer not found"
// @Failure 409 {object} dto.ErrorResponse "Book is already on loan"
// @Failure 503 {object} dto.ErrorResponse "Transient conflict, retry"
// @Router /transactions/borrowBook/{customerId}/{bookId} [post]
// @Security BearerAuth
func (h *TransactionHandler) BorrowBook(w http.ResponseWriter, r *http.Request) {
	customerID, err := getUUIDFromURL(r, "customerId")
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	bookID, err := getUUIDFromURL(r, "bookId")
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	txn, err := h.ledger.BorrowNow(r.Context(), customerID, bookID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, dto.NewTransactionResponse(txn))
}

// BorrowBookBackdated lends a book with an explicit borrow date.
//
// @Summary Borrow a book with an explicit borrow date
// @Description Administrative path that records a loan as of the given borrow date. The due date is the borrow date plus two weeks.
// @Tags Transactions
// @Accept json
// @Produce json
// @Param customerId path string true "Customer ID"
// @Param bookId path string true "Book ID"
// @Param request body dto.BorrowWithDateRequest true "Borrow date payload"
// @Success 201 {object} dto.TransactionResponse "Loan successfully created"
// @Failure 400 {object} dto.ErrorResponse "Invalid identifiers or payload"
// @Failure 403 {object} dto.ErrorResponse "Customer lacks borrowing privileges"
// @Failure 404 {object} dto.ErrorResponse "Book or customer not found"
// @Failure 409 {object} dto.ErrorResponse "Book is already on loan"
// @Failure 503 {object} dto.ErrorResponse "Transient conflict, retry"
// @Router /transactions/borrowBook/{customerId}/{bookId}/backdated [post]
// @Security BearerAuth
func (h *TransactionHandler) BorrowBookBackdated(w http.ResponseWriter, r *http.Request) {
	customerID, err := getUUIDFromURL(r, "customerId")
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	bookID, err := getUUIDFromURL(r, "bookId")
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	var req dto.BorrowWithDateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	borrowDate, _ := time.Parse(time.DateOnly, req.BorrowDate)

	txn, err := h.ledger.BorrowWithDate(r.Context(), customerID, bookID, borrowDate)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, dto.NewTransactionResponse(txn))
}

// ReturnBook closes the earliest open loan for a book as of today.
//
// @Summary Return a book
// @Description Closes the earliest open loan for the book, dated today, and makes the book available again.
// @Tags Transactions
// @Produce json
// @Param bookId path string true "Book ID"
// @Success 200 {object} dto.ReturnResponse "Book successfully returned"
// @Failure 400 {object} dto.ErrorResponse "Invalid book ID"
// @Failure 409 {object} dto.ErrorResponse "No open loan for the book"
// @Failure 503 {object} dto.ErrorResponse "Transient conflict, retry"
// @Router /transactions/returnBook/{bookId} [post]
// @Security BearerAuth
func (h *TransactionHandler) ReturnBook(w http.ResponseWriter, r *http.Request) {
	bookID, err := getUUIDFromURL(r, "bookId")
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	transactionID, err := h.ledger.ReturnByBook(r.Context(), bookID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ReturnResponse{
		TransactionID: transactionID.String(),
		BookID:        bookID.String(),
	})
}

// ReturnBookWithDate closes every open loan for a book with an explicit date.
//
// @Summary Return a book with an explicit return date
// @Description Administrative path that closes all open loans for the book using the given return date. Fails only when the book has no loans at all.
// @Tags Transactions
// @Accept json
// @Produce json
// @Param bookId path string true "Book ID"
// @Param request body dto.ReturnWithDateRequest true "Return date payload"
// @Success 204 "Loans closed"
// @Failure 400 {object} dto.ErrorResponse "Invalid book ID or payload"
// @Failure 409 {object} dto.ErrorResponse "Book has no recorded loans"
// @Failure 503 {object} dto.ErrorResponse "Transient conflict, retry"
// @Router /transactions/returnBook/{bookId}/withDate [post]
// @Security BearerAuth
func (h *TransactionHandler) ReturnBookWithDate(w http.ResponseWriter, r *http.Request) {
	bookID, err := getUUIDFromURL(r, "bookId")
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	var req dto.ReturnWithDateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	returnDate, _ := time.Parse(time.DateOnly, req.ReturnDate)

	if err := h.ledger.ReturnWithDate(r.Context(), bookID, returnDate); err != nil {
		respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetHistory pages through a customer's borrowing history.
//
// @Summary View a customer's borrowing history
// @Description Returns the customer's loans, paginated. Supports page, size and sortBy (borrowDate, dueDate, returnDate) query parameters.
// @Tags Transactions
// @Produce json
// @Param customerId path string true "Customer ID"
// @Param page query int false "Zero-based page number"
// @Param size query int false "Page size (default 5, max 100)"
// @Param sortBy query string false "Sort field: borrowDate, dueDate or returnDate"
// @Success 200 {object} dto.HistoryResponse "History page"
// @Failure 400 {object} dto.ErrorResponse "Invalid identifiers or paging parameters"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Router /transactions/history/{customerId} [get]
// @Security BearerAuth
func (h *TransactionHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	customerID, err := getUUIDFromURL(r, "customerId")
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	page, err := queryInt(r, "page", 0)
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	size, err := queryInt(r, "size", lending.DefaultPageSize)
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	sortBy := r.URL.Query().Get("sortBy")

	historyPage, err := h.history.ViewHistory(r.Context(), customerID, page, size, sortBy)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewHistoryResponse(historyPage))
}

// GetTransaction fetches a single loan by id.
//
// @Summary Retrieve a single loan
// @Description Returns the loan identified by transactionId.
// @Tags Transactions
// @Produce json
// @Param transactionId path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse "Loan details"
// @Failure 400 {object} dto.ErrorResponse "Invalid transaction ID"
// @Failure 404 {object} dto.ErrorResponse "Transaction not found"
// @Router /transactions/{transactionId} [get]
// @Security BearerAuth
func (h *TransactionHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	transactionID, err := getUUIDFromURL(r, "transactionId")
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	txn, err := h.history.FindByID(r.Context(), transactionID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewTransactionResponse(txn))
}

func queryInt(r *http.Request, param string, fallback int) (int, error) {
	raw := r.URL.Query().Get(param)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s parameter: %w", param, err)
	}
	return value, nil
}
