package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"library-lending/internal/domain/lending"
	"library-lending/internal/infrastructure/monitoring"
	"library-lending/internal/pkg/apperrors"
)

func (s *LendingStore) CreateTransactionInTx(ctx context.Context, tx pgx.Tx, txn *lending.Transaction) error {
	sql := `
        INSERT INTO transactions (transaction_id, customer_id, book_id, borrow_date, due_date, return_date, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
        RETURNING created_at, updated_at`

	err := tx.QueryRow(ctx, sql,
		txn.TransactionID, txn.CustomerID, txn.BookID,
		txn.BorrowDate, txn.DueDate, txn.ReturnDate,
	).Scan(&txn.CreatedAt, &txn.UpdatedAt)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to insert transaction", "transaction_id", txn.TransactionID, "error", err)
		return translateDBError(err, s.logger)
	}
	s.logger.InfoContext(ctx, "Transaction created in DB", "transaction_id", txn.TransactionID)
	return nil
}

func (s *LendingStore) SetReturnDateInTx(ctx context.Context, tx pgx.Tx, txn *lending.Transaction) error {
	sql := `
        UPDATE transactions
        SET return_date = $1, updated_at = NOW()
        WHERE transaction_id = $2 AND return_date IS NULL`

	cmdTag, err := tx.Exec(ctx, sql, txn.ReturnDate, txn.TransactionID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to set return date", "transaction_id", txn.TransactionID, "error", err)
		return translateDBError(err, s.logger)
	}
	if cmdTag.RowsAffected() == 0 {
		s.logger.WarnContext(ctx, "Return date update affected zero rows", "transaction_id", txn.TransactionID)
		return fmt.Errorf("%w: transaction %s has no open loan row", apperrors.ErrNotFound, txn.TransactionID)
	}
	return nil
}

func (s *LendingStore) FindForBookForUpdate(ctx context.Context, tx pgx.Tx, bookID uuid.UUID) ([]lending.Transaction, error) {
	query := `
        SELECT transaction_id, customer_id, book_id, borrow_date, due_date, return_date, created_at, updated_at
        FROM transactions
        WHERE book_id = $1
        ORDER BY borrow_date ASC, transaction_id ASC
        FOR UPDATE`

	rows, err := tx.Query(ctx, query, bookID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to query transactions for book", "book_id", bookID, "error", err)
		return nil, translateDBError(err, s.logger)
	}
	defer rows.Close()

	return s.scanTransactions(ctx, rows)
}

func (s *LendingStore) FindByID(ctx context.Context, transactionID uuid.UUID) (*lending.Transaction, error) {
	query := `
        SELECT transaction_id, customer_id, book_id, borrow_date, due_date, return_date, created_at, updated_at
        FROM transactions
        WHERE transaction_id = $1`
	status := "success"
	startTime := time.Now()

	var t lending.Transaction
	err := s.db.QueryRow(ctx, query, transactionID).Scan(
		&t.TransactionID, &t.CustomerID, &t.BookID,
		&t.BorrowDate, &t.DueDate, &t.ReturnDate,
		&t.CreatedAt, &t.UpdatedAt,
	)

	if err != nil {
		status = "error"
	}
	monitoring.RecordDBQuery("FindTransactionByID", status, time.Since(startTime))

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.WarnContext(ctx, "Transaction not found", "transaction_id", transactionID)
			return nil, apperrors.ErrNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to get transaction by ID", "transaction_id", transactionID, "error", err)
		return nil, translateDBError(err, s.logger)
	}
	return &t, nil
}

// FindForCustomer pages through a customer's history. sortColumn has already
// been whitelisted by the caller; it is interpolated, never user input.
func (s *LendingStore) FindForCustomer(ctx context.Context, customerID uuid.UUID, page, size int, sortColumn string) ([]lending.Transaction, int64, error) {
	var total int64
	countQuery := `SELECT COUNT(*) FROM transactions WHERE customer_id = $1`
	if err := s.db.QueryRow(ctx, countQuery, customerID).Scan(&total); err != nil {
		s.logger.ErrorContext(ctx, "Failed to count transactions for customer", "customer_id", customerID, "error", err)
		return nil, 0, translateDBError(err, s.logger)
	}

	query := fmt.Sprintf(`
        SELECT transaction_id, customer_id, book_id, borrow_date, due_date, return_date, created_at, updated_at
        FROM transactions
        WHERE customer_id = $1
        ORDER BY %s ASC, transaction_id ASC
        LIMIT $2 OFFSET $3`, sortColumn)

	rows, err := s.db.Query(ctx, query, customerID, size, page*size)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to query transactions for customer", "customer_id", customerID, "error", err)
		return nil, 0, translateDBError(err, s.logger)
	}
	defer rows.Close()

	items, err := s.scanTransactions(ctx, rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *LendingStore) CountOpenLoans(ctx context.Context) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM transactions WHERE return_date IS NULL`
	if err := s.db.QueryRow(ctx, query).Scan(&count); err != nil {
		s.logger.ErrorContext(ctx, "Failed to count open loans", "error", err)
		return 0, translateDBError(err, s.logger)
	}
	return count, nil
}

func (s *LendingStore) FindAvailabilityMismatches(ctx context.Context) ([]uuid.UUID, error) {
	query := `
        SELECT b.book_id
        FROM books b
        WHERE b.is_available = EXISTS (
            SELECT 1 FROM transactions t
            WHERE t.book_id = b.book_id AND t.return_date IS NULL
        )
        ORDER BY b.book_id`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to query availability mismatches", "error", err)
		return nil, translateDBError(err, s.logger)
	}
	defer rows.Close()

	bookIDs := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			s.logger.ErrorContext(ctx, "Failed to scan mismatch row", "error", err)
			return nil, translateDBError(err, s.logger)
		}
		bookIDs = append(bookIDs, id)
	}
	if err = rows.Err(); err != nil {
		s.logger.ErrorContext(ctx, "Error iterating mismatch rows", "error", err)
		return nil, translateDBError(err, s.logger)
	}
	return bookIDs, nil
}

func (s *LendingStore) scanTransactions(ctx context.Context, rows pgx.Rows) ([]lending.Transaction, error) {
	txns := make([]lending.Transaction, 0)
	for rows.Next() {
		var t lending.Transaction
		err := rows.Scan(
			&t.TransactionID, &t.CustomerID, &t.BookID,
			&t.BorrowDate, &t.DueDate, &t.ReturnDate,
			&t.CreatedAt, &t.UpdatedAt,
		)
		if err != nil {
			s.logger.ErrorContext(ctx, "Failed to scan transaction row", "error", err)
			return nil, translateDBError(err, s.logger)
		}
		txns = append(txns, t)
	}

	if err := rows.Err(); err != nil {
		s.logger.ErrorContext(ctx, "Error iterating transaction rows", "error", err)
		return nil, translateDBError(err, s.logger)
	}
	return txns, nil
}
