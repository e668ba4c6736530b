package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"library-lending/internal/domain/book"
	"library-lending/internal/infrastructure/monitoring"
	"library-lending/internal/pkg/apperrors"
)

func (s *LendingStore) GetBook(ctx context.Context, bookID uuid.UUID) (*book.Book, error) {
	query := `
        SELECT book_id, title, isbn, publication_year, is_available, authors, created_at
        FROM books
        WHERE book_id = $1`
	status := "success"
	startTime := time.Now()

	var b book.Book
	err := s.db.QueryRow(ctx, query, bookID).Scan(
		&b.BookID, &b.Title, &b.ISBN, &b.PublicationYear,
		&b.IsAvailable, &b.Authors, &b.CreatedAt,
	)

	if err != nil {
		status = "error"
	}
	monitoring.RecordDBQuery("GetBook", status, time.Since(startTime))

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.WarnContext(ctx, "Book not found", "book_id", bookID)
			return nil, apperrors.ErrNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to get book by ID", "book_id", bookID, "error", err)
		return nil, translateDBError(err, s.logger)
	}
	return &b, nil
}

// AcquireBookInTx is the compare-and-swap that makes a borrow exclusive:
// the WHERE clause only matches while the book is still available, so of two
// racing transactions exactly one sees an affected row.
func (s *LendingStore) AcquireBookInTx(ctx context.Context, tx pgx.Tx, bookID uuid.UUID) error {
	sql := `
        UPDATE books
        SET is_available = FALSE, updated_at = NOW()
        WHERE book_id = $1 AND is_available = TRUE`

	cmdTag, err := tx.Exec(ctx, sql, bookID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to acquire book", "book_id", bookID, "error", err)
		return translateDBError(err, s.logger)
	}
	if cmdTag.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM books WHERE book_id = $1)`, bookID).Scan(&exists); err != nil {
			s.logger.ErrorContext(ctx, "Failed to check book existence", "book_id", bookID, "error", err)
			return translateDBError(err, s.logger)
		}
		if !exists {
			s.logger.WarnContext(ctx, "Book not found during acquire", "book_id", bookID)
			return apperrors.ErrNotFound
		}
		s.logger.InfoContext(ctx, "Book already on loan", "book_id", bookID)
		return fmt.Errorf("%w: book %s is on loan", apperrors.ErrConflict, bookID)
	}
	return nil
}

func (s *LendingStore) ReleaseBookInTx(ctx context.Context, tx pgx.Tx, bookID uuid.UUID) error {
	sql := `
        UPDATE books
        SET is_available = TRUE, updated_at = NOW()
        WHERE book_id = $1`

	cmdTag, err := tx.Exec(ctx, sql, bookID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to release book", "book_id", bookID, "error", err)
		return translateDBError(err, s.logger)
	}
	if cmdTag.RowsAffected() == 0 {
		s.logger.WarnContext(ctx, "Book not found during release", "book_id", bookID)
		return apperrors.ErrNotFound
	}
	return nil
}
