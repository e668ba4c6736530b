package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"library-lending/internal/domain/customer"
	"library-lending/internal/infrastructure/monitoring"
	"library-lending/internal/pkg/apperrors"
)

func (s *LendingStore) GetCustomer(ctx context.Context, customerID uuid.UUID) (*customer.Customer, error) {
	query := `
        SELECT customer_id, name, email, privileges
        FROM customers
        WHERE customer_id = $1`
	status := "success"
	startTime := time.Now()

	var c customer.Customer
	err := s.db.QueryRow(ctx, query, customerID).Scan(
		&c.CustomerID, &c.Name, &c.Email, &c.Privileges,
	)

	if err != nil {
		status = "error"
	}
	monitoring.RecordDBQuery("GetCustomer", status, time.Since(startTime))

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.WarnContext(ctx, "Customer not found", "customer_id", customerID)
			return nil, apperrors.ErrNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to get customer by ID", "customer_id", customerID, "error", err)
		return nil, translateDBError(err, s.logger)
	}
	return &c, nil
}
