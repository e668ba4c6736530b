package customer

import "github.com/google/uuid"

// Customer holds the borrowing-rights flag the ledger checks. Revoking
// privileges blocks future borrows only; open loans stay open.
type Customer struct {
	CustomerID uuid.UUID `json:"customerId"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Privileges bool      `json:"privileges"`
}
