package book

import (
	"time"

	"github.com/google/uuid"
)

// Book is a single physical copy. Availability is owned by the lending
// ledger; every other field belongs to catalog management.
type Book struct {
	BookID          uuid.UUID `json:"bookId"`
	Title           string    `json:"title"`
	ISBN            string    `json:"isbn"`
	PublicationYear int       `json:"publicationYear"`
	IsAvailable     bool      `json:"isAvailable"`
	CreatedAt       time.Time `json:"createdAt"`
	Authors         []string  `json:"authors,omitempty"`
}
