package dto

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"library-lending/internal/domain/lending"
)

type CreateTransactionRequest struct {
	CustomerID string `json:"customerId"`
	BookID     string `json:"bookId"`
	BorrowDate string `json:"borrowDate"`
	DueDate    string `json:"dueDate"`
}

func (r *CreateTransactionRequest) Validate() error {
	if _, err := uuid.Parse(r.CustomerID); err != nil {
		return fmt.Errorf("invalid customerId: %w", err)
	}
	if _, err := uuid.Parse(r.BookID); err != nil {
		return fmt.Errorf("invalid bookId: %w", err)
	}
	if _, err := time.Parse(time.DateOnly, r.BorrowDate); err != nil || r.BorrowDate == "" {
		return fmt.Errorf("invalid borrowDate format (use YYYY-MM-DD): %w", err)
	}
	if _, err := time.Parse(time.DateOnly, r.DueDate); err != nil || r.DueDate == "" {
		return fmt.Errorf("invalid dueDate format (use YYYY-MM-DD): %w", err)
	}
	return nil
}

type BorrowWithDateRequest struct {
	BorrowDate string `json:"borrowDate"`
}

func (r *BorrowWithDateRequest) Validate() error {
	if _, err := time.Parse(time.DateOnly, r.BorrowDate); err != nil || r.BorrowDate == "" {
		return fmt.Errorf("invalid borrowDate format (use YYYY-MM-DD): %w", err)
	}
	return nil
}

type ReturnWithDateRequest struct {
	ReturnDate string `json:"returnDate"`
}

func (r *ReturnWithDateRequest) Validate() error {
	if _, err := time.Parse(time.DateOnly, r.ReturnDate); err != nil || r.ReturnDate == "" {
		return fmt.Errorf("invalid returnDate format (use YYYY-MM-DD): %w", err)
	}
	return nil
}

type TokenRequest struct {
	Username string `json:"username"`
}

type TransactionResponse struct {
	TransactionID string            `json:"transactionId"`
	CustomerID    string            `json:"customerId"`
	BookID        string            `json:"bookId"`
	BorrowDate    string            `json:"borrowDate"`
	DueDate       string            `json:"dueDate"`
	ReturnDate    *string           `json:"returnDate,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
	Customer      *CustomerResponse `json:"customer,omitempty"`
	Book          *BookResponse     `json:"book,omitempty"`
}

type CustomerResponse struct {
	CustomerID string `json:"customerId"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Privileges bool   `json:"privileges"`
}

type BookResponse struct {
	BookID          string   `json:"bookId"`
	Title           string   `json:"title"`
	ISBN            string   `json:"isbn"`
	PublicationYear int      `json:"publicationYear"`
	IsAvailable     bool     `json:"isAvailable"`
	Authors         []string `json:"authors"`
}

type ReturnResponse struct {
	TransactionID string `json:"transactionId"`
	BookID        string `json:"bookId"`
}

type HistoryResponse struct {
	Data        []TransactionResponse `json:"data"`
	CurrentPage int                   `json:"currentPage"`
	PageSize    int                   `json:"pageSize"`
	TotalItems  int64                 `json:"totalItems"`
	TotalPages  int                   `json:"totalPages"`
}

type ErrorDetail struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

func NewTransactionResponse(txn *lending.Transaction) TransactionResponse {
	resp := TransactionResponse{
		TransactionID: txn.TransactionID.String(),
		CustomerID:    txn.CustomerID.String(),
		BookID:        txn.BookID.String(),
		BorrowDate:    txn.BorrowDate.Format(time.DateOnly),
		DueDate:       txn.DueDate.Format(time.DateOnly),
		CreatedAt:     txn.CreatedAt,
		UpdatedAt:     txn.UpdatedAt,
	}

	if txn.ReturnDate != nil {
		s := txn.ReturnDate.Format(time.DateOnly)
		resp.ReturnDate = &s
	}
	if txn.Customer != nil {
		resp.Customer = &CustomerResponse{
			CustomerID: txn.Customer.CustomerID.String(),
			Name:       txn.Customer.Name,
			Email:      txn.Customer.Email,
			Privileges: txn.Customer.Privileges,
		}
	}
	if txn.Book != nil {
		resp.Book = &BookResponse{
			BookID:          txn.Book.BookID.String(),
			Title:           txn.Book.Title,
			ISBN:            txn.Book.ISBN,
			PublicationYear: txn.Book.PublicationYear,
			IsAvailable:     txn.Book.IsAvailable,
			Authors:         txn.Book.Authors,
		}
	}
	return resp
}

func NewHistoryResponse(page *lending.TransactionPage) HistoryResponse {
	data := make([]TransactionResponse, len(page.Items))
	for i := range page.Items {
		data[i] = NewTransactionResponse(&page.Items[i])
	}
	return HistoryResponse{
		Data:        data,
		CurrentPage: page.Page,
		PageSize:    page.Size,
		TotalItems:  page.TotalItems,
		TotalPages:  page.TotalPages,
	}
}
