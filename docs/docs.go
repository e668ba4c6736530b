// Package docs provides the generated OpenAPI specification for the HTTP API.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/auth/token": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Authentication"],
                "summary": "Generate a JWT bearer token",
                "parameters": [
                    {
                        "description": "username",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/dto.TokenRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "Token successfully generated", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "400": {"description": "Invalid request parameters", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/transactions": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Transactions"],
                "summary": "Create a loan with explicit dates",
                "parameters": [
                    {
                        "description": "Loan creation request payload",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/dto.CreateTransactionRequest"}
                    }
                ],
                "responses": {
                    "201": {"description": "Loan successfully created", "schema": {"$ref": "#/definitions/dto.TransactionResponse"}},
                    "400": {"description": "Invalid request payload or date range", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "403": {"description": "Customer lacks borrowing privileges", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "404": {"description": "Book or customer not found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "409": {"description": "Book is already on loan", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "503": {"description": "Transient conflict, retry", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/transactions/borrowBook/{customerId}/{bookId}": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Transactions"],
                "summary": "Borrow a book",
                "parameters": [
                    {"type": "string", "description": "Customer ID", "name": "customerId", "in": "path", "required": true},
                    {"type": "string", "description": "Book ID", "name": "bookId", "in": "path", "required": true}
                ],
                "responses": {
                    "201": {"description": "Loan successfully created", "schema": {"$ref": "#/definitions/dto.TransactionResponse"}},
                    "400": {"description": "Invalid identifiers", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "403": {"description": "Customer lacks borrowing privileges", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "404": {"description": "Book or customer not found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "409": {"description": "Book is already on loan", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "503": {"description": "Transient conflict, retry", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/transactions/borrowBook/{customerId}/{bookId}/backdated": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Transactions"],
                "summary": "Borrow a book with an explicit borrow date",
                "parameters": [
                    {"type": "string", "description": "Customer ID", "name": "customerId", "in": "path", "required": true},
                    {"type": "string", "description": "Book ID", "name": "bookId", "in": "path", "required": true},
                    {
                        "description": "Borrow date payload",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/dto.BorrowWithDateRequest"}
                    }
                ],
                "responses": {
                    "201": {"description": "Loan successfully created", "schema": {"$ref": "#/definitions/dto.TransactionResponse"}},
                    "400": {"description": "Invalid identifiers or payload", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "403": {"description": "Customer lacks borrowing privileges", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "404": {"description": "Book or customer not found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "409": {"description": "Book is already on loan", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "503": {"description": "Transient conflict, retry", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/transactions/returnBook/{bookId}": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Transactions"],
                "summary": "Return a book",
                "parameters": [
                    {"type": "string", "description": "Book ID", "name": "bookId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Book successfully returned", "schema": {"$ref": "#/definitions/dto.ReturnResponse"}},
                    "400": {"description": "Invalid book ID", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "409": {"description": "No open loan for the book", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "503": {"description": "Transient conflict, retry", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/transactions/returnBook/{bookId}/withDate": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Transactions"],
                "summary": "Return a book with an explicit return date",
                "parameters": [
                    {"type": "string", "description": "Book ID", "name": "bookId", "in": "path", "required": true},
                    {
                        "description": "Return date payload",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/dto.ReturnWithDateRequest"}
                    }
                ],
                "responses": {
                    "204": {"description": "Loans closed"},
                    "400": {"description": "Invalid book ID or payload", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "409": {"description": "Book has no recorded loans", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "503": {"description": "Transient conflict, retry", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/transactions/history/{customerId}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Transactions"],
                "summary": "View a customer's borrowing history",
                "parameters": [
                    {"type": "string", "description": "Customer ID", "name": "customerId", "in": "path", "required": true},
                    {"type": "integer", "description": "Zero-based page number", "name": "page", "in": "query"},
                    {"type": "integer", "description": "Page size (default 5, max 100)", "name": "size", "in": "query"},
                    {"type": "string", "description": "Sort field: borrowDate, dueDate or returnDate", "name": "sortBy", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "History page", "schema": {"$ref": "#/definitions/dto.HistoryResponse"}},
                    "400": {"description": "Invalid identifiers or paging parameters", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "404": {"description": "Customer not found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/transactions/{transactionId}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Transactions"],
                "summary": "Retrieve a single loan",
                "parameters": [
                    {"type": "string", "description": "Transaction ID", "name": "transactionId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Loan details", "schema": {"$ref": "#/definitions/dto.TransactionResponse"}},
                    "400": {"description": "Invalid transaction ID", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "404": {"description": "Transaction not found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "dto.BookResponse": {
            "type": "object",
            "properties": {
                "authors": {"type": "array", "items": {"type": "string"}},
                "bookId": {"type": "string"},
                "isAvailable": {"type": "boolean"},
                "isbn": {"type": "string"},
                "publicationYear": {"type": "integer"},
                "title": {"type": "string"}
            }
        },
        "dto.BorrowWithDateRequest": {
            "type": "object",
            "properties": {
                "borrowDate": {"type": "string"}
            }
        },
        "dto.CreateTransactionRequest": {
            "type": "object",
            "properties": {
                "bookId": {"type": "string"},
                "borrowDate": {"type": "string"},
                "customerId": {"type": "string"},
                "dueDate": {"type": "string"}
            }
        },
        "dto.CustomerResponse": {
            "type": "object",
            "properties": {
                "customerId": {"type": "string"},
                "email": {"type": "string"},
                "name": {"type": "string"},
                "privileges": {"type": "boolean"}
            }
        },
        "dto.ErrorDetail": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "field": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "dto.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"$ref": "#/definitions/dto.ErrorDetail"}
            }
        },
        "dto.HistoryResponse": {
            "type": "object",
            "properties": {
                "currentPage": {"type": "integer"},
                "data": {"type": "array", "items": {"$ref": "#/definitions/dto.TransactionResponse"}},
                "pageSize": {"type": "integer"},
                "totalItems": {"type": "integer"},
                "totalPages": {"type": "integer"}
            }
        },
        "dto.ReturnResponse": {
            "type": "object",
            "properties": {
                "bookId": {"type": "string"},
                "transactionId": {"type": "string"}
            }
        },
        "dto.ReturnWithDateRequest": {
            "type": "object",
            "properties": {
                "returnDate": {"type": "string"}
            }
        },
        "dto.TokenRequest": {
            "type": "object",
            "properties": {
                "username": {"type": "string"}
            }
        },
        "dto.TransactionResponse": {
            "type": "object",
            "properties": {
                "book": {"$ref": "#/definitions/dto.BookResponse"},
                "bookId": {"type": "string"},
                "borrowDate": {"type": "string"},
                "createdAt": {"type": "string"},
                "customer": {"$ref": "#/definitions/dto.CustomerResponse"},
                "customerId": {"type": "string"},
                "dueDate": {"type": "string"},
                "returnDate": {"type": "string"},
                "transactionId": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Library Lending API",
	Description:      "Book lending ledger: borrow and return books, view borrowing history.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
