package lending

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bookloop/backend/internal/domain/lending"
	"github.com/bookloop/backend/internal/domain/shared"
)

// ListBookRequest represents a request to list a book for lending
type ListBookRequest struct {
	Owner           string          `json:"owner" binding:"required,address"`
	Title           string          `json:"title" binding:"required,max=200"`
	Author          string          `json:"author" binding:"required,max=200"`
	CatalogID       string          `json:"catalog_id" binding:"omitempty,max=32"`
	Condition       int             `json:"condition" binding:"min=0,max=3"`
	DepositAmount   decimal.Decimal `json:"deposit_amount" binding:"required"`
	DurationSeconds int64           `json:"duration_seconds" binding:"required,gt=0"`
	PickupLocation  string          `json:"pickup_location" binding:"required,max=200"`
}

// BorrowRequest represents a request to borrow a listed book
type BorrowRequest struct {
	Borrower      string          `json:"borrower" binding:"required,address"`
	DepositAmount decimal.Decimal `json:"deposit_amount" binding:"required"`
}

// ReturnRequest represents a request to return a borrowed book
type ReturnRequest struct {
	ConditionAfter int `json:"condition_after" binding:"min=0,max=3"`
}

// DepositRequest represents an on-ramp credit purchase
type DepositRequest struct {
	Address string          `json:"address" binding:"required,address"`
	Amount  decimal.Decimal `json:"amount" binding:"required"`
}

// BookListFilter represents filter options for book listings
type BookListFilter struct {
	Owner         string `form:"owner"`
	AvailableOnly bool   `form:"available_only"`
	Page          int    `form:"page" binding:"omitempty,min=1"`
	PageSize      int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// Pagination resolves the page fields against the repository defaults
func (f BookListFilter) Pagination() shared.Filter {
	repoFilter := shared.DefaultFilter()
	if f.Page > 0 {
		repoFilter.Page = f.Page
	}
	if f.PageSize > 0 {
		repoFilter.PageSize = f.PageSize
	}
	return repoFilter
}

// BookResponse represents a book in API responses
type BookResponse struct {
	ID              uint64          `json:"id"`
	Owner           string          `json:"owner"`
	Title           string          `json:"title"`
	Author          string          `json:"author"`
	CatalogID       string          `json:"catalog_id,omitempty"`
	Condition       int             `json:"condition"`
	ConditionLabel  string          `json:"condition_label"`
	DepositAmount   decimal.Decimal `json:"deposit_amount"`
	DurationSeconds int64           `json:"duration_seconds"`
	PickupLocation  string          `json:"pickup_location"`
	Available       bool            `json:"available"`
	TimesLent       uint64          `json:"times_lent"`
	CreatedAt       time.Time       `json:"created_at"`
}

// LoanResponse represents a loan in API responses
type LoanResponse struct {
	ID          uint64          `json:"id"`
	BookID      uint64          `json:"book_id"`
	BookTitle   string          `json:"book_title,omitempty"`
	Borrower    string          `json:"borrower"`
	DepositPaid decimal.Decimal `json:"deposit_paid"`
	StartedAt   time.Time       `json:"started_at"`
	Deadline    time.Time       `json:"deadline"`
	Status      string          `json:"status"`
	ReturnedAt  *time.Time      `json:"returned_at,omitempty"`
}

// SettlementResponse represents the outcome of a return
type SettlementResponse struct {
	LoanID         uint64          `json:"loan_id"`
	BookID         uint64          `json:"book_id"`
	Status         string          `json:"status"`
	LateDays       int64           `json:"late_days"`
	ConditionAfter string          `json:"condition_after"`
	Refund         decimal.Decimal `json:"refund"`
	Penalty        decimal.Decimal `json:"penalty"`
	OwnerReward    decimal.Decimal `json:"owner_reward"`
	BorrowerReward decimal.Decimal `json:"borrower_reward"`
}

// BalanceResponse represents an account balance
type BalanceResponse struct {
	Address string          `json:"address"`
	Balance decimal.Decimal `json:"balance"`
}

// ToBookResponse converts a book aggregate to its response form
func ToBookResponse(book *lending.Book) BookResponse {
	return BookResponse{
		ID:              book.ID,
		Owner:           book.Owner,
		Title:           book.Title,
		Author:          book.Author,
		CatalogID:       book.CatalogID,
		Condition:       int(book.Condition),
		ConditionLabel:  book.Condition.String(),
		DepositAmount:   book.DepositAmount,
		DurationSeconds: book.DurationSeconds,
		PickupLocation:  book.PickupLocation,
		Available:       book.Available,
		TimesLent:       book.TimesLent,
		CreatedAt:       book.CreatedAt,
	}
}

// ToLoanResponse converts a loan aggregate to its response form.
// The title is looked up separately; pass empty when unknown.
func ToLoanResponse(loan *lending.Loan, bookTitle string) LoanResponse {
	return LoanResponse{
		ID:          loan.ID,
		BookID:      loan.BookID,
		BookTitle:   bookTitle,
		Borrower:    loan.Borrower,
		DepositPaid: loan.DepositPaid,
		StartedAt:   loan.StartedAt,
		Deadline:    loan.Deadline,
		Status:      loan.Status.String(),
		ReturnedAt:  loan.ReturnedAt,
	}
}

// ToSettlementResponse converts a settlement outcome to its response form
func ToSettlementResponse(loan *lending.Loan, s *lending.Settlement, conditionAfter lending.Condition) SettlementResponse {
	return SettlementResponse{
		LoanID:         loan.ID,
		BookID:         loan.BookID,
		Status:         loan.Status.String(),
		LateDays:       s.LateDays,
		ConditionAfter: conditionAfter.String(),
		Refund:         s.Refund.Amount(),
		Penalty:        s.Penalty.Amount(),
		OwnerReward:    s.OwnerReward.Amount(),
		BorrowerReward: s.BorrowerReward.Amount(),
	}
}
