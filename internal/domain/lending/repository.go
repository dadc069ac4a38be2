package lending

import (
	"context"

	"github.com/bookloop/backend/internal/domain/shared"
)

// BookQuery narrows a book listing. The zero value matches every book.
type BookQuery struct {
	Owner         string
	AvailableOnly bool
}

// BookRepository defines persistence operations for books
type BookRepository interface {
	// FindByID finds a book by its ID
	FindByID(ctx context.Context, id uint64) (*Book, error)

	// FindByIDForUpdate finds a book and locks its row for the
	// remainder of the surrounding transaction. Concurrent borrows of
	// the same book serialize here; the loser observes the committed
	// post-state.
	FindByIDForUpdate(ctx context.Context, id uint64) (*Book, error)

	// Find returns the books matching the query, paginated. The
	// predicates apply before pagination so every non-final page is
	// full.
	Find(ctx context.Context, query BookQuery, filter shared.Filter) ([]Book, error)

	// Save creates or updates a book
	Save(ctx context.Context, book *Book) error

	// Count returns how many books match the query
	Count(ctx context.Context, query BookQuery) (int64, error)
}

// LoanRepository defines persistence operations for loans
type LoanRepository interface {
	// FindByID finds a loan by its ID
	FindByID(ctx context.Context, id uint64) (*Loan, error)

	// FindByIDForUpdate finds a loan and locks its row for the
	// remainder of the surrounding transaction, serializing
	// concurrent returns of the same loan.
	FindByIDForUpdate(ctx context.Context, id uint64) (*Loan, error)

	// FindActiveByBook returns the active loan on a book, if any
	FindActiveByBook(ctx context.Context, bookID uint64) (*Loan, error)

	// FindByBorrower returns all loans taken by a borrower
	FindByBorrower(ctx context.Context, borrower string, filter shared.Filter) ([]Loan, error)

	// Save creates or updates a loan
	Save(ctx context.Context, loan *Loan) error

	// CountByBorrower returns how many loans a borrower has taken
	CountByBorrower(ctx context.Context, borrower string) (int64, error)
}

// StatsRepository maintains the platform-wide monotonic counters.
// List increments the book total, Borrow the loan total; Return never
// changes either.
type StatsRepository interface {
	IncrementBooks(ctx context.Context) error
	IncrementLoans(ctx context.Context) error
	Totals(ctx context.Context) (totalBooks, totalLoans uint64, err error)
}
