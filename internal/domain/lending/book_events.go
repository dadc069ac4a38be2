package lending

import (
	"github.com/bookloop/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypeBook = "Book"
	AggregateTypeLoan = "Loan"
)

// Event type constants
const (
	EventTypeBookListed  = "BookListed"
	EventTypeLoanOpened  = "LoanOpened"
	EventTypeLoanSettled = "LoanSettled"
)

// BookListedEvent is raised when an owner lists a book.
// Listing alone earns nothing; the reputation ledger ignores it for
// counters but consumers may use it for catalog projections.
type BookListedEvent struct {
	shared.BaseDomainEvent
	BookID        uint64          `json:"book_id"`
	Owner         string          `json:"owner"`
	Title         string          `json:"title"`
	DepositAmount decimal.Decimal `json:"deposit_amount"`
}

// NewBookListedEvent creates a new BookListedEvent
func NewBookListedEvent(book *Book) *BookListedEvent {
	return &BookListedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBookListed, AggregateTypeBook, book.AggregateKey()),
		BookID:          book.ID,
		Owner:           book.Owner,
		Title:           book.Title,
		DepositAmount:   book.DepositAmount,
	}
}

// EventType returns the event type name
func (e *BookListedEvent) EventType() string {
	return EventTypeBookListed
}
