package lending

import (
	"strconv"
	"time"

	"github.com/bookloop/backend/internal/domain/shared"
	"github.com/bookloop/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Condition represents the physical condition of a listed book.
// The set is closed; values outside 0..3 are rejected at the boundary.
type Condition int

const (
	ConditionMint Condition = iota
	ConditionGood
	ConditionFair
	ConditionDamaged
)

// IsValid checks if the condition is within the closed set
func (c Condition) IsValid() bool {
	return c >= ConditionMint && c <= ConditionDamaged
}

// String returns the display name of the condition
func (c Condition) String() string {
	switch c {
	case ConditionMint:
		return "mint"
	case ConditionGood:
		return "good"
	case ConditionFair:
		return "fair"
	case ConditionDamaged:
		return "damaged"
	}
	return "unknown"
}

// Book is a listable lendable item. Listing terms (condition, deposit,
// duration, pickup location) are fixed at creation; only availability
// and the times-lent counter change over the book's life. Books are
// never deleted.
type Book struct {
	shared.BaseAggregateRoot
	ID              uint64          `gorm:"primaryKey;autoIncrement"`
	Owner           string          `gorm:"index;not null;size:128"`
	Title           string          `gorm:"not null;size:200"`
	Author          string          `gorm:"not null;size:200"`
	CatalogID       string          `gorm:"size:32"`
	Condition       Condition       `gorm:"not null"`
	DepositAmount   decimal.Decimal `gorm:"type:numeric(20,8);not null"`
	DurationSeconds int64           `gorm:"not null"`
	PickupLocation  string          `gorm:"not null;size:200"`
	Available       bool            `gorm:"not null;default:true"`
	TimesLent       uint64          `gorm:"not null;default:0"`
}

// NewBook creates a new listing. No value moves at listing time.
func NewBook(owner, title, author, catalogID string, condition Condition, deposit valueobject.Money, durationSeconds int64, pickupLocation string) (*Book, error) {
	if owner == "" {
		return nil, shared.NewDomainError("VALIDATION", "Owner identity cannot be empty")
	}
	if title == "" {
		return nil, shared.NewDomainError("VALIDATION", "Title cannot be empty")
	}
	if author == "" {
		return nil, shared.NewDomainError("VALIDATION", "Author cannot be empty")
	}
	if pickupLocation == "" {
		return nil, shared.NewDomainError("VALIDATION", "Pickup location cannot be empty")
	}
	if !condition.IsValid() {
		return nil, shared.NewDomainError("VALIDATION", "Condition must be mint, good, fair or damaged")
	}
	if !deposit.IsPositive() {
		return nil, shared.NewDomainError("VALIDATION", "Deposit amount must be positive")
	}
	if durationSeconds <= 0 {
		return nil, shared.NewDomainError("VALIDATION", "Loan duration must be positive")
	}

	return &Book{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Owner:             owner,
		Title:             title,
		Author:            author,
		CatalogID:         catalogID,
		Condition:         condition,
		DepositAmount:     deposit.Amount(),
		DurationSeconds:   durationSeconds,
		PickupLocation:    pickupLocation,
		Available:         true,
		TimesLent:         0,
	}, nil
}

// Lend opens a loan on this book. The deposit offered must match the
// listed deposit exactly; partial or over payment is not accepted. The
// availability flag flips with the loan's creation so at most one loan
// is ever active per book.
func (b *Book) Lend(borrower string, offeredDeposit valueobject.Money, now time.Time) (*Loan, error) {
	if !b.Available {
		return nil, ErrNotAvailable
	}
	if borrower == b.Owner {
		return nil, ErrSelfBorrowForbidden
	}
	if !offeredDeposit.Amount().Equal(b.DepositAmount) {
		return nil, ErrDepositMismatch
	}

	b.Available = false
	b.UpdatedAt = now

	loan := &Loan{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		BookID:            b.ID,
		Borrower:          borrower,
		DepositPaid:       offeredDeposit.Amount(),
		StartedAt:         now,
		Deadline:          now.Add(time.Duration(b.DurationSeconds) * time.Second),
		Status:            LoanActive,
	}
	return loan, nil
}

// completeReturn restores availability and bumps the lifetime counter.
// Called exactly once, from Loan.Settle.
func (b *Book) completeReturn(now time.Time) {
	b.Available = true
	b.TimesLent++
	b.UpdatedAt = now
}

// DepositMoney returns the listed deposit as Money
func (b *Book) DepositMoney() valueobject.Money {
	return valueobject.NewCredits(b.DepositAmount)
}

// AggregateKey returns the book id as an event aggregate id
func (b *Book) AggregateKey() string {
	return strconv.FormatUint(b.ID, 10)
}
