package lending

import (
	"strconv"
	"time"

	"github.com/bookloop/backend/internal/domain/shared"
	"github.com/bookloop/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LoanStatus represents the lifecycle state of a loan
type LoanStatus int

const (
	LoanActive LoanStatus = iota
	LoanReturned
	LoanLate
	LoanDisputed
)

// IsValid checks if the status is a valid LoanStatus
func (s LoanStatus) IsValid() bool {
	return s >= LoanActive && s <= LoanDisputed
}

// IsTerminal returns true for states a loan can never leave.
// Disputed is terminal too; it is entered only through the moderation
// path, never by Settle.
func (s LoanStatus) IsTerminal() bool {
	return s != LoanActive
}

// String returns the display name of the status
func (s LoanStatus) String() string {
	switch s {
	case LoanActive:
		return "active"
	case LoanReturned:
		return "returned"
	case LoanLate:
		return "late"
	case LoanDisputed:
		return "disputed"
	}
	return "unknown"
}

// Loan is one borrowing episode of exactly one book. Settlement math
// runs on the values frozen here at borrow time (deposit paid,
// deadline), never on the current Book, so a lender cannot change the
// terms of an in-flight loan.
type Loan struct {
	shared.BaseAggregateRoot
	ID          uint64          `gorm:"primaryKey;autoIncrement"`
	BookID      uint64          `gorm:"index;not null"`
	Borrower    string          `gorm:"index;not null;size:128"`
	DepositPaid decimal.Decimal `gorm:"type:numeric(20,8);not null"`
	EscrowRef   uuid.UUID       `gorm:"type:uuid"`
	StartedAt   time.Time       `gorm:"not null"`
	Deadline    time.Time       `gorm:"not null"`
	Status      LoanStatus      `gorm:"not null;default:0"`
	ReturnedAt  *time.Time
}

// AttachEscrow records the ledger's escrow reference for the deposit
func (l *Loan) AttachEscrow(ref uuid.UUID) {
	l.EscrowRef = ref
}

// Settle closes the loan: computes the settlement from the loan's
// frozen inputs, assigns the terminal status (Late when past deadline,
// Returned otherwise) and restores the book. Mutates exactly once;
// a second call fails with ErrLoanNotActive.
func (l *Loan) Settle(book *Book, conditionAfter Condition, now time.Time, policy SettlementPolicy) (*Settlement, error) {
	if l.Status != LoanActive {
		return nil, ErrLoanNotActive
	}
	if !conditionAfter.IsValid() {
		return nil, ErrInvalidCondition
	}

	settlement := policy.Settle(l.DepositMoney(), l.Deadline, conditionAfter, now)

	if settlement.LateDays > 0 {
		l.Status = LoanLate
	} else {
		l.Status = LoanReturned
	}
	returnedAt := now
	l.ReturnedAt = &returnedAt
	l.UpdatedAt = now

	book.completeReturn(now)

	l.AddDomainEvent(NewLoanSettledEvent(l, book, settlement, conditionAfter))

	return settlement, nil
}

// DepositMoney returns the deposit paid as Money
func (l *Loan) DepositMoney() valueobject.Money {
	return valueobject.NewCredits(l.DepositPaid)
}

// IsActive returns true while the loan has not been settled
func (l *Loan) IsActive() bool {
	return l.Status == LoanActive
}

// AggregateKey returns the loan id as an event aggregate id
func (l *Loan) AggregateKey() string {
	return strconv.FormatUint(l.ID, 10)
}
