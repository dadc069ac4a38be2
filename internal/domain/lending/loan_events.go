package lending

import (
	"time"

	"github.com/bookloop/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// LoanOpenedEvent is raised when a borrow succeeds and the deposit is
// held in escrow.
type LoanOpenedEvent struct {
	shared.BaseDomainEvent
	LoanID      uint64          `json:"loan_id"`
	BookID      uint64          `json:"book_id"`
	Borrower    string          `json:"borrower"`
	DepositPaid decimal.Decimal `json:"deposit_paid"`
	Deadline    time.Time       `json:"deadline"`
}

// NewLoanOpenedEvent creates a new LoanOpenedEvent
func NewLoanOpenedEvent(loan *Loan) *LoanOpenedEvent {
	return &LoanOpenedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLoanOpened, AggregateTypeLoan, loan.AggregateKey()),
		LoanID:          loan.ID,
		BookID:          loan.BookID,
		Borrower:        loan.Borrower,
		DepositPaid:     loan.DepositPaid,
		Deadline:        loan.Deadline,
	}
}

// EventType returns the event type name
func (e *LoanOpenedEvent) EventType() string {
	return EventTypeLoanOpened
}

// LoanSettledEvent is raised when a return settles. It carries
// everything the reputation ledger needs so the consumer never reads
// lending state. Consumers deduplicate by LoanID: a replayed
// settlement must not double-count.
type LoanSettledEvent struct {
	shared.BaseDomainEvent
	LoanID         uint64          `json:"loan_id"`
	BookID         uint64          `json:"book_id"`
	Owner          string          `json:"owner"`
	Borrower       string          `json:"borrower"`
	Refund         decimal.Decimal `json:"refund"`
	Penalty        decimal.Decimal `json:"penalty"`
	OwnerReward    decimal.Decimal `json:"owner_reward"`
	BorrowerReward decimal.Decimal `json:"borrower_reward"`
	LateDays       int64           `json:"late_days"`
	ConditionAfter Condition       `json:"condition_after"`
	Status         LoanStatus      `json:"status"`
}

// NewLoanSettledEvent creates a new LoanSettledEvent
func NewLoanSettledEvent(loan *Loan, book *Book, settlement *Settlement, conditionAfter Condition) *LoanSettledEvent {
	return &LoanSettledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLoanSettled, AggregateTypeLoan, loan.AggregateKey()),
		LoanID:          loan.ID,
		BookID:          book.ID,
		Owner:           book.Owner,
		Borrower:        loan.Borrower,
		Refund:          settlement.Refund.Amount(),
		Penalty:         settlement.Penalty.Amount(),
		OwnerReward:     settlement.OwnerReward.Amount(),
		BorrowerReward:  settlement.BorrowerReward.Amount(),
		LateDays:        settlement.LateDays,
		ConditionAfter:  conditionAfter,
		Status:          loan.Status,
	}
}

// EventType returns the event type name
func (e *LoanSettledEvent) EventType() string {
	return EventTypeLoanSettled
}
