package ledger

import (
	"context"

	"github.com/bookloop/backend/internal/domain/shared"
	"github.com/bookloop/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// TreasuryAccount is the reserved identity that mints reward credits.
// It is not subject to balance checks.
const TreasuryAccount = "treasury"

// EscrowRef identifies a deposit held in escrow
type EscrowRef = uuid.UUID

// Split is one payout leg of an escrow release
type Split struct {
	Payee  string
	Amount valueobject.Money
}

// Adapter abstracts the ledger of record: atomic value transfer and
// escrow custody. The lending engine calls it inside its own commit
// boundary; implementations must honor a transaction carried in the
// context so the value movement and the state transition commit
// together.
type Adapter interface {
	// Deposit credits an account from the external on-ramp
	Deposit(ctx context.Context, to string, amount valueobject.Money) error

	// Transfer moves value between accounts.
	// Fails with ErrInsufficientFunds when the source balance is short.
	Transfer(ctx context.Context, from, to string, amount valueobject.Money) error

	// EscrowHold debits the payer and parks the value with the ledger
	// as custodian until released.
	EscrowHold(ctx context.Context, payer string, amount valueobject.Money) (EscrowRef, error)

	// EscrowRelease pays a held deposit out to the given splits.
	// The splits must sum to the held amount exactly; a hold releases
	// at most once.
	EscrowRelease(ctx context.Context, ref EscrowRef, splits []Split) error

	// Balance returns an account's current balance. Unknown accounts
	// have a zero balance.
	Balance(ctx context.Context, address string) (valueobject.Money, error)
}

// Ledger adapter errors
var (
	ErrInsufficientFunds = shared.NewDomainError("INSUFFICIENT_FUNDS", "Account balance is insufficient")
	ErrEscrowNotFound    = shared.NewDomainError("NOT_FOUND", "Escrow hold not found")
	ErrEscrowReleased    = shared.NewDomainError("INVALID_STATE", "Escrow hold was already released")
	ErrSplitMismatch     = shared.NewDomainError("LEDGER", "Escrow splits do not sum to the held amount")
)
