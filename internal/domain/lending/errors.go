package lending

import "github.com/bookloop/backend/internal/domain/shared"

// Business-rule errors. Each aborts its operation with no partial
// effect and is reported to the caller verbatim, never retried.
var (
	ErrNotAvailable        = shared.NewDomainError("NOT_AVAILABLE", "Book is already borrowed")
	ErrSelfBorrowForbidden = shared.NewDomainError("SELF_BORROW_FORBIDDEN", "An owner may not borrow their own listing")
	ErrDepositMismatch     = shared.NewDomainError("DEPOSIT_MISMATCH", "Offered deposit must equal the listed deposit exactly")
	ErrLoanNotActive       = shared.NewDomainError("LOAN_NOT_ACTIVE", "Loan is not active")
	ErrInvalidCondition    = shared.NewDomainError("INVALID_CONDITION", "Condition after return is not a valid condition")
)
