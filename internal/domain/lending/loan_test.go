package lending

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookloop/backend/internal/domain/shared/valueobject"
)

func openTestLoan(t *testing.T, now time.Time) (*Book, *Loan) {
	t.Helper()
	book := newTestBook(t)
	loan, err := book.Lend("0xborrower", valueobject.NewCreditsFromInt(100), now)
	require.NoError(t, err)
	loan.ID = 7
	return book, loan
}

func TestLoanStatus(t *testing.T) {
	assert.True(t, LoanActive.IsValid())
	assert.True(t, LoanDisputed.IsValid())
	assert.False(t, LoanStatus(4).IsValid())
	assert.False(t, LoanStatus(-1).IsValid())

	assert.False(t, LoanActive.IsTerminal())
	assert.True(t, LoanReturned.IsTerminal())
	assert.True(t, LoanLate.IsTerminal())
	assert.True(t, LoanDisputed.IsTerminal())

	assert.Equal(t, "active", LoanActive.String())
	assert.Equal(t, "returned", LoanReturned.String())
	assert.Equal(t, "late", LoanLate.String())
	assert.Equal(t, "disputed", LoanDisputed.String())
}

func TestLoan_Settle(t *testing.T) {
	start := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	policy := DefaultSettlementPolicy()

	t.Run("on time return closes as Returned and restores the book", func(t *testing.T) {
		book, loan := openTestLoan(t, start)
		returnedAt := loan.Deadline.Add(-time.Hour)

		s, err := loan.Settle(book, ConditionGood, returnedAt, policy)
		require.NoError(t, err)

		assert.Equal(t, LoanReturned, loan.Status)
		require.NotNil(t, loan.ReturnedAt)
		assert.Equal(t, returnedAt, *loan.ReturnedAt)
		assert.True(t, book.Available)
		assert.Equal(t, uint64(1), book.TimesLent)
		assert.True(t, s.OnTime())
		assert.True(t, s.Refund.Amount().Equal(loan.DepositPaid))
	})

	t.Run("late return closes as Late", func(t *testing.T) {
		book, loan := openTestLoan(t, start)
		returnedAt := loan.Deadline.Add(72 * time.Hour)

		s, err := loan.Settle(book, ConditionGood, returnedAt, policy)
		require.NoError(t, err)

		assert.Equal(t, LoanLate, loan.Status)
		assert.Equal(t, int64(3), s.LateDays)
		assert.True(t, book.Available, "the book comes back even on a late return")
	})

	t.Run("settling twice fails", func(t *testing.T) {
		book, loan := openTestLoan(t, start)
		_, err := loan.Settle(book, ConditionGood, loan.Deadline, policy)
		require.NoError(t, err)

		_, err = loan.Settle(book, ConditionGood, loan.Deadline, policy)
		assert.ErrorIs(t, err, ErrLoanNotActive)
		assert.Equal(t, uint64(1), book.TimesLent, "a rejected settle must not touch the book")
	})

	t.Run("rejects an out of range condition", func(t *testing.T) {
		book, loan := openTestLoan(t, start)
		_, err := loan.Settle(book, Condition(9), loan.Deadline, policy)
		assert.ErrorIs(t, err, ErrInvalidCondition)
		assert.True(t, loan.IsActive(), "loan stays active after a rejected settle")
	})

	t.Run("emits a settled event carrying the full outcome", func(t *testing.T) {
		book, loan := openTestLoan(t, start)
		returnedAt := loan.Deadline.Add(24 * time.Hour)

		_, err := loan.Settle(book, ConditionDamaged, returnedAt, policy)
		require.NoError(t, err)

		events := loan.GetDomainEvents()
		require.Len(t, events, 1)
		settled, ok := events[0].(*LoanSettledEvent)
		require.True(t, ok)
		assert.Equal(t, loan.ID, settled.LoanID)
		assert.Equal(t, book.ID, settled.BookID)
		assert.Equal(t, book.Owner, settled.Owner)
		assert.Equal(t, loan.Borrower, settled.Borrower)
		assert.Equal(t, int64(1), settled.LateDays)
		assert.Equal(t, ConditionDamaged, settled.ConditionAfter)
		// 50% damage + 5% one day late on a 100 deposit.
		assert.True(t, settled.Penalty.Equal(decimal.NewFromInt(55)))
		assert.True(t, settled.Refund.Equal(decimal.NewFromInt(45)))
		assert.True(t, settled.BorrowerReward.IsZero())
	})

	t.Run("settles from the loan's frozen terms not the book's", func(t *testing.T) {
		book, loan := openTestLoan(t, start)
		// A listing edit after borrow must not change the settlement.
		book.DepositAmount = decimal.NewFromInt(500)

		s, err := loan.Settle(book, ConditionGood, loan.Deadline, policy)
		require.NoError(t, err)
		assert.True(t, s.Refund.Amount().Equal(decimal.NewFromInt(100)))
	})
}
