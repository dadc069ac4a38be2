package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bookloop/backend/internal/domain/lending"
	"github.com/bookloop/backend/internal/domain/shared"
)

func openStoredLoan(t *testing.T, db *gorm.DB, book *lending.Book, borrower string) *lending.Loan {
	t.Helper()
	loan, err := book.Lend(borrower, book.DepositMoney(), time.Now())
	require.NoError(t, err)
	loan.AttachEscrow(uuid.New())

	repo := NewGormLoanRepository(db)
	require.NoError(t, repo.Save(context.Background(), loan))
	require.NoError(t, NewGormBookRepository(db).Save(context.Background(), book))
	return loan
}

func TestGormLoanRepository_SaveAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormLoanRepository(db)
	ctx := context.Background()

	book := storedBook(t, db, "0xowner", "Piranesi")
	loan := openStoredLoan(t, db, book, "0xborrower")
	assert.NotZero(t, loan.ID)

	retrieved, err := repo.FindByID(ctx, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, book.ID, retrieved.BookID)
	assert.Equal(t, "0xborrower", retrieved.Borrower)
	assert.Equal(t, lending.LoanActive, retrieved.Status)
	assert.Equal(t, loan.EscrowRef, retrieved.EscrowRef)
	assert.True(t, retrieved.DepositPaid.Equal(book.DepositAmount))
}

func TestGormLoanRepository_FindByID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormLoanRepository(db)

	_, err := repo.FindByID(context.Background(), 404)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormLoanRepository_FindActiveByBook(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormLoanRepository(db)
	ctx := context.Background()

	book := storedBook(t, db, "0xowner", "Piranesi")
	loan := openStoredLoan(t, db, book, "0xborrower")

	active, err := repo.FindActiveByBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, loan.ID, active.ID)

	// Settle the loan; the book no longer has an active loan
	_, err = loan.Settle(book, lending.ConditionGood, time.Now(), lending.DefaultSettlementPolicy())
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, loan))

	_, err = repo.FindActiveByBook(ctx, book.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormLoanRepository_FindByBorrower(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormLoanRepository(db)
	ctx := context.Background()

	first := storedBook(t, db, "0xowner", "Piranesi")
	second := storedBook(t, db, "0xowner", "Annihilation")
	openStoredLoan(t, db, first, "0xborrower")
	openStoredLoan(t, db, second, "0xborrower")

	otherBook := storedBook(t, db, "0xowner", "Solaris")
	openStoredLoan(t, db, otherBook, "0xother")

	loans, err := repo.FindByBorrower(ctx, "0xborrower", shared.DefaultFilter())
	require.NoError(t, err)
	assert.Len(t, loans, 2)

	count, err := repo.CountByBorrower(ctx, "0xborrower")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	otherCount, err := repo.CountByBorrower(ctx, "0xother")
	require.NoError(t, err)
	assert.Equal(t, int64(1), otherCount)
}

func TestGormLoanRepository_Save_OptimisticLock(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormLoanRepository(db)
	ctx := context.Background()

	book := storedBook(t, db, "0xowner", "Piranesi")
	loan := openStoredLoan(t, db, book, "0xborrower")

	first, err := repo.FindByID(ctx, loan.ID)
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, loan.ID)
	require.NoError(t, err)

	_, err = first.Settle(book, lending.ConditionGood, time.Now(), lending.DefaultSettlementPolicy())
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, first))

	second.Status = lending.LoanDisputed
	err = repo.Save(ctx, second)
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
}
