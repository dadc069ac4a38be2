package handler

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	lendingapp "github.com/bookloop/backend/internal/application/lending"
	"github.com/bookloop/backend/internal/domain/lending"
	"github.com/bookloop/backend/internal/interfaces/http/dto"
)

func openLoan(t *testing.T, book *lending.Book, borrower string) *lending.Loan {
	t.Helper()
	loan, err := book.Lend(borrower, book.DepositMoney(), time.Now().Add(-time.Hour))
	require.NoError(t, err)
	loan.ID = 7
	loan.AttachEscrow(uuid.New())
	return loan
}

func TestLoanHandler_ReturnBook_OnTime(t *testing.T) {
	f := setupEngineRouter()
	book := listedBook(3, "0xowner")
	loan := openLoan(t, book, "0xborrower")

	f.loans.On("FindByIDForUpdate", mock.Anything, uint64(7)).Return(loan, nil)
	f.books.On("FindByIDForUpdate", mock.Anything, uint64(3)).Return(book, nil)
	f.ledger.On("EscrowRelease", mock.Anything, loan.EscrowRef, mock.Anything).Return(nil)
	f.ledger.On("Transfer", mock.Anything, "treasury", "0xowner", mock.Anything).Return(nil)
	f.ledger.On("Transfer", mock.Anything, "treasury", "0xborrower", mock.Anything).Return(nil)
	f.loans.On("Save", mock.Anything, loan).Return(nil)
	f.books.On("Save", mock.Anything, book).Return(nil)

	w := postJSON(f.router, "/api/v1/loans/7/return", gin.H{"condition_after": 1})

	assert.Equal(t, http.StatusOK, w.Code)
	var env struct {
		Data lendingapp.SettlementResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, "returned", env.Data.Status)
	assert.Zero(t, env.Data.LateDays)
	assert.True(t, env.Data.Refund.Equal(decimal.NewFromInt(100)))
	assert.True(t, env.Data.Penalty.IsZero())
	f.ledger.AssertExpectations(t)
}

func TestLoanHandler_ReturnBook_AlreadySettled(t *testing.T) {
	f := setupEngineRouter()
	book := listedBook(3, "0xowner")
	loan := openLoan(t, book, "0xborrower")
	_, err := loan.Settle(book, lending.ConditionGood, time.Now(), lending.DefaultSettlementPolicy())
	require.NoError(t, err)

	f.loans.On("FindByIDForUpdate", mock.Anything, uint64(7)).Return(loan, nil)
	f.books.On("FindByIDForUpdate", mock.Anything, uint64(3)).Return(book, nil)

	w := postJSON(f.router, "/api/v1/loans/7/return", gin.H{"condition_after": 1})

	assert.Equal(t, http.StatusConflict, w.Code)
	env := decodeError(t, w)
	assert.Equal(t, dto.ErrCodeLoanNotActive, env.Error.Code)
	f.ledger.AssertNotCalled(t, "EscrowRelease", mock.Anything, mock.Anything, mock.Anything)
}

func TestLoanHandler_ReturnBook_InvalidID(t *testing.T) {
	f := setupEngineRouter()

	w := postJSON(f.router, "/api/v1/loans/abc/return", gin.H{"condition_after": 1})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoanHandler_GetLoan(t *testing.T) {
	f := setupEngineRouter()
	book := listedBook(3, "0xowner")
	loan := openLoan(t, book, "0xborrower")

	f.loans.On("FindByID", mock.Anything, uint64(7)).Return(loan, nil)
	f.books.On("FindByID", mock.Anything, uint64(3)).Return(book, nil)

	w := getPath(f.router, "/api/v1/loans/7")

	assert.Equal(t, http.StatusOK, w.Code)
	var env struct {
		Data lendingapp.LoanResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, "Piranesi", env.Data.BookTitle)
}

func TestLoanHandler_ListLoans_RequiresBorrower(t *testing.T) {
	f := setupEngineRouter()

	w := getPath(f.router, "/api/v1/loans")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	f.loans.AssertNotCalled(t, "FindByBorrower", mock.Anything, mock.Anything, mock.Anything)
}

func TestLoanHandler_ListLoans(t *testing.T) {
	f := setupEngineRouter()
	book := listedBook(3, "0xowner")
	loan := openLoan(t, book, "0xborrower")

	f.loans.On("FindByBorrower", mock.Anything, "0xborrower", mock.Anything).
		Return([]lending.Loan{*loan}, nil)
	f.loans.On("CountByBorrower", mock.Anything, "0xborrower").Return(int64(1), nil)
	f.books.On("FindByID", mock.Anything, uint64(3)).Return(book, nil)

	w := getPath(f.router, "/api/v1/loans?borrower=0xborrower")

	assert.Equal(t, http.StatusOK, w.Code)
	var env struct {
		Data []lendingapp.LoanResponse `json:"data"`
		Meta *dto.Meta                 `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.Len(t, env.Data, 1)
	assert.Equal(t, "0xborrower", env.Data[0].Borrower)
	require.NotNil(t, env.Meta)
	assert.Equal(t, int64(1), env.Meta.Total)
	assert.Equal(t, 20, env.Meta.PageSize)
}
