package lending

import (
	"context"
	"time"

	"github.com/bookloop/backend/internal/domain/ledger"
	"github.com/bookloop/backend/internal/domain/lending"
	"github.com/bookloop/backend/internal/domain/shared"
	"github.com/bookloop/backend/internal/domain/shared/valueobject"
)

// EngineService drives the lending lifecycle: listing, borrowing and
// returning. Each state transition and its value movement run inside
// one transaction; domain events go out only after the commit.
type EngineService struct {
	books          lending.BookRepository
	loans          lending.LoanRepository
	stats          lending.StatsRepository
	ledger         ledger.Adapter
	txManager      shared.TransactionManager
	policy         lending.SettlementPolicy
	eventPublisher shared.EventPublisher
	clock          func() time.Time
}

// NewEngineService creates a new EngineService with the default
// settlement policy
func NewEngineService(
	books lending.BookRepository,
	loans lending.LoanRepository,
	stats lending.StatsRepository,
	ledgerAdapter ledger.Adapter,
	txManager shared.TransactionManager,
) *EngineService {
	return &EngineService{
		books:     books,
		loans:     loans,
		stats:     stats,
		ledger:    ledgerAdapter,
		txManager: txManager,
		policy:    lending.DefaultSettlementPolicy(),
		clock:     time.Now,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *EngineService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetPolicy overrides the settlement policy
func (s *EngineService) SetPolicy(policy lending.SettlementPolicy) {
	s.policy = policy
}

// SetClock overrides the time source, for tests
func (s *EngineService) SetClock(clock func() time.Time) {
	s.clock = clock
}

// publishEvents publishes events after a successful commit. Publish
// failures are the bus's problem, not the caller's; the state change
// already committed.
func (s *EngineService) publishEvents(ctx context.Context, events ...shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
}

// ListBook lists a new book for lending. No value moves; the book
// becomes immediately borrowable.
func (s *EngineService) ListBook(ctx context.Context, req ListBookRequest) (*BookResponse, error) {
	book, err := lending.NewBook(
		req.Owner, req.Title, req.Author, req.CatalogID,
		lending.Condition(req.Condition),
		valueobject.NewCredits(req.DepositAmount),
		req.DurationSeconds, req.PickupLocation,
	)
	if err != nil {
		return nil, err
	}

	err = s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.books.Save(ctx, book); err != nil {
			return err
		}
		return s.stats.IncrementBooks(ctx)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, lending.NewBookListedEvent(book))

	response := ToBookResponse(book)
	return &response, nil
}

// BorrowBook opens a loan on a book. The book row is locked for the
// duration of the transaction, so two concurrent borrows of the same
// book serialize and the second one sees the flipped availability.
// The deposit moves into escrow in the same commit.
func (s *EngineService) BorrowBook(ctx context.Context, bookID uint64, req BorrowRequest) (*LoanResponse, error) {
	now := s.clock()

	var book *lending.Book
	var loan *lending.Loan

	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		book, err = s.books.FindByIDForUpdate(ctx, bookID)
		if err != nil {
			return err
		}

		loan, err = book.Lend(req.Borrower, valueobject.NewCredits(req.DepositAmount), now)
		if err != nil {
			return err
		}

		ref, err := s.ledger.EscrowHold(ctx, req.Borrower, loan.DepositMoney())
		if err != nil {
			return err
		}
		loan.AttachEscrow(ref)

		if err := s.loans.Save(ctx, loan); err != nil {
			return err
		}
		if err := s.books.Save(ctx, book); err != nil {
			return err
		}
		return s.stats.IncrementLoans(ctx)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, lending.NewLoanOpenedEvent(loan))

	response := ToLoanResponse(loan, book.Title)
	return &response, nil
}

// ReturnBook settles an active loan. The escrow pays out refund and
// penalty, the treasury mints the rewards, and the loan reaches its
// terminal status, all in one commit. The loan row lock makes a
// double return fail cleanly with LOAN_NOT_ACTIVE.
func (s *EngineService) ReturnBook(ctx context.Context, loanID uint64, req ReturnRequest) (*SettlementResponse, error) {
	now := s.clock()
	conditionAfter := lending.Condition(req.ConditionAfter)

	var book *lending.Book
	var loan *lending.Loan
	var settlement *lending.Settlement

	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		loan, err = s.loans.FindByIDForUpdate(ctx, loanID)
		if err != nil {
			return err
		}
		book, err = s.books.FindByIDForUpdate(ctx, loan.BookID)
		if err != nil {
			return err
		}

		settlement, err = loan.Settle(book, conditionAfter, now, s.policy)
		if err != nil {
			return err
		}

		splits := make([]ledger.Split, 0, 2)
		if settlement.Refund.IsPositive() {
			splits = append(splits, ledger.Split{Payee: loan.Borrower, Amount: settlement.Refund})
		}
		if settlement.Penalty.IsPositive() {
			splits = append(splits, ledger.Split{Payee: book.Owner, Amount: settlement.Penalty})
		}
		if err := s.ledger.EscrowRelease(ctx, loan.EscrowRef, splits); err != nil {
			return err
		}

		if err := s.ledger.Transfer(ctx, ledger.TreasuryAccount, book.Owner, settlement.OwnerReward); err != nil {
			return err
		}
		if settlement.BorrowerReward.IsPositive() {
			if err := s.ledger.Transfer(ctx, ledger.TreasuryAccount, loan.Borrower, settlement.BorrowerReward); err != nil {
				return err
			}
		}

		if err := s.loans.Save(ctx, loan); err != nil {
			return err
		}
		return s.books.Save(ctx, book)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, loan.GetDomainEvents()...)
	loan.ClearDomainEvents()

	response := ToSettlementResponse(loan, settlement, conditionAfter)
	return &response, nil
}

// GetBook retrieves a single book listing
func (s *EngineService) GetBook(ctx context.Context, bookID uint64) (*BookResponse, error) {
	book, err := s.books.FindByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	response := ToBookResponse(book)
	return &response, nil
}

// ListBooks returns book listings with the total match count. The
// owner and availability predicates narrow the query itself, so pages
// stay full until the matches run out.
func (s *EngineService) ListBooks(ctx context.Context, filter BookListFilter) ([]BookResponse, int64, error) {
	query := lending.BookQuery{
		Owner:         filter.Owner,
		AvailableOnly: filter.AvailableOnly,
	}

	books, err := s.books.Find(ctx, query, filter.Pagination())
	if err != nil {
		return nil, 0, err
	}

	total, err := s.books.Count(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]BookResponse, 0, len(books))
	for i := range books {
		responses = append(responses, ToBookResponse(&books[i]))
	}
	return responses, total, nil
}

// GetLoan retrieves a single loan with its book title
func (s *EngineService) GetLoan(ctx context.Context, loanID uint64) (*LoanResponse, error) {
	loan, err := s.loans.FindByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	title := ""
	if book, err := s.books.FindByID(ctx, loan.BookID); err == nil {
		title = book.Title
	}
	response := ToLoanResponse(loan, title)
	return &response, nil
}

// GetActiveLoan retrieves the loan currently open on a book
func (s *EngineService) GetActiveLoan(ctx context.Context, bookID uint64) (*LoanResponse, error) {
	loan, err := s.loans.FindActiveByBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	title := ""
	if book, err := s.books.FindByID(ctx, bookID); err == nil {
		title = book.Title
	}
	response := ToLoanResponse(loan, title)
	return &response, nil
}

// ListLoansByBorrower returns a borrower's loans, newest first,
// enriched with book titles, plus the borrower's total loan count
func (s *EngineService) ListLoansByBorrower(ctx context.Context, borrower string, filter shared.Filter) ([]LoanResponse, int64, error) {
	loans, err := s.loans.FindByBorrower(ctx, borrower, filter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.loans.CountByBorrower(ctx, borrower)
	if err != nil {
		return nil, 0, err
	}

	titles := make(map[uint64]string)
	responses := make([]LoanResponse, 0, len(loans))
	for i := range loans {
		title, ok := titles[loans[i].BookID]
		if !ok {
			if book, err := s.books.FindByID(ctx, loans[i].BookID); err == nil {
				title = book.Title
			}
			titles[loans[i].BookID] = title
		}
		responses = append(responses, ToLoanResponse(&loans[i], title))
	}
	return responses, total, nil
}

// Deposit credits an account from the external on-ramp
func (s *EngineService) Deposit(ctx context.Context, req DepositRequest) (*BalanceResponse, error) {
	amount := valueobject.NewCredits(req.Amount)
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("VALIDATION", "Deposit amount must be positive")
	}

	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		return s.ledger.Deposit(ctx, req.Address, amount)
	})
	if err != nil {
		return nil, err
	}
	return s.Balance(ctx, req.Address)
}

// Balance returns an account's spendable balance
func (s *EngineService) Balance(ctx context.Context, address string) (*BalanceResponse, error) {
	if address == "" {
		return nil, shared.NewDomainError("VALIDATION", "Address cannot be empty")
	}
	balance, err := s.ledger.Balance(ctx, address)
	if err != nil {
		return nil, err
	}
	return &BalanceResponse{Address: address, Balance: balance.Amount()}, nil
}
