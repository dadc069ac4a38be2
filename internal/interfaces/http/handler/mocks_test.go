package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"

	lendingapp "github.com/bookloop/backend/internal/application/lending"
	queryapp "github.com/bookloop/backend/internal/application/query"
	reputationapp "github.com/bookloop/backend/internal/application/reputation"
	"github.com/bookloop/backend/internal/domain/ledger"
	"github.com/bookloop/backend/internal/domain/lending"
	"github.com/bookloop/backend/internal/domain/reputation"
	"github.com/bookloop/backend/internal/domain/shared"
	"github.com/bookloop/backend/internal/domain/shared/valueobject"
	"github.com/bookloop/backend/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// MockBookRepository implements lending.BookRepository for testing
type MockBookRepository struct {
	mock.Mock
}

func (m *MockBookRepository) FindByID(ctx context.Context, id uint64) (*lending.Book, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lending.Book), args.Error(1)
}

func (m *MockBookRepository) FindByIDForUpdate(ctx context.Context, id uint64) (*lending.Book, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lending.Book), args.Error(1)
}

func (m *MockBookRepository) Find(ctx context.Context, query lending.BookQuery, filter shared.Filter) ([]lending.Book, error) {
	args := m.Called(ctx, query, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]lending.Book), args.Error(1)
}

func (m *MockBookRepository) Save(ctx context.Context, book *lending.Book) error {
	args := m.Called(ctx, book)
	return args.Error(0)
}

func (m *MockBookRepository) Count(ctx context.Context, query lending.BookQuery) (int64, error) {
	args := m.Called(ctx, query)
	return args.Get(0).(int64), args.Error(1)
}

// MockLoanRepository implements lending.LoanRepository for testing
type MockLoanRepository struct {
	mock.Mock
}

func (m *MockLoanRepository) FindByID(ctx context.Context, id uint64) (*lending.Loan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lending.Loan), args.Error(1)
}

func (m *MockLoanRepository) FindByIDForUpdate(ctx context.Context, id uint64) (*lending.Loan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lending.Loan), args.Error(1)
}

func (m *MockLoanRepository) FindActiveByBook(ctx context.Context, bookID uint64) (*lending.Loan, error) {
	args := m.Called(ctx, bookID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lending.Loan), args.Error(1)
}

func (m *MockLoanRepository) FindByBorrower(ctx context.Context, borrower string, filter shared.Filter) ([]lending.Loan, error) {
	args := m.Called(ctx, borrower, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]lending.Loan), args.Error(1)
}

func (m *MockLoanRepository) Save(ctx context.Context, loan *lending.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}

func (m *MockLoanRepository) CountByBorrower(ctx context.Context, borrower string) (int64, error) {
	args := m.Called(ctx, borrower)
	return args.Get(0).(int64), args.Error(1)
}

// MockStatsRepository implements lending.StatsRepository for testing
type MockStatsRepository struct {
	mock.Mock
}

func (m *MockStatsRepository) IncrementBooks(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockStatsRepository) IncrementLoans(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockStatsRepository) Totals(ctx context.Context) (uint64, uint64, error) {
	args := m.Called(ctx)
	return args.Get(0).(uint64), args.Get(1).(uint64), args.Error(2)
}

// MockLedgerAdapter implements ledger.Adapter for testing
type MockLedgerAdapter struct {
	mock.Mock
}

func (m *MockLedgerAdapter) Deposit(ctx context.Context, to string, amount valueobject.Money) error {
	args := m.Called(ctx, to, amount)
	return args.Error(0)
}

func (m *MockLedgerAdapter) Transfer(ctx context.Context, from, to string, amount valueobject.Money) error {
	args := m.Called(ctx, from, to, amount)
	return args.Error(0)
}

func (m *MockLedgerAdapter) EscrowHold(ctx context.Context, payer string, amount valueobject.Money) (ledger.EscrowRef, error) {
	args := m.Called(ctx, payer, amount)
	return args.Get(0).(ledger.EscrowRef), args.Error(1)
}

func (m *MockLedgerAdapter) EscrowRelease(ctx context.Context, ref ledger.EscrowRef, splits []ledger.Split) error {
	args := m.Called(ctx, ref, splits)
	return args.Error(0)
}

func (m *MockLedgerAdapter) Balance(ctx context.Context, address string) (valueobject.Money, error) {
	args := m.Called(ctx, address)
	return args.Get(0).(valueobject.Money), args.Error(1)
}

// MockProfileRepository implements reputation.ProfileRepository for testing
type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) FindByAddress(ctx context.Context, address string) (*reputation.Profile, error) {
	args := m.Called(ctx, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reputation.Profile), args.Error(1)
}

func (m *MockProfileRepository) FindOrCreate(ctx context.Context, address string) (*reputation.Profile, error) {
	args := m.Called(ctx, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reputation.Profile), args.Error(1)
}

func (m *MockProfileRepository) Save(ctx context.Context, profile *reputation.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockProfileRepository) TopLenders(ctx context.Context, limit int) ([]reputation.Profile, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]reputation.Profile), args.Error(1)
}

func (m *MockProfileRepository) TopBorrowers(ctx context.Context, limit int) ([]reputation.Profile, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]reputation.Profile), args.Error(1)
}

// passthroughTxManager runs the unit of work without a transaction
type passthroughTxManager struct{}

func (passthroughTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type engineFixture struct {
	books  *MockBookRepository
	loans  *MockLoanRepository
	stats  *MockStatsRepository
	ledger *MockLedgerAdapter
	engine *lendingapp.EngineService
	router *gin.Engine
}

func setupEngineRouter() *engineFixture {
	f := &engineFixture{
		books:  new(MockBookRepository),
		loans:  new(MockLoanRepository),
		stats:  new(MockStatsRepository),
		ledger: new(MockLedgerAdapter),
	}
	f.engine = lendingapp.NewEngineService(f.books, f.loans, f.stats, f.ledger, passthroughTxManager{})

	f.router = gin.New()
	api := f.router.Group("/api/v1")
	NewBookHandler(f.engine).RegisterRoutes(api)
	NewLoanHandler(f.engine).RegisterRoutes(api)
	NewAccountHandler(f.engine).RegisterRoutes(api)
	return f
}

func setupProfileRouter() (*gin.Engine, *MockProfileRepository, *MockStatsRepository) {
	profiles := new(MockProfileRepository)
	stats := new(MockStatsRepository)

	router := gin.New()
	api := router.Group("/api/v1")
	NewProfileHandler(reputationapp.NewProfileService(profiles, passthroughTxManager{})).RegisterRoutes(api)
	NewQueryHandler(queryapp.NewService(profiles, stats)).RegisterRoutes(api)
	return router, profiles, stats
}
