package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/bookloop/backend/internal/domain/lending"
	"github.com/bookloop/backend/internal/domain/shared"
)

// GormLoanRepository implements LoanRepository using GORM
type GormLoanRepository struct {
	db *gorm.DB
}

// NewGormLoanRepository creates a new GormLoanRepository
func NewGormLoanRepository(db *gorm.DB) *GormLoanRepository {
	return &GormLoanRepository{db: db}
}

func (r *GormLoanRepository) conn(ctx context.Context) *gorm.DB {
	if tx := TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db
}

// FindByID finds a loan by its ID
func (r *GormLoanRepository) FindByID(ctx context.Context, id uint64) (*lending.Loan, error) {
	var loan lending.Loan
	if err := r.conn(ctx).WithContext(ctx).First(&loan, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &loan, nil
}

// FindByIDForUpdate finds a loan and locks its row for the remainder
// of the surrounding transaction, so concurrent returns serialize
func (r *GormLoanRepository) FindByIDForUpdate(ctx context.Context, id uint64) (*lending.Loan, error) {
	var loan lending.Loan
	if err := forUpdate(r.conn(ctx).WithContext(ctx)).First(&loan, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &loan, nil
}

// FindActiveByBook returns the active loan on a book, if any
func (r *GormLoanRepository) FindActiveByBook(ctx context.Context, bookID uint64) (*lending.Loan, error) {
	var loan lending.Loan
	err := r.conn(ctx).WithContext(ctx).
		Where("book_id = ? AND status = ?", bookID, lending.LoanActive).
		First(&loan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &loan, nil
}

// FindByBorrower returns all loans taken by a borrower, newest first
func (r *GormLoanRepository) FindByBorrower(ctx context.Context, borrower string, filter shared.Filter) ([]lending.Loan, error) {
	var loans []lending.Loan
	err := r.conn(ctx).WithContext(ctx).
		Where("borrower = ?", borrower).
		Order("id DESC").
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&loans).Error
	if err != nil {
		return nil, err
	}
	return loans, nil
}

// Save creates or updates a loan with optimistic locking on updates
func (r *GormLoanRepository) Save(ctx context.Context, loan *lending.Loan) error {
	db := r.conn(ctx).WithContext(ctx)

	if loan.ID == 0 {
		return db.Create(loan).Error
	}

	currentVersion := loan.GetVersion()
	loan.IncrementVersion()

	result := db.Model(&lending.Loan{}).
		Where("id = ? AND version = ?", loan.ID, currentVersion).
		Select("*").Omit("id", "created_at").
		Updates(loan)
	if result.Error != nil {
		loan.Version = currentVersion
		return result.Error
	}
	if result.RowsAffected == 0 {
		loan.Version = currentVersion
		return fmt.Errorf("%w: loan %d", shared.ErrConcurrencyConflict, loan.ID)
	}
	return nil
}

// CountByBorrower returns how many loans a borrower has taken
func (r *GormLoanRepository) CountByBorrower(ctx context.Context, borrower string) (int64, error) {
	var count int64
	err := r.conn(ctx).WithContext(ctx).Model(&lending.Loan{}).
		Where("borrower = ?", borrower).
		Count(&count).Error
	return count, err
}

var _ lending.LoanRepository = (*GormLoanRepository)(nil)
