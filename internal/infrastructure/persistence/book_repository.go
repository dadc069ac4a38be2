package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bookloop/backend/internal/domain/lending"
	"github.com/bookloop/backend/internal/domain/shared"
)

// GormBookRepository implements BookRepository using GORM
type GormBookRepository struct {
	db *gorm.DB
}

// NewGormBookRepository creates a new GormBookRepository
func NewGormBookRepository(db *gorm.DB) *GormBookRepository {
	return &GormBookRepository{db: db}
}

// conn resolves the transaction from the context, falling back to the
// base connection
func (r *GormBookRepository) conn(ctx context.Context) *gorm.DB {
	if tx := TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db
}

// forUpdate applies a row lock where the dialect supports one.
// SQLite has no FOR UPDATE; its single-writer model serializes these
// transactions anyway, so the tests run unlocked.
func forUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "sqlite" {
		return db
	}
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

// FindByID finds a book by its ID
func (r *GormBookRepository) FindByID(ctx context.Context, id uint64) (*lending.Book, error) {
	var book lending.Book
	if err := r.conn(ctx).WithContext(ctx).First(&book, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &book, nil
}

// FindByIDForUpdate finds a book and locks its row for the remainder
// of the surrounding transaction
func (r *GormBookRepository) FindByIDForUpdate(ctx context.Context, id uint64) (*lending.Book, error) {
	var book lending.Book
	if err := forUpdate(r.conn(ctx).WithContext(ctx)).First(&book, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &book, nil
}

// applyBookQuery translates the query predicates into WHERE clauses
// so they narrow the rows before pagination
func applyBookQuery(db *gorm.DB, query lending.BookQuery) *gorm.DB {
	if query.Owner != "" {
		db = db.Where("owner = ?", query.Owner)
	}
	if query.AvailableOnly {
		db = db.Where("available = ?", true)
	}
	return db
}

// Find returns the books matching the query, newest listings first
func (r *GormBookRepository) Find(ctx context.Context, query lending.BookQuery, filter shared.Filter) ([]lending.Book, error) {
	var books []lending.Book
	err := applyBookQuery(r.conn(ctx).WithContext(ctx), query).
		Order("id DESC").
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&books).Error
	if err != nil {
		return nil, err
	}
	return books, nil
}

// Save creates or updates a book. Updates bump the version and fail
// with a concurrency conflict when another writer got there first.
func (r *GormBookRepository) Save(ctx context.Context, book *lending.Book) error {
	db := r.conn(ctx).WithContext(ctx)

	if book.ID == 0 {
		return db.Create(book).Error
	}

	currentVersion := book.GetVersion()
	book.IncrementVersion()

	result := db.Model(&lending.Book{}).
		Where("id = ? AND version = ?", book.ID, currentVersion).
		Select("*").Omit("id", "created_at").
		Updates(book)
	if result.Error != nil {
		book.Version = currentVersion
		return result.Error
	}
	if result.RowsAffected == 0 {
		book.Version = currentVersion
		return fmt.Errorf("%w: book %d", shared.ErrConcurrencyConflict, book.ID)
	}
	return nil
}

// Count returns how many books match the query
func (r *GormBookRepository) Count(ctx context.Context, query lending.BookQuery) (int64, error) {
	var count int64
	err := applyBookQuery(r.conn(ctx).WithContext(ctx).Model(&lending.Book{}), query).
		Count(&count).Error
	return count, err
}

var _ lending.BookRepository = (*GormBookRepository)(nil)
