package persistence

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/bookloop/backend/internal/domain/lending"
)

// platformStats is the single-row table of monotonic platform counters
type platformStats struct {
	ID         uint64 `gorm:"primaryKey"`
	TotalBooks uint64 `gorm:"not null;default:0"`
	TotalLoans uint64 `gorm:"not null;default:0"`
	UpdatedAt  time.Time
}

func (platformStats) TableName() string {
	return "platform_stats"
}

const statsRowID = 1

// GormStatsRepository implements StatsRepository on the single stats
// row. Increments are relative SQL updates, so concurrent listings and
// borrows never lose counts to each other.
type GormStatsRepository struct {
	db *gorm.DB
}

// NewGormStatsRepository creates a new GormStatsRepository
func NewGormStatsRepository(db *gorm.DB) *GormStatsRepository {
	return &GormStatsRepository{db: db}
}

func (r *GormStatsRepository) conn(ctx context.Context) *gorm.DB {
	if tx := TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db
}

// IncrementBooks adds one to the lifetime book total
func (r *GormStatsRepository) IncrementBooks(ctx context.Context) error {
	return r.increment(ctx, "total_books")
}

// IncrementLoans adds one to the lifetime loan total
func (r *GormStatsRepository) IncrementLoans(ctx context.Context) error {
	return r.increment(ctx, "total_loans")
}

func (r *GormStatsRepository) increment(ctx context.Context, column string) error {
	db := r.conn(ctx).WithContext(ctx)

	result := db.Model(&platformStats{}).
		Where("id = ?", statsRowID).
		UpdateColumn(column, gorm.Expr(column+" + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	// First write ever: seed the row. A concurrent seeder losing the
	// race falls back to the relative update.
	row := platformStats{ID: statsRowID, UpdatedAt: time.Now()}
	switch column {
	case "total_books":
		row.TotalBooks = 1
	case "total_loans":
		row.TotalLoans = 1
	}
	if err := db.Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return db.Model(&platformStats{}).
				Where("id = ?", statsRowID).
				UpdateColumn(column, gorm.Expr(column+" + 1")).Error
		}
		return err
	}
	return nil
}

// Totals returns the lifetime book and loan counts
func (r *GormStatsRepository) Totals(ctx context.Context) (uint64, uint64, error) {
	var row platformStats
	err := r.conn(ctx).WithContext(ctx).First(&row, "id = ?", statsRowID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, 0, nil
		}
		return 0, 0, err
	}
	return row.TotalBooks, row.TotalLoans, nil
}

var _ lending.StatsRepository = (*GormStatsRepository)(nil)
