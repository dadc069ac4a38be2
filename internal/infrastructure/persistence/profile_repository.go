package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bookloop/backend/internal/domain/reputation"
	"github.com/bookloop/backend/internal/domain/shared"
)

// GormProfileRepository implements ProfileRepository using GORM
type GormProfileRepository struct {
	db *gorm.DB
}

// NewGormProfileRepository creates a new GormProfileRepository
func NewGormProfileRepository(db *gorm.DB) *GormProfileRepository {
	return &GormProfileRepository{db: db}
}

func (r *GormProfileRepository) conn(ctx context.Context) *gorm.DB {
	if tx := TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db
}

// FindByAddress finds a profile by its address
func (r *GormProfileRepository) FindByAddress(ctx context.Context, address string) (*reputation.Profile, error) {
	var profile reputation.Profile
	if err := r.conn(ctx).WithContext(ctx).First(&profile, "address = ?", address).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &profile, nil
}

// FindOrCreate returns the profile for an address, inserting the
// default anonymous record when none exists
func (r *GormProfileRepository) FindOrCreate(ctx context.Context, address string) (*reputation.Profile, error) {
	profile, err := r.FindByAddress(ctx, address)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	fresh, err := reputation.NewProfile(address)
	if err != nil {
		return nil, err
	}
	// A concurrent creator winning the race is fine; keep their row.
	if err := r.conn(ctx).WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(fresh).Error; err != nil {
		return nil, err
	}
	return r.FindByAddress(ctx, address)
}

// Save creates or updates a profile
func (r *GormProfileRepository) Save(ctx context.Context, profile *reputation.Profile) error {
	return r.conn(ctx).WithContext(ctx).Save(profile).Error
}

// TopLenders returns profiles ordered by books lent descending, ties
// broken by ascending address
func (r *GormProfileRepository) TopLenders(ctx context.Context, limit int) ([]reputation.Profile, error) {
	return r.top(ctx, "books_lent", limit)
}

// TopBorrowers returns profiles ordered by books borrowed descending,
// ties broken by ascending address
func (r *GormProfileRepository) TopBorrowers(ctx context.Context, limit int) ([]reputation.Profile, error) {
	return r.top(ctx, "books_borrowed", limit)
}

// top ranks every known participant, zero counts included, so a board
// with limit at or below the participant count is always full length.
func (r *GormProfileRepository) top(ctx context.Context, column string, limit int) ([]reputation.Profile, error) {
	var profiles []reputation.Profile
	err := r.conn(ctx).WithContext(ctx).
		Order(column + " DESC, address ASC").
		Limit(limit).
		Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

var _ reputation.ProfileRepository = (*GormProfileRepository)(nil)
