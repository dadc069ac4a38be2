package query

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bookloop/backend/internal/domain/reputation"
)

// MockProfileRepository is a mock implementation of ProfileRepository
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

// MockStatsRepository is a mock implementation of StatsRepository
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

func lenderProfile(t *testing.T, address string, lent uint64, earnings int64) reputation.Profile {
	t.Helper()
	p, err := reputation.NewProfile(address)
	require.NoError(t, err)
	p.BooksLent = lent
	p.TotalEarnings = decimal.NewFromInt(earnings)
	return *p
}

func TestService_TopLenders(t *testing.T) {
	t.Run("ranks are strict and 1-based even on ties", func(t *testing.T) {
		profiles := new(MockProfileRepository)
		service := NewService(profiles, new(MockStatsRepository))

		// Repository order: counter descending, address ascending on ties.
		profiles.On("TopLenders", mock.Anything, DefaultLeaderboardLimit).Return([]reputation.Profile{
			lenderProfile(t, "0xcarol", 5, 50),
			lenderProfile(t, "0xalice", 3, 30),
			lenderProfile(t, "0xbob", 3, 30),
		}, nil)

		resp, err := service.TopLenders(context.Background(), 0)
		require.NoError(t, err)

		assert.Equal(t, KindLenders, resp.Kind)
		require.Len(t, resp.Entries, 3)
		assert.Equal(t, 1, resp.Entries[0].Rank)
		assert.Equal(t, "0xcarol", resp.Entries[0].Address)
		assert.Equal(t, 2, resp.Entries[1].Rank)
		assert.Equal(t, "0xalice", resp.Entries[1].Address)
		assert.Equal(t, 3, resp.Entries[2].Rank, "tied counters still get distinct ranks")
		assert.Equal(t, "0xbob", resp.Entries[2].Address)
	})

	t.Run("limit is clamped to the maximum", func(t *testing.T) {
		profiles := new(MockProfileRepository)
		service := NewService(profiles, new(MockStatsRepository))
		profiles.On("TopLenders", mock.Anything, MaxLeaderboardLimit).Return([]reputation.Profile{}, nil)

		resp, err := service.TopLenders(context.Background(), 5000)
		require.NoError(t, err)
		assert.Empty(t, resp.Entries)
		profiles.AssertExpectations(t)
	})
}

func TestService_TopBorrowers(t *testing.T) {
	profiles := new(MockProfileRepository)
	service := NewService(profiles, new(MockStatsRepository))

	borrower, err := reputation.NewProfile("0xdan")
	require.NoError(t, err)
	borrower.BooksBorrowed = 7
	profiles.On("TopBorrowers", mock.Anything, 5).Return([]reputation.Profile{*borrower}, nil)

	resp, err := service.TopBorrowers(context.Background(), 5)
	require.NoError(t, err)

	assert.Equal(t, KindBorrowers, resp.Kind)
	require.Len(t, resp.Entries, 1)
	assert.Equal(t, uint64(7), resp.Entries[0].Count)
}

func TestService_Statistics(t *testing.T) {
	stats := new(MockStatsRepository)
	service := NewService(new(MockProfileRepository), stats)
	stats.On("Totals", mock.Anything).Return(uint64(12), uint64(34), nil)

	resp, err := service.Statistics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(12), resp.TotalBooks)
	assert.Equal(t, uint64(34), resp.TotalLoans)

	totalBooks, err := service.TotalBooks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(12), totalBooks)

	totalLoans, err := service.TotalLoans(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(34), totalLoans)
}
