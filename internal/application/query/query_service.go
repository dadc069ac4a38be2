package query

import (
	"context"

	"github.com/bookloop/backend/internal/domain/lending"
	"github.com/bookloop/backend/internal/domain/reputation"
)

const (
	// DefaultLeaderboardLimit is returned when the caller asks for nothing
	DefaultLeaderboardLimit = 10

	// MaxLeaderboardLimit caps how much one request can pull
	MaxLeaderboardLimit = 100
)

// Leaderboard kinds
const (
	KindLenders   = "lenders"
	KindBorrowers = "borrowers"
)

// Service answers the read-only marketplace queries: leaderboards and
// platform statistics. It is eventually consistent with the lending
// engine by the length of the settlement event's trip through the bus.
type Service struct {
	profiles reputation.ProfileRepository
	stats    lending.StatsRepository
}

// NewService creates a new query Service
func NewService(profiles reputation.ProfileRepository, stats lending.StatsRepository) *Service {
	return &Service{profiles: profiles, stats: stats}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLeaderboardLimit
	}
	if limit > MaxLeaderboardLimit {
		return MaxLeaderboardLimit
	}
	return limit
}

// TopLenders returns the lender leaderboard ranked by books lent
func (s *Service) TopLenders(ctx context.Context, limit int) (*LeaderboardResponse, error) {
	profiles, err := s.profiles.TopLenders(ctx, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	return rank(KindLenders, profiles, func(p *reputation.Profile) uint64 {
		return p.BooksLent
	}), nil
}

// TopBorrowers returns the borrower leaderboard ranked by books borrowed
func (s *Service) TopBorrowers(ctx context.Context, limit int) (*LeaderboardResponse, error) {
	profiles, err := s.profiles.TopBorrowers(ctx, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	return rank(KindBorrowers, profiles, func(p *reputation.Profile) uint64 {
		return p.BooksBorrowed
	}), nil
}

// rank assigns strictly increasing 1-based ranks in repository order.
// Equal counters do not share a rank; the address tiebreak already
// fixed their order.
func rank(kind string, profiles []reputation.Profile, counter func(*reputation.Profile) uint64) *LeaderboardResponse {
	entries := make([]LeaderboardEntry, 0, len(profiles))
	for i := range profiles {
		entries = append(entries, LeaderboardEntry{
			Rank:          i + 1,
			Address:       profiles[i].Address,
			Username:      profiles[i].Username,
			Count:         counter(&profiles[i]),
			TotalEarnings: profiles[i].TotalEarnings,
		})
	}
	return &LeaderboardResponse{Kind: kind, Entries: entries}
}

// Statistics returns the platform-wide totals
func (s *Service) Statistics(ctx context.Context) (*StatisticsResponse, error) {
	totalBooks, totalLoans, err := s.stats.Totals(ctx)
	if err != nil {
		return nil, err
	}
	return &StatisticsResponse{TotalBooks: totalBooks, TotalLoans: totalLoans}, nil
}

// TotalBooks returns how many books were ever listed
func (s *Service) TotalBooks(ctx context.Context) (uint64, error) {
	totalBooks, _, err := s.stats.Totals(ctx)
	return totalBooks, err
}

// TotalLoans returns how many loans were ever opened
func (s *Service) TotalLoans(ctx context.Context) (uint64, error) {
	_, totalLoans, err := s.stats.Totals(ctx)
	return totalLoans, err
}
