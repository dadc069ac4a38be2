package query

import "github.com/shopspring/decimal"

// LeaderboardEntry is one ranked row. Rank is 1-based and strictly
// increasing; ties in the counter are broken by ascending address so
// the ordering is stable across requests.
type LeaderboardEntry struct {
	Rank          int             `json:"rank"`
	Address       string          `json:"address"`
	Username      string          `json:"username"`
	Count         uint64          `json:"count"`
	TotalEarnings decimal.Decimal `json:"total_earnings"`
}

// LeaderboardResponse represents a ranked leaderboard
type LeaderboardResponse struct {
	Kind    string             `json:"kind"`
	Entries []LeaderboardEntry `json:"entries"`
}

// StatisticsResponse represents the platform-wide counters. Both
// totals are monotonic: listing and borrowing increment them and
// nothing ever decrements them.
type StatisticsResponse struct {
	TotalBooks uint64 `json:"total_books"`
	TotalLoans uint64 `json:"total_loans"`
}
