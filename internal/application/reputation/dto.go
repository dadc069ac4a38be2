package reputation

import (
	"github.com/shopspring/decimal"

	"github.com/bookloop/backend/internal/domain/reputation"
)

// SetUsernameRequest represents a request to register a display name
type SetUsernameRequest struct {
	Username string `json:"username" binding:"required,max=64"`
}

// ProfileResponse represents a reputation profile in API responses.
// Unknown addresses get the default anonymous shape rather than a 404.
type ProfileResponse struct {
	Address       string          `json:"address"`
	Username      string          `json:"username"`
	Registered    bool            `json:"registered"`
	BooksLent     uint64          `json:"books_lent"`
	BooksBorrowed uint64          `json:"books_borrowed"`
	TotalEarnings decimal.Decimal `json:"total_earnings"`
}

// ToProfileResponse converts a profile to its response form
func ToProfileResponse(p *reputation.Profile) ProfileResponse {
	return ProfileResponse{
		Address:       p.Address,
		Username:      p.Username,
		Registered:    p.Registered,
		BooksLent:     p.BooksLent,
		BooksBorrowed: p.BooksBorrowed,
		TotalEarnings: p.TotalEarnings,
	}
}

// DefaultProfileResponse is the shape returned for an address the
// ledger has never seen
func DefaultProfileResponse(address string) ProfileResponse {
	return ProfileResponse{
		Address:       address,
		Username:      reputation.DefaultUsername,
		TotalEarnings: decimal.Zero,
	}
}
