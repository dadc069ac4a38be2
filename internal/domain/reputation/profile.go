package reputation

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bookloop/backend/internal/domain/shared"
)

// DefaultUsername is shown for accounts that never registered a name
const DefaultUsername = "Anonymous"

const maxUsernameLength = 64

// Profile is the per-account reputation record. Counters only ever
// grow and they move on settlement, not on borrow: an open loan earns
// nobody anything until the book comes back.
type Profile struct {
	Address       string          `gorm:"primaryKey;size:128"`
	Username      string          `gorm:"not null;size:64;default:Anonymous"`
	Registered    bool            `gorm:"not null;default:false"`
	BooksLent     uint64          `gorm:"not null;default:0"`
	BooksBorrowed uint64          `gorm:"not null;default:0"`
	TotalEarnings decimal.Decimal `gorm:"type:numeric(20,8);not null;default:0"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewProfile creates an unregistered profile for an address
func NewProfile(address string) (*Profile, error) {
	if address == "" {
		return nil, shared.NewDomainError("VALIDATION", "Address cannot be empty")
	}
	now := time.Now()
	return &Profile{
		Address:       address,
		Username:      DefaultUsername,
		Registered:    false,
		TotalEarnings: decimal.Zero,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// SetUsername registers or changes the display name
func (p *Profile) SetUsername(username string) error {
	if username == "" {
		return shared.NewDomainError("VALIDATION", "Username cannot be empty")
	}
	if len(username) > maxUsernameLength {
		return shared.NewDomainError("VALIDATION", "Username is too long")
	}
	p.Username = username
	p.Registered = true
	p.UpdatedAt = time.Now()
	return nil
}

// CreditLend records one completed lend and its reward for the owner
func (p *Profile) CreditLend(reward decimal.Decimal) {
	p.BooksLent++
	p.TotalEarnings = p.TotalEarnings.Add(reward)
	p.UpdatedAt = time.Now()
}

// CreditBorrow records one completed borrow for the borrower. The
// reward is zero when it was withheld for lateness or damage; the
// counter still moves.
func (p *Profile) CreditBorrow(reward decimal.Decimal) {
	p.BooksBorrowed++
	p.TotalEarnings = p.TotalEarnings.Add(reward)
	p.UpdatedAt = time.Now()
}
