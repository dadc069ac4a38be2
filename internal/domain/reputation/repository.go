package reputation

import "context"

// ProfileRepository defines persistence operations for profiles
type ProfileRepository interface {
	// FindByAddress finds a profile by its address
	FindByAddress(ctx context.Context, address string) (*Profile, error)

	// FindOrCreate returns the profile for an address, creating the
	// default unregistered record when none exists yet
	FindOrCreate(ctx context.Context, address string) (*Profile, error)

	// Save creates or updates a profile
	Save(ctx context.Context, profile *Profile) error

	// TopLenders returns profiles ordered by books lent descending,
	// ties broken by ascending address
	TopLenders(ctx context.Context, limit int) ([]Profile, error)

	// TopBorrowers returns profiles ordered by books borrowed
	// descending, ties broken by ascending address
	TopBorrowers(ctx context.Context, limit int) ([]Profile, error)
}
