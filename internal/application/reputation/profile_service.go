package reputation

import (
	"context"
	"errors"

	"github.com/bookloop/backend/internal/domain/reputation"
	"github.com/bookloop/backend/internal/domain/shared"
)

// ProfileService serves reputation profiles
type ProfileService struct {
	profiles  reputation.ProfileRepository
	txManager shared.TransactionManager
}

// NewProfileService creates a new ProfileService
func NewProfileService(profiles reputation.ProfileRepository, txManager shared.TransactionManager) *ProfileService {
	return &ProfileService{profiles: profiles, txManager: txManager}
}

// GetProfile returns the profile for an address. Addresses without a
// record resolve to the anonymous default; reading never creates one.
func (s *ProfileService) GetProfile(ctx context.Context, address string) (*ProfileResponse, error) {
	if address == "" {
		return nil, shared.NewDomainError("VALIDATION", "Address cannot be empty")
	}

	profile, err := s.profiles.FindByAddress(ctx, address)
	if err != nil {
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) && domainErr.Code == "NOT_FOUND" {
			response := DefaultProfileResponse(address)
			return &response, nil
		}
		return nil, err
	}

	response := ToProfileResponse(profile)
	return &response, nil
}

// SetUsername registers or changes an address's display name,
// creating the profile record on first use
func (s *ProfileService) SetUsername(ctx context.Context, address string, req SetUsernameRequest) (*ProfileResponse, error) {
	if address == "" {
		return nil, shared.NewDomainError("VALIDATION", "Address cannot be empty")
	}

	var profile *reputation.Profile
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		profile, err = s.profiles.FindOrCreate(ctx, address)
		if err != nil {
			return err
		}
		if err := profile.SetUsername(req.Username); err != nil {
			return err
		}
		return s.profiles.Save(ctx, profile)
	})
	if err != nil {
		return nil, err
	}

	response := ToProfileResponse(profile)
	return &response, nil
}
