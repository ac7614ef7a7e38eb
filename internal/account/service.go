// AngelaMos | 2026
// service.go

package account

import (
	"context"
	"fmt"

	"github.com/soundridge/identity-gateway/internal/core"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetProfile(
	ctx context.Context,
	userID string,
) (*Profile, error) {
	return s.repo.GetProfile(ctx, userID)
}

func (s *Service) GetRole(
	ctx context.Context,
	userID string,
) (*RoleAssignment, error) {
	return s.repo.GetRole(ctx, userID)
}

func (s *Service) ListSubscriptions(
	ctx context.Context,
	userID string,
) ([]Subscription, error) {
	return s.repo.ListSubscriptions(ctx, userID)
}

func (s *Service) AccessibleTiers(
	ctx context.Context,
	userID string,
) ([]string, error) {
	return s.repo.AccessibleTiers(ctx, userID)
}

func (s *Service) CreateProfile(
	ctx context.Context,
	userID, displayName string,
) (*Profile, error) {
	profile := &Profile{
		UserID:      userID,
		DisplayName: displayName,
		KYCTier:     KYCTierBasic,
		KYCStatus:   KYCStatusUnverified,
	}

	if err := s.repo.CreateProfile(ctx, profile); err != nil {
		return nil, err
	}

	return profile, nil
}

func (s *Service) UpdateProfile(
	ctx context.Context,
	userID string,
	req UpdateProfileRequest,
) (*Profile, error) {
	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.DisplayName != nil {
		profile.DisplayName = *req.DisplayName
	}
	if req.FirstName != nil {
		profile.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		profile.LastName = *req.LastName
	}
	if req.Phone != nil {
		profile.Phone = *req.Phone
	}

	if err := s.repo.UpdateProfile(ctx, profile); err != nil {
		return nil, err
	}

	return profile, nil
}

// SubmitKYC moves a profile into review. Valid from unverified and from
// rejected (resubmission).
func (s *Service) SubmitKYC(ctx context.Context, userID string) error {
	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return err
	}

	if err := ValidateKYCTransition(profile.KYCStatus, KYCStatusPending); err != nil {
		return err
	}

	tier := TierAfterTransition(profile.KYCTier, KYCStatusPending)
	return s.repo.UpdateKYC(ctx, userID, KYCStatusPending, tier)
}

// ReviewKYC settles a pending review. Approval raises the verification
// tier; rejection leaves any previously granted tier in place (see
// TierAfterTransition).
func (s *Service) ReviewKYC(
	ctx context.Context,
	userID string,
	approved bool,
) (*Profile, error) {
	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	newStatus := KYCStatusRejected
	if approved {
		newStatus = KYCStatusVerified
	}

	if err := ValidateKYCTransition(profile.KYCStatus, newStatus); err != nil {
		return nil, err
	}

	newTier := TierAfterTransition(profile.KYCTier, newStatus)
	if err := s.repo.UpdateKYC(ctx, userID, newStatus, newTier); err != nil {
		return nil, err
	}

	profile.KYCStatus = newStatus
	profile.KYCTier = newTier
	return profile, nil
}

func (s *Service) Ban(ctx context.Context, userID, reason string) error {
	if reason == "" {
		return fmt.Errorf("ban: reason required: %w", core.ErrInvalidInput)
	}
	return s.repo.SetBan(ctx, userID, true, reason)
}

func (s *Service) Unban(ctx context.Context, userID string) error {
	return s.repo.SetBan(ctx, userID, false, "")
}
