// AngelaMos | 2026
// service_test.go

package account

import (
	"context"
	"errors"
	"testing"

	"github.com/soundridge/identity-gateway/internal/core"
)

type mockRepository struct {
	getProfileFn func(ctx context.Context, userID string) (*Profile, error)
	updateKYCFn  func(ctx context.Context, userID, status string, tier int) error
	setBanFn     func(ctx context.Context, userID string, banned bool, reason string) error
}

func (m *mockRepository) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	return m.getProfileFn(ctx, userID)
}

func (m *mockRepository) CreateProfile(ctx context.Context, profile *Profile) error {
	return nil
}

func (m *mockRepository) UpdateProfile(ctx context.Context, profile *Profile) error {
	return nil
}

func (m *mockRepository) UpdateKYC(ctx context.Context, userID, status string, tier int) error {
	if m.updateKYCFn != nil {
		return m.updateKYCFn(ctx, userID, status, tier)
	}
	return nil
}

func (m *mockRepository) SetBan(ctx context.Context, userID string, banned bool, reason string) error {
	if m.setBanFn != nil {
		return m.setBanFn(ctx, userID, banned, reason)
	}
	return nil
}

func (m *mockRepository) GetRole(ctx context.Context, userID string) (*RoleAssignment, error) {
	return nil, nil
}

func (m *mockRepository) ListSubscriptions(ctx context.Context, userID string) ([]Subscription, error) {
	return nil, nil
}

func (m *mockRepository) AccessibleTiers(ctx context.Context, userID string) ([]string, error) {
	return nil, nil
}

var _ Repository = (*mockRepository)(nil)

func TestSubmitKYC(t *testing.T) {
	var gotStatus string
	var gotTier int

	svc := NewService(&mockRepository{
		getProfileFn: func(ctx context.Context, userID string) (*Profile, error) {
			return &Profile{
				UserID:    userID,
				KYCTier:   KYCTierBasic,
				KYCStatus: KYCStatusUnverified,
			}, nil
		},
		updateKYCFn: func(ctx context.Context, userID, status string, tier int) error {
			gotStatus = status
			gotTier = tier
			return nil
		},
	})

	if err := svc.SubmitKYC(context.Background(), "user-1"); err != nil {
		t.Fatalf("SubmitKYC: %v", err)
	}
	if gotStatus != KYCStatusPending {
		t.Errorf("status = %q, want pending", gotStatus)
	}
	if gotTier != KYCTierBasic {
		t.Errorf("tier = %d, submission must not change tier", gotTier)
	}
}

func TestSubmitKYCWhileVerified(t *testing.T) {
	svc := NewService(&mockRepository{
		getProfileFn: func(ctx context.Context, userID string) (*Profile, error) {
			return &Profile{
				UserID:    userID,
				KYCTier:   KYCTierVerified,
				KYCStatus: KYCStatusVerified,
			}, nil
		},
	})

	err := svc.SubmitKYC(context.Background(), "user-1")
	if !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf("expected invalid transition error, got %v", err)
	}
}

func TestReviewKYCApproval(t *testing.T) {
	svc := NewService(&mockRepository{
		getProfileFn: func(ctx context.Context, userID string) (*Profile, error) {
			return &Profile{
				UserID:    userID,
				KYCTier:   KYCTierBasic,
				KYCStatus: KYCStatusPending,
			}, nil
		},
	})

	profile, err := svc.ReviewKYC(context.Background(), "user-1", true)
	if err != nil {
		t.Fatalf("ReviewKYC: %v", err)
	}
	if profile.KYCStatus != KYCStatusVerified {
		t.Errorf("status = %q, want verified", profile.KYCStatus)
	}
	if profile.KYCTier != KYCTierVerified {
		t.Errorf("tier = %d, want %d", profile.KYCTier, KYCTierVerified)
	}
}

func TestReviewKYCRejectionKeepsGrantedTier(t *testing.T) {
	// resubmission after a previous approval: rejection must not
	// revoke the tier already granted
	svc := NewService(&mockRepository{
		getProfileFn: func(ctx context.Context, userID string) (*Profile, error) {
			return &Profile{
				UserID:    userID,
				KYCTier:   KYCTierVerified,
				KYCStatus: KYCStatusPending,
			}, nil
		},
	})

	profile, err := svc.ReviewKYC(context.Background(), "user-1", false)
	if err != nil {
		t.Fatalf("ReviewKYC: %v", err)
	}
	if profile.KYCStatus != KYCStatusRejected {
		t.Errorf("status = %q, want rejected", profile.KYCStatus)
	}
	if profile.KYCTier != KYCTierVerified {
		t.Errorf("tier = %d, rejection revoked a granted tier", profile.KYCTier)
	}
}

func TestReviewKYCNotPending(t *testing.T) {
	svc := NewService(&mockRepository{
		getProfileFn: func(ctx context.Context, userID string) (*Profile, error) {
			return &Profile{
				UserID:    userID,
				KYCStatus: KYCStatusUnverified,
			}, nil
		},
	})

	if _, err := svc.ReviewKYC(context.Background(), "user-1", true); err == nil {
		t.Error("expected error reviewing a non-pending profile")
	}
}

func TestBanRequiresReason(t *testing.T) {
	svc := NewService(&mockRepository{})

	err := svc.Ban(context.Background(), "user-1", "")
	if !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestUnbanClearsReason(t *testing.T) {
	var gotBanned bool
	var gotReason string

	svc := NewService(&mockRepository{
		setBanFn: func(ctx context.Context, userID string, banned bool, reason string) error {
			gotBanned = banned
			gotReason = reason
			return nil
		},
	})

	if err := svc.Unban(context.Background(), "user-1"); err != nil {
		t.Fatalf("Unban: %v", err)
	}
	if gotBanned {
		t.Error("unban set banned = true")
	}
	if gotReason != "" {
		t.Errorf("reason = %q, want empty", gotReason)
	}
}
