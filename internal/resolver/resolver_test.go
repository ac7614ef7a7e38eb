// AngelaMos | 2026
// resolver_test.go

package resolver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/soundridge/identity-gateway/internal/account"
)

type mockSources struct {
	getProfileFn      func(ctx context.Context, userID string) (*account.Profile, error)
	getRoleFn         func(ctx context.Context, userID string) (*account.RoleAssignment, error)
	listSubsFn        func(ctx context.Context, userID string) ([]account.Subscription, error)
	accessibleTiersFn func(ctx context.Context, userID string) ([]string, error)
}

func (m *mockSources) GetProfile(ctx context.Context, userID string) (*account.Profile, error) {
	return m.getProfileFn(ctx, userID)
}

func (m *mockSources) GetRole(ctx context.Context, userID string) (*account.RoleAssignment, error) {
	if m.getRoleFn != nil {
		return m.getRoleFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockSources) ListSubscriptions(ctx context.Context, userID string) ([]account.Subscription, error) {
	if m.listSubsFn != nil {
		return m.listSubsFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockSources) AccessibleTiers(ctx context.Context, userID string) ([]string, error) {
	if m.accessibleTiersFn != nil {
		return m.accessibleTiersFn(ctx, userID)
	}
	return nil, nil
}

func okProfile(userID string) *account.Profile {
	return &account.Profile{
		UserID:    userID,
		KYCTier:   account.KYCTierBasic,
		KYCStatus: account.KYCStatusUnverified,
	}
}

func TestResolveBaseTierAlwaysPresent(t *testing.T) {
	src := &mockSources{
		getProfileFn: func(ctx context.Context, userID string) (*account.Profile, error) {
			return okProfile(userID), nil
		},
	}

	resolved, err := New(src, src, src, nil).Resolve(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if !resolved.HasTier(account.TierArtist) {
		t.Error("artist base tier missing from accessible tiers")
	}
	if resolved.HasLabelAccess || resolved.HasAgencyAccess {
		t.Error("elevated access granted without subscriptions")
	}
}

func TestResolveBannedShortCircuits(t *testing.T) {
	roleCalled := false
	src := &mockSources{
		getProfileFn: func(ctx context.Context, userID string) (*account.Profile, error) {
			return &account.Profile{
				UserID:    userID,
				Banned:    true,
				BanReason: "fraud",
			}, nil
		},
		getRoleFn: func(ctx context.Context, userID string) (*account.RoleAssignment, error) {
			roleCalled = true
			return nil, nil
		},
	}

	_, err := New(src, src, src, nil).Resolve(context.Background(), "user-1")

	var banned *BannedError
	if !errors.As(err, &banned) {
		t.Fatalf("expected BannedError, got %v", err)
	}
	if !errors.Is(err, ErrAccountBanned) {
		t.Error("BannedError should unwrap to ErrAccountBanned")
	}
	if banned.Reason != "fraud" {
		t.Errorf("reason = %q, want fraud", banned.Reason)
	}
	if roleCalled {
		t.Error("role fetched for a banned account")
	}
}

func TestResolveProfileFailureFails(t *testing.T) {
	src := &mockSources{
		getProfileFn: func(ctx context.Context, userID string) (*account.Profile, error) {
			return nil, errors.New("db down")
		},
	}

	if _, err := New(src, src, src, nil).Resolve(context.Background(), "user-1"); err == nil {
		t.Fatal("expected error when profile fetch fails")
	}
}

func TestResolveSubscriptionOutageDegrades(t *testing.T) {
	src := &mockSources{
		getProfileFn: func(ctx context.Context, userID string) (*account.Profile, error) {
			return okProfile(userID), nil
		},
		listSubsFn: func(ctx context.Context, userID string) ([]account.Subscription, error) {
			return nil, errors.New("billing service down")
		},
	}

	resolved, err := New(src, src, src, nil).Resolve(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("subscription outage must not fail resolution: %v", err)
	}

	if !resolved.HasTier(account.TierArtist) {
		t.Error("base tier missing under degraded resolution")
	}
	if resolved.HasTier(account.TierLabel) {
		t.Error("elevated tier granted under degraded resolution")
	}
	if resolved.HasActiveSubscription {
		t.Error("active subscription reported under degraded resolution")
	}
}

func TestResolveRoleOutageDegrades(t *testing.T) {
	src := &mockSources{
		getProfileFn: func(ctx context.Context, userID string) (*account.Profile, error) {
			return okProfile(userID), nil
		},
		getRoleFn: func(ctx context.Context, userID string) (*account.RoleAssignment, error) {
			return nil, errors.New("role service down")
		},
	}

	resolved, err := New(src, src, src, nil).Resolve(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("role outage must not fail resolution: %v", err)
	}
	if resolved.IsAdmin {
		t.Error("admin granted under degraded resolution")
	}
}

func TestResolveAggregatesAccess(t *testing.T) {
	now := time.Now()
	src := &mockSources{
		getProfileFn: func(ctx context.Context, userID string) (*account.Profile, error) {
			return okProfile(userID), nil
		},
		getRoleFn: func(ctx context.Context, userID string) (*account.RoleAssignment, error) {
			return &account.RoleAssignment{UserID: userID, Role: account.RoleAdmin}, nil
		},
		listSubsFn: func(ctx context.Context, userID string) ([]account.Subscription, error) {
			return []account.Subscription{
				{
					Tier:        account.TierLabel,
					Status:      account.SubscriptionActive,
					PeriodStart: now.Add(-time.Hour),
					PeriodEnd:   now.Add(time.Hour),
				},
				{
					Tier:   account.TierAgency,
					Status: account.SubscriptionExpired,
				},
			}, nil
		},
		accessibleTiersFn: func(ctx context.Context, userID string) ([]string, error) {
			return []string{account.TierLabel, account.TierLabel, "bogus"}, nil
		},
	}

	resolved, err := New(src, src, src, nil).Resolve(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if !resolved.IsAdmin {
		t.Error("admin role not surfaced")
	}
	if !resolved.HasLabelAccess {
		t.Error("label access not granted")
	}
	if resolved.HasAgencyAccess {
		t.Error("agency access granted from an expired subscription")
	}
	if !resolved.HasActiveSubscription {
		t.Error("active subscription not surfaced")
	}
	if !resolved.LapsedSubscription(account.TierAgency) {
		t.Error("lapsed agency subscription not detected")
	}
	if resolved.LapsedSubscription(account.TierLabel) {
		t.Error("active label subscription reported lapsed")
	}

	// dedupe plus invalid tier dropped: artist + label only
	if len(resolved.AccessibleTiers) != 2 {
		t.Errorf("AccessibleTiers = %v, want [artist label]", resolved.AccessibleTiers)
	}
}
