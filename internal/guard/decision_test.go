// AngelaMos | 2026
// decision_test.go

package guard

import (
	"testing"

	"github.com/soundridge/identity-gateway/internal/account"
	"github.com/soundridge/identity-gateway/internal/config"
	"github.com/soundridge/identity-gateway/internal/provider"
	"github.com/soundridge/identity-gateway/internal/session"
)

var testRoutes = config.RoutesConfig{
	SignIn:          "/sign-in",
	DesktopLanding:  "/desktop",
	MobileLanding:   "/mobile",
	AuthLanding:     "/home",
	ArtistDashboard: "/dashboard",
	Upgrade:         "/upgrade",
}

func authedSnapshot() session.Snapshot {
	return session.Snapshot{
		User:            &provider.User{ID: "user-1"},
		AccessibleTiers: []string{account.TierArtist},
	}
}

func TestPlatformGuard(t *testing.T) {
	g := New(testRoutes)

	tests := []struct {
		name       string
		current    Platform
		required   Platform
		wantAction Action
		wantTarget string
	}{
		{"no requirement", PlatformMobile, PlatformAny, ActionRender, ""},
		{"match mobile", PlatformMobile, PlatformMobile, ActionRender, ""},
		{"match desktop", PlatformDesktop, PlatformDesktop, ActionRender, ""},
		{"desktop on mobile-only", PlatformDesktop, PlatformMobile, ActionRedirect, "/desktop"},
		{"mobile on desktop-only", PlatformMobile, PlatformDesktop, ActionRedirect, "/mobile"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := g.Platform(tt.current, tt.required)
			if d.Action != tt.wantAction {
				t.Errorf("action = %q, want %q", d.Action, tt.wantAction)
			}
			if d.Target != tt.wantTarget {
				t.Errorf("target = %q, want %q", d.Target, tt.wantTarget)
			}
		})
	}
}

func TestAuthGuard(t *testing.T) {
	g := New(testRoutes)

	if d := g.Auth(session.Snapshot{Loading: true}); d.Action != ActionLoading {
		t.Errorf("loading snapshot: action = %q, must hold, never redirect", d.Action)
	}

	d := g.Auth(session.Snapshot{})
	if d.Action != ActionRedirect || d.Target != "/sign-in" {
		t.Errorf("signed out: decision = %+v, want redirect to /sign-in", d)
	}

	if d := g.Auth(authedSnapshot()); d.Action != ActionRender {
		t.Errorf("authenticated: action = %q, want render", d.Action)
	}
}

func TestTierGuard(t *testing.T) {
	g := New(testRoutes)

	snap := authedSnapshot()
	snap.AccessibleTiers = []string{account.TierArtist, account.TierLabel}
	snap.Subscriptions = []account.Subscription{
		{Tier: account.TierAgency, Status: account.SubscriptionExpired},
	}

	if d := g.Tier(snap, account.TierLabel); d.Action != ActionRender {
		t.Errorf("held tier: action = %q, want render", d.Action)
	}

	// lapsed subscription goes to the upgrade flow
	d := g.Tier(snap, account.TierAgency)
	if d.Action != ActionRedirect || d.Target != "/upgrade" {
		t.Errorf("lapsed tier: decision = %+v, want redirect to /upgrade", d)
	}

	// never subscribed goes back to the base dashboard
	base := authedSnapshot()
	d = g.Tier(base, account.TierLabel)
	if d.Action != ActionRedirect || d.Target != "/dashboard" {
		t.Errorf("never subscribed: decision = %+v, want redirect to /dashboard", d)
	}

	if d := g.Tier(base, ""); d.Action != ActionRender {
		t.Errorf("no tier requirement: action = %q, want render", d.Action)
	}
}

func TestKYCGuard(t *testing.T) {
	g := New(testRoutes)

	snapWith := func(tier int, status string) session.Snapshot {
		snap := authedSnapshot()
		snap.Profile = &account.Profile{
			UserID:    "user-1",
			KYCTier:   tier,
			KYCStatus: status,
		}
		return snap
	}

	if d := g.KYC(snapWith(account.KYCTierVerified, account.KYCStatusVerified), account.KYCTierVerified); d.Action != ActionRender {
		t.Errorf("verified: action = %q, want render", d.Action)
	}

	// a granted tier passes even after a later rejection
	d := g.KYC(snapWith(account.KYCTierVerified, account.KYCStatusRejected), account.KYCTierVerified)
	if d.Action != ActionRender {
		t.Errorf("granted tier with rejected status: action = %q, want render", d.Action)
	}

	d = g.KYC(snapWith(account.KYCTierBasic, account.KYCStatusRejected), account.KYCTierVerified)
	if d.Action != ActionPrompt {
		t.Fatalf("rejected at basic: action = %q, want prompt", d.Action)
	}
	if d.Prompt.CallToAction != "resubmit" {
		t.Errorf("call to action = %q, want resubmit", d.Prompt.CallToAction)
	}

	d = g.KYC(snapWith(account.KYCTierBasic, account.KYCStatusUnverified), account.KYCTierVerified)
	if d.Action != ActionPrompt {
		t.Fatalf("unverified: action = %q, want prompt", d.Action)
	}
	if d.Prompt.CallToAction != "complete verification" {
		t.Errorf("call to action = %q, want complete verification", d.Prompt.CallToAction)
	}

	// degraded resolution (nil profile) prompts rather than passes
	if d := g.KYC(authedSnapshot(), account.KYCTierVerified); d.Action != ActionPrompt {
		t.Errorf("nil profile: action = %q, want prompt", d.Action)
	}
}
