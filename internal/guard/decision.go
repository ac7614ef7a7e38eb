// AngelaMos | 2026
// decision.go

package guard

import (
	"github.com/soundridge/identity-gateway/internal/account"
	"github.com/soundridge/identity-gateway/internal/config"
	"github.com/soundridge/identity-gateway/internal/session"
)

type Platform string

const (
	PlatformMobile  Platform = "mobile"
	PlatformDesktop Platform = "desktop"
	PlatformAny     Platform = ""
)

type Action string

const (
	// ActionRender lets the guarded content through.
	ActionRender Action = "render"
	// ActionLoading holds the decision until resolution settles. Only
	// the authentication guard ever produces it.
	ActionLoading Action = "loading"
	// ActionRedirect bounces to another route.
	ActionRedirect Action = "redirect"
	// ActionPrompt blocks in place with an upgrade call-to-action.
	ActionPrompt Action = "prompt"
)

type Decision struct {
	Action Action     `json:"action"`
	Target string     `json:"target,omitempty"`
	Prompt *KYCPrompt `json:"prompt,omitempty"`
}

type KYCPrompt struct {
	Status       string `json:"status"`
	RequiredTier int    `json:"required_tier"`
	CallToAction string `json:"call_to_action"`
}

func render() Decision {
	return Decision{Action: ActionRender}
}

func redirect(target string) Decision {
	return Decision{Action: ActionRedirect, Target: target}
}

// Guards holds the redirect targets; the decision functions themselves
// are pure over (state, requirement). Compose platform -> auth -> tier
// -> kyc; an outer rejection must short-circuit the inner guards.
type Guards struct {
	routes config.RoutesConfig
}

func New(routes config.RoutesConfig) *Guards {
	return &Guards{routes: routes}
}

// Platform is synchronous and never produces a loading state: the
// runtime platform is known instantly.
func (g *Guards) Platform(current, required Platform) Decision {
	if required == PlatformAny || current == required {
		return render()
	}

	if required == PlatformMobile {
		return redirect(g.routes.DesktopLanding)
	}
	return redirect(g.routes.MobileLanding)
}

// Auth holds while session resolution is in flight: redirecting before
// a restored session settles would bounce a legitimate returning user
// to sign-in.
func (g *Guards) Auth(snap session.Snapshot) Decision {
	if snap.Loading {
		return Decision{Action: ActionLoading}
	}

	if !snap.Authenticated() {
		return redirect(g.routes.SignIn)
	}

	return render()
}

// Tier distinguishes a lapsed subscription (send to the upgrade flow)
// from one that never existed (send to the base dashboard).
func (g *Guards) Tier(snap session.Snapshot, required string) Decision {
	if required == "" || snap.HasTier(required) {
		return render()
	}

	if snap.LapsedSubscription(required) {
		return redirect(g.routes.Upgrade)
	}

	return redirect(g.routes.ArtistDashboard)
}

// KYC blocks in place rather than navigating away: the gated action is
// usually one feature inside an otherwise accessible screen.
func (g *Guards) KYC(snap session.Snapshot, requiredTier int) Decision {
	if requiredTier <= 0 {
		requiredTier = account.KYCTierVerified
	}

	tier := account.KYCTierBasic
	status := account.KYCStatusUnverified
	if snap.Profile != nil {
		tier = snap.Profile.KYCTier
		status = snap.Profile.KYCStatus
	}

	if tier >= requiredTier {
		return render()
	}

	cta := "complete verification"
	if status == account.KYCStatusRejected {
		cta = "resubmit"
	}

	return Decision{
		Action: ActionPrompt,
		Prompt: &KYCPrompt{
			Status:       status,
			RequiredTier: requiredTier,
			CallToAction: cta,
		},
	}
}
