// AngelaMos | 2026
// resolver.go

package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/soundridge/identity-gateway/internal/account"
	"github.com/soundridge/identity-gateway/internal/core"
)

var ErrAccountBanned = errors.New("account banned")

// BannedError is terminal: callers must force sign-out, not retry.
type BannedError struct {
	Reason string
}

func (e *BannedError) Error() string {
	if e.Reason == "" {
		return "account banned"
	}
	return "account banned: " + e.Reason
}

func (e *BannedError) Unwrap() error {
	return ErrAccountBanned
}

type ProfileSource interface {
	GetProfile(ctx context.Context, userID string) (*account.Profile, error)
}

type RoleSource interface {
	GetRole(ctx context.Context, userID string) (*account.RoleAssignment, error)
}

type SubscriptionSource interface {
	ListSubscriptions(
		ctx context.Context,
		userID string,
	) ([]account.Subscription, error)
	AccessibleTiers(ctx context.Context, userID string) ([]string, error)
}

// Resolved is the access-control state every guard consults. It is
// immutable once returned; a new resolution produces a new value.
type Resolved struct {
	Profile               *account.Profile
	Role                  *account.RoleAssignment
	Subscriptions         []account.Subscription
	AccessibleTiers       []string
	IsAdmin               bool
	HasLabelAccess        bool
	HasAgencyAccess       bool
	HasActiveSubscription bool
}

func (r *Resolved) HasTier(tier string) bool {
	for _, t := range r.AccessibleTiers {
		if t == tier {
			return true
		}
	}
	return false
}

// LapsedSubscription reports whether the user holds an expired or
// cancelled record for the tier. Distinguishes "lapsed" from "never
// subscribed" for the upgrade-flow redirect.
func (r *Resolved) LapsedSubscription(tier string) bool {
	for i := range r.Subscriptions {
		sub := &r.Subscriptions[i]
		if sub.Tier == tier && sub.IsLapsed() {
			return true
		}
	}
	return false
}

type Resolver struct {
	profiles ProfileSource
	roles    RoleSource
	subs     SubscriptionSource
	logger   *slog.Logger
}

func New(
	profiles ProfileSource,
	roles RoleSource,
	subs SubscriptionSource,
	logger *slog.Logger,
) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		profiles: profiles,
		roles:    roles,
		subs:     subs,
		logger:   logger,
	}
}

// Resolve builds the access-control state for a user. The profile fetch
// is load-bearing: its failure fails the resolution, and a banned
// profile fails terminally. Role and subscription fetches degrade to
// fail-safe defaults instead of failing the whole resolution, so a
// secondary outage never locks the user out of the base tier.
func (r *Resolver) Resolve(
	ctx context.Context,
	userID string,
) (*Resolved, error) {
	profile, err := r.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolve profile: %w", err)
	}

	if profile.Banned {
		return nil, &BannedError{Reason: profile.BanReason}
	}

	resolved := &Resolved{Profile: profile}

	var wg sync.WaitGroup
	var role *account.RoleAssignment
	var roleErr error
	var subscriptions []account.Subscription
	var tiers []string
	var subsErr error

	wg.Add(2)

	go func() {
		defer wg.Done()
		role, roleErr = r.roles.GetRole(ctx, userID)
	}()

	go func() {
		defer wg.Done()
		subscriptions, subsErr = r.subs.ListSubscriptions(ctx, userID)
		if subsErr == nil {
			tiers, subsErr = r.subs.AccessibleTiers(ctx, userID)
		}
	}()

	wg.Wait()

	switch {
	case errors.Is(roleErr, core.ErrNotFound):
		// most users carry no role assignment
	case roleErr != nil:
		r.logger.Warn("role fetch failed, defaulting to no elevated role",
			"user_id", userID,
			"error", roleErr,
		)
	default:
		resolved.Role = role
		resolved.IsAdmin = role != nil && role.IsAdmin()
	}

	if subsErr != nil {
		r.logger.Warn("subscription aggregate unavailable, base tier only",
			"user_id", userID,
			"error", subsErr,
		)
		subscriptions = nil
		tiers = nil
	}

	resolved.Subscriptions = subscriptions
	resolved.AccessibleTiers = normalizeTiers(tiers)

	resolved.HasLabelAccess = resolved.HasTier(account.TierLabel)
	resolved.HasAgencyAccess = resolved.HasTier(account.TierAgency)
	for i := range subscriptions {
		if subscriptions[i].IsActive() {
			resolved.HasActiveSubscription = true
			break
		}
	}

	return resolved, nil
}

// normalizeTiers dedupes, drops unknown tiers, and guarantees the
// artist base tier is always present.
func normalizeTiers(tiers []string) []string {
	out := []string{account.TierArtist}
	seen := map[string]struct{}{account.TierArtist: {}}

	for _, tier := range tiers {
		if !account.ValidTier(tier) {
			continue
		}
		if _, ok := seen[tier]; ok {
			continue
		}
		seen[tier] = struct{}{}
		out = append(out, tier)
	}

	return out
}

var (
	_ ProfileSource      = (account.Repository)(nil)
	_ RoleSource         = (account.Repository)(nil)
	_ SubscriptionSource = (account.Repository)(nil)
)
