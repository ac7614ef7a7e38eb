// AngelaMos | 2026
// entity_test.go

package account

import (
	"testing"
	"time"
)

func TestSubscriptionIsActive(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name string
		sub  Subscription
		want bool
	}{
		{
			name: "active inside period",
			sub: Subscription{
				Status:      SubscriptionActive,
				PeriodStart: now.Add(-time.Hour),
				PeriodEnd:   now.Add(time.Hour),
			},
			want: true,
		},
		{
			name: "trial inside period",
			sub: Subscription{
				Status:      SubscriptionTrial,
				PeriodStart: now.Add(-time.Hour),
				PeriodEnd:   now.Add(time.Hour),
			},
			want: true,
		},
		{
			name: "active status but period over",
			sub: Subscription{
				Status:      SubscriptionActive,
				PeriodStart: now.Add(-2 * time.Hour),
				PeriodEnd:   now.Add(-time.Hour),
			},
			want: false,
		},
		{
			name: "active status but period not started",
			sub: Subscription{
				Status:      SubscriptionActive,
				PeriodStart: now.Add(time.Hour),
				PeriodEnd:   now.Add(2 * time.Hour),
			},
			want: false,
		},
		{
			name: "expired inside period",
			sub: Subscription{
				Status:      SubscriptionExpired,
				PeriodStart: now.Add(-time.Hour),
				PeriodEnd:   now.Add(time.Hour),
			},
			want: false,
		},
		{
			name: "cancelled",
			sub: Subscription{
				Status:      SubscriptionCancelled,
				PeriodStart: now.Add(-time.Hour),
				PeriodEnd:   now.Add(time.Hour),
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.sub.IsActive(); got != tt.want {
				t.Errorf("IsActive() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSubscriptionIsLapsed(t *testing.T) {
	if !(&Subscription{Status: SubscriptionExpired}).IsLapsed() {
		t.Error("expired subscription not reported lapsed")
	}
	if !(&Subscription{Status: SubscriptionCancelled}).IsLapsed() {
		t.Error("cancelled subscription not reported lapsed")
	}
	if (&Subscription{Status: SubscriptionActive}).IsLapsed() {
		t.Error("active subscription reported lapsed")
	}
}

func TestValidTier(t *testing.T) {
	for _, tier := range []string{TierArtist, TierLabel, TierAgency} {
		if !ValidTier(tier) {
			t.Errorf("ValidTier(%q) = false", tier)
		}
	}
	if ValidTier("platinum") {
		t.Error("unknown tier accepted")
	}
}
