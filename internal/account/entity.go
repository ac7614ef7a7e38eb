// AngelaMos | 2026
// entity.go

package account

import (
	"time"
)

const (
	TierArtist = "artist"
	TierLabel  = "label"
	TierAgency = "agency"

	RoleAdmin = "admin"
)

const (
	KYCStatusUnverified = "unverified"
	KYCStatusPending    = "pending"
	KYCStatusVerified   = "verified"
	KYCStatusRejected   = "rejected"
)

const (
	// KYCTierBasic is granted at signup; KYCTierVerified requires an
	// approved identity document.
	KYCTierBasic    = 1
	KYCTierVerified = 2
)

const (
	SubscriptionTrial     = "trial"
	SubscriptionActive    = "active"
	SubscriptionExpired   = "expired"
	SubscriptionCancelled = "cancelled"
)

type Profile struct {
	UserID      string     `db:"user_id"`
	DisplayName string     `db:"display_name"`
	FirstName   string     `db:"first_name"`
	LastName    string     `db:"last_name"`
	Phone       string     `db:"phone"`
	KYCTier     int        `db:"kyc_tier"`
	KYCStatus   string     `db:"kyc_status"`
	Banned      bool       `db:"banned"`
	BanReason   string     `db:"ban_reason"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
	DeletedAt   *time.Time `db:"deleted_at"`
}

func (p *Profile) IsVerified() bool {
	return p.KYCStatus == KYCStatusVerified
}

type RoleAssignment struct {
	UserID    string    `db:"user_id"`
	Role      string    `db:"role"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r *RoleAssignment) IsAdmin() bool {
	return r.Role == RoleAdmin
}

type Subscription struct {
	ID          string     `db:"id"`
	UserID      string     `db:"user_id"`
	Tier        string     `db:"tier"`
	Status      string     `db:"status"`
	TrialEndsAt *time.Time `db:"trial_ends_at"`
	PeriodStart time.Time  `db:"period_start"`
	PeriodEnd   time.Time  `db:"period_end"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

func (s *Subscription) IsTrial() bool {
	return s.Status == SubscriptionTrial
}

func (s *Subscription) IsActive() bool {
	if s.Status != SubscriptionTrial && s.Status != SubscriptionActive {
		return false
	}

	now := time.Now()
	return !now.Before(s.PeriodStart) && now.Before(s.PeriodEnd)
}

func (s *Subscription) IsLapsed() bool {
	return s.Status == SubscriptionExpired || s.Status == SubscriptionCancelled
}

func ValidTier(tier string) bool {
	return tier == TierArtist || tier == TierLabel || tier == TierAgency
}
