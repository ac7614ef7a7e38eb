// AngelaMos | 2026
// dto.go

package account

import (
	"time"
)

type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name,omitempty" validate:"omitempty,min=1,max=100"`
	FirstName   *string `json:"first_name,omitempty"   validate:"omitempty,max=100"`
	LastName    *string `json:"last_name,omitempty"    validate:"omitempty,max=100"`
	Phone       *string `json:"phone,omitempty"        validate:"omitempty,e164"`
}

type ReviewKYCRequest struct {
	Approved bool `json:"approved"`
}

type BanRequest struct {
	Reason string `json:"reason" validate:"required,min=1,max=500"`
}

type ProfileResponse struct {
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	FirstName   string    `json:"first_name,omitempty"`
	LastName    string    `json:"last_name,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	KYCTier     int       `json:"kyc_tier"`
	KYCStatus   string    `json:"kyc_status"`
	Banned      bool      `json:"banned"`
	BanReason   string    `json:"ban_reason,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func ToProfileResponse(p *Profile) ProfileResponse {
	return ProfileResponse{
		UserID:      p.UserID,
		DisplayName: p.DisplayName,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		Phone:       p.Phone,
		KYCTier:     p.KYCTier,
		KYCStatus:   p.KYCStatus,
		Banned:      p.Banned,
		BanReason:   p.BanReason,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

type SubscriptionResponse struct {
	ID          string     `json:"id"`
	Tier        string     `json:"tier"`
	Status      string     `json:"status"`
	IsActive    bool       `json:"is_active"`
	IsTrial     bool       `json:"is_trial"`
	TrialEndsAt *time.Time `json:"trial_ends_at,omitempty"`
	PeriodStart time.Time  `json:"period_start"`
	PeriodEnd   time.Time  `json:"period_end"`
}

func ToSubscriptionResponse(s *Subscription) SubscriptionResponse {
	return SubscriptionResponse{
		ID:          s.ID,
		Tier:        s.Tier,
		Status:      s.Status,
		IsActive:    s.IsActive(),
		IsTrial:     s.IsTrial(),
		TrialEndsAt: s.TrialEndsAt,
		PeriodStart: s.PeriodStart,
		PeriodEnd:   s.PeriodEnd,
	}
}
