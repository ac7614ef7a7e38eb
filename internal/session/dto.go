// AngelaMos | 2026
// dto.go

package session

import (
	"time"

	"github.com/soundridge/identity-gateway/internal/account"
	"github.com/soundridge/identity-gateway/internal/provider"
)

type SignInRequest struct {
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type SignUpRequest struct {
	Email       string `json:"email"        validate:"required,email,max=255"`
	Password    string `json:"password"     validate:"required,min=8,max=128"`
	DisplayName string `json:"display_name" validate:"required,min=1,max=100"`
}

type EstablishRequest struct {
	AccessToken  string `json:"access_token"  validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type RecoverRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

type UserResponse struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
}

type SnapshotResponse struct {
	User                  *UserResponse                  `json:"user"`
	Profile               *account.ProfileResponse       `json:"profile"`
	Role                  string                         `json:"role,omitempty"`
	Subscriptions         []account.SubscriptionResponse `json:"subscriptions"`
	AccessibleTiers       []string                       `json:"accessible_tiers"`
	Loading               bool                           `json:"loading"`
	IsAdmin               bool                           `json:"is_admin"`
	HasLabelAccess        bool                           `json:"has_label_access"`
	HasAgencyAccess       bool                           `json:"has_agency_access"`
	HasActiveSubscription bool                           `json:"has_active_subscription"`
}

type OAuthURLResponse struct {
	URL string `json:"url"`
}

func toUserResponse(u *provider.User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{
		ID:            u.ID,
		Email:         u.Email,
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
	}
}

func ToSnapshotResponse(snap Snapshot) SnapshotResponse {
	resp := SnapshotResponse{
		User:                  toUserResponse(snap.User),
		AccessibleTiers:       snap.AccessibleTiers,
		Loading:               snap.Loading,
		IsAdmin:               snap.IsAdmin,
		HasLabelAccess:        snap.HasLabelAccess,
		HasAgencyAccess:       snap.HasAgencyAccess,
		HasActiveSubscription: snap.HasActiveSubscription,
	}

	if snap.Profile != nil {
		profile := account.ToProfileResponse(snap.Profile)
		resp.Profile = &profile
	}

	if snap.Role != nil {
		resp.Role = snap.Role.Role
	}

	resp.Subscriptions = make(
		[]account.SubscriptionResponse,
		0,
		len(snap.Subscriptions),
	)
	for i := range snap.Subscriptions {
		resp.Subscriptions = append(
			resp.Subscriptions,
			account.ToSubscriptionResponse(&snap.Subscriptions[i]),
		)
	}

	return resp
}
