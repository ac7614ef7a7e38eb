// AngelaMos | 2026
// types.go

package provider

import (
	"errors"
	"time"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidGrant       = errors.New("invalid grant")
	ErrUnavailable        = errors.New("identity provider unavailable")
)

// Session is the provider-owned token pair. The gateway holds a
// read-only projection; expiry and refresh are the provider's business.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         *User     `json:"user,omitempty"`
}

func (s *Session) Expired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

type User struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
}

type Claims struct {
	UserID string
	Email  string
	Role   string
}
