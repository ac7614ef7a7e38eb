// AngelaMos | 2026
// repository.go

package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/soundridge/identity-gateway/internal/core"
)

type Repository interface {
	GetProfile(ctx context.Context, userID string) (*Profile, error)
	CreateProfile(ctx context.Context, profile *Profile) error
	UpdateProfile(ctx context.Context, profile *Profile) error
	UpdateKYC(ctx context.Context, userID, status string, tier int) error
	SetBan(ctx context.Context, userID string, banned bool, reason string) error
	GetRole(ctx context.Context, userID string) (*RoleAssignment, error)
	ListSubscriptions(ctx context.Context, userID string) ([]Subscription, error)
	AccessibleTiers(ctx context.Context, userID string) ([]string, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) GetProfile(
	ctx context.Context,
	userID string,
) (*Profile, error) {
	query := `
		SELECT user_id, display_name, first_name, last_name, phone,
		       kyc_tier, kyc_status, banned, ban_reason,
		       created_at, updated_at, deleted_at
		FROM profiles
		WHERE user_id = $1 AND deleted_at IS NULL`

	var profile Profile
	err := r.db.GetContext(ctx, &profile, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get profile: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	return &profile, nil
}

func (r *repository) CreateProfile(
	ctx context.Context,
	profile *Profile,
) error {
	query := `
		INSERT INTO profiles (
			user_id, display_name, first_name, last_name, phone,
			kyc_tier, kyc_status
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, profile, query,
		profile.UserID,
		profile.DisplayName,
		profile.FirstName,
		profile.LastName,
		profile.Phone,
		profile.KYCTier,
		profile.KYCStatus,
	)
	if err != nil {
		return fmt.Errorf("create profile: %w", err)
	}

	return nil
}

func (r *repository) UpdateProfile(
	ctx context.Context,
	profile *Profile,
) error {
	query := `
		UPDATE profiles
		SET display_name = $2, first_name = $3, last_name = $4,
		    phone = $5, updated_at = NOW()
		WHERE user_id = $1 AND deleted_at IS NULL
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &profile.UpdatedAt, query,
		profile.UserID,
		profile.DisplayName,
		profile.FirstName,
		profile.LastName,
		profile.Phone,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update profile: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}

	return nil
}

func (r *repository) UpdateKYC(
	ctx context.Context,
	userID, status string,
	tier int,
) error {
	query := `
		UPDATE profiles
		SET kyc_status = $2, kyc_tier = $3, updated_at = NOW()
		WHERE user_id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, userID, status, tier)
	if err != nil {
		return fmt.Errorf("update kyc: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update kyc: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("update kyc: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) SetBan(
	ctx context.Context,
	userID string,
	banned bool,
	reason string,
) error {
	query := `
		UPDATE profiles
		SET banned = $2, ban_reason = $3, updated_at = NOW()
		WHERE user_id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, userID, banned, reason)
	if err != nil {
		return fmt.Errorf("set ban: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set ban: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("set ban: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) GetRole(
	ctx context.Context,
	userID string,
) (*RoleAssignment, error) {
	query := `
		SELECT user_id, role, created_at, updated_at
		FROM role_assignments
		WHERE user_id = $1`

	var role RoleAssignment
	err := r.db.GetContext(ctx, &role, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get role: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get role: %w", err)
	}

	return &role, nil
}

func (r *repository) ListSubscriptions(
	ctx context.Context,
	userID string,
) ([]Subscription, error) {
	query := `
		SELECT id, user_id, tier, status, trial_ends_at,
		       period_start, period_end, created_at, updated_at
		FROM subscriptions
		WHERE user_id = $1
		ORDER BY created_at DESC`

	var subs []Subscription
	if err := r.db.SelectContext(ctx, &subs, query, userID); err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}

	return subs, nil
}

// AccessibleTiers is the server-computed aggregate: tiers with a
// currently-active subscription. The artist base tier is added by the
// resolver, never stored.
func (r *repository) AccessibleTiers(
	ctx context.Context,
	userID string,
) ([]string, error) {
	query := `
		SELECT DISTINCT tier
		FROM subscriptions
		WHERE user_id = $1
		  AND status IN ('trial', 'active')
		  AND period_start <= NOW()
		  AND period_end > NOW()`

	var tiers []string
	if err := r.db.SelectContext(ctx, &tiers, query, userID); err != nil {
		return nil, fmt.Errorf("accessible tiers: %w", err)
	}

	return tiers, nil
}
