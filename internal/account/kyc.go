// AngelaMos | 2026
// kyc.go

package account

import (
	"fmt"

	"github.com/soundridge/identity-gateway/internal/core"
)

// kycTransitions encodes the verification state machine:
// unverified -> pending -> verified, with rejected reachable only from
// pending and resubmission allowed from rejected.
var kycTransitions = map[string][]string{
	KYCStatusUnverified: {KYCStatusPending},
	KYCStatusPending:    {KYCStatusVerified, KYCStatusRejected},
	KYCStatusRejected:   {KYCStatusPending},
	KYCStatusVerified:   {},
}

func CanTransitionKYC(from, to string) bool {
	for _, next := range kycTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func ValidateKYCTransition(from, to string) error {
	if !CanTransitionKYC(from, to) {
		return fmt.Errorf(
			"kyc transition %s -> %s: %w",
			from,
			to,
			core.ErrInvalidInput,
		)
	}
	return nil
}

// TierAfterTransition applies the verification-tier policy for a status
// transition. The tier only moves upward, on entry into verified; a
// rejection blocks further upgrades but does not revoke a tier that was
// already granted. Policy choice: flipping to revoke-on-reject means
// changing only this function, the guards never encode it.
func TierAfterTransition(currentTier int, newStatus string) int {
	if newStatus == KYCStatusVerified && currentTier < KYCTierVerified {
		return KYCTierVerified
	}
	return currentTier
}
