// AngelaMos | 2026
// middleware.go

package guard

import (
	"encoding/json"
	"net/http"

	"github.com/soundridge/identity-gateway/internal/session"
)

// SnapshotSource is satisfied by the session store.
type SnapshotSource interface {
	Snapshot() session.Snapshot
}

// PlatformFunc reports the caller's platform for a request. Supplied
// at wiring time so this package stays independent of how the
// platform is detected.
type PlatformFunc func(*http.Request) Platform

// Chain wires the guard decisions into HTTP middleware. Each guard
// rejects on its own; composing them with router.Use preserves the
// platform -> auth -> tier -> kyc order, and an outer rejection
// writes a response before any inner guard runs.
type Chain struct {
	guards    *Guards
	snapshots SnapshotSource
	platform  PlatformFunc
}

func NewChain(
	guards *Guards,
	snapshots SnapshotSource,
	platform PlatformFunc,
) *Chain {
	return &Chain{guards: guards, snapshots: snapshots, platform: platform}
}

func (c *Chain) RequirePlatform(required Platform) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := c.guards.Platform(c.platform(r), required)
			if d.Action != ActionRender {
				writeDecision(w, d)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (c *Chain) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d := c.guards.Auth(c.snapshots.Snapshot())
		if d.Action != ActionRender {
			writeDecision(w, d)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (c *Chain) RequireTier(tier string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := c.guards.Tier(c.snapshots.Snapshot(), tier)
			if d.Action != ActionRender {
				writeDecision(w, d)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (c *Chain) RequireKYC(minTier int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := c.guards.KYC(c.snapshots.Snapshot(), minTier)
			if d.Action != ActionRender {
				writeDecision(w, d)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (c *Chain) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		snap := c.snapshots.Snapshot()
		if snap.Loading {
			writeDecision(w, Decision{Action: ActionLoading})
			return
		}
		if !snap.Authenticated() || !snap.IsAdmin {
			writeDecision(w, redirect(c.guards.routes.SignIn))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeDecision(w http.ResponseWriter, d Decision) {
	w.Header().Set("Content-Type", "application/json")

	switch d.Action {
	case ActionLoading:
		w.Header().Set("Retry-After", "1")
		w.WriteHeader(http.StatusAccepted)
	case ActionRedirect:
		w.Header().Set("Location", d.Target)
		w.WriteHeader(http.StatusSeeOther)
	case ActionPrompt:
		w.WriteHeader(http.StatusForbidden)
	default:
		w.WriteHeader(http.StatusOK)
	}

	//nolint:errcheck // best-effort response write
	_ = json.NewEncoder(w).Encode(d)
}

var _ SnapshotSource = (*session.Store)(nil)
