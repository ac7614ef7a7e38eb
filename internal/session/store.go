// AngelaMos | 2026
// store.go

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/soundridge/identity-gateway/internal/account"
	"github.com/soundridge/identity-gateway/internal/provider"
	"github.com/soundridge/identity-gateway/internal/resolver"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type Event string

const (
	EventSignedIn       Event = "SIGNED_IN"
	EventSignedOut      Event = "SIGNED_OUT"
	EventTokenRefreshed Event = "TOKEN_REFRESHED"
)

type Listener func(event Event, session *provider.Session)

type IdentityProvider interface {
	SignInWithPassword(
		ctx context.Context,
		email, password string,
	) (*provider.Session, error)
	ExchangeTokens(
		ctx context.Context,
		accessToken, refreshToken string,
	) (*provider.Session, error)
	SignUp(
		ctx context.Context,
		email, password, displayName string,
	) (*provider.Session, error)
	SignOut(ctx context.Context, accessToken string) error
	ResetPasswordForEmail(ctx context.Context, email string) error
	OAuthURL(oauthProvider, redirectTo string) string
}

type Persistence interface {
	Persist(ctx context.Context, session *provider.Session) error
	Load(ctx context.Context) (*provider.Session, error)
	Delete(ctx context.Context) error
}

type Resolver interface {
	Resolve(ctx context.Context, userID string) (*resolver.Resolved, error)
}

// Snapshot is the resolved identity state guards and handlers consult.
// Loading is true until the store has settled at least once after
// startup or a session change.
type Snapshot struct {
	User                  *provider.User
	Session               *provider.Session
	Profile               *account.Profile
	Role                  *account.RoleAssignment
	Subscriptions         []account.Subscription
	AccessibleTiers       []string
	Loading               bool
	IsAdmin               bool
	HasLabelAccess        bool
	HasAgencyAccess       bool
	HasActiveSubscription bool
}

func (s Snapshot) Authenticated() bool {
	return s.User != nil
}

func (s *Snapshot) HasTier(tier string) bool {
	for _, t := range s.AccessibleTiers {
		if t == tier {
			return true
		}
	}
	return false
}

func (s *Snapshot) LapsedSubscription(tier string) bool {
	for i := range s.Subscriptions {
		sub := &s.Subscriptions[i]
		if sub.Tier == tier && sub.IsLapsed() {
			return true
		}
	}
	return false
}

const resolveTimeout = 30 * time.Second

// Store owns the authoritative in-memory session. All entry points
// (password sign-in, token exchange from a deep link, restore at
// startup, provider push events) converge on onSessionEstablished, so
// a restored session and a fresh sign-in behave identically downstream.
type Store struct {
	provider    IdentityProvider
	persistence Persistence
	resolver    Resolver
	logger      *slog.Logger

	mu        sync.RWMutex
	state     Snapshot
	seq       uint64
	listeners []Listener
}

func NewStore(
	idp IdentityProvider,
	persistence Persistence,
	res Resolver,
	logger *slog.Logger,
) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		provider:    idp,
		persistence: persistence,
		resolver:    res,
		logger:      logger,
		state:       Snapshot{Loading: true},
	}
}

func (s *Store) Subscribe(listener Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, listener)
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Establish exchanges a raw token pair for a provider session and makes
// it the authoritative one.
func (s *Store) Establish(
	ctx context.Context,
	accessToken, refreshToken string,
) (*provider.User, error) {
	sess, err := s.provider.ExchangeTokens(ctx, accessToken, refreshToken)
	if err != nil {
		if errors.Is(err, provider.ErrInvalidCredentials) ||
			errors.Is(err, provider.ErrInvalidGrant) {
			return nil, fmt.Errorf("establish: %w", ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("establish: %w", err)
	}

	s.onSessionEstablished(ctx, sess, EventSignedIn)
	return sess.User, nil
}

func (s *Store) SignIn(
	ctx context.Context,
	email, password string,
) (*provider.User, error) {
	sess, err := s.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		if errors.Is(err, provider.ErrInvalidCredentials) {
			return nil, fmt.Errorf("sign in: %w", ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("sign in: %w", err)
	}

	s.onSessionEstablished(ctx, sess, EventSignedIn)
	return sess.User, nil
}

func (s *Store) SignUp(
	ctx context.Context,
	email, password, displayName string,
) (*provider.User, error) {
	sess, err := s.provider.SignUp(ctx, email, password, displayName)
	if err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}

	s.onSessionEstablished(ctx, sess, EventSignedIn)
	return sess.User, nil
}

// Restore is called once at process start. A persisted session flows
// through the exact same establishment path as an explicit sign-in;
// absence settles the store in the signed-out state.
func (s *Store) Restore(ctx context.Context) error {
	if s.persistence == nil {
		s.settleSignedOut()
		return nil
	}

	sess, err := s.persistence.Load(ctx)
	if err != nil {
		s.settleSignedOut()
		return fmt.Errorf("restore: %w", err)
	}

	if sess == nil {
		s.settleSignedOut()
		return nil
	}

	s.onSessionEstablished(ctx, sess, EventSignedIn)
	return nil
}

// Clear signs out. The provider call is best-effort: the local state
// always ends signed out even when the network call fails.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	sess := s.state.Session
	s.seq++
	s.state = Snapshot{Loading: false}
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	if sess != nil && s.provider != nil {
		if err := s.provider.SignOut(ctx, sess.AccessToken); err != nil {
			s.logger.Warn("provider sign-out failed", "error", err)
		}
	}

	if s.persistence != nil {
		if err := s.persistence.Delete(ctx); err != nil {
			s.logger.Warn("delete persisted session failed", "error", err)
		}
	}

	for _, listener := range listeners {
		listener(EventSignedOut, nil)
	}
}

// ApplyProviderEvent ingests a provider-side push notification.
// Refreshes swap tokens in place without re-resolving; sign-outs clear.
func (s *Store) ApplyProviderEvent(
	ctx context.Context,
	event Event,
	sess *provider.Session,
) {
	switch event {
	case EventTokenRefreshed:
		if sess == nil {
			return
		}
		s.mu.Lock()
		if s.state.Session == nil || s.state.User == nil ||
			sess.User == nil || sess.User.ID != s.state.User.ID {
			s.mu.Unlock()
			return
		}
		s.state.Session = sess
		listeners := append([]Listener(nil), s.listeners...)
		s.mu.Unlock()

		s.persist(ctx, sess)
		for _, listener := range listeners {
			listener(EventTokenRefreshed, sess)
		}
	case EventSignedOut:
		s.Clear(ctx)
	case EventSignedIn:
		if sess != nil {
			s.onSessionEstablished(ctx, sess, EventSignedIn)
		}
	}
}

func (s *Store) ResetPasswordForEmail(ctx context.Context, email string) error {
	return s.provider.ResetPasswordForEmail(ctx, email)
}

func (s *Store) OAuthURL(oauthProvider, redirectTo string) string {
	return s.provider.OAuthURL(oauthProvider, redirectTo)
}

// RefreshUserData re-runs resolution for the current user synchronously.
func (s *Store) RefreshUserData(ctx context.Context) error {
	s.mu.RLock()
	user := s.state.User
	seq := s.seq
	s.mu.RUnlock()

	if user == nil {
		return nil
	}

	return s.resolve(ctx, seq, user.ID)
}

// onSessionEstablished is the single convergence point for every way a
// session can appear. Subscribers are notified before resolution is
// scheduled: the perceived sign-in must never wait on the profile
// round-trip.
func (s *Store) onSessionEstablished(
	ctx context.Context,
	sess *provider.Session,
	event Event,
) {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.state = Snapshot{
		User:    sess.User,
		Session: sess,
		Loading: true,
	}
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	s.persist(ctx, sess)

	for _, listener := range listeners {
		listener(event, sess)
	}

	userID := ""
	if sess.User != nil {
		userID = sess.User.ID
	}

	go func() {
		resolveCtx, cancel := context.WithTimeout(
			context.WithoutCancel(ctx),
			resolveTimeout,
		)
		defer cancel()

		if err := s.resolve(resolveCtx, seq, userID); err != nil {
			s.logger.Warn("post-establish resolution failed",
				"user_id", userID,
				"error", err,
			)
		}
	}()
}

// resolve runs the profile/tier pipeline and applies the result only if
// no newer session change happened in the meantime: a resolution for an
// older session must never overwrite a newer one.
func (s *Store) resolve(ctx context.Context, seq uint64, userID string) error {
	if userID == "" {
		s.applyResolved(seq, nil)
		return nil
	}

	resolved, err := s.resolver.Resolve(ctx, userID)
	if err != nil {
		var banned *resolver.BannedError
		if errors.As(err, &banned) {
			s.logger.Warn("banned account detected, forcing sign-out",
				"user_id", userID,
				"reason", banned.Reason,
			)
			if s.current(seq) {
				s.Clear(ctx)
			}
			return err
		}

		s.applyResolved(seq, nil)
		return err
	}

	s.applyResolved(seq, resolved)
	return nil
}

func (s *Store) applyResolved(seq uint64, resolved *resolver.Resolved) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.seq {
		return
	}

	s.state.Loading = false
	if resolved == nil {
		return
	}

	s.state.Profile = resolved.Profile
	s.state.Role = resolved.Role
	s.state.Subscriptions = resolved.Subscriptions
	s.state.AccessibleTiers = resolved.AccessibleTiers
	s.state.IsAdmin = resolved.IsAdmin
	s.state.HasLabelAccess = resolved.HasLabelAccess
	s.state.HasAgencyAccess = resolved.HasAgencyAccess
	s.state.HasActiveSubscription = resolved.HasActiveSubscription
}

func (s *Store) current(seq uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return seq == s.seq
}

func (s *Store) settleSignedOut() {
	s.mu.Lock()
	s.seq++
	s.state = Snapshot{Loading: false}
	s.mu.Unlock()
}

func (s *Store) persist(ctx context.Context, sess *provider.Session) {
	if s.persistence == nil {
		return
	}
	if err := s.persistence.Persist(ctx, sess); err != nil {
		s.logger.Warn("persist session failed", "error", err)
	}
}

var (
	_ IdentityProvider = (*provider.Client)(nil)
	_ Persistence      = (*provider.SessionMirror)(nil)
	_ Resolver         = (*resolver.Resolver)(nil)
)
