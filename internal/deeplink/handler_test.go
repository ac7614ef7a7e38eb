// AngelaMos | 2026
// handler_test.go

package deeplink

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/soundridge/identity-gateway/internal/config"
	"github.com/soundridge/identity-gateway/internal/provider"
)

type mockEstablisher struct {
	mu    sync.Mutex
	calls int
	fn    func(ctx context.Context, access, refresh string) (*provider.User, error)
}

func (m *mockEstablisher) Establish(
	ctx context.Context,
	access, refresh string,
) (*provider.User, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.fn != nil {
		return m.fn(ctx, access, refresh)
	}
	return &provider.User{ID: "user-1"}, nil
}

func (m *mockEstablisher) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type mapMarkers struct {
	mu   sync.Mutex
	seen map[string]bool
	err  error
}

func (m *mapMarkers) MarkProcessed(ctx context.Context, key string) (bool, error) {
	if m.err != nil {
		return true, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seen == nil {
		m.seen = make(map[string]bool)
	}
	if m.seen[key] {
		return false, nil
	}
	m.seen[key] = true
	return true, nil
}

type spyNavigator struct {
	mu     sync.Mutex
	routes []string
}

func (s *spyNavigator) Navigate(route string) {
	s.mu.Lock()
	s.routes = append(s.routes, route)
	s.mu.Unlock()
}

type spyNotifier struct {
	messages []string
}

func (s *spyNotifier) Notify(message string) {
	s.messages = append(s.messages, message)
}

func newTestHandler(
	establisher *mockEstablisher,
	markers Markers,
	nav *spyNavigator,
	notifier *spyNotifier,
) *Handler {
	return NewHandler(HandlerConfig{
		DeepLink: config.DeepLinkConfig{
			CallbackScheme: "soundridge",
			CallbackHost:   "auth-callback",
			LogCapacity:    50,
		},
		Routes: config.RoutesConfig{
			AuthLanding:   "/home",
			MobileLanding: "/",
		},
		Sessions: establisher,
		Markers:  markers,
		Nav:      nav,
		Notifier: notifier,
	})
}

func TestHandleURLCompletesSignIn(t *testing.T) {
	establisher := &mockEstablisher{}
	nav := &spyNavigator{}
	h := newTestHandler(establisher, &mapMarkers{}, nav, &spyNotifier{})

	result := h.HandleURL(
		context.Background(),
		"soundridge://auth-callback#access_token=A&refresh_token=B",
	)

	if result.Outcome != OutcomeNavigated {
		t.Fatalf("outcome = %q, want %q", result.Outcome, OutcomeNavigated)
	}
	if result.Route != "/home" {
		t.Errorf("route = %q, want /home", result.Route)
	}
	if establisher.callCount() != 1 {
		t.Errorf("establish calls = %d, want 1", establisher.callCount())
	}
	if len(nav.routes) != 1 || nav.routes[0] != "/home" {
		t.Errorf("navigations = %v, want one to /home", nav.routes)
	}
}

func TestHandleURLDuplicateSuppressed(t *testing.T) {
	establisher := &mockEstablisher{}
	nav := &spyNavigator{}
	h := newTestHandler(establisher, &mapMarkers{}, nav, &spyNotifier{})

	url := "soundridge://auth-callback#access_token=A&refresh_token=B"
	first := h.HandleURL(context.Background(), url)
	second := h.HandleURL(context.Background(), url)

	if first.Outcome != OutcomeNavigated {
		t.Fatalf("first outcome = %q", first.Outcome)
	}
	if second.Outcome != OutcomeDuplicate {
		t.Fatalf("second outcome = %q, want %q", second.Outcome, OutcomeDuplicate)
	}
	if establisher.callCount() != 1 {
		t.Errorf("establish calls = %d, want exactly 1", establisher.callCount())
	}
	if len(nav.routes) != 1 {
		t.Errorf("navigations = %d, want exactly 1", len(nav.routes))
	}
}

func TestHandleURLMarkerFailureFailsOpen(t *testing.T) {
	establisher := &mockEstablisher{}
	h := newTestHandler(
		establisher,
		&mapMarkers{err: errors.New("redis down")},
		&spyNavigator{},
		&spyNotifier{},
	)

	result := h.HandleURL(
		context.Background(),
		"soundridge://auth-callback#access_token=A&refresh_token=B",
	)

	if result.Outcome != OutcomeNavigated {
		t.Fatalf("outcome = %q, want navigated despite marker failure", result.Outcome)
	}
	if establisher.callCount() != 1 {
		t.Errorf("establish calls = %d, want 1", establisher.callCount())
	}
}

func TestHandleURLIncompleteTokens(t *testing.T) {
	establisher := &mockEstablisher{}
	notifier := &spyNotifier{}
	nav := &spyNavigator{}
	h := newTestHandler(establisher, &mapMarkers{}, nav, notifier)

	result := h.HandleURL(
		context.Background(),
		"soundridge://auth-callback#access_token=A",
	)

	if result.Outcome != OutcomeIncomplete {
		t.Fatalf("outcome = %q, want %q", result.Outcome, OutcomeIncomplete)
	}
	if establisher.callCount() != 0 {
		t.Errorf("establish called with incomplete tokens")
	}
	if len(notifier.messages) != 1 {
		t.Fatalf("notifications = %d, want 1", len(notifier.messages))
	}
	if len(nav.routes) != 0 {
		t.Errorf("navigated on incomplete callback: %v", nav.routes)
	}
}

func TestHandleURLEstablishFailure(t *testing.T) {
	establisher := &mockEstablisher{
		fn: func(context.Context, string, string) (*provider.User, error) {
			return nil, errors.New("exchange failed")
		},
	}
	notifier := &spyNotifier{}
	nav := &spyNavigator{}
	h := newTestHandler(establisher, &mapMarkers{}, nav, notifier)

	result := h.HandleURL(
		context.Background(),
		"soundridge://auth-callback#access_token=A&refresh_token=B",
	)

	if result.Outcome != OutcomeFailed {
		t.Fatalf("outcome = %q, want %q", result.Outcome, OutcomeFailed)
	}
	if len(notifier.messages) != 1 {
		t.Errorf("notifications = %d, want 1", len(notifier.messages))
	}
	if len(nav.routes) != 0 {
		t.Errorf("navigated after failed establish: %v", nav.routes)
	}
}

func TestHandleURLGenericLink(t *testing.T) {
	establisher := &mockEstablisher{}
	nav := &spyNavigator{}
	h := newTestHandler(establisher, &mapMarkers{}, nav, &spyNotifier{})

	result := h.HandleURL(context.Background(), "soundridge://profile/123")

	if result.Outcome != OutcomeNavigated {
		t.Fatalf("outcome = %q, want navigated", result.Outcome)
	}
	if result.Route != "/profile/123" {
		t.Errorf("route = %q, want /profile/123", result.Route)
	}
	if establisher.callCount() != 0 {
		t.Errorf("establish called for a non-callback link")
	}
}

func TestHandleURLGenericLinkNotDeduplicated(t *testing.T) {
	nav := &spyNavigator{}
	h := newTestHandler(&mockEstablisher{}, &mapMarkers{}, nav, &spyNotifier{})

	h.HandleURL(context.Background(), "soundridge://profile/123")
	h.HandleURL(context.Background(), "soundridge://profile/123")

	if len(nav.routes) != 2 {
		t.Errorf("navigations = %d, want 2: only auth callbacks are deduplicated", len(nav.routes))
	}
}

func TestHandleURLHTTPSCallback(t *testing.T) {
	establisher := &mockEstablisher{}
	h := newTestHandler(establisher, &mapMarkers{}, &spyNavigator{}, &spyNotifier{})

	result := h.HandleURL(
		context.Background(),
		"https://app.example.com/auth-callback#access_token=A&refresh_token=B",
	)

	if result.Outcome != OutcomeNavigated {
		t.Fatalf("outcome = %q, want navigated", result.Outcome)
	}
	if establisher.callCount() != 1 {
		t.Errorf("establish calls = %d, want 1", establisher.callCount())
	}
}

type staticSource struct {
	cold string
	errs error
}

func (s *staticSource) ColdStartURL(ctx context.Context) (string, error) {
	return s.cold, s.errs
}

func (s *staticSource) Listen(ctx context.Context, fn func(string)) error {
	return s.errs
}

func TestStartDrainsColdStartURL(t *testing.T) {
	establisher := &mockEstablisher{}
	h := newTestHandler(establisher, &mapMarkers{}, &spyNavigator{}, &spyNotifier{})

	h.Start(context.Background(), &staticSource{
		cold: "soundridge://auth-callback#access_token=A&refresh_token=B",
	})

	if establisher.callCount() != 1 {
		t.Errorf("establish calls = %d, want 1 from cold start", establisher.callCount())
	}
}

func TestStartSurvivesSourceErrors(t *testing.T) {
	h := newTestHandler(
		&mockEstablisher{},
		&mapMarkers{},
		&spyNavigator{},
		&spyNotifier{},
	)

	// must not panic or return an error to the caller
	h.Start(context.Background(), &staticSource{errs: errors.New("bridge down")})

	if h.Log().Len() == 0 {
		t.Error("source errors should be recorded in the activity log")
	}
}
