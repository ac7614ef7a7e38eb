// AngelaMos | 2026
// handler_test.go

package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/soundridge/identity-gateway/internal/provider"
)

func testRouter(store *Store) *chi.Mux {
	r := chi.NewRouter()
	NewHandler(store).RegisterRoutes(r)
	return r
}

func TestSignInEndpoint(t *testing.T) {
	idp := &mockProvider{
		signInFn: func(ctx context.Context, email, password string) (*provider.Session, error) {
			return sessionFor("user-1"), nil
		},
	}
	store := NewStore(idp, &mockPersistence{}, &mockResolver{}, nil)
	router := testRouter(store)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(
		http.MethodPost,
		"/session/sign-in",
		strings.NewReader(`{"email":"a@example.com","password":"longenough"}`),
	))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var user UserResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &user); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if user.ID != "user-1" {
		t.Errorf("user id = %q", user.ID)
	}
}

func TestSignInEndpointInvalidCredentials(t *testing.T) {
	idp := &mockProvider{
		signInFn: func(ctx context.Context, email, password string) (*provider.Session, error) {
			return nil, provider.ErrInvalidCredentials
		},
	}
	store := NewStore(idp, &mockPersistence{}, &mockResolver{}, nil)
	router := testRouter(store)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(
		http.MethodPost,
		"/session/sign-in",
		strings.NewReader(`{"email":"a@example.com","password":"wrongwrong"}`),
	))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestSignInEndpointValidation(t *testing.T) {
	store := NewStore(&mockProvider{}, &mockPersistence{}, &mockResolver{}, nil)
	router := testRouter(store)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(
		http.MethodPost,
		"/session/sign-in",
		strings.NewReader(`{"email":"not-an-email","password":"short"}`),
	))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestSignOutEndpoint(t *testing.T) {
	idp := &mockProvider{
		signInFn: func(ctx context.Context, email, password string) (*provider.Session, error) {
			return sessionFor("user-1"), nil
		},
	}
	store := NewStore(idp, &mockPersistence{}, &mockResolver{}, nil)
	if _, err := store.SignIn(context.Background(), "a@example.com", "pw"); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	router := testRouter(store)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(
		http.MethodPost,
		"/session/sign-out",
		nil,
	))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if store.Snapshot().Authenticated() {
		t.Error("still authenticated after sign-out")
	}
}

func TestSnapshotEndpoint(t *testing.T) {
	idp := &mockProvider{
		signInFn: func(ctx context.Context, email, password string) (*provider.Session, error) {
			return sessionFor("user-1"), nil
		},
	}
	store := NewStore(idp, &mockPersistence{}, &mockResolver{}, nil)
	if _, err := store.SignIn(context.Background(), "a@example.com", "pw"); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	waitFor(t, func() bool { return !store.Snapshot().Loading }, "never settled")

	router := testRouter(store)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/session/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var snap SnapshotResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if snap.User == nil || snap.User.ID != "user-1" {
		t.Errorf("user = %+v", snap.User)
	}
	if snap.Profile == nil {
		t.Error("resolved profile missing from snapshot")
	}
	if len(snap.AccessibleTiers) == 0 || snap.AccessibleTiers[0] != "artist" {
		t.Errorf("accessible tiers = %v", snap.AccessibleTiers)
	}
}

func TestEstablishEndpoint(t *testing.T) {
	idp := &mockProvider{
		exchangeFn: func(ctx context.Context, access, refresh string) (*provider.Session, error) {
			if access != "at" || refresh != "rt" {
				t.Errorf("tokens = %q/%q", access, refresh)
			}
			return sessionFor("user-1"), nil
		},
	}
	store := NewStore(idp, &mockPersistence{}, &mockResolver{}, nil)
	router := testRouter(store)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(
		http.MethodPost,
		"/session/establish",
		strings.NewReader(`{"access_token":"at","refresh_token":"rt"}`),
	))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if !store.Snapshot().Authenticated() {
		t.Error("not authenticated after establish")
	}
}

func TestOAuthURLEndpoint(t *testing.T) {
	store := NewStore(&mockProvider{}, &mockPersistence{}, &mockResolver{}, nil)
	router := testRouter(store)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(
		http.MethodGet,
		"/session/oauth/spotify",
		nil,
	))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}
