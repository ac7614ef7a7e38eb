// AngelaMos | 2026
// jwt_test.go

package provider

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/soundridge/identity-gateway/internal/config"
	"github.com/soundridge/identity-gateway/internal/core"
)

func setupVerifier(t *testing.T) (*Verifier, jwk.Key) {
	t.Helper()
	dir := t.TempDir()
	privatePath := filepath.Join(dir, "private.pem")
	publicPath := filepath.Join(dir, "public.pem")

	if err := GenerateKeyPair(privatePath, publicPath); err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}

	privatePEM, err := os.ReadFile(privatePath)
	if err != nil {
		t.Fatalf("read private key: %v", err)
	}
	privateKey, err := jwk.ParseKey(privatePEM, jwk.WithPEM(true))
	if err != nil {
		t.Fatalf("parse private key: %v", err)
	}

	verifier, err := NewVerifier(config.ProviderConfig{
		JWTPublicKeyPath: publicPath,
		JWTIssuer:        "soundridge-auth",
		JWTAudience:      "soundridge",
	})
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}

	return verifier, privateKey
}

func signToken(t *testing.T, key jwk.Key, build func(b *jwt.Builder)) string {
	t.Helper()

	b := jwt.NewBuilder().
		Issuer("soundridge-auth").
		Audience([]string{"soundridge"}).
		Subject("user-1").
		IssuedAt(time.Now()).
		Expiration(time.Now().Add(time.Hour))

	if build != nil {
		build(b)
	}

	token, err := b.Build()
	if err != nil {
		t.Fatalf("build token: %v", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.ES256(), key))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return string(signed)
}

func TestVerifyAccessToken(t *testing.T) {
	verifier, key := setupVerifier(t)

	signed := signToken(t, key, func(b *jwt.Builder) {
		b.Claim("email", "a@example.com").Claim("role", "admin")
	})

	claims, err := verifier.VerifyAccessToken(context.Background(), signed)
	if err != nil {
		t.Fatalf("VerifyAccessToken: %v", err)
	}

	if claims.UserID != "user-1" {
		t.Errorf("user id = %q, want user-1", claims.UserID)
	}
	if claims.Email != "a@example.com" {
		t.Errorf("email = %q", claims.Email)
	}
	if claims.Role != "admin" {
		t.Errorf("role = %q", claims.Role)
	}
}

func TestVerifyAccessTokenExpired(t *testing.T) {
	verifier, key := setupVerifier(t)

	signed := signToken(t, key, func(b *jwt.Builder) {
		b.Expiration(time.Now().Add(-time.Hour))
	})

	_, err := verifier.VerifyAccessToken(context.Background(), signed)
	if !errors.Is(err, core.ErrTokenExpired) {
		t.Errorf("error = %v, want ErrTokenExpired", err)
	}
}

func TestVerifyAccessTokenWrongIssuer(t *testing.T) {
	verifier, key := setupVerifier(t)

	signed := signToken(t, key, func(b *jwt.Builder) {
		b.Issuer("someone-else")
	})

	_, err := verifier.VerifyAccessToken(context.Background(), signed)
	if !errors.Is(err, core.ErrTokenInvalid) {
		t.Errorf("error = %v, want ErrTokenInvalid", err)
	}
}

func TestVerifyAccessTokenGarbage(t *testing.T) {
	verifier, _ := setupVerifier(t)

	_, err := verifier.VerifyAccessToken(context.Background(), "not-a-token")
	if !errors.Is(err, core.ErrTokenInvalid) {
		t.Errorf("error = %v, want ErrTokenInvalid", err)
	}
}
