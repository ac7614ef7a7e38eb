// AngelaMos | 2026
// security_test.go

package core

import "testing"

func TestHashTokenDeterministic(t *testing.T) {
	a := HashToken("soundridge://auth-callback#access_token=A")
	b := HashToken("soundridge://auth-callback#access_token=A")
	if a != b {
		t.Error("same input hashed differently")
	}
	if len(a) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(a))
	}
	if a == HashToken("other") {
		t.Error("different inputs collided")
	}
}

func TestCompareTokenHash(t *testing.T) {
	hash := HashToken("secret")
	if !CompareTokenHash("secret", hash) {
		t.Error("valid token rejected")
	}
	if CompareTokenHash("wrong", hash) {
		t.Error("invalid token accepted")
	}
}

func TestGenerateSecureToken(t *testing.T) {
	a, err := GenerateSecureToken(32)
	if err != nil {
		t.Fatalf("GenerateSecureToken: %v", err)
	}
	b, err := GenerateSecureToken(32)
	if err != nil {
		t.Fatalf("GenerateSecureToken: %v", err)
	}
	if a == b {
		t.Error("two generated tokens are identical")
	}
	if a == "" {
		t.Error("empty token")
	}
}
