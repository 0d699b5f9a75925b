package tokens

import (
	"context"
	"testing"
	"time"

	"github.com/campboard/campboard/internal/config"
	"github.com/campboard/campboard/internal/models"
)

func TestVerifierRoundTrip(t *testing.T) {
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret-32-bytes-should-be-long-enough"

	a := &models.Account{ID: "acct-123", Email: "test@example.com"}
	tokenStr, err := GenerateAccessToken(cfg, a, 2*time.Minute)
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}

	v := NewVerifier(cfg)
	tok, err := v.Verify(context.Background(), tokenStr)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	var claims map[string]interface{}
	if err := tok.Claims(&claims); err != nil {
		t.Fatalf("Claims error: %v", err)
	}
	if claims["sub"] != "acct-123" {
		t.Fatalf("expected sub acct-123, got %v", claims["sub"])
	}
}

func TestVerifierRejectsBadSignature(t *testing.T) {
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret-32-bytes-should-be-long-enough"
	a := &models.Account{ID: "acct-123", Email: "test@example.com"}
	tokenStr, err := GenerateAccessToken(cfg, a, 2*time.Minute)
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}

	other := &config.Config{}
	other.JWT.Secret = "a-completely-different-secret-value"
	if _, err := NewVerifier(other).Verify(context.Background(), tokenStr); err == nil {
		t.Fatal("expected verification failure with wrong secret")
	}
}

func TestVerifierRejectsExpired(t *testing.T) {
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret-32-bytes-should-be-long-enough"
	a := &models.Account{ID: "acct-123", Email: "test@example.com"}
	tokenStr, err := GenerateAccessToken(cfg, a, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}
	if _, err := NewVerifier(cfg).Verify(context.Background(), tokenStr); err == nil {
		t.Fatal("expected verification failure for expired token")
	}
}
