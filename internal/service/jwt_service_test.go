package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestJWTService_IssueParse(t *testing.T) {
	svc := NewJWTService("secret", 15*time.Minute)

	tok, err := svc.Issue(" frontend ")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if tok.Token == "" {
		t.Fatalf("expected token")
	}
	if d := time.Until(tok.ExpiresAt); d <= 14*time.Minute || d > 15*time.Minute {
		t.Fatalf("unexpected expiry %v", tok.ExpiresAt)
	}

	claims, err := svc.Parse(tok.Token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Client != "frontend" || claims.ID == "" || claims.Issuer != "soul-agent" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestJWTService_RejectsEmptySecret(t *testing.T) {
	svc := NewJWTService("", time.Minute)
	if svc.Enabled() {
		t.Fatalf("service without secret must be disabled")
	}
	if _, err := svc.Issue("cli"); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected ErrJWTInvalid on empty secret, got %v", err)
	}
	if _, err := svc.Parse("abc"); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected ErrJWTInvalid on empty secret, got %v", err)
	}
}

func TestJWTService_RejectsEmptyClient(t *testing.T) {
	svc := NewJWTService("secret", time.Minute)
	if _, err := svc.Issue("  "); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected ErrJWTInvalid for empty client, got %v", err)
	}
}

func TestJWTService_RejectsForeignTokens(t *testing.T) {
	svc := NewJWTService("secret", time.Minute)
	now := time.Now().UTC()

	sign := func(c Claims, key string) string {
		t.Helper()
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(key))
		if err != nil {
			t.Fatalf("sign token: %v", err)
		}
		return signed
	}
	base := func() Claims {
		return Claims{
			Client:    "cli",
			TokenType: apiTokenType,
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        "jti-1",
				Issuer:    "soul-agent",
				Subject:   "cli",
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(now.Add(10 * time.Minute)),
			},
		}
	}

	wrongIssuer := base()
	wrongIssuer.Issuer = "other-issuer"
	wrongType := base()
	wrongType.TokenType = "access"
	mismatch := base()
	mismatch.Subject = "someone-else"

	cases := map[string]string{
		"wrong issuer":     sign(wrongIssuer, "secret"),
		"wrong type":       sign(wrongType, "secret"),
		"subject mismatch": sign(mismatch, "secret"),
		"wrong key":        sign(base(), "other"),
	}
	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := svc.Parse(tok); !errors.Is(err, ErrJWTInvalid) {
				t.Fatalf("expected ErrJWTInvalid, got %v", err)
			}
		})
	}

	expired := base()
	expired.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Minute))
	if _, err := svc.Parse(sign(expired, "secret")); !errors.Is(err, ErrJWTExpired) {
		t.Fatalf("expected ErrJWTExpired, got %v", err)
	}

	if _, err := svc.Parse(sign(base(), "secret")); err != nil {
		t.Fatalf("expected valid token, got %v", err)
	}
}
