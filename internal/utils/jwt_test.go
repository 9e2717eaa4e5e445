package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func testCodec() *TokenCodec {
	return NewTokenCodec("access-secret-1", "refresh-secret-1", 15*time.Minute, 7*24*time.Hour)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	c := testCodec()

	signed, err := c.SignAccess("user-1", "alice@example.com", "USER")
	if err != nil {
		t.Fatalf("sign access failed: %v", err)
	}
	if signed.Token == "" {
		t.Fatal("expected non-empty token")
	}

	claims, err := c.Verify(signed.Token, TokenKindAccess)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if claims.UserID != "user-1" || claims.Email != "alice@example.com" || claims.Role != "USER" {
		t.Fatalf("claims mismatch: %+v", claims)
	}
	if claims.Kind != TokenKindAccess {
		t.Fatalf("expected kind %q, got %q", TokenKindAccess, claims.Kind)
	}
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	c := testCodec()

	signed, err := c.SignRefresh("user-2", "bob@example.com", "ADMIN")
	if err != nil {
		t.Fatalf("sign refresh failed: %v", err)
	}
	claims, err := c.Verify(signed.Token, TokenKindRefresh)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if claims.Kind != TokenKindRefresh || claims.Role != "ADMIN" {
		t.Fatalf("claims mismatch: %+v", claims)
	}
}

// A token of one kind must never verify as the other.  With independent
// secrets the signature check fails before the kind claim is even read.
func TestVerifyCrossSecretRejected(t *testing.T) {
	c := testCodec()

	access, err := c.SignAccess("user-1", "alice@example.com", "USER")
	if err != nil {
		t.Fatalf("sign access failed: %v", err)
	}
	if _, err := c.Verify(access.Token, TokenKindRefresh); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for access token under refresh secret, got %v", err)
	}

	refresh, err := c.SignRefresh("user-1", "alice@example.com", "USER")
	if err != nil {
		t.Fatalf("sign refresh failed: %v", err)
	}
	if _, err := c.Verify(refresh.Token, TokenKindAccess); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for refresh token under access secret, got %v", err)
	}
}

// With identical secrets the signature passes, isolating the kind check.
func TestVerifyWrongKind(t *testing.T) {
	c := NewTokenCodec("shared-secret", "shared-secret", time.Minute, time.Hour)

	access, err := c.SignAccess("user-1", "alice@example.com", "USER")
	if err != nil {
		t.Fatalf("sign access failed: %v", err)
	}
	if _, err := c.Verify(access.Token, TokenKindRefresh); !errors.Is(err, ErrWrongTokenKind) {
		t.Fatalf("expected ErrWrongTokenKind, got %v", err)
	}
}

func TestVerifyExpired(t *testing.T) {
	c := NewTokenCodec("access-secret-1", "refresh-secret-1", -time.Minute, -time.Minute)

	signed, err := c.SignAccess("user-1", "alice@example.com", "USER")
	if err != nil {
		t.Fatalf("sign access failed: %v", err)
	}
	if _, err := c.Verify(signed.Token, TokenKindAccess); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestVerifyGarbage(t *testing.T) {
	c := testCodec()

	for _, tok := range []string{"", "not-a-jwt", "a.b.c", "eyJhbGciOiJIUzI1NiJ9.e30."} {
		if _, err := c.Verify(tok, TokenKindAccess); err == nil {
			t.Fatalf("expected error for token %q", tok)
		}
	}
}

func TestVerifyTampered(t *testing.T) {
	c := testCodec()

	signed, err := c.SignAccess("user-1", "alice@example.com", "USER")
	if err != nil {
		t.Fatalf("sign access failed: %v", err)
	}
	tampered := signed.Token[:len(signed.Token)-2] + "xx"
	if _, err := c.Verify(tampered, TokenKindAccess); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for tampered token, got %v", err)
	}
}

// Two tokens minted back to back for the same user must differ even when
// they land in the same second: the token string is the store's lookup
// key, so a collision would make one row stand for two grants.
func TestMintedTokensAreUnique(t *testing.T) {
	c := testCodec()

	a, err := c.SignRefresh("user-1", "alice@example.com", "USER")
	if err != nil {
		t.Fatalf("sign refresh failed: %v", err)
	}
	b, err := c.SignRefresh("user-1", "alice@example.com", "USER")
	if err != nil {
		t.Fatalf("sign refresh failed: %v", err)
	}
	if a.Token == b.Token {
		t.Fatal("consecutive tokens for the same user must not collide")
	}
}

// A token signed with the right secret and kind but missing the identity
// claims is rejected as malformed, not accepted with zero values.
func TestVerifyMalformedClaims(t *testing.T) {
	c := testCodec()

	claims := TokenClaims{
		Kind: TokenKindAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now().UTC()),
			ExpiresAt: jwt.NewNumericDate(time.Now().UTC().Add(time.Minute)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("access-secret-1"))
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if _, err := c.Verify(tok, TokenKindAccess); !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed, got %v", err)
	}
}

func TestSignedExpiryMatchesTTL(t *testing.T) {
	ttl := 42 * time.Minute
	c := NewTokenCodec("a", "r", ttl, time.Hour)

	before := time.Now().UTC()
	signed, err := c.SignAccess("user-1", "alice@example.com", "USER")
	if err != nil {
		t.Fatalf("sign access failed: %v", err)
	}
	after := time.Now().UTC()

	if signed.Exp.Before(before.Add(ttl)) || signed.Exp.After(after.Add(ttl)) {
		t.Fatalf("expiry %v outside expected window", signed.Exp)
	}
}
