package utils // package utils provides helper functions for token signing and hashing

import (
	"errors" // sentinel verification errors
	"time"   // expiry computation

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
	"github.com/google/uuid"       // unique jti per minted token
)

// Token kinds carried in the "type" claim.  Access and refresh tokens are
// signed with independent secrets, so a token of one kind can never verify
// as the other even before the kind claim is checked.
const (
	TokenKindAccess  = "access"
	TokenKindRefresh = "refresh"
)

// Verification failure modes.  Callers match these with errors.Is.
var (
	ErrTokenInvalid   = errors.New("invalid token")          // bad signature or undecodable
	ErrTokenExpired   = errors.New("token expired")          // exp claim in the past
	ErrWrongTokenKind = errors.New("wrong token kind")       // type claim mismatch
	ErrTokenMalformed = errors.New("malformed token claims") // required claims absent
)

// TokenClaims is the payload carried by both token kinds.  The custom
// claim names mirror what API clients expect: userId, email, role, type.
type TokenClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Kind   string `json:"type"`
	jwt.RegisteredClaims
}

// SignedToken pairs a serialized JWT with its expiration time so callers
// can report expiry without re-parsing the token.
type SignedToken struct {
	Token string    `json:"token"`
	Exp   time.Time `json:"expires"`
}

// TokenCodec signs and verifies HS256 tokens.  Access and refresh
// lifetimes are fixed at construction; TTL strings from the environment
// are parsed once by config, never re-derived at verify time.
type TokenCodec struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewTokenCodec builds a codec from the two signing secrets and the token
// lifetimes.
func NewTokenCodec(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenCodec {
	return &TokenCodec{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// RefreshTTL exposes the refresh lifetime so stores and caches can align
// row expiry and cache TTL with the token itself.
func (c *TokenCodec) RefreshTTL() time.Duration { return c.refreshTTL }

// SignAccess builds and signs a short-lived access token for a user.
func (c *TokenCodec) SignAccess(userID, email, role string) (SignedToken, error) {
	return c.sign(userID, email, role, TokenKindAccess, c.accessSecret, c.accessTTL)
}

// SignRefresh builds and signs a refresh token for a user.
func (c *TokenCodec) SignRefresh(userID, email, role string) (SignedToken, error) {
	return c.sign(userID, email, role, TokenKindRefresh, c.refreshSecret, c.refreshTTL)
}

func (c *TokenCodec) sign(userID, email, role, kind string, secret []byte, ttl time.Duration) (SignedToken, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := TokenClaims{
		UserID: userID,
		Email:  email,
		Role:   role,
		Kind:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			// iat/exp have second granularity; the jti is what keeps two
			// tokens minted for the same user in the same second distinct.
			ID:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(secret)
	if err != nil {
		return SignedToken{}, err
	}
	return SignedToken{Token: signed, Exp: exp}, nil
}

// Verify checks a token against the secret for the expected kind and
// returns its claims.  A refresh token can never verify under the access
// secret (and vice versa): the signature check fails first with
// ErrTokenInvalid.  A token that verifies but carries the wrong type
// claim fails with ErrWrongTokenKind, and one missing required claims
// with ErrTokenMalformed.
func (c *TokenCodec) Verify(token, kind string) (*TokenClaims, error) {
	secret := c.accessSecret
	if kind == TokenKindRefresh {
		secret = c.refreshSecret
	}
	claims := &TokenClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if claims.Kind != kind {
		return nil, ErrWrongTokenKind
	}
	if claims.UserID == "" || claims.Email == "" || claims.Role == "" {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}
