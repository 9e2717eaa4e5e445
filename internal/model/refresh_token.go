package model

import "time"

// RefreshToken models a row in the `refresh_tokens` table.  The Token
// column stores the signed JWT string itself and is the unique lookup
// key for the refresh flow.  Rows are never deleted; revocation sets
// RevokedAt, keeping an audit trail of every rotation.
//
// Fields:
//  ID        – primary key (uuid string).
//  Token     – the signed refresh token string, unique.
//  UserID    – owner of the token.
//  ExpiresAt – expiration timestamp.
//  RevokedAt – when the token was revoked (nil if still active).
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        string
	Token     string
	UserID    string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}

// Active reports whether the token is usable at the given instant:
// not revoked and not past its expiry.
func (t RefreshToken) Active(now time.Time) bool {
	return t.RevokedAt == nil && now.Before(t.ExpiresAt)
}
