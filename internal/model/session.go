package model

import "time"

// Session records a device/browser presence for a user.  Sessions are
// not cryptographically tied to a refresh token; they exist for
// visibility and coarse expiry.  Logout deletes them wholesale,
// revoke-all expires them in place.
//
// Fields:
//  ID        – primary key (uuid string).
//  UserID    – owner of the session.
//  IPAddress – client address if known.
//  UserAgent – client user agent if known.
//  ExpiresAt – when the session lapses.
//  CreatedAt – timestamp of creation.
type Session struct {
	ID        string
	UserID    string
	IPAddress *string
	UserAgent *string
	ExpiresAt time.Time
	CreatedAt time.Time
}
