package model

import "time"

// Role enumerates the authorization roles a user can hold.  Roles are
// stored as plain strings in the `users` table.  New accounts always
// start as RoleUser; the engine never escalates a role on its own.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// AuthProvider identifies how an account authenticates.  EMAIL accounts
// carry a bcrypt password hash; GOOGLE accounts may have none.
type AuthProvider string

const (
	ProviderEmail  AuthProvider = "EMAIL"
	ProviderGoogle AuthProvider = "GOOGLE"
)

// User represents a row in the `users` table.  Email is unique across
// all providers.  PasswordHash is nil for OAuth-only accounts, which is
// why it is a pointer rather than a string.  The json tags exist so the
// struct can be embedded in responses; credential material is never
// serialized.
//
// Fields:
//  ID              – primary key (uuid string).
//  Email           – unique email address.
//  PasswordHash    – bcrypt hash, nil for OAuth-only accounts.
//  FirstName       – optional given name.
//  LastName        – optional family name.
//  Role            – USER or ADMIN.
//  AuthProvider    – EMAIL or GOOGLE.
//  GoogleID        – Google subject id, unique when present.
//  Avatar          – optional profile picture URL.
//  IsEmailVerified – whether the address has been verified.
//  LastLogin       – timestamp of the last successful login, nil before one.
//  CreatedAt       – timestamp of creation.
//  UpdatedAt       – timestamp of last update.
type User struct {
	ID              string       `json:"id"`
	Email           string       `json:"email"`
	PasswordHash    *string      `json:"-"` // never expose
	FirstName       *string      `json:"firstName"`
	LastName        *string      `json:"lastName"`
	Role            Role         `json:"role"`
	AuthProvider    AuthProvider `json:"authProvider"`
	GoogleID        *string      `json:"-"`
	Avatar          *string      `json:"avatar"`
	IsEmailVerified bool         `json:"isEmailVerified"`
	LastLogin       *time.Time   `json:"lastLogin"`
	CreatedAt       time.Time    `json:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt"`
}

// Sanitized returns a copy safe to hand back to callers: identical to
// the receiver with credential material stripped.
func (u User) Sanitized() User {
	u.PasswordHash = nil
	return u
}
