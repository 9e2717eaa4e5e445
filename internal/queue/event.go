// Package queue defines message payloads exchanged over the message broker.
package queue

// UserCreatedEvent is published after a successful registration so the
// user-profile service can replicate the new account.  It contains enough
// information for downstream consumers without querying the primary
// database.  Publication is fire-and-forget: registration never waits on
// it and never fails because of it.
type UserCreatedEvent struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Provider  string `json:"provider"`
	CreatedAt string `json:"created_at"`
}
