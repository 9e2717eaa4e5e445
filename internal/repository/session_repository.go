package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/auth-service/internal/model"
)

// SessionRepo persists device/browser presence rows.  Sessions are for
// visibility and coarse expiry; they are not tied to a refresh token.
type SessionRepo struct{ DB *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{DB: db} }

// Create inserts a session row and fills in the generated id.
func (r *SessionRepo) Create(ctx context.Context, s *model.Session) error {
	s.ID = uuid.NewString()
	s.CreatedAt = time.Now().UTC()
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO sessions (id, user_id, ip_address, user_agent, expires_at, created_at) VALUES (?,?,?,?,?,?)",
		s.ID, s.UserID, s.IPAddress, s.UserAgent, s.ExpiresAt, s.CreatedAt)
	return err
}

// DeleteAllForUser removes every session the user holds.  Logout ends
// all device sessions, not just the one that refreshed.
func (r *SessionRepo) DeleteAllForUser(ctx context.Context, userID string) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM sessions WHERE user_id=?", userID)
	return err
}
