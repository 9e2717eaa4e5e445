package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// AuthTx bundles the multi-table writes that must be atomic.  Repos are
// otherwise single-table; anything spanning refresh_tokens and sessions
// lives here so it can run inside one transaction.
type AuthTx struct{ DB *sql.DB }

func NewAuthTx(db *sql.DB) *AuthTx { return &AuthTx{DB: db} }

// RevokeUserSessions revokes all active refresh tokens AND expires all
// live sessions for a user as a single all-or-nothing operation.  No
// reader may observe tokens revoked with sessions still live, or the
// reverse.
func (r *AuthTx) RevokeUserSessions(ctx context.Context, userID string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=UTC_TIMESTAMP() WHERE user_id=? AND revoked_at IS NULL",
		userID); err != nil {
		return fmt.Errorf("revoke tokens: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE sessions SET expires_at=UTC_TIMESTAMP() WHERE user_id=? AND expires_at > UTC_TIMESTAMP()",
		userID); err != nil {
		return fmt.Errorf("expire sessions: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
