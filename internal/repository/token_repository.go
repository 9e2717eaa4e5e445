package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/auth-service/internal/model"
)

// TokenRepo persists refresh tokens.  Rows are never deleted: revocation
// sets revoked_at, keeping an audit trail of every rotation.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// Create inserts a refresh token row and fills in the generated id.
func (r *TokenRepo) Create(ctx context.Context, t *model.RefreshToken) error {
	t.ID = uuid.NewString()
	t.CreatedAt = time.Now().UTC()
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO refresh_tokens (id, token, user_id, expires_at, created_at) VALUES (?,?,?,?,?)",
		t.ID, t.Token, t.UserID, t.ExpiresAt, t.CreatedAt)
	return err
}

// GetByToken looks a row up by the exact signed token string.
func (r *TokenRepo) GetByToken(ctx context.Context, token string) (model.RefreshToken, error) {
	var (
		t         model.RefreshToken
		revokedAt sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, token, user_id, expires_at, revoked_at, created_at FROM refresh_tokens WHERE token=? LIMIT 1",
		token).Scan(&t.ID, &t.Token, &t.UserID, &t.ExpiresAt, &revokedAt, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return model.RefreshToken{}, ErrNotFound
	}
	if err != nil {
		return model.RefreshToken{}, err
	}
	if revokedAt.Valid {
		at := revokedAt.Time
		t.RevokedAt = &at
	}
	return t, nil
}

// Revoke marks a token revoked if it is still active.  The conditional
// update is the rotation guard: of any number of concurrent callers
// presenting the same token, exactly one observes claimed=true.
func (r *TokenRepo) Revoke(ctx context.Context, token string) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=UTC_TIMESTAMP() WHERE token=? AND revoked_at IS NULL",
		token)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// RevokeForUser revokes a specific token only when it belongs to the
// given user.  Zero rows affected is not an error (idempotent logout).
func (r *TokenRepo) RevokeForUser(ctx context.Context, userID, token string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=UTC_TIMESTAMP() WHERE user_id=? AND token=? AND revoked_at IS NULL",
		userID, token)
	return err
}

// RevokeAllForUser revokes every active token the user holds.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=UTC_TIMESTAMP() WHERE user_id=? AND revoked_at IS NULL",
		userID)
	return err
}
