package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/auth-service/internal/model"
)

// UserRepo persists users in the `users` table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,email,password_hash,first_name,last_name,role,auth_provider,google_id,avatar,is_email_verified,last_login,created_at,updated_at"

// Create inserts a user row and fills in the generated id.  Email
// uniqueness is enforced by the database; a duplicate-key violation is
// surfaced as ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.ID = uuid.NewString()
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (id,email,password_hash,first_name,last_name,role,auth_provider,google_id,avatar,is_email_verified,created_at,updated_at) VALUES (?,?,?,?,?,?,?,?,?,?,?,?)",
		u.ID, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Role, u.AuthProvider, u.GoogleID, u.Avatar, u.IsEmailVerified, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrEmailExists
		}
		return err
	}
	return nil
}

// GetByEmail fetches a user by exact email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return r.getWhere(ctx, "email=?", email)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	return r.getWhere(ctx, "id=?", id)
}

func (r *UserRepo) getWhere(ctx context.Context, where string, arg any) (model.User, error) {
	var (
		u         model.User
		pwHash    sql.NullString
		firstName sql.NullString
		lastName  sql.NullString
		googleID  sql.NullString
		avatar    sql.NullString
		lastLogin sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE "+where+" LIMIT 1", arg).
		Scan(&u.ID, &u.Email, &pwHash, &firstName, &lastName, &u.Role, &u.AuthProvider,
			&googleID, &avatar, &u.IsEmailVerified, &lastLogin, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, err
	}
	u.PasswordHash = nullStr(pwHash)
	u.FirstName = nullStr(firstName)
	u.LastName = nullStr(lastName)
	u.GoogleID = nullStr(googleID)
	u.Avatar = nullStr(avatar)
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLogin = &t
	}
	return u, nil
}

// UpdateLastLogin stamps the user's last successful login.
func (r *UserRepo) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET last_login=?, updated_at=UTC_TIMESTAMP() WHERE id=?", at, id)
	return err
}

// UpdateGoogleProfile backfills profile fields learned from a Google
// ID token.  Only missing columns are overwritten (COALESCE keeps any
// value already present).
func (r *UserRepo) UpdateGoogleProfile(ctx context.Context, id string, googleID, avatar *string, emailVerified bool) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE users SET
			google_id = COALESCE(google_id, ?),
			avatar = COALESCE(avatar, ?),
			is_email_verified = is_email_verified OR ?,
			updated_at = UTC_TIMESTAMP()
		WHERE id=?`,
		googleID, avatar, emailVerified, id)
	return err
}

func nullStr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
