// Package service implements the auth engine: the orchestration of
// register/login/refresh/logout/revoke-all against the store, codec,
// hasher, cache and replicator.  The engine is stateless per call; all
// durable state lives in the store, so any number of instances can run
// behind a load balancer.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/iliyamo/auth-service/internal/model"
	"github.com/iliyamo/auth-service/internal/queue"
	"github.com/iliyamo/auth-service/internal/repository"
	"github.com/iliyamo/auth-service/internal/utils"
)

// Engine failure taxonomy.  Handlers map these onto transport status
// codes; everything else is an internal failure with a safe message.
var (
	// ErrEmailExists is returned by Register for a duplicate email.
	ErrEmailExists = errors.New("email already registered")
	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password.  The message is identical in both cases so login cannot
	// be used to probe which emails exist.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken covers a refresh token that is absent, revoked,
	// carries a bad signature or the wrong kind.
	ErrInvalidToken = errors.New("invalid refresh token")
	// ErrTokenExpired is returned when a refresh token is past expiry.
	ErrTokenExpired = errors.New("refresh token expired")
)

// UserStore is the slice of the relational store the engine needs for
// user rows.  Lookups return repository.ErrNotFound on absence.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id string) (model.User, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	UpdateGoogleProfile(ctx context.Context, id string, googleID, avatar *string, emailVerified bool) error
}

// TokenStore persists refresh token rows.  Revoke is conditional: it
// reports whether this caller claimed the still-active row, which is the
// guard that makes rotation single-use under concurrency.
type TokenStore interface {
	Create(ctx context.Context, t *model.RefreshToken) error
	GetByToken(ctx context.Context, token string) (model.RefreshToken, error)
	Revoke(ctx context.Context, token string) (bool, error)
	RevokeForUser(ctx context.Context, userID, token string) error
	RevokeAllForUser(ctx context.Context, userID string) error
}

// SessionStore persists device/browser presence rows.
type SessionStore interface {
	Create(ctx context.Context, s *model.Session) error
	DeleteAllForUser(ctx context.Context, userID string) error
}

// SessionRevoker performs the atomic revoke-all write: tokens revoked
// and sessions expired in a single transaction.
type SessionRevoker interface {
	RevokeUserSessions(ctx context.Context, userID string) error
}

// TokenCache mirrors the current refresh token per user.  Both methods
// are best-effort and never return errors; the store stays authoritative.
type TokenCache interface {
	SetRefreshToken(ctx context.Context, userID, token string)
	DeleteRefreshToken(ctx context.Context, userID string)
}

// ProfileReplicator forwards new accounts to the user-profile service.
// Called asynchronously after registration; failures are logged only.
type ProfileReplicator interface {
	PublishUserCreated(ctx context.Context, ev queue.UserCreatedEvent) error
}

// PasswordHasher abstracts the slow adaptive hash used for credentials.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(hash, plain string) bool
}

// TokenPair bundles a freshly minted access/refresh pair.
type TokenPair struct {
	Access  utils.SignedToken `json:"access"`
	Refresh utils.SignedToken `json:"refresh"`
}

// AuthResult is the success payload of register/login/refresh: the
// sanitized user plus a token pair.
type AuthResult struct {
	User   model.User `json:"user"`
	Tokens TokenPair  `json:"tokens"`
}

// ClientInfo carries optional request metadata recorded on the session
// row.  Empty strings mean unknown.
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

// GoogleProfile is the identity asserted by a verified Google ID token.
// The engine never talks to Google itself; a collaborator verifies the
// token and hands the profile in.
type GoogleProfile struct {
	Email         string
	GoogleID      string
	FirstName     *string
	LastName      *string
	Avatar        *string
	EmailVerified bool
}

// Deps lists the collaborators injected into the engine.  Cache and
// Replicator may be nil; both degrade to no-ops.
type Deps struct {
	Users      UserStore
	Tokens     TokenStore
	Sessions   SessionStore
	Revoker    SessionRevoker
	Cache      TokenCache
	Replicator ProfileReplicator
	Codec      *utils.TokenCodec
	Hasher     PasswordHasher
	SessionTTL time.Duration
}

// Engine orchestrates the token lifecycle.  Construct with NewEngine;
// there is no ambient global instance.
type Engine struct {
	users      UserStore
	tokens     TokenStore
	sessions   SessionStore
	revoker    SessionRevoker
	cache      TokenCache
	replicator ProfileReplicator
	codec      *utils.TokenCodec
	hasher     PasswordHasher
	sessionTTL time.Duration
}

func NewEngine(d Deps) *Engine {
	return &Engine{
		users:      d.Users,
		tokens:     d.Tokens,
		sessions:   d.Sessions,
		revoker:    d.Revoker,
		cache:      d.Cache,
		replicator: d.Replicator,
		codec:      d.Codec,
		hasher:     d.Hasher,
		sessionTTL: d.SessionTTL,
	}
}

// Register creates an email/password account and returns it with a
// fresh token pair.  The profile replicator is notified asynchronously;
// its failure never surfaces to the caller and never rolls anything back.
func (e *Engine) Register(ctx context.Context, email, password string, firstName, lastName *string) (AuthResult, error) {
	hash, err := e.hasher.Hash(password)
	if err != nil {
		return AuthResult{}, fmt.Errorf("register: hash password: %w", err)
	}

	u := model.User{
		Email:        email,
		PasswordHash: &hash,
		FirstName:    firstName,
		LastName:     lastName,
		Role:         model.RoleUser,
		AuthProvider: model.ProviderEmail,
	}
	if err := e.users.Create(ctx, &u); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return AuthResult{}, ErrEmailExists
		}
		return AuthResult{}, fmt.Errorf("register: create user: %w", err)
	}

	pair, err := e.issuePair(ctx, u)
	if err != nil {
		return AuthResult{}, fmt.Errorf("register: %w", err)
	}

	e.replicate(u)

	return AuthResult{User: u.Sanitized(), Tokens: pair}, nil
}

// Login verifies email/password credentials and returns the user with a
// fresh token pair.  A session row is recorded when the caller supplies
// client metadata, and the cache mirror is updated best-effort.
func (e *Engine) Login(ctx context.Context, email, password string, client ClientInfo) (AuthResult, error) {
	u, err := e.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, fmt.Errorf("login: lookup user: %w", err)
	}
	// OAuth-only accounts have no hash; the error must be identical to
	// the unknown-email case.
	if u.PasswordHash == nil || !e.hasher.Verify(*u.PasswordHash, password) {
		return AuthResult{}, ErrInvalidCredentials
	}

	pair, err := e.issuePair(ctx, u)
	if err != nil {
		return AuthResult{}, fmt.Errorf("login: %w", err)
	}

	now := time.Now().UTC()
	if err := e.users.UpdateLastLogin(ctx, u.ID, now); err != nil {
		return AuthResult{}, fmt.Errorf("login: update last login: %w", err)
	}
	u.LastLogin = &now

	if err := e.recordSession(ctx, u.ID, client); err != nil {
		return AuthResult{}, fmt.Errorf("login: create session: %w", err)
	}

	e.cacheSet(ctx, u.ID, pair.Refresh.Token)

	return AuthResult{User: u.Sanitized(), Tokens: pair}, nil
}

// Refresh exchanges a valid refresh token for a new pair.  Rotation is
// mandatory: the presented token is revoked, and of any number of
// concurrent callers presenting the same token exactly one succeeds.
func (e *Engine) Refresh(ctx context.Context, token string) (AuthResult, error) {
	// Signature and kind are checked before touching the store; a token
	// signed with the wrong secret or of the wrong kind never reaches it.
	// Codec-level expiry is held back until the row has been seen: an
	// absent or revoked row outranks expiry.
	_, verr := e.codec.Verify(token, utils.TokenKindRefresh)
	if verr != nil && !errors.Is(verr, utils.ErrTokenExpired) {
		return AuthResult{}, ErrInvalidToken
	}

	row, err := e.tokens.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return AuthResult{}, ErrInvalidToken
		}
		return AuthResult{}, fmt.Errorf("refresh: lookup token: %w", err)
	}
	if row.RevokedAt != nil {
		return AuthResult{}, ErrInvalidToken
	}
	if verr != nil || !time.Now().UTC().Before(row.ExpiresAt) {
		return AuthResult{}, ErrTokenExpired
	}

	// Claim the old row before minting.  The conditional update is the
	// rotation guard: if another caller already claimed it, this token
	// has been replayed.
	claimed, err := e.tokens.Revoke(ctx, token)
	if err != nil {
		return AuthResult{}, fmt.Errorf("refresh: revoke token: %w", err)
	}
	if !claimed {
		return AuthResult{}, ErrInvalidToken
	}

	u, err := e.users.GetByID(ctx, row.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return AuthResult{}, ErrInvalidToken
		}
		return AuthResult{}, fmt.Errorf("refresh: load user: %w", err)
	}

	pair, err := e.issuePair(ctx, u)
	if err != nil {
		return AuthResult{}, fmt.Errorf("refresh: %w", err)
	}

	e.cacheSet(ctx, u.ID, pair.Refresh.Token)

	return AuthResult{User: u.Sanitized(), Tokens: pair}, nil
}

// Logout revokes refresh tokens for a user and deletes all their
// sessions.  With a specific refresh token only that token is revoked;
// without one, every active token is.  Logout is idempotent and silent:
// an unknown user or nothing to revoke is still success.
func (e *Engine) Logout(ctx context.Context, userID, refreshToken string) error {
	if _, err := e.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("logout: lookup user: %w", err)
	}

	if refreshToken != "" {
		if err := e.tokens.RevokeForUser(ctx, userID, refreshToken); err != nil {
			return fmt.Errorf("logout: revoke token: %w", err)
		}
	} else {
		if err := e.tokens.RevokeAllForUser(ctx, userID); err != nil {
			return fmt.Errorf("logout: revoke tokens: %w", err)
		}
	}

	if err := e.sessions.DeleteAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("logout: delete sessions: %w", err)
	}

	e.cacheDelete(ctx, userID)
	return nil
}

// RevokeAllSessions is the stronger form of logout: all active refresh
// tokens revoked and all live sessions expired atomically.  Unknown
// users return silently.
func (e *Engine) RevokeAllSessions(ctx context.Context, userID string) error {
	if _, err := e.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("revoke all: lookup user: %w", err)
	}

	if err := e.revoker.RevokeUserSessions(ctx, userID); err != nil {
		return fmt.Errorf("revoke all: %w", err)
	}

	e.cacheDelete(ctx, userID)
	return nil
}

// FindOrCreateUser resolves the account for a verified Google profile.
// An existing account gets its missing google fields backfilled; a new
// one is created with provider GOOGLE and no password hash.
func (e *Engine) FindOrCreateUser(ctx context.Context, p GoogleProfile) (model.User, error) {
	// An empty subject must map to NULL, never an empty string: the
	// google_id column is unique and MySQL only tolerates repeats of NULL.
	var gid *string
	if p.GoogleID != "" {
		g := p.GoogleID
		gid = &g
	}

	u, err := e.users.GetByEmail(ctx, p.Email)
	if err == nil {
		if err := e.users.UpdateGoogleProfile(ctx, u.ID, gid, p.Avatar, p.EmailVerified); err != nil {
			return model.User{}, fmt.Errorf("google: update profile: %w", err)
		}
		return e.users.GetByID(ctx, u.ID)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return model.User{}, fmt.Errorf("google: lookup user: %w", err)
	}

	u = model.User{
		Email:           p.Email,
		FirstName:       p.FirstName,
		LastName:        p.LastName,
		Role:            model.RoleUser,
		AuthProvider:    model.ProviderGoogle,
		GoogleID:        gid,
		Avatar:          p.Avatar,
		IsEmailVerified: p.EmailVerified,
	}
	if err := e.users.Create(ctx, &u); err != nil {
		return model.User{}, fmt.Errorf("google: create user: %w", err)
	}
	return u, nil
}

// GoogleLogin finds or creates the account for a verified Google
// profile and issues a token pair, recording last login, session and
// cache mirror the same way a password login does.
func (e *Engine) GoogleLogin(ctx context.Context, p GoogleProfile, client ClientInfo) (AuthResult, error) {
	u, err := e.FindOrCreateUser(ctx, p)
	if err != nil {
		return AuthResult{}, err
	}

	pair, err := e.issuePair(ctx, u)
	if err != nil {
		return AuthResult{}, fmt.Errorf("google: %w", err)
	}

	now := time.Now().UTC()
	if err := e.users.UpdateLastLogin(ctx, u.ID, now); err != nil {
		return AuthResult{}, fmt.Errorf("google: update last login: %w", err)
	}
	u.LastLogin = &now

	if err := e.recordSession(ctx, u.ID, client); err != nil {
		return AuthResult{}, fmt.Errorf("google: create session: %w", err)
	}

	e.cacheSet(ctx, u.ID, pair.Refresh.Token)

	return AuthResult{User: u.Sanitized(), Tokens: pair}, nil
}

// issuePair mints an access/refresh pair and persists the refresh row.
func (e *Engine) issuePair(ctx context.Context, u model.User) (TokenPair, error) {
	access, err := e.codec.SignAccess(u.ID, u.Email, string(u.Role))
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign access: %w", err)
	}
	refresh, err := e.codec.SignRefresh(u.ID, u.Email, string(u.Role))
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign refresh: %w", err)
	}
	row := model.RefreshToken{
		Token:     refresh.Token,
		UserID:    u.ID,
		ExpiresAt: refresh.Exp,
	}
	if err := e.tokens.Create(ctx, &row); err != nil {
		return TokenPair{}, fmt.Errorf("save refresh token: %w", err)
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

// recordSession writes a session row when the caller supplied any
// client metadata.
func (e *Engine) recordSession(ctx context.Context, userID string, client ClientInfo) error {
	if client.IPAddress == "" && client.UserAgent == "" {
		return nil
	}
	s := model.Session{
		UserID:    userID,
		ExpiresAt: time.Now().UTC().Add(e.sessionTTL),
	}
	if client.IPAddress != "" {
		ip := client.IPAddress
		s.IPAddress = &ip
	}
	if client.UserAgent != "" {
		ua := client.UserAgent
		s.UserAgent = &ua
	}
	return e.sessions.Create(ctx, &s)
}

// replicate notifies the profile service about a new account without
// blocking the caller.  The request context is not reused: the HTTP
// response may already be gone by the time the publish completes.
func (e *Engine) replicate(u model.User) {
	if e.replicator == nil {
		return
	}
	ev := queue.UserCreatedEvent{
		UserID:    u.ID,
		Email:     u.Email,
		Provider:  string(u.AuthProvider),
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
	if u.FirstName != nil {
		ev.FirstName = *u.FirstName
	}
	if u.LastName != nil {
		ev.LastName = *u.LastName
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.replicator.PublishUserCreated(ctx, ev); err != nil {
			log.Printf("replicator: user %s not replicated: %v", ev.UserID, err)
		}
	}()
}

func (e *Engine) cacheSet(ctx context.Context, userID, token string) {
	if e.cache != nil {
		e.cache.SetRefreshToken(ctx, userID, token)
	}
}

func (e *Engine) cacheDelete(ctx context.Context, userID string) {
	if e.cache != nil {
		e.cache.DeleteRefreshToken(ctx, userID)
	}
}
