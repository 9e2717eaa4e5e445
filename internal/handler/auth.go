package handler

import (
	"context"  // request-scoped timeouts for engine calls
	"errors"   // taxonomy matching with errors.Is
	"net/http" // HTTP status codes
	"strings"  // input trimming
	"time"     // timeout constants

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing

	"github.com/iliyamo/auth-service/internal/service" // the auth engine
)

// opTimeout bounds every engine call made from a handler.
const opTimeout = 5 * time.Second

// AuthHandler adapts HTTP requests onto the auth engine.  It owns no
// state beyond the engine reference; all durable state lives behind it.
type AuthHandler struct {
	Engine *service.Engine
}

func NewAuthHandler(e *service.Engine) *AuthHandler { return &AuthHandler{Engine: e} }

// ----- DTOs -----

type registerReq struct {
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

// statusFor maps engine errors onto transport codes with safe messages.
// Unexpected errors never leak detail to the client.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrEmailExists):
		return http.StatusConflict, "email already registered"
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized, "invalid refresh token"
	case errors.Is(err, service.ErrTokenExpired):
		return http.StatusUnauthorized, "refresh token expired"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func clientInfo(c echo.Context) service.ClientInfo {
	return service.ClientInfo{
		IPAddress: c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	}
}

// Register: create an email/password account and return tokens immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}
	if len(req.Password) < 8 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at least 8 characters"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), opTimeout)
	defer cancel()

	res, err := h.Engine.Register(ctx, req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		status, msg := statusFor(err)
		if status == http.StatusInternalServerError {
			c.Logger().Errorf("register: %v", err)
		}
		return c.JSON(status, echo.Map{"error": msg})
	}
	return c.JSON(http.StatusCreated, res)
}

// Login: verify credentials and return a new pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), opTimeout)
	defer cancel()

	res, err := h.Engine.Login(ctx, req.Email, req.Password, clientInfo(c))
	if err != nil {
		status, msg := statusFor(err)
		if status == http.StatusInternalServerError {
			c.Logger().Errorf("login: %v", err)
		}
		return c.JSON(status, echo.Map{"error": msg})
	}
	return c.JSON(http.StatusOK, res)
}

// Refresh: rotate a refresh token and return a new pair.  A refresh
// token is single-use; presenting it twice fails the second caller.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), opTimeout)
	defer cancel()

	res, err := h.Engine.Refresh(ctx, strings.TrimSpace(req.RefreshToken))
	if err != nil {
		status, msg := statusFor(err)
		if status == http.StatusInternalServerError {
			c.Logger().Errorf("refresh: %v", err)
		}
		return c.JSON(status, echo.Map{"error": msg})
	}
	return c.JSON(http.StatusOK, res)
}

// Logout: revoke the supplied refresh token, or every active one when
// the body carries none, and end all sessions.  Always succeeds for an
// authenticated caller; there is nothing to probe here.
func (h *AuthHandler) Logout(c echo.Context) error {
	userID, _ := c.Get("user_id").(string)
	if userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req refreshReq
	_ = c.Bind(&req) // body is optional

	ctx, cancel := context.WithTimeout(c.Request().Context(), opTimeout)
	defer cancel()

	if err := h.Engine.Logout(ctx, userID, strings.TrimSpace(req.RefreshToken)); err != nil {
		c.Logger().Errorf("logout: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// RevokeAll: atomically revoke every refresh token and expire every
// session for the authenticated user.
func (h *AuthHandler) RevokeAll(c echo.Context) error {
	userID, _ := c.Get("user_id").(string)
	if userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), opTimeout)
	defer cancel()

	if err := h.Engine.RevokeAllSessions(ctx, userID); err != nil {
		c.Logger().Errorf("revoke all: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "revoke failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Me: simple protected endpoint.
func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"user_id": c.Get("user_id"),
		"email":   c.Get("email"),
		"role":    c.Get("role"),
	})
}
