package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"google.golang.org/api/idtoken"

	"github.com/iliyamo/auth-service/internal/service"
)

// GoogleAuthHandler exchanges a verified Google ID token for a local
// account and token pair.  Verification happens here, at the boundary;
// the engine only ever sees an already-asserted profile and never talks
// to Google itself.
type GoogleAuthHandler struct {
	Engine   *service.Engine
	ClientID string // OAuth audience; empty disables the endpoint
}

func NewGoogleAuthHandler(e *service.Engine, clientID string) *GoogleAuthHandler {
	return &GoogleAuthHandler{Engine: e, ClientID: clientID}
}

type googleLoginReq struct {
	IDToken string `json:"id_token"`
}

// Login verifies the posted Google ID token against the configured
// client id and logs the user in, creating the account on first sight.
func (h *GoogleAuthHandler) Login(c echo.Context) error {
	if h.ClientID == "" {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "google login not configured"})
	}

	var req googleLoginReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.IDToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "id_token required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), opTimeout)
	defer cancel()

	payload, err := idtoken.Validate(ctx, strings.TrimSpace(req.IDToken), h.ClientID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid google token"})
	}

	email, _ := payload.Claims["email"].(string)
	if email == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid google token"})
	}

	profile := service.GoogleProfile{
		Email:    email,
		GoogleID: payload.Subject,
	}
	if v, _ := payload.Claims["given_name"].(string); v != "" {
		profile.FirstName = &v
	}
	if v, _ := payload.Claims["family_name"].(string); v != "" {
		profile.LastName = &v
	}
	if v, _ := payload.Claims["picture"].(string); v != "" {
		profile.Avatar = &v
	}
	if v, _ := payload.Claims["email_verified"].(bool); v {
		profile.EmailVerified = true
	}

	res, err := h.Engine.GoogleLogin(ctx, profile, clientInfo(c))
	if err != nil {
		status, msg := statusFor(err)
		if status == http.StatusInternalServerError {
			c.Logger().Errorf("google login: %v", err)
		}
		return c.JSON(status, echo.Map{"error": msg})
	}
	return c.JSON(http.StatusOK, res)
}
