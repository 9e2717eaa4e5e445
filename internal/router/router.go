package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // Echo web framework for routing

	"github.com/iliyamo/auth-service/internal/handler"    // handlers adapting HTTP onto the engine
	"github.com/iliyamo/auth-service/internal/middleware" // JWT middleware for protected routes
	"github.com/iliyamo/auth-service/internal/utils"      // token codec used by the middleware
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes.  Credential
// and token exchanges live under /v1/auth and need no session; logout,
// revoke-all and /me require a valid access token and live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, g *handler.GoogleAuthHandler, codec *utils.TokenCodec) {
	pub := e.Group("/v1/auth")
	pub.POST("/register", a.Register)
	pub.POST("/login", a.Login)
	// Rotates the refresh token: the presented token is single-use.
	pub.POST("/refresh", a.Refresh)
	pub.POST("/google", g.Login)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(codec))
	auth.GET("/me", a.Me)
	// Revokes the refresh token in the body, or all of the caller's
	// tokens when none is supplied, and ends every device session.
	auth.POST("/logout", a.Logout)
	// Stronger than logout: tokens revoked and sessions expired in one
	// transaction.
	auth.POST("/sessions/revoke", a.RevokeAll)
}
