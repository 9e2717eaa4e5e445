package middleware // reusable HTTP middleware functions

import (
	"net/http" // HTTP status codes for responses
	"strings"  // prefix checking and trimming

	"github.com/labstack/echo/v4" // Echo framework used for defining middleware

	"github.com/iliyamo/auth-service/internal/utils" // token codec
)

// JWTAuth returns an Echo middleware that validates a Bearer access
// token through the codec and injects the token's identity claims into
// the request context.  Handlers behind it read `c.Get("user_id")`,
// `c.Get("email")` and `c.Get("role")`.  A refresh token presented here
// is rejected: it is signed with a different secret and carries the
// wrong kind claim.
func JWTAuth(codec *utils.TokenCodec) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

			claims, err := codec.Verify(raw, utils.TokenKindAccess)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
			}

			c.Set("user_id", claims.UserID)
			c.Set("email", claims.Email)
			c.Set("role", claims.Role)
			return next(c)
		}
	}
}
