package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	authpkg "github.com/octobees/icp-finder/internal/auth"
)

// SessionToken validates bearer tokens and requires the token subject to match
// the session id in the route parameter param.
func SessionToken(manager *authpkg.JWTManager, param string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing authorization header"})
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid authorization header"})
			}

			claims, err := manager.ParseToken(strings.TrimSpace(parts[1]))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid token"})
			}
			if claims.Subject != c.Param(param) {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "token does not grant access to this session"})
			}

			c.Set(ContextKeySessionID, claims.Subject)
			return next(c)
		}
	}
}
