package middleware

import (
	"net/http"
	"strings"

	"github.com/careerloop/platform/internal/auth"
	"github.com/labstack/echo/v4"
)

// AuthContextKey is where the verified auth context is stored on the echo
// context for downstream handlers.
const AuthContextKey = "auth_context"

// Auth creates a middleware that protects routes that require authentication.
// Any verification failure produces the same generic 401 body, so callers
// never learn whether the key lookup, signature, or expiry check rejected
// them.
func Auth(verifier *auth.Verifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))

			authCtx, err := verifier.Verify(c.Request().Context(), token)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error": "unauthenticated",
				})
			}

			c.Set(AuthContextKey, authCtx)
			return next(c)
		}
	}
}

// AuthContextFrom retrieves the verified context stored by Auth. The second
// return is false on routes the middleware never ran for.
func AuthContextFrom(c echo.Context) (*auth.AuthContext, bool) {
	authCtx, ok := c.Get(AuthContextKey).(*auth.AuthContext)
	return authCtx, ok
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
