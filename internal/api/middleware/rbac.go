package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/corehr/identity-service/internal/core/domain"
)

// RequireRole gates a route on the caller's resolved role. It is a fast-fail
// in front of the service layer, which enforces the same rules again.
func RequireRole(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authCtx, ok := c.Get(AuthContextKey).(domain.AuthorizationContext)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication context")
			}
			if _, ok := allowed[authCtx.Role]; !ok {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "access forbidden"})
			}
			return next(c)
		}
	}
}
