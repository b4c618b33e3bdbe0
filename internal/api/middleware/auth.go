package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/corehr/identity-service/internal/api/metrics"
	"github.com/corehr/identity-service/internal/core/ports"
)

// AuthContextKey is the echo context key the resolved AuthorizationContext is
// stored under.
const AuthContextKey = "auth_context"

// Auth extracts the bearer token and resolves a fresh AuthorizationContext
// for the request. Resolution re-validates the caller against storage on
// every request; nothing is cached between requests.
func Auth(resolver ports.ContextResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var token string
			if authHeader := c.Request().Header.Get("Authorization"); authHeader != "" {
				parts := strings.SplitN(authHeader, " ", 2)
				if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
					metrics.TokenResolutionsTotal.WithLabelValues("rejected").Inc()
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
				}
				token = parts[1]
			}

			authCtx, err := resolver.Resolve(c.Request().Context(), token)
			if err != nil {
				metrics.TokenResolutionsTotal.WithLabelValues("rejected").Inc()
				return err
			}
			metrics.TokenResolutionsTotal.WithLabelValues("ok").Inc()

			c.Set(AuthContextKey, authCtx)
			return next(c)
		}
	}
}
