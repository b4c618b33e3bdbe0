package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/corehr/identity-service/internal/api/middleware"
	"github.com/corehr/identity-service/internal/core/domain"
)

// ctxAuth extracts the AuthorizationContext resolved by the Auth middleware.
// Its presence proves the middleware ran; a handler reached without it is a
// wiring mistake and fails closed with 401.
func ctxAuth(c echo.Context) (domain.AuthorizationContext, error) {
	authCtx, ok := c.Get(middleware.AuthContextKey).(domain.AuthorizationContext)
	if !ok || authCtx.UserID == "" {
		return domain.AuthorizationContext{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication context")
	}
	return authCtx, nil
}
