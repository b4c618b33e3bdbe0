package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/corehr/identity-service/internal/api/metrics"
	"github.com/corehr/identity-service/internal/core/domain"
	"github.com/corehr/identity-service/internal/core/ports"
)

// AuthHandler handles credential verification and account creation.
type AuthHandler struct {
	credentials ports.CredentialService
}

func NewAuthHandler(credentials ports.CredentialService) *AuthHandler {
	return &AuthHandler{credentials: credentials}
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type registerResponse struct {
	ID string `json:"id"`
}

// Login authenticates a user and returns a signed token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, err := h.credentials.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrTooManyAttempts) {
			metrics.LoginsTotal.WithLabelValues("throttled").Inc()
		} else {
			metrics.LoginsTotal.WithLabelValues("failure").Inc()
		}
		return err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, loginResponse{Token: token})
}

// Register creates a new user account on behalf of an admin caller.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      map[string]any  true  "User registration details"
// @Success      201   {object}  registerResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	authCtx, err := ctxAuth(c)
	if err != nil {
		return err
	}

	raw := map[string]any{}
	if err := c.Bind(&raw); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	id, err := h.credentials.Register(c.Request().Context(), raw, authCtx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, registerResponse{ID: id})
}
