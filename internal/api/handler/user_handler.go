package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/corehr/identity-service/internal/core/ports"
)

// UserHandler handles HTTP requests for user records.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// Get returns a single user in the projection the caller's role allows.
//
// @Summary      Get a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "User ID"
// @Success      200  {object}  userResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /v1/users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	authCtx, err := ctxAuth(c)
	if err != nil {
		return err
	}

	view, err := h.service.GetUser(c.Request().Context(), c.Param("id"), authCtx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toUserResponse(view))
}

// List returns all active users, each projected by the caller's role.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listUsersResponse
// @Failure      401  {object}  map[string]string
// @Router       /v1/users [get]
func (h *UserHandler) List(c echo.Context) error {
	authCtx, err := ctxAuth(c)
	if err != nil {
		return err
	}

	views, err := h.service.ListUsers(c.Request().Context(), authCtx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toListResponse(views))
}

// UpdateProfile applies a partial update to a user's profile fields.
//
// @Summary      Update profile fields
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string          true  "User ID"
// @Param        body  body      map[string]any  true  "Profile patch"
// @Success      200   {object}  updateResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /v1/users/{id} [patch]
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	authCtx, err := ctxAuth(c)
	if err != nil {
		return err
	}

	raw := map[string]any{}
	if err := c.Bind(&raw); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	updated, err := h.service.UpdateProfile(c.Request().Context(), c.Param("id"), raw, authCtx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, updateResponse{Updated: updated})
}

// UpdateSensitive applies a partial update to a user's sensitive fields.
//
// @Summary      Update sensitive fields
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string          true  "User ID"
// @Param        body  body      map[string]any  true  "Sensitive-data patch"
// @Success      200   {object}  updateResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /v1/users/{id}/sensitive [patch]
func (h *UserHandler) UpdateSensitive(c echo.Context) error {
	authCtx, err := ctxAuth(c)
	if err != nil {
		return err
	}

	raw := map[string]any{}
	if err := c.Bind(&raw); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	updated, err := h.service.UpdateSensitiveData(c.Request().Context(), c.Param("id"), raw, authCtx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, updateResponse{Updated: updated})
}
