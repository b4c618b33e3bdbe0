package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/corehr/identity-service/internal/api/metrics"
	"github.com/corehr/identity-service/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error  string                  `json:"error"`
	Fields []domain.FieldViolation `json:"fields,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Normalizes all credential failures (wrong password, unknown email,
//     inactive account) to a single generic 401 message.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, resp := resolveError(err, log, c)
		_ = c.JSON(code, resp)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	// Malformed request payloads: field messages are safe to expose.
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, errorResponse{Error: "validation failed", Fields: verr.Violations}
	}

	// Known domain errors map to deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, errorResponse{Error: "user not found"}
	case errors.Is(err, domain.ErrForbidden):
		metrics.AccessDeniedTotal.WithLabelValues(c.Path()).Inc()
		return http.StatusForbidden, errorResponse{Error: err.Error()}
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrAccountInactive):
		// The inactive case stays indistinguishable from bad credentials.
		return http.StatusUnauthorized, errorResponse{Error: domain.ErrInvalidCredentials.Error()}
	case errors.Is(err, domain.ErrMissingToken):
		return http.StatusUnauthorized, errorResponse{Error: domain.ErrMissingToken.Error()}
	case errors.Is(err, domain.ErrInvalidToken):
		return http.StatusUnauthorized, errorResponse{Error: domain.ErrInvalidToken.Error()}
	case errors.Is(err, domain.ErrTooManyAttempts):
		return http.StatusTooManyRequests, errorResponse{Error: domain.ErrTooManyAttempts.Error()}
	case errors.Is(err, domain.ErrEmailTaken):
		return http.StatusConflict, errorResponse{Error: domain.ErrEmailTaken.Error()}
	}

	// Storage and consistency failures: log the real cause, return generic.
	var dberr *domain.DatabaseError
	var merr *domain.MappingError
	if errors.As(err, &dberr) || errors.As(err, &merr) {
		log.Error().
			Err(err).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Msg("storage failure")
		return http.StatusInternalServerError, errorResponse{Error: "internal server error"}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Error: "internal server error"}
}
