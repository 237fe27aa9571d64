package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/example/usermanagement/internal/core/domain"
)

// errorResponse is the JSON body of every error reply: {"error": "<message>"}.
type errorResponse struct {
	Error string `json:"error"`
}

// errorMapping pairs a domain sentinel with its status. An empty message
// means the error's own text is safe to show.
type errorMapping struct {
	target  error
	status  int
	message string
}

// Checked in order; the first match wins.
var domainErrors = []errorMapping{
	{domain.ErrInvalidCredentials, http.StatusBadRequest, "invalid credentials"},
	{domain.ErrTooManyAttempts, http.StatusTooManyRequests, "too many login attempts, try again later"},
	{domain.ErrDuplicateEmail, http.StatusBadRequest, ""},
	{domain.ErrInvalidInput, http.StatusBadRequest, ""},
	{domain.ErrAccountNotFound, http.StatusNotFound, "user not found"},
	{domain.ErrUnauthenticated, http.StatusUnauthorized, "authentication required"},
	{domain.ErrTokenInvalid, http.StatusUnauthorized, "authentication required"},
	{domain.ErrAccessDenied, http.StatusForbidden, "access denied"},
}

// NewHTTPErrorHandler maps domain errors to status codes and hides anything
// unexpected behind a logged 500.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// bind failures, router 404/405, guard rejections
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	for _, m := range domainErrors {
		if errors.Is(err, m.target) {
			if m.message == "" {
				return m.status, err.Error()
			}
			return m.status, m.message
		}
	}

	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
