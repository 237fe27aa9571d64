package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/example/usermanagement/internal/api/metrics"
	"github.com/example/usermanagement/internal/core/domain"
	"github.com/example/usermanagement/internal/core/service"
)

// RequireAuthenticated rejects anonymous callers with 401 and deactivated
// accounts with 403.
func RequireAuthenticated() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := domain.IdentityFrom(c.Request().Context())
			if id == nil {
				metrics.AuthorizationDenialsTotal.WithLabelValues("unauthenticated").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			if !id.Active {
				metrics.AuthorizationDenialsTotal.WithLabelValues("forbidden").Inc()
				return echo.NewHTTPError(http.StatusForbidden, "account is inactive")
			}
			return next(c)
		}
	}
}

// RequireRole enforces role-based access control: 401 for anonymous
// callers, 403 when the identity lacks role or is inactive.
func RequireRole(role domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := domain.IdentityFrom(c.Request().Context())
			if id == nil {
				metrics.AuthorizationDenialsTotal.WithLabelValues("unauthenticated").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			if service.RequireRole(id, role) != service.Allowed {
				metrics.AuthorizationDenialsTotal.WithLabelValues("forbidden").Inc()
				return echo.NewHTTPError(http.StatusForbidden, "access denied")
			}
			return next(c)
		}
	}
}
