package middleware

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/example/usermanagement/internal/api/metrics"
	"github.com/example/usermanagement/internal/core/domain"
	"github.com/example/usermanagement/internal/core/service"
)

// IdentityResolver is implemented by *service.IdentityResolver.
type IdentityResolver interface {
	Resolve(ctx context.Context, header string) (*domain.Identity, service.ResolveOutcome)
}

// Identity resolves the caller once per request and stores it in the request
// context. It never rejects: anonymous requests continue with a nil identity
// and the guards decide.
func Identity(resolver IdentityResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			id, outcome := resolver.Resolve(req.Context(), req.Header.Get(echo.HeaderAuthorization))
			metrics.IdentityResolutionsTotal.WithLabelValues(string(outcome)).Inc()

			c.SetRequest(req.WithContext(domain.WithIdentity(req.Context(), id)))
			return next(c)
		}
	}
}
