package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/example/usermanagement/internal/core/domain"
)

// currentIdentity returns the caller resolved by the Identity middleware, or
// nil for anonymous requests.
func currentIdentity(c echo.Context) *domain.Identity {
	return domain.IdentityFrom(c.Request().Context())
}

// requireIdentity fails fast with 401 when the route was reached without an
// identity, which means the guard middleware was not mounted.
func requireIdentity(c echo.Context) (*domain.Identity, error) {
	id := currentIdentity(c)
	if id == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return id, nil
}

// bindAndValidate decodes the request body into req and runs the validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func toRoles(names []string) []domain.Role {
	roles := make([]domain.Role, 0, len(names))
	for _, n := range names {
		if r, ok := domain.ParseRole(n); ok {
			roles = append(roles, r)
		}
	}
	return roles
}
