package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/example/usermanagement/internal/api/metrics"
	"github.com/example/usermanagement/internal/core/domain"
	"github.com/example/usermanagement/internal/core/ports"
)

// AdminHandler serves the /admin routes. Every route is mounted behind
// RequireRole(ADMIN).
type AdminHandler struct {
	accounts    ports.AccountService
	authService ports.AuthService
	tokenTTL    time.Duration
}

func NewAdminHandler(accounts ports.AccountService, authService ports.AuthService, tokenTTL time.Duration) *AdminHandler {
	return &AdminHandler{accounts: accounts, authService: authService, tokenTTL: tokenTTL}
}

// CreateUser creates a USER account and returns it with a token.
//
// @Summary      Create a user
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      registerRequest  true  "User details"
// @Success      200   {object}  adminCreateUserResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /admin/users [post]
func (h *AdminHandler) CreateUser(c echo.Context) error {
	account, token, err := h.create(c, domain.RoleUser)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, adminCreateUserResponse{User: account, Token: token, Message: "User created successfully"})
}

// CreateAdmin creates an account holding USER and ADMIN.
//
// @Summary      Create an administrator
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      registerRequest  true  "Administrator details"
// @Success      200   {object}  adminCreateAdminResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /admin/admins [post]
func (h *AdminHandler) CreateAdmin(c echo.Context) error {
	account, token, err := h.create(c, domain.RoleAdmin)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, adminCreateAdminResponse{Admin: account, Token: token, Message: "Admin created successfully"})
}

func (h *AdminHandler) create(c echo.Context, role domain.Role) (*domain.Account, string, error) {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return nil, "", err
	}

	ctx := c.Request().Context()
	account, err := h.accounts.Create(ctx, currentIdentity(c), ports.CreateAccountInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Age:      req.Age,
		Roles:    []domain.Role{role},
	})
	if err != nil {
		return nil, "", err
	}
	metrics.AccountsCreatedTotal.WithLabelValues("admin").Inc()

	token, _, err := h.authService.IssueFor(ctx, account.Email)
	if err != nil {
		return nil, "", err
	}
	metrics.TokensIssuedTotal.WithLabelValues("admin").Inc()
	return account, token, nil
}

// ListUsers returns every account.
//
// @Summary      List all accounts
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Account
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /admin/users [get]
func (h *AdminHandler) ListUsers(c echo.Context) error {
	accounts, err := h.accounts.List(c.Request().Context(), ports.ListAccountsFilter{})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, accounts)
}

// IssueToken mints a token for any account. Unknown emails yield 404.
//
// @Summary      Issue a token for an account
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      issueTokenRequest  true  "Target account"
// @Success      200   {object}  tokenResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /admin/tokens [post]
func (h *AdminHandler) IssueToken(c echo.Context) error {
	var req issueTokenRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	token, account, err := h.authService.IssueFor(c.Request().Context(), req.Email)
	if err != nil {
		return err
	}

	metrics.TokensIssuedTotal.WithLabelValues("admin").Inc()
	return c.JSON(http.StatusOK, tokenResponse{Token: token, ExpiresIn: h.tokenTTL.Milliseconds(), User: account})
}
