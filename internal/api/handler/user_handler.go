package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/example/usermanagement/internal/api/metrics"
	"github.com/example/usermanagement/internal/core/ports"
)

// UserHandler serves the /users routes. Reads need an authenticated caller;
// the service decides who may mutate what.
type UserHandler struct {
	accounts ports.AccountService
}

func NewUserHandler(accounts ports.AccountService) *UserHandler {
	return &UserHandler{accounts: accounts}
}

// Create adds an account with an explicit role set.
//
// @Summary      Create an account
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createAccountRequest  true  "Account details"
// @Success      201   {object}  domain.Account
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /users [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req createAccountRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	account, err := h.accounts.Create(c.Request().Context(), currentIdentity(c), ports.CreateAccountInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Age:      req.Age,
		Roles:    toRoles(req.Roles),
	})
	if err != nil {
		return err
	}

	metrics.AccountsCreatedTotal.WithLabelValues("admin").Inc()
	return c.JSON(http.StatusCreated, account)
}

// List returns all accounts.
//
// @Summary      List accounts
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Account
// @Failure      401  {object}  errorResponse
// @Router       /users [get]
func (h *UserHandler) List(c echo.Context) error {
	return h.list(c, ports.ListAccountsFilter{})
}

// ListActive returns active accounts only.
//
// @Summary      List active accounts
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Account
// @Router       /users/active [get]
func (h *UserHandler) ListActive(c echo.Context) error {
	active := true
	return h.list(c, ports.ListAccountsFilter{Active: &active})
}

// Search finds accounts whose name contains the query, ignoring case.
//
// @Summary      Search accounts by name
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        name  query     string  true  "Name fragment"
// @Success      200   {array}   domain.Account
// @Failure      400   {object}  errorResponse
// @Router       /users/search [get]
func (h *UserHandler) Search(c echo.Context) error {
	name := strings.TrimSpace(c.QueryParam("name"))
	if name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}
	return h.list(c, ports.ListAccountsFilter{Name: name})
}

// AgeRange returns accounts whose age lies in [minAge, maxAge].
//
// @Summary      List accounts in an age range
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        minAge  query     int  true  "Minimum age (inclusive)"
// @Param        maxAge  query     int  true  "Maximum age (inclusive)"
// @Success      200     {array}   domain.Account
// @Failure      400     {object}  errorResponse
// @Router       /users/age-range [get]
func (h *UserHandler) AgeRange(c echo.Context) error {
	var lo, hi int
	err := echo.QueryParamsBinder(c).
		MustInt("minAge", &lo).
		MustInt("maxAge", &hi).
		BindError()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "minAge and maxAge must be integers")
	}
	return h.list(c, ports.ListAccountsFilter{MinAge: &lo, MaxAge: &hi})
}

func (h *UserHandler) list(c echo.Context, filter ports.ListAccountsFilter) error {
	accounts, err := h.accounts.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, accounts)
}

// Stats returns account totals.
//
// @Summary      Account statistics
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.AccountStats
// @Router       /users/stats [get]
func (h *UserHandler) Stats(c echo.Context) error {
	stats, err := h.accounts.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

// Get returns one account by id.
//
// @Summary      Get an account
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Account id"
// @Success      200  {object}  domain.Account
// @Failure      404  {object}  errorResponse
// @Router       /users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	account, err := h.accounts.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, account)
}

// GetByEmail returns one account by email.
//
// @Summary      Get an account by email
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        email  path      string  true  "Account email"
// @Success      200    {object}  domain.Account
// @Failure      404    {object}  errorResponse
// @Router       /users/email/{email} [get]
func (h *UserHandler) GetByEmail(c echo.Context) error {
	account, err := h.accounts.GetByEmail(c.Request().Context(), c.Param("email"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, account)
}

// Update replaces an account's profile.
//
// @Summary      Update an account
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Account id"
// @Param        body  body      updateAccountRequest  true  "New profile"
// @Success      200   {object}  domain.Account
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /users/{id} [put]
func (h *UserHandler) Update(c echo.Context) error {
	var req updateAccountRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	account, err := h.accounts.Update(c.Request().Context(), currentIdentity(c), c.Param("id"), ports.UpdateAccountInput{
		Name:   req.Name,
		Email:  req.Email,
		Phone:  req.Phone,
		Age:    req.Age,
		Active: req.Active,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, account)
}

// ChangePassword replaces an account's password.
//
// @Summary      Change password
// @Tags         users
// @Accept       json
// @Security     BearerAuth
// @Param        id    path  string                 true  "Account id"
// @Param        body  body  changePasswordRequest  true  "Passwords"
// @Success      204
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /users/{id}/password [put]
func (h *UserHandler) ChangePassword(c echo.Context) error {
	var req changePasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	err := h.accounts.ChangePassword(c.Request().Context(), currentIdentity(c), c.Param("id"), req.CurrentPassword, req.NewPassword)
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Activate marks an account active.
//
// @Summary      Activate an account
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Account id"
// @Success      200  {object}  domain.Account
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /users/{id}/activate [patch]
func (h *UserHandler) Activate(c echo.Context) error {
	account, err := h.accounts.Activate(c.Request().Context(), currentIdentity(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, account)
}

// Deactivate marks an account inactive. Its tokens stop authorizing
// anything on the next request.
//
// @Summary      Deactivate an account
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Account id"
// @Success      200  {object}  domain.Account
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /users/{id}/deactivate [patch]
func (h *UserHandler) Deactivate(c echo.Context) error {
	account, err := h.accounts.Deactivate(c.Request().Context(), currentIdentity(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, account)
}

// Delete removes an account permanently.
//
// @Summary      Delete an account
// @Tags         users
// @Security     BearerAuth
// @Param        id   path  string  true  "Account id"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	if err := h.accounts.Delete(c.Request().Context(), currentIdentity(c), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
