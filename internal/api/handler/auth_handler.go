package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/example/usermanagement/internal/api/metrics"
	"github.com/example/usermanagement/internal/core/domain"
	"github.com/example/usermanagement/internal/core/ports"
	"github.com/example/usermanagement/internal/core/service"
)

type AuthHandler struct {
	authService ports.AuthService
	tokenTTL    time.Duration
}

func NewAuthHandler(authService ports.AuthService, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{authService: authService, tokenTTL: tokenTTL}
}

// Login authenticates a user and returns a bearer token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		// Malformed credentials are reported exactly like wrong ones.
		metrics.LoginAttemptsTotal.WithLabelValues("invalid_credentials").Inc()
		return domain.ErrInvalidCredentials
	}

	token, account, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			metrics.LoginAttemptsTotal.WithLabelValues("invalid_credentials").Inc()
		case errors.Is(err, domain.ErrTooManyAttempts):
			metrics.LoginAttemptsTotal.WithLabelValues("throttled").Inc()
		default:
			metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		}
		return err
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	metrics.TokensIssuedTotal.WithLabelValues("login").Inc()
	return c.JSON(http.StatusOK, authResponse{Token: token, User: account})
}

// Register creates a USER account and logs it in.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	account, token, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Age:      req.Age,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			// The public endpoint does not echo which email collided.
			return echo.NewHTTPError(http.StatusBadRequest, domain.ErrDuplicateEmail.Error())
		}
		return err
	}

	metrics.AccountsCreatedTotal.WithLabelValues("register").Inc()
	metrics.TokensIssuedTotal.WithLabelValues("register").Inc()
	return c.JSON(http.StatusOK, authResponse{Token: token, User: account})
}

// Validate reports whether the bearer token on the request is currently valid.
//
// @Summary      Validate a token
// @Tags         auth
// @Produce      json
// @Param        Authorization  header    string  true  "Bearer token"
// @Success      200            {object}  validateResponse
// @Failure      400            {object}  validateResponse
// @Router       /auth/validate [post]
func (h *AuthHandler) Validate(c echo.Context) error {
	raw, ok := service.BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
	if !ok {
		metrics.TokenValidationsTotal.WithLabelValues("invalid").Inc()
		return c.JSON(http.StatusBadRequest, validateResponse{Valid: false, Error: "missing bearer token"})
	}

	account, err := h.authService.Validate(c.Request().Context(), raw)
	if err != nil {
		if !errors.Is(err, domain.ErrTokenInvalid) {
			return err
		}
		metrics.TokenValidationsTotal.WithLabelValues("invalid").Inc()
		// The cause is logged by the service; clients only learn that the
		// token is not usable.
		return c.JSON(http.StatusBadRequest, validateResponse{Valid: false, Error: domain.ErrTokenInvalid.Error()})
	}

	metrics.TokenValidationsTotal.WithLabelValues("valid").Inc()
	return c.JSON(http.StatusOK, validateResponse{Valid: true, User: account})
}

// IssueOwnToken mints a fresh token for the authenticated caller.
//
// @Summary      Generate a token for the current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  tokenResponse
// @Failure      401  {object}  errorResponse
// @Router       /auth/token [post]
func (h *AuthHandler) IssueOwnToken(c echo.Context) error {
	id, err := requireIdentity(c)
	if err != nil {
		return err
	}

	token, account, err := h.authService.IssueForIdentity(c.Request().Context(), id)
	if err != nil {
		return err
	}

	metrics.TokensIssuedTotal.WithLabelValues("self").Inc()
	return c.JSON(http.StatusOK, tokenResponse{Token: token, ExpiresIn: h.tokenTTL.Milliseconds(), User: account})
}
