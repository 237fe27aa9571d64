package handler

import (
	"github.com/example/usermanagement/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Auth ---

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Name     string `json:"name"     validate:"required,min=2,max=100"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone"`
	Age      *int   `json:"age"      validate:"omitempty,gte=0,lte=150"`
}

type authResponse struct {
	Token string          `json:"token"`
	User  *domain.Account `json:"user"`
}

type validateResponse struct {
	Valid bool            `json:"valid"`
	User  *domain.Account `json:"user,omitempty"`
	Error string          `json:"error,omitempty"`
}

type tokenResponse struct {
	Token     string          `json:"token"`
	ExpiresIn int64           `json:"expiresIn"` // milliseconds
	User      *domain.Account `json:"user"`
}

// --- Admin ---

type issueTokenRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type adminCreateUserResponse struct {
	User    *domain.Account `json:"user"`
	Token   string          `json:"token"`
	Message string          `json:"message"`
}

type adminCreateAdminResponse struct {
	Admin   *domain.Account `json:"admin"`
	Token   string          `json:"token"`
	Message string          `json:"message"`
}

// --- Users ---

type createAccountRequest struct {
	Name     string   `json:"name"     validate:"required,min=2,max=100"`
	Email    string   `json:"email"    validate:"required,email"`
	Password string   `json:"password" validate:"required,min=6"`
	Phone    string   `json:"phone"`
	Age      *int     `json:"age"      validate:"omitempty,gte=0,lte=150"`
	Roles    []string `json:"roles"    validate:"omitempty,dive,role"`
}

type updateAccountRequest struct {
	Name   string `json:"name"   validate:"required,min=2,max=100"`
	Email  string `json:"email"  validate:"required,email"`
	Phone  string `json:"phone"`
	Age    *int   `json:"age"    validate:"omitempty,gte=0,lte=150"`
	Active *bool  `json:"active"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}
