package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTooManyAttempts    = errors.New("too many login attempts")
	ErrAccountNotFound    = errors.New("user not found")
	ErrDuplicateEmail     = errors.New("email already in use")
	ErrInvalidInput       = errors.New("invalid input")
)

// Authorization outcomes.
var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrAccessDenied    = errors.New("access denied")
)

// Token verification failures. All of them match ErrTokenInvalid, which is
// the only distinction callers outside the codec should make.
var (
	ErrTokenInvalid          = errors.New("invalid token")
	ErrTokenMalformed        = fmt.Errorf("%w: malformed", ErrTokenInvalid)
	ErrTokenExpired          = fmt.Errorf("%w: expired", ErrTokenInvalid)
	ErrTokenSignatureInvalid = fmt.Errorf("%w: signature mismatch", ErrTokenInvalid)
)

// DuplicateEmailError reports the email that collided with an existing account.
type DuplicateEmailError struct {
	Email string
}

func (e *DuplicateEmailError) Error() string {
	return fmt.Sprintf("%s: %s", ErrDuplicateEmail, e.Email)
}

func (e *DuplicateEmailError) Is(target error) bool {
	return target == ErrDuplicateEmail
}

// NewDuplicateEmail builds a DuplicateEmailError for email.
func NewDuplicateEmail(email string) error {
	return &DuplicateEmailError{Email: email}
}
