// Package token mints and verifies the signed bearer tokens handed to
// clients. Tokens are HS256 JWTs carrying the account email as subject and
// the role set and account id as custom claims. Nothing is stored server
// side: a token is valid exactly when its signature verifies under the
// configured secret and its expiry lies strictly in the future.
package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/example/usermanagement/internal/core/domain"
)

// DefaultValidity is the lifetime of a token when Config.Validity is unset.
const DefaultValidity = 24 * time.Hour

var ErrSecretRequired = errors.New("token: signing secret is required")

// Config is the codec's full configuration. It is read once at construction.
type Config struct {
	Secret   string
	Validity time.Duration
	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

// Extra holds the optional claims embedded next to the subject.
type Extra struct {
	Roles     []string
	AccountID string
}

// Claims is the decoded payload of a verified token.
type Claims struct {
	jwt.RegisteredClaims
	Roles  []string `json:"roles,omitempty"`
	UserID string   `json:"userId,omitempty"`
}

// Codec issues and verifies tokens. It is safe for concurrent use.
type Codec struct {
	secret   []byte
	validity time.Duration
	now      func() time.Time
	parser   *jwt.Parser
}

// NewCodec builds a Codec from cfg.
func NewCodec(cfg Config) (*Codec, error) {
	if cfg.Secret == "" {
		return nil, ErrSecretRequired
	}
	validity := cfg.Validity
	if validity <= 0 {
		validity = DefaultValidity
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Codec{
		secret:   []byte(cfg.Secret),
		validity: validity,
		now:      now,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
			jwt.WithTimeFunc(now),
		),
	}, nil
}

// Validity returns the configured token lifetime.
func (c *Codec) Validity() time.Duration {
	return c.validity
}

// Issue signs a token for subject, valid from now for the configured window.
func (c *Codec) Issue(subject string, extra Extra) (string, error) {
	now := c.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.validity)),
		},
		Roles:  extra.Roles,
		UserID: extra.AccountID,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks structure, signature and expiry. Every failure is returned
// as an error matching domain.ErrTokenInvalid; the more specific
// ErrTokenMalformed, ErrTokenExpired and ErrTokenSignatureInvalid are there
// for diagnostics.
func (c *Codec) Verify(raw string) (*Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, domain.ErrTokenMalformed
	}

	claims := &Claims{}
	_, err := c.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		return nil, classify(err)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, fmt.Errorf("%w: missing subject", domain.ErrTokenMalformed)
	}
	return claims, nil
}

// SubjectOf reads the subject of a token the caller has already verified.
// It does not check the signature. Malformed input yields "".
func (c *Codec) SubjectOf(raw string) string {
	claims, ok := c.unverified(raw)
	if !ok {
		return ""
	}
	return claims.Subject
}

// ExpiryOf reads the expiry of a token the caller has already verified.
// It does not check the signature. Malformed input yields the zero time.
func (c *Codec) ExpiryOf(raw string) time.Time {
	claims, ok := c.unverified(raw)
	if !ok || claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}

func (c *Codec) unverified(raw string) (*Claims, bool) {
	claims := &Claims{}
	if _, _, err := c.parser.ParseUnverified(raw, claims); err != nil {
		return nil, false
	}
	return claims, true
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %w", domain.ErrTokenExpired, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %w", domain.ErrTokenSignatureInvalid, err)
	default:
		return fmt.Errorf("%w: %w", domain.ErrTokenMalformed, err)
	}
}
