package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/example/usermanagement/internal/core/domain"
	"github.com/example/usermanagement/internal/core/ports"
)

// BearerPrefix is the only accepted Authorization scheme, matched literally.
const BearerPrefix = "Bearer "

// ResolveOutcome labels how a request's identity was settled.
type ResolveOutcome string

const (
	OutcomeAuthenticated  ResolveOutcome = "authenticated"
	OutcomeNoToken        ResolveOutcome = "no_token"
	OutcomeInvalidToken   ResolveOutcome = "invalid_token"
	OutcomeUnknownSubject ResolveOutcome = "unknown_subject"
	OutcomeStoreError     ResolveOutcome = "store_error"
)

// IdentityResolver turns the Authorization header of a request into the
// caller's identity. It never rejects a request: every failure resolves to
// the anonymous (nil) identity and enforcement is left to the guard.
type IdentityResolver struct {
	codec ports.TokenCodec
	repo  ports.AccountRepository
	log   zerolog.Logger
}

func NewIdentityResolver(codec ports.TokenCodec, repo ports.AccountRepository, log zerolog.Logger) *IdentityResolver {
	return &IdentityResolver{codec: codec, repo: repo, log: log}
}

// Resolve verifies the bearer token in header and re-reads the subject's
// account so role and active changes made after issuance take effect.
func (r *IdentityResolver) Resolve(ctx context.Context, header string) (*domain.Identity, ResolveOutcome) {
	raw, ok := BearerToken(header)
	if !ok {
		return nil, OutcomeNoToken
	}

	claims, err := r.codec.Verify(raw)
	if err != nil {
		r.log.Debug().Err(err).Msg("bearer token rejected")
		return nil, OutcomeInvalidToken
	}

	account, err := r.repo.FindByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, OutcomeUnknownSubject
		}
		r.log.Error().Err(err).Msg("identity lookup failed")
		return nil, OutcomeStoreError
	}

	return domain.IdentityFromAccount(account), OutcomeAuthenticated
}

// BearerToken extracts the token from an Authorization header value. The
// scheme must be the literal "Bearer " prefix.
func BearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, BearerPrefix) {
		return "", false
	}
	raw := strings.TrimSpace(header[len(BearerPrefix):])
	if raw == "" {
		return "", false
	}
	return raw, true
}
