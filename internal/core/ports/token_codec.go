package ports

import (
	"time"

	"github.com/example/usermanagement/internal/core/token"
)

// TokenCodec mints and verifies bearer tokens. *token.Codec implements it.
type TokenCodec interface {
	Issue(subject string, extra token.Extra) (string, error)
	Verify(raw string) (*token.Claims, error)
	Validity() time.Duration
}
