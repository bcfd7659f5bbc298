package driven

import (
	"context"

	"github.com/podaac/generate-token-creator/internal/domain/model"
)

// TokenStore defines the driven port for persisting an issued token.
type TokenStore interface {
	// Store writes the token as the single encrypted entry for the given
	// prefix, overwriting any prior value. At most one stored token exists
	// per prefix; no history is retained. Failures surface to the caller
	// and are not retried.
	Store(ctx context.Context, prefix string, token model.Token) error
}
