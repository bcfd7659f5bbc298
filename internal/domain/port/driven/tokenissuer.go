package driven

import (
	"context"

	"github.com/podaac/generate-token-creator/internal/domain/model"
)

// TokenIssuer defines the driven port for obtaining a bearer token from the
// identity provider.
type TokenIssuer interface {
	// Issue requests a new bearer token for the given credentials against
	// the given environment. When the provider reports that the credential
	// already holds the maximum number of tokens, implementations revoke
	// the outstanding tokens and retry the request exactly once; any other
	// provider error fails without retrying.
	Issue(ctx context.Context, creds model.Credentials, env model.Environment) (model.Token, error)

	// OutstandingTokens reports how many tokens the credential currently
	// holds with the provider. Used by preflight checks; no token is
	// created or revoked.
	OutstandingTokens(ctx context.Context, creds model.Credentials, env model.Environment) (int, error)
}
