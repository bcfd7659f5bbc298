package driven

import (
	"context"

	"github.com/podaac/generate-token-creator/internal/domain/model"
)

// CredentialSource defines the driven port for retrieving the Earthdata
// Login credential pair. The adapter layer owns decryption; this interface
// operates on plaintext values at the domain boundary.
type CredentialSource interface {
	// EDLCredentials returns the username/password pair used to
	// authenticate against Earthdata Login. A missing or unreadable entry
	// is an error; there is no partial result.
	EDLCredentials(ctx context.Context) (model.Credentials, error)
}
