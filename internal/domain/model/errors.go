package model

import (
	"errors"
	"fmt"
)

// The rotation error taxonomy. Each wrapper marks which step of the run
// failed and maps to the FailureKind published on the notification path.
// All of them are terminal for the invocation; retries beyond the issuer's
// single max-token-limit retry belong to the external scheduler.

// CredentialError indicates the EDL credential pair could not be read from
// the parameter store.
type CredentialError struct {
	Err error
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("retrieving EDL credentials: %v", e.Err)
}

func (e *CredentialError) Unwrap() error { return e.Err }

// TokenGenerationError indicates Earthdata Login did not issue a token: an
// unhandled provider error code, a malformed response, or a failed
// max-token-limit retry.
type TokenGenerationError struct {
	Err error
}

func (e *TokenGenerationError) Error() string {
	return fmt.Sprintf("generating bearer token: %v", e.Err)
}

func (e *TokenGenerationError) Unwrap() error { return e.Err }

// StorageError indicates the issued token could not be written to the
// secret store.
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storing bearer token: %v", e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// NotificationError indicates the failure notification itself could not be
// delivered. It compounds a prior failure rather than masking it.
type NotificationError struct {
	Err error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("publishing failure notification: %v", e.Err)
}

func (e *NotificationError) Unwrap() error { return e.Err }

// KindOf maps a rotation error to the FailureKind reported in the failure
// event. Unclassified errors are reported as token generation failures.
func KindOf(err error) FailureKind {
	var (
		credErr    *CredentialError
		tokenErr   *TokenGenerationError
		storageErr *StorageError
	)
	switch {
	case errors.As(err, &credErr):
		return FailureKindCredential
	case errors.As(err, &tokenErr):
		return FailureKindTokenGeneration
	case errors.As(err, &storageErr):
		return FailureKindStorage
	}
	return FailureKindTokenGeneration
}
