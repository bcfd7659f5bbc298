package model

// FailureKind classifies a failed rotation run for notification purposes.
type FailureKind string

const (
	FailureKindCredential      FailureKind = "credential"
	FailureKindTokenGeneration FailureKind = "token_generation"
	FailureKindStorage         FailureKind = "storage"
)

// FailureEvent is the structured message handed to the notifier when a
// rotation run fails. It is constructed once per failed run, consumed once,
// and never persisted.
type FailureEvent struct {
	Kind        FailureKind
	Description string
	Context     string
}
