package driven

import (
	"context"

	"github.com/podaac/generate-token-creator/internal/domain/model"
)

// Notifier defines the driven port for publishing failure events to the
// operations channel.
type Notifier interface {
	// Notify publishes the failure event. A delivery failure is reported
	// to the caller rather than swallowed; implementations never panic.
	Notify(ctx context.Context, event model.FailureEvent) error
}
