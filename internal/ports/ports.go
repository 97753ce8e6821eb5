package ports

import (
	"context"
	"time"

	"ChannelScanner/internal/domain"
)

// CompletionClient sends one prompt to the generative completion service and
// returns its raw text output. Implementations own their retry policy.
type CompletionClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// UpdateRepository persists extracted records into the shared store.
// Insert reports (true, nil) for a stored row, (false, nil) for a detected
// duplicate on the idempotency key, and (false, err) for any other failure.
type UpdateRepository interface {
	Insert(ctx context.Context, rec domain.PersistedRecord) (bool, error)
	ListRecent(ctx context.Context, limit uint64) ([]domain.RawMessage, error)
}

// MessageSource delivers feed messages one at a time until ctx is done.
type MessageSource interface {
	Listen(ctx context.Context, handle func(domain.RawMessage)) error
}

// Notifier pushes operator alerts to an out-of-band channel.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// Scheduler controls when recurring jobs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
