package audit

import "context"

// Store persists the append-only event stream. The engine only appends;
// listing exists for admin inspection and tests.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}
