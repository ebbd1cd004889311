// Package choice manages the administrator-priced choice table and the
// make-choice operation that records a person's selection on the audit
// stream.
package choice

import "context"

// Store persists the choice price table.
type Store interface {
	Upsert(ctx context.Context, name string, price int64) error
	Delete(ctx context.Context, name string) error
	Get(ctx context.Context, name string) (int64, error)
}
