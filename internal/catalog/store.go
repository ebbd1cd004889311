package catalog

import "context"

type Store interface {
	Create(ctx context.Context, entry *Entry) error
	Get(ctx context.Context, name string) (*Entry, error)
	Update(ctx context.Context, entry *Entry) error
	List(ctx context.Context) ([]*Entry, error)
}
