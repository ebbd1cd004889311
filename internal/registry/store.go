package registry

import "context"

// Store persists people and objects. Create assigns the next id from the
// record kind's own monotonic sequence; ids are never reused. Put replaces an
// existing record wholesale; the engine serializes operations, so stores do
// not need compare-and-swap semantics.
type Store interface {
	CreatePerson(ctx context.Context, person *Person) error
	GetPerson(ctx context.Context, id uint64) (*Person, error)
	PutPerson(ctx context.Context, person *Person) error

	CreateObject(ctx context.Context, object *Object) error
	GetObject(ctx context.Context, id uint64) (*Object, error)
	PutObject(ctx context.Context, object *Object) error
}
