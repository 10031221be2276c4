package catalog

import "context"

// Store is the catalog backend contract. The sqlite implementation below
// is the default; anything honoring these semantics (a document database,
// a hosted API) can stand in.
type Store interface {
	// Commit atomically inserts the record, assigns its id and the
	// authoritative publication timestamp, and returns the id.
	Commit(ctx context.Context, rec *VideoRecord) (string, error)

	// List returns all records ordered by publication time descending.
	List(ctx context.Context) ([]VideoRecord, error)

	// Get returns the record with the given id, or nil when absent.
	Get(ctx context.Context, id string) (*VideoRecord, error)

	// IncrementView bumps the view counter. There is no compensating
	// decrement.
	IncrementView(ctx context.Context, id string) error

	// Changes yields a coalesced signal after every visible mutation.
	Changes() <-chan struct{}
}
