package customer

import "context"

// Store persists customer records. Records are never deleted; Save on an
// existing ID replaces it in place, preserving registry ordering.
type Store interface {
	Save(ctx context.Context, record *Record) error
	FindByID(ctx context.Context, id string) (*Record, error)
	List(ctx context.Context) ([]*Record, error)
}
