package tracking

import "context"

//go:generate mockgen -source=$GOFILE -destination=repository_mocks_test.go -package=tracking_test

// Repository is the record store as seen by the client.
//
// Create is not idempotent: after a failure of unknown outcome, check
// ListByOwner for the identity before creating it again, or a duplicate may land.
// Update replaces PerformedAt and Sets only. Delete of a missing identity
// succeeds. ListByOwner returns records in no particular order.
// Callers keep at most one write in flight per identity; the store has
// no concurrency tokens.
type Repository interface {
	Create(ctx context.Context, record Record) error
	Update(ctx context.Context, record Record) error
	Delete(ctx context.Context, id string) error
	ListByOwner(ctx context.Context, ownerID string) ([]Record, error)
}
