package workflow

import (
	"context"
	"time"
)

// Info summarizes a stored workflow for listings.
type Info struct {
	ID        string    `json:"id"`
	Status    Status    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store is the durable home of workflow records. Implementations must
// serialize Update calls per id, let distinct ids proceed in parallel, and
// guarantee that a mutator error leaves the persisted record untouched.
type Store interface {
	// Create persists a new record in the created state and returns it.
	Create(ctx context.Context) (*Record, error)
	// Get returns the current record or ErrWorkflowNotFound.
	Get(ctx context.Context, id string) (*Record, error)
	// Update loads the current record, applies mutate, and persists the
	// result atomically. The returned record reflects the persisted state.
	Update(ctx context.Context, id string, mutate func(*Record) error) (*Record, error)
	// List returns summaries of all stored workflows.
	List(ctx context.Context) ([]Info, error)
	Close() error
}
