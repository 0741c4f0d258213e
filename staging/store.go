package staging

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a staged change cannot be found.
	ErrNotFound = errors.New("staging: change not found")

	// ErrNotPending is returned when a conditional transition or update
	// finds the change no longer in its expected status.
	ErrNotPending = errors.New("staging: change is not pending")
)

// Store defines persistence operations for staged changes.
type Store interface {
	// CreateChange persists a new change and assigns its ID.
	CreateChange(ctx context.Context, c *Change) error

	// GetChange retrieves a change by ID.
	GetChange(ctx context.Context, changeID int64) (*Change, error)

	// UpdateChange persists field edits to a change that is still Pending.
	// Returns ErrNotPending if the change has already been resolved.
	UpdateChange(ctx context.Context, c *Change) error

	// Transition atomically moves a change from one status to another and
	// returns the updated change. Returns ErrNotPending if the change is no
	// longer in the From status.
	Transition(ctx context.Context, t *Transition) (*Change, error)

	// ListChanges returns changes matching the filter.
	ListChanges(ctx context.Context, filter *ListFilter) ([]*Change, error)

	// CountChanges returns the number of changes matching the filter.
	CountChanges(ctx context.Context, filter *ListFilter) (int64, error)
}
