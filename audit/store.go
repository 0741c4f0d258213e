package audit

import (
	"context"
	"errors"

	"github.com/xraph/countersign/id"
)

// ErrNotFound is returned when an audit record cannot be found.
var ErrNotFound = errors.New("audit: record not found")

// Recorder is the write side of the audit trail. The staging workflow calls
// Record on every transition; a failed write never rolls back the transition
// it describes.
type Recorder interface {
	// Record appends one audit record. Implementations assign the ID and
	// timestamp when unset.
	Record(ctx context.Context, r *Record) error
}

// Store defines persistence operations for audit records. Records are
// append-only: there is no update or delete.
type Store interface {
	Recorder

	// GetRecord retrieves an audit record by ID.
	GetRecord(ctx context.Context, recordID id.AuditID) (*Record, error)

	// ListRecords returns audit records matching the filter.
	ListRecords(ctx context.Context, filter *QueryFilter) ([]*Record, error)

	// CountRecords returns the number of records matching the filter.
	CountRecords(ctx context.Context, filter *QueryFilter) (int64, error)
}
