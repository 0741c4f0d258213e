// Package store defines the aggregate persistence interface. Each subsystem
// (staging, audit) defines its own store interface. The composite Store
// composes them all. Backends: Postgres, SQLite, MongoDB, and Memory.
package store

import (
	"context"

	"github.com/xraph/countersign/audit"
	"github.com/xraph/countersign/staging"
)

// Store is the aggregate persistence interface.
// A single backend (postgres, sqlite, mongo, memory) implements all of it.
type Store interface {
	staging.Store
	audit.Store

	// Migrate runs all schema migrations.
	Migrate(ctx context.Context) error

	// Ping checks database connectivity.
	Ping(ctx context.Context) error

	// Close closes the store connection.
	Close() error
}
