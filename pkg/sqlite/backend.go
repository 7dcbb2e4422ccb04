// Package sqlite provides the public constructor for the SQLite store
// while keeping implementation details internal.
package sqlite

import (
	"github.com/mesh-intelligence/plumbing/internal/sqlite"
	"github.com/mesh-intelligence/plumbing/pkg/types"
)

// NewBackend creates a new SQLite store.
// The store is not attached; call Attach with a StoreConfig to initialize.
//
// Example:
//
//	store := sqlite.NewBackend()
//	err := store.Attach(types.StoreConfig{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".plumbing-db",
//	})
//	defer store.Detach()
//	composer := plumbing.NewComposer(types.Config{Registry: store, Journal: store})
func NewBackend() types.Store {
	return sqlite.NewBackend()
}
