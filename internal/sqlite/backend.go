package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/plumbing/pkg/types"
)

// Backend is a SQLite-backed capability registry and composition journal.
// It implements types.CapabilityRegistry and types.Journal.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.StoreConfig
	db       *sql.DB
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a StoreConfig to initialize.
func NewBackend() *Backend {
	return &Backend{}
}

// Attach opens (creating if needed) the database in config.DataDir and
// applies the schema.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.StoreConfig) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}

	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dataDir, dbFileName))
	if err != nil {
		return err
	}
	// A single connection keeps writes serialised without SQLITE_BUSY retries.
	db.SetMaxOpenConns(1)

	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return fmt.Errorf("apply schema: %w", err)
		}
	}

	b.db = db
	b.config = config
	b.attached = true
	return nil
}

// Detach closes the database. Detach is idempotent. After Detach, all
// operations return ErrStoreDetached.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
		b.db = nil
	}
	b.attached = false
	return nil
}

// conn returns the open database or ErrStoreDetached. Callers hold b.mu.
func (b *Backend) conn() (*sql.DB, error) {
	if !b.attached {
		return nil, types.ErrStoreDetached
	}
	return b.db, nil
}

var (
	_ types.CapabilityRegistry = (*Backend)(nil)
	_ types.Journal            = (*Backend)(nil)
	_ types.Store              = (*Backend)(nil)
)
