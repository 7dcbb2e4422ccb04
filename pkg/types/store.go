package types

// Store is a persistent capability registry and composition journal.
// Callers attach to a backend, hand the Store to a Composer through Config,
// and detach when done.
type Store interface {
	CapabilityRegistry
	Journal

	// Attach connects the Store to the backend described by config.
	// Creates the DataDir if it does not exist. Returns ErrAlreadyAttached
	// if called while already attached.
	Attach(config StoreConfig) error

	// Detach releases backend resources. Idempotent: multiple calls succeed.
	// After Detach, every operation returns ErrStoreDetached.
	Detach() error

	// Subjects lists every subject with declared capabilities, sorted.
	Subjects() ([]string, error)

	// Compositions returns recorded compositions, oldest first. A non-empty
	// typeName restricts the result to that type.
	Compositions(typeName string) ([]CompositionRecord, error)
}
