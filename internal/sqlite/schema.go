// Package sqlite implements the persistent store behind the capability
// registry and the composition journal.
package sqlite

// Schema DDL. Tables are created on first attach and kept across attaches.
const (
	createCapabilities = `CREATE TABLE IF NOT EXISTS capabilities (
    subject TEXT NOT NULL,
    capability TEXT NOT NULL,
    declared_at TEXT NOT NULL,
    PRIMARY KEY (subject, capability)
);`

	createCompositions = `CREATE TABLE IF NOT EXISTS compositions (
    composition_id TEXT PRIMARY KEY,
    type_name TEXT NOT NULL,
    doc TEXT NOT NULL,
    plugins TEXT NOT NULL,
    names TEXT NOT NULL,
    capabilities TEXT NOT NULL,
    created_at TEXT NOT NULL
);`
)

// Indexes for common query patterns.
const (
	indexCapabilitiesSubject  = `CREATE INDEX IF NOT EXISTS idx_capabilities_subject ON capabilities(subject);`
	indexCompositionsTypeName = `CREATE INDEX IF NOT EXISTS idx_compositions_type_name ON compositions(type_name);`
)

// schemaStatements lists the DDL in execution order.
var schemaStatements = []string{
	createCapabilities,
	createCompositions,
	indexCapabilitiesSubject,
	indexCompositionsTypeName,
}

// dbFileName is the SQLite file created inside the data directory.
const dbFileName = "plumbing.db"
