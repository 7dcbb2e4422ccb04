package sqlite

import (
	"fmt"
	"time"

	"github.com/mesh-intelligence/plumbing/pkg/types"
)

// ImplementedBy returns the capabilities declared for subject in
// declaration order. An unknown subject yields an empty slice.
func (b *Backend) ImplementedBy(subject string) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	db, err := b.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(`SELECT capability FROM capabilities WHERE subject = ? ORDER BY rowid`, subject)
	if err != nil {
		return nil, fmt.Errorf("query capabilities: %w", err)
	}
	defer rows.Close()

	caps := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan capability: %w", err)
		}
		caps = append(caps, c)
	}
	return caps, rows.Err()
}

// Declare records capabilities for subject in one transaction. Already
// declared capabilities are left as they are.
func (b *Backend) Declare(subject string, capabilities ...string) error {
	if subject == "" {
		return fmt.Errorf("subject: %w", types.ErrInvalidName)
	}
	for _, c := range capabilities {
		if c == "" {
			return fmt.Errorf("capability of %s: %w", subject, types.ErrInvalidName)
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	db, err := b.conn()
	if err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, c := range capabilities {
		if _, err := tx.Exec(
			`INSERT OR IGNORE INTO capabilities (subject, capability, declared_at) VALUES (?, ?, ?)`,
			subject, c, now,
		); err != nil {
			return fmt.Errorf("insert capability %s of %s: %w", c, subject, err)
		}
	}
	return tx.Commit()
}

// Subjects returns every subject with at least one declared capability,
// sorted by name.
func (b *Backend) Subjects() ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	db, err := b.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(`SELECT DISTINCT subject FROM capabilities ORDER BY subject`)
	if err != nil {
		return nil, fmt.Errorf("query subjects: %w", err)
	}
	defer rows.Close()

	subjects := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan subject: %w", err)
		}
		subjects = append(subjects, s)
	}
	return subjects, rows.Err()
}
