package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mesh-intelligence/plumbing/pkg/types"
)

// Record stores a summary of a composed Descriptor.
func (b *Backend) Record(d *types.Descriptor) error {
	rec := types.NewCompositionRecord(d)

	b.mu.Lock()
	defer b.mu.Unlock()

	db, err := b.conn()
	if err != nil {
		return err
	}
	if _, err := insertComposition(db, `INSERT`, rec); err != nil {
		return err
	}
	return nil
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// insertComposition writes rec using verb (INSERT or INSERT OR IGNORE) and
// reports whether a row was added.
func insertComposition(db execer, verb string, rec types.CompositionRecord) (bool, error) {
	plugins, err := json.Marshal(rec.Plugins)
	if err != nil {
		return false, fmt.Errorf("marshal plugins: %w", err)
	}
	names, err := json.Marshal(rec.Names)
	if err != nil {
		return false, fmt.Errorf("marshal names: %w", err)
	}
	caps, err := json.Marshal(rec.Capabilities)
	if err != nil {
		return false, fmt.Errorf("marshal capabilities: %w", err)
	}

	res, err := db.Exec(
		verb+` INTO compositions (composition_id, type_name, doc, plugins, names, capabilities, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.CompositionID, rec.TypeName, rec.Doc, string(plugins), string(names), string(caps),
		rec.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return false, fmt.Errorf("insert composition %s: %w", rec.TypeName, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Compositions returns recorded compositions, oldest first. A non-empty
// typeName restricts the result to that type.
func (b *Backend) Compositions(typeName string) ([]types.CompositionRecord, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	db, err := b.conn()
	if err != nil {
		return nil, err
	}

	var rows *sql.Rows
	const cols = `SELECT composition_id, type_name, doc, plugins, names, capabilities, created_at FROM compositions`
	if typeName == "" {
		rows, err = db.Query(cols + ` ORDER BY rowid`)
	} else {
		rows, err = db.Query(cols+` WHERE type_name = ? ORDER BY rowid`, typeName)
	}
	if err != nil {
		return nil, fmt.Errorf("query compositions: %w", err)
	}
	defer rows.Close()

	records := []types.CompositionRecord{}
	for rows.Next() {
		rec, err := scanComposition(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func scanComposition(rows *sql.Rows) (types.CompositionRecord, error) {
	var (
		rec                  types.CompositionRecord
		plugins, names, caps string
		createdAt            string
	)
	if err := rows.Scan(&rec.CompositionID, &rec.TypeName, &rec.Doc, &plugins, &names, &caps, &createdAt); err != nil {
		return rec, fmt.Errorf("scan composition: %w", err)
	}
	if err := json.Unmarshal([]byte(plugins), &rec.Plugins); err != nil {
		return rec, fmt.Errorf("decode plugins: %w", err)
	}
	if err := json.Unmarshal([]byte(names), &rec.Names); err != nil {
		return rec, fmt.Errorf("decode names: %w", err)
	}
	if err := json.Unmarshal([]byte(caps), &rec.Capabilities); err != nil {
		return rec, fmt.Errorf("decode capabilities: %w", err)
	}
	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return rec, fmt.Errorf("parse created_at: %w", err)
	}
	rec.CreatedAt = t
	return rec, nil
}
