package sqlite

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mesh-intelligence/plumbing/pkg/types"
)

// ExportJournal writes every recorded composition to path as JSON lines,
// oldest first. The file is replaced atomically.
func (b *Backend) ExportJournal(path string) (int, error) {
	records, err := b.Compositions("")
	if err != nil {
		return 0, err
	}

	lines := make([]json.RawMessage, 0, len(records))
	for _, rec := range records {
		line, err := json.Marshal(rec)
		if err != nil {
			return 0, fmt.Errorf("marshal composition %s: %w", rec.CompositionID, err)
		}
		lines = append(lines, line)
	}
	if err := writeJSONL(path, lines); err != nil {
		return 0, err
	}
	return len(records), nil
}

// ImportJournal loads compositions exported by ExportJournal. Records whose
// composition ID is already present are skipped, as are malformed lines and
// records without an ID. It returns the number of records added.
func (b *Backend) ImportJournal(path string) (int, error) {
	lines, err := readJSONL(path)
	if err != nil {
		return 0, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	db, err := b.conn()
	if err != nil {
		return 0, err
	}
	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	added := 0
	for _, line := range lines {
		var rec types.CompositionRecord
		if err := json.Unmarshal(line, &rec); err != nil || rec.CompositionID == "" {
			continue
		}
		ok, err := insertComposition(tx, `INSERT OR IGNORE`, rec)
		if err != nil {
			return 0, err
		}
		if ok {
			added++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}
	return added, nil
}

// readJSONL returns each non-empty, well-formed line of path. Malformed
// lines are skipped. Lines are read whole, whatever their length.
func readJSONL(path string) ([]json.RawMessage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var records []json.RawMessage
	r := bufio.NewReader(f)
	for {
		line, err := r.ReadBytes('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		line = bytes.TrimRight(line, "\r\n")
		if len(line) > 0 && json.Valid(line) {
			records = append(records, json.RawMessage(line))
		}
		if err != nil {
			return records, nil
		}
	}
}

// writeJSONL writes records to path through a synced temp file and a rename,
// so readers never observe a partial file.
func writeJSONL(path string, records []json.RawMessage) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".jsonl-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	w := bufio.NewWriter(tmp)
	for _, rec := range records {
		if _, err = w.Write(rec); err != nil {
			return fmt.Errorf("writing record: %w", err)
		}
		if err = w.WriteByte('\n'); err != nil {
			return fmt.Errorf("writing newline: %w", err)
		}
	}
	if err = w.Flush(); err != nil {
		return fmt.Errorf("flushing buffer: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
