package cstable

import (
	"fmt"
	"os"
)

// Writer accumulates decoded rows in memory and shreds them into column
// blocks on Commit. Rows are not flushed incrementally: spec.md section
// 4.3 only requires that the finished .cst be atomically created, not
// that the writer be streaming.
type Writer struct {
	path      string
	schema    TableSchema // includes extension columns
	rows      [][]interface{}
	versions  map[string]uint64
	committed bool
}

// CreateFile starts a new columnar table at path (which should not
// already exist — collision on the random filename token is a bug in the
// caller, per spec.md section 9, so CreateFile refuses to overwrite).
// schema is the caller's user schema; the three __lsm_* extension columns
// are appended automatically.
func CreateFile(path string, schema TableSchema) (*Writer, error) {
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("cstable: refusing to overwrite existing file %s", path)
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	return &Writer{
		path:     path,
		schema:   withExtensions(schema),
		versions: make(map[string]uint64),
	}, nil
}

// AddRecord shreds one decoded record into the writer, plus the three
// extension columns. idHex is the hex-encoded record id and is both
// stored in the __lsm_id column and used as the key of the version map
// returned by Commit.
func (w *Writer) AddRecord(fields map[string]interface{}, isUpdate bool, idHex string, version uint64) error {
	if w.committed {
		return fmt.Errorf("cstable: writer already committed")
	}

	row := make([]interface{}, len(w.schema.Columns))
	for i, col := range w.schema.Columns {
		switch col.Name {
		case ColumnIsUpdate:
			row[i] = isUpdate
		case ColumnID:
			row[i] = idHex
		case ColumnVersion:
			row[i] = version
		default:
			row[i] = fields[col.Name]
		}
	}

	w.rows = append(w.rows, row)
	w.versions[idHex] = version
	return nil
}

// Commit shreds the accumulated rows into column blocks and writes the
// finished file. It returns the record-id -> version map accumulated
// across all added records, for the caller to persist as the sidecar
// .idx via the versionindex package — spec.md section 4.3 requires the
// .cst to commit strictly before the .idx is written, so Commit does not
// write the sidecar itself.
func (w *Writer) Commit() (map[string]uint64, error) {
	if w.committed {
		return nil, fmt.Errorf("cstable: writer already committed")
	}

	blocks := make([]columnBlock, len(w.schema.Columns))
	for i, col := range w.schema.Columns {
		values := make([]interface{}, len(w.rows))
		for r, row := range w.rows {
			values[r] = row[i]
		}

		raw, err := encodeColumn(values)
		if err != nil {
			return nil, fmt.Errorf("cstable: encoding column %q: %w", col.Name, err)
		}
		compr, checksum := compress(raw)
		blocks[i] = columnBlock{name: col.Name, colType: col.Type, compr: compr, checksum: checksum}
	}

	tmp := w.path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, err
	}

	if err := writeFile(f, w.schema, uint64(len(w.rows)), blocks); err != nil {
		f.Close()
		os.Remove(tmp)
		return nil, err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return nil, err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return nil, err
	}
	if err := os.Rename(tmp, w.path); err != nil {
		os.Remove(tmp)
		return nil, err
	}

	w.committed = true
	return w.versions, nil
}
