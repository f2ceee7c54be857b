package cstable

import "os"

// Reader provides read-only, column-at-a-time access to a committed .cst
// file. It exists primarily to let tests (and the latticectl inspect
// command) verify what a Writer actually persisted; nothing in the core
// insert/commit/compact path depends on it.
type Reader struct {
	f      *os.File
	header *fileHeader
}

// OpenFile opens an existing .cst file for reading.
func OpenFile(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	h, err := readHeader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &Reader{f: f, header: h}, nil
}

// Close releases the underlying file handle.
func (r *Reader) Close() error { return r.f.Close() }

// NumRows returns the number of rows committed to the table.
func (r *Reader) NumRows() int { return int(r.header.numRows) }

// ColumnNames returns the table's columns in on-disk order, including the
// three __lsm_* extension columns.
func (r *Reader) ColumnNames() []string {
	names := make([]string, len(r.header.index))
	for i, e := range r.header.index {
		names[i] = e.name
	}
	return names
}

// Column reads and decompresses a single column's values by name.
func (r *Reader) Column(name string) ([]interface{}, error) {
	for _, e := range r.header.index {
		if e.name != name {
			continue
		}

		compr := make([]byte, e.length)
		if _, err := r.f.ReadAt(compr, r.header.dataStart+int64(e.offset)); err != nil {
			return nil, err
		}
		raw, err := decompress(compr, e.checksum)
		if err != nil {
			return nil, err
		}
		return decodeColumn(raw, int(r.header.numRows))
	}
	return nil, os.ErrNotExist
}
