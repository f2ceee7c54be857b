// Package cstable implements the immutable columnar table writer
// described in SPEC_FULL.md section 4.3: it shreds a batch of decoded
// records into column blocks, always appending the three __lsm_*
// extension columns after the caller's schema, and commits them to a
// single binary file (format.go documents the on-disk layout).
package cstable

// ColumnType enumerates the cell types a column may hold. It is
// deliberately small: this engine does not do schema evolution or type
// promotion (spec.md's non-goals), so every column has exactly one type
// for the lifetime of a table.
type ColumnType uint8

const (
	ColumnBool ColumnType = iota
	ColumnString
	ColumnUint
	ColumnInt
	ColumnFloat
	ColumnBytes
)

// Column describes one column of a TableSchema.
type Column struct {
	Name string
	Type ColumnType
}

// TableSchema is the ordered list of columns a Writer shreds records into,
// not including the extension columns (those are appended by CreateFile).
type TableSchema struct {
	Columns []Column
}

// Extension column names, fixed by spec.md section 4.3 step 3.
const (
	ColumnIsUpdate = "__lsm_is_update"
	ColumnID       = "__lsm_id"
	ColumnVersion  = "__lsm_version"
)

func withExtensions(schema TableSchema) TableSchema {
	cols := make([]Column, 0, len(schema.Columns)+3)
	cols = append(cols, schema.Columns...)
	cols = append(cols,
		Column{Name: ColumnIsUpdate, Type: ColumnBool},
		Column{Name: ColumnID, Type: ColumnString},
		Column{Name: ColumnVersion, Type: ColumnUint},
	)
	return TableSchema{Columns: cols}
}

// Codec decodes a record's opaque payload against the table's (external,
// config-directory-owned) schema into a structural record keyed by column
// name. The schema itself is out of scope for this package (spec.md
// section 1); callers supply whatever codec matches their payload
// encoding. GobCodec is provided as the default for tests and for callers
// who don't have a richer schema system to decode against.
type Codec interface {
	Decode(payload []byte) (map[string]interface{}, error)
}
