package lattice

import "github.com/latticedb/lattice/errors"

// Error codes for the taxonomy of spec.md section 7. Callers can test for
// a particular kind with errors.Is(err, lattice.ErrConcurrentModification)
// and friends.
const (
	// ErrIllegalState is raised when an operation is attempted against a
	// partition that is not in a state that permits it, e.g. inserting
	// into a frozen partition.
	ErrIllegalState errors.Code = "IllegalState"

	// ErrConcurrentModification is raised when compact()'s install phase
	// observes that the table list changed in a way incompatible with the
	// compaction it computed.
	ErrConcurrentModification errors.Code = "ConcurrentModification"

	// ErrIO is raised by file writes and snapshot persistence failures.
	ErrIO errors.Code = "IO"

	// ErrDecode is raised when a record's payload cannot be decoded
	// against the table schema during flush.
	ErrDecode errors.Code = "Decode"
)
