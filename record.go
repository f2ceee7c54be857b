package lattice

import (
	"crypto/sha1"
	"encoding/hex"
	"strconv"
)

// RecordID is the 160-bit identifier of a record, derived from its key by
// the caller. It is represented as a fixed-size array rather than a slice
// so that it can be used directly as a map key.
type RecordID [sha1.Size]byte

// RecordIDFromHex decodes a 40-character hex string into a RecordID.
func RecordIDFromHex(s string) (RecordID, error) {
	var id RecordID
	b, err := hex.DecodeString(s)
	if err != nil {
		return id, err
	}
	if len(b) != len(id) {
		return id, errInvalidRecordIDLength(len(b))
	}
	copy(id[:], b)
	return id, nil
}

// String returns the hex encoding of the record id, as stored in the
// __lsm_id extension column.
func (id RecordID) String() string {
	return hex.EncodeToString(id[:])
}

// RecordRef is a single versioned record offered to a partition writer.
// IsUpdate is derived during insertRecords; callers should leave it at its
// zero value.
type RecordRef struct {
	RecordID      RecordID
	RecordVersion uint64
	Payload       []byte
	IsUpdate      bool
}

func errInvalidRecordIDLength(n int) error {
	return &invalidRecordIDLengthError{n: n}
}

type invalidRecordIDLengthError struct{ n int }

func (e *invalidRecordIDLengthError) Error() string {
	return "lattice: record id must decode to 20 bytes, got " + strconv.Itoa(e.n)
}
