// Package versionindex implements the on-disk sidecar (".idx") described
// in spec.md section 4.2: a record_id -> version map persisted alongside
// each .cst, consulted on insert to reject stale versions without reading
// the (possibly much larger) columnar file.
package versionindex

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// entrySize is the fixed width of one (id, version) pair: a 20-byte
// record id plus an 8-byte big-endian version.
const entrySize = 20 + 8

// Write atomically creates a new index file at path containing one entry
// per (id, version) pair in m. Like cstable.Writer.Commit, it writes to a
// temp file and renames, so a crash never leaves a partially-written .idx
// visible under its real name — the crash-safety invariant spec.md
// section 4.3 relies on (an .idx only exists once it is fully written).
func Write(m map[[20]byte]uint64, path string) error {
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(f)
	for id, version := range m {
		var buf [entrySize]byte
		copy(buf[:20], id[:])
		binary.BigEndian.PutUint64(buf[20:], version)
		if _, err := w.Write(buf[:]); err != nil {
			f.Close()
			os.Remove(tmp)
			return err
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// Lookup reads path and, for every key already present in m, sets the
// entry to the max of the in-memory and on-disk versions. Keys present
// only on disk are not added to m — callers only ever probe for ids they
// already have a candidate version for (see LSMPartitionWriter.insertRecords
// in SPEC_FULL.md section 4.5).
func Lookup(m map[[20]byte]uint64, path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var buf [entrySize]byte
	for {
		_, err := io.ReadFull(r, buf[:])
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("versionindex: reading %s: %w", path, err)
		}

		var id [20]byte
		copy(id[:], buf[:20])
		version := binary.BigEndian.Uint64(buf[20:])

		if cur, ok := m[id]; ok && version > cur {
			m[id] = version
		}
	}
}
