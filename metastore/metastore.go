// Package metastore persists a partition snapshot's table list in an
// embedded bbolt database, giving the opaque "snapshot metadata file" of
// spec.md section 6 a concrete, crash-safe format. The teacher repo ships
// the same library wrapped in its own boltdb package for translate-store
// persistence; this package applies the same dependency to a different
// piece of per-partition metadata.
package metastore

import (
	"bytes"
	"encoding/binary"
	"fmt"

	bolt "go.etcd.io/bbolt"
)

var bucketName = []byte("snapshot")

// Store wraps a single bbolt database file. Table lists are stored under
// their partition key, so one store can hold many partitions; the server
// and latticectl open one store per data directory (<DataDir>/meta.db).
type Store struct {
	db *bolt.DB
}

// Open opens (creating if necessary) the metadata store at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database file.
func (s *Store) Close() error { return s.db.Close() }

// TableList is the persisted shape of a PartitionSnapshot's table list,
// kept independent of package lattice to avoid an import cycle (lattice
// depends on metastore, not the other way around).
type TableList struct {
	Key       [20]byte
	Namespace string
	TableName string
	Filenames []string
}

// WriteTableList persists tl under its key, replacing whatever was
// previously stored. Called by lattice.Writer's install phases under
// the write mutex, as the "persist any required on-disk metadata" step
// of invariant I4.
func (s *Store) WriteTableList(tl TableList) error {
	buf, err := encodeTableList(tl)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put(tl.Key[:], buf)
	})
}

// ReadTableList returns the persisted table list for key, or ok=false if
// none has been written yet (a brand new partition).
func (s *Store) ReadTableList(key [20]byte) (tl TableList, ok bool, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketName).Get(key[:])
		if v == nil {
			return nil
		}
		ok = true
		tl, err = decodeTableList(v)
		return err
	})
	return tl, ok, err
}

func encodeTableList(tl TableList) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(tl.Key[:])
	if err := writeString(&buf, tl.Namespace); err != nil {
		return nil, err
	}
	if err := writeString(&buf, tl.TableName); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, uint32(len(tl.Filenames))); err != nil {
		return nil, err
	}
	for _, fn := range tl.Filenames {
		if err := writeString(&buf, fn); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func decodeTableList(b []byte) (TableList, error) {
	var tl TableList
	r := bytes.NewReader(b)
	if _, err := r.Read(tl.Key[:]); err != nil {
		return tl, err
	}

	var err error
	if tl.Namespace, err = readString(r); err != nil {
		return tl, err
	}
	if tl.TableName, err = readString(r); err != nil {
		return tl, err
	}

	var n uint32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return tl, err
	}
	tl.Filenames = make([]string, n)
	for i := range tl.Filenames {
		if tl.Filenames[i], err = readString(r); err != nil {
			return tl, err
		}
	}
	return tl, nil
}

func writeString(buf *bytes.Buffer, s string) error {
	if err := binary.Write(buf, binary.BigEndian, uint32(len(s))); err != nil {
		return err
	}
	_, err := buf.WriteString(s)
	return err
}

func readString(r *bytes.Reader) (string, error) {
	var n uint32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return "", err
	}
	b := make([]byte, n)
	if _, err := r.Read(b); err != nil && n > 0 {
		return "", fmt.Errorf("metastore: short read: %w", err)
	}
	return string(b), nil
}
