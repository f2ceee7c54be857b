package cstable

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/cespare/xxhash"
	"github.com/golang/snappy"
)

// On-disk layout (format version v0.1.0, matching the version token named
// in spec.md section 6):
//
//	magic      [4]byte  "CST1"
//	version    byte     0x01
//	numColumns uint32
//	numRows    uint64
//	index area: numColumns * {
//	    nameLen uint16
//	    name    [nameLen]byte
//	    colType byte
//	    offset  uint64  (into data area)
//	    length  uint64  (compressed length)
//	    checksum uint64 (xxhash64 of the compressed block)
//	}
//	data area: numColumns column blocks, snappy-compressed, back to back
//
// The shape (fixed header, index area pointing into a data area) is
// grounded on the sstable layouts in
// _examples/other_examples/Prince-Hervoet-GoSeeLSM__sstable.go and
// _examples/other_examples/dd0wney-graphdb__sstable_types.go.
const (
	magic         = "CST1"
	formatVersion = 0x01
)

var ErrBadMagic = fmt.Errorf("cstable: bad magic header")

type columnBlock struct {
	name     string
	colType  ColumnType
	raw      []byte // tagged cell values (value.go), pre-compression
	compr    []byte
	checksum uint64
}

func encodeColumn(values []interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := newValueEncoder(&buf)
	for _, v := range values {
		if err := enc.encode(v); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func decodeColumn(raw []byte, n int) ([]interface{}, error) {
	dec := newValueDecoder(bytes.NewReader(raw))
	values := make([]interface{}, n)
	for i := 0; i < n; i++ {
		v, err := dec.decode()
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

func writeFile(w io.Writer, schema TableSchema, numRows uint64, blocks []columnBlock) error {
	var header bytes.Buffer
	header.WriteString(magic)
	header.WriteByte(formatVersion)
	if err := binary.Write(&header, binary.BigEndian, uint32(len(blocks))); err != nil {
		return err
	}
	if err := binary.Write(&header, binary.BigEndian, numRows); err != nil {
		return err
	}

	var index bytes.Buffer
	var data bytes.Buffer
	var offset uint64
	for _, b := range blocks {
		if err := binary.Write(&index, binary.BigEndian, uint16(len(b.name))); err != nil {
			return err
		}
		index.WriteString(b.name)
		index.WriteByte(byte(b.colType))
		if err := binary.Write(&index, binary.BigEndian, offset); err != nil {
			return err
		}
		if err := binary.Write(&index, binary.BigEndian, uint64(len(b.compr))); err != nil {
			return err
		}
		if err := binary.Write(&index, binary.BigEndian, b.checksum); err != nil {
			return err
		}

		data.Write(b.compr)
		offset += uint64(len(b.compr))
	}

	if _, err := w.Write(header.Bytes()); err != nil {
		return err
	}
	if _, err := w.Write(index.Bytes()); err != nil {
		return err
	}
	_, err := w.Write(data.Bytes())
	return err
}

type fileIndexEntry struct {
	name     string
	colType  ColumnType
	offset   uint64
	length   uint64
	checksum uint64
}

type fileHeader struct {
	numColumns uint32
	numRows    uint64
	index      []fileIndexEntry
	dataStart  int64
}

func readHeader(r io.ReadSeeker) (*fileHeader, error) {
	var m [4]byte
	if _, err := io.ReadFull(r, m[:]); err != nil {
		return nil, err
	}
	if string(m[:]) != magic {
		return nil, ErrBadMagic
	}

	var version byte
	if err := binary.Read(r, binary.BigEndian, &version); err != nil {
		return nil, err
	}

	h := &fileHeader{}
	if err := binary.Read(r, binary.BigEndian, &h.numColumns); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.BigEndian, &h.numRows); err != nil {
		return nil, err
	}

	h.index = make([]fileIndexEntry, h.numColumns)
	for i := range h.index {
		var nameLen uint16
		if err := binary.Read(r, binary.BigEndian, &nameLen); err != nil {
			return nil, err
		}
		name := make([]byte, nameLen)
		if _, err := io.ReadFull(r, name); err != nil {
			return nil, err
		}
		var colType byte
		if err := binary.Read(r, binary.BigEndian, &colType); err != nil {
			return nil, err
		}
		e := fileIndexEntry{name: string(name), colType: ColumnType(colType)}
		if err := binary.Read(r, binary.BigEndian, &e.offset); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.BigEndian, &e.length); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.BigEndian, &e.checksum); err != nil {
			return nil, err
		}
		h.index[i] = e
	}

	pos, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}
	h.dataStart = pos
	return h, nil
}

func compress(raw []byte) (compr []byte, checksum uint64) {
	compr = snappy.Encode(nil, raw)
	checksum = xxhash.Sum64(compr)
	return compr, checksum
}

func decompress(compr []byte, wantChecksum uint64) ([]byte, error) {
	if got := xxhash.Sum64(compr); got != wantChecksum {
		return nil, fmt.Errorf("cstable: checksum mismatch: got %x want %x", got, wantChecksum)
	}
	return snappy.Decode(nil, compr)
}
