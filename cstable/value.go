package cstable

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Cell values are encoded with a one-byte type tag followed by a
// type-specific payload, so a column can hold a run of untyped
// interface{} values (the structural record produced by Codec.Decode)
// without reflection at read time.
const (
	tagNil byte = iota
	tagBool
	tagString
	tagUint
	tagInt
	tagFloat
	tagBytes
)

type valueEncoder struct{ w io.Writer }

func newValueEncoder(w io.Writer) *valueEncoder { return &valueEncoder{w: w} }

func (e *valueEncoder) encode(v interface{}) error {
	switch x := v.(type) {
	case nil:
		return e.writeTag(tagNil)
	case bool:
		if err := e.writeTag(tagBool); err != nil {
			return err
		}
		b := byte(0)
		if x {
			b = 1
		}
		return e.write([]byte{b})
	case string:
		if err := e.writeTag(tagString); err != nil {
			return err
		}
		return e.writeBytes([]byte(x))
	case uint64:
		if err := e.writeTag(tagUint); err != nil {
			return err
		}
		return e.writeUint64(x)
	case int64:
		if err := e.writeTag(tagInt); err != nil {
			return err
		}
		return e.writeUint64(uint64(x))
	case int:
		return e.encode(int64(x))
	case float64:
		if err := e.writeTag(tagFloat); err != nil {
			return err
		}
		return e.writeUint64(uint64(int64(x*1e9)))
	case []byte:
		if err := e.writeTag(tagBytes); err != nil {
			return err
		}
		return e.writeBytes(x)
	default:
		return fmt.Errorf("cstable: unsupported cell value type %T", v)
	}
}

func (e *valueEncoder) writeTag(tag byte) error {
	return e.write([]byte{tag})
}

func (e *valueEncoder) write(b []byte) error {
	_, err := e.w.Write(b)
	return err
}

func (e *valueEncoder) writeUint64(v uint64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	return e.write(buf[:])
}

func (e *valueEncoder) writeBytes(b []byte) error {
	if err := e.writeUint64(uint64(len(b))); err != nil {
		return err
	}
	return e.write(b)
}

type valueDecoder struct{ r io.Reader }

func newValueDecoder(r io.Reader) *valueDecoder { return &valueDecoder{r: r} }

func (d *valueDecoder) decode() (interface{}, error) {
	var tagBuf [1]byte
	if _, err := io.ReadFull(d.r, tagBuf[:]); err != nil {
		return nil, err
	}

	switch tagBuf[0] {
	case tagNil:
		return nil, nil
	case tagBool:
		var b [1]byte
		if _, err := io.ReadFull(d.r, b[:]); err != nil {
			return nil, err
		}
		return b[0] == 1, nil
	case tagString:
		b, err := d.readBytes()
		if err != nil {
			return nil, err
		}
		return string(b), nil
	case tagUint:
		v, err := d.readUint64()
		return v, err
	case tagInt:
		v, err := d.readUint64()
		return int64(v), err
	case tagFloat:
		v, err := d.readUint64()
		return float64(int64(v)) / 1e9, err
	case tagBytes:
		return d.readBytes()
	default:
		return nil, fmt.Errorf("cstable: unknown value tag %d", tagBuf[0])
	}
}

func (d *valueDecoder) readUint64() (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(d.r, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(buf[:]), nil
}

func (d *valueDecoder) readBytes() ([]byte, error) {
	n, err := d.readUint64()
	if err != nil {
		return nil, err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(d.r, b); err != nil {
		return nil, err
	}
	return b, nil
}
