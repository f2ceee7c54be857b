package cstable

import (
	"bytes"
	"encoding/gob"
)

// GobCodec decodes a payload that was produced by gob-encoding a
// map[string]interface{}. It exists because the real schema decoder is an
// external collaborator (the config directory's schema, spec.md section
// 1) this package has no access to; GobCodec is the closest stand-in the
// standard library offers for "decode an opaque self-describing blob",
// and is what the tests use to drive the writer end to end.
type GobCodec struct{}

func (GobCodec) Decode(payload []byte) (map[string]interface{}, error) {
	var fields map[string]interface{}
	dec := gob.NewDecoder(bytes.NewReader(payload))
	if err := dec.Decode(&fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// EncodeGobPayload is the inverse of GobCodec, used by tests and by
// callers that don't have their own encoder wired up yet.
func EncodeGobPayload(fields map[string]interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(fields); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
