// Package wire turns a request's field mapping into bytes and back.
//
// Every encoded message ends with Terminator so that a stream reader can
// find message boundaries without a length prefix.
package wire

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// Terminator ends every encoded message.
const Terminator = "\n\n"

// Codec encodes and decodes field mappings.
type Codec interface {
	Encode(fields map[string]any) ([]byte, error)
	Decode(b []byte) (map[string]any, error)
}

// DecodeError reports a frame that could not be deserialized at all.
type DecodeError struct {
	Raw []byte
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("error decoding frame: %s, raw: %q", e.Err, e.Raw)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// JSONCodec writes the field mapping as a JSON object. Lists travel as
// arrays and strings travel verbatim.
type JSONCodec struct{}

// NewJSONCodec returns the default codec.
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Encode implements Codec.
func (JSONCodec) Encode(fields map[string]any) ([]byte, error) {
	b, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	return append(b, Terminator...), nil
}

// Decode implements Codec.
func (JSONCodec) Decode(b []byte) (map[string]any, error) {
	raw, err := unmarshalObject(b)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(raw))
	for k, v := range raw {
		out[k] = normalize(v)
	}
	return out, nil
}

// unmarshalObject reads a JSON object with numbers kept as json.Number.
func unmarshalObject(b []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(bytes.TrimSpace(b)))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, &DecodeError{Raw: b, Err: err}
	}
	if m == nil {
		return nil, &DecodeError{Raw: b, Err: fmt.Errorf("not an object")}
	}
	return m, nil
}

// normalize turns integral numbers into int and arrays of strings into
// []string. Everything else is returned unchanged.
func normalize(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return int(i)
		}
		f, err := t.Float64()
		if err != nil {
			return t.String()
		}
		if f == math.Trunc(f) && math.Abs(f) < math.MaxInt32 {
			return int(f)
		}
		return f
	case []any:
		strs := make([]string, 0, len(t))
		for _, e := range t {
			s, ok := e.(string)
			if !ok {
				out := make([]any, len(t))
				for i := range t {
					out[i] = normalize(t[i])
				}
				return out
			}
			strs = append(strs, s)
		}
		return strs
	}
	return v
}
