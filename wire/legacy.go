package wire

import (
	"encoding/json"
	"strings"
)

const (
	listSeparator = ","
	underscore    = "_"
	minusSign     = "-"
)

// ListFieldFunc reports whether key holds a list in the given mapping.
type ListFieldFunc func(fields map[string]any, key string) bool

// LegacyCodec speaks the format of the first generation of peers. Lists
// are joined with "," and underscores in strings are sent as "-".
//
// The format cannot tell a one element list from a plain string, so keys
// reported by isList are rebuilt as lists on decode.
type LegacyCodec struct {
	isList ListFieldFunc
}

// NewLegacyCodec returns a LegacyCodec. isList may be nil.
func NewLegacyCodec(isList ListFieldFunc) *LegacyCodec {
	return &LegacyCodec{isList: isList}
}

// Encode implements Codec.
func (c *LegacyCodec) Encode(fields map[string]any) ([]byte, error) {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		switch t := v.(type) {
		case []string:
			out[k] = strings.Join(t, listSeparator)
		case string:
			out[k] = strings.ReplaceAll(t, underscore, minusSign)
		default:
			out[k] = v
		}
	}
	b, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}
	return append(b, Terminator...), nil
}

// Decode implements Codec.
func (c *LegacyCodec) Decode(b []byte) (map[string]any, error) {
	raw, err := unmarshalObject(b)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(raw))
	for k, v := range raw {
		s, ok := v.(string)
		if !ok {
			out[k] = normalize(v)
			continue
		}
		if strings.Contains(s, listSeparator) {
			out[k] = strings.Split(s, listSeparator)
			continue
		}
		out[k] = strings.ReplaceAll(s, minusSign, underscore)
	}

	if c.isList != nil {
		for k, v := range out {
			if s, ok := v.(string); ok && c.isList(out, k) {
				out[k] = []string{s}
			}
		}
	}
	return out, nil
}
