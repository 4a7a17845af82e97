package protocol

// Field names used on the wire.
const (
	FieldVersion = "VERSION"
	FieldType    = "TYPE"
	FieldX       = "X-COOR"
	FieldY       = "Y-COOR"
	FieldStatus  = "STATUS"
	FieldNonce   = "NONCE"
)

// Version is the protocol version every request carries.
const Version = 1

// Fields is the generic field mapping a codec reads and writes.
type Fields map[string]any

// Has reports whether key is present.
func (f Fields) Has(key string) bool {
	_, ok := f[key]
	return ok
}

// Type returns the TYPE field. ok is false when it is absent or empty.
func (f Fields) Type() (t Type, ok bool) {
	s, ok := f.String(FieldType)
	if !ok || s == "" {
		return "", false
	}
	return Type(s), true
}

// String returns a string field.
func (f Fields) String(key string) (string, bool) {
	s, ok := f[key].(string)
	return s, ok
}

// Int returns an integer field. Floats with an integral value are
// accepted since some encoders write every number as a float.
func (f Fields) Int(key string) (int, bool) {
	switch v := f[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v == float64(int(v)) {
			return int(v), true
		}
	}
	return 0, false
}

// Strings returns a list field. A plain string reads as a one element
// list.
func (f Fields) Strings(key string) ([]string, bool) {
	switch v := f[key].(type) {
	case []string:
		return v, true
	case string:
		return []string{v}, true
	case []any:
		out := make([]string, len(v))
		for i := range v {
			s, ok := v[i].(string)
			if !ok {
				return nil, false
			}
			out[i] = s
		}
		return out, true
	}
	return nil, false
}

// IsErrorStatus reports whether f is an ERROR carrying status s.
func (f Fields) IsErrorStatus(s ErrorStatus) bool {
	t, ok := f.Type()
	if !ok || t != TypeError {
		return false
	}
	v, _ := f.String(FieldStatus)
	return ErrorStatus(v) == s
}

// IsListField reports whether key holds a list in fields. Only the
// STATUS of an ANSWER does. It is meant for wire.NewLegacyCodec.
func IsListField(fields map[string]any, key string) bool {
	return key == FieldStatus && fields[FieldType] == string(TypeAnswer)
}
