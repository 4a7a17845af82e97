package wire_test

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"github.com/yookoala/submarines/wire"
)

func TestEncode_Terminator(t *testing.T) {
	for name, c := range map[string]wire.Codec{
		"json":   wire.NewJSONCodec(),
		"legacy": wire.NewLegacyCodec(nil),
	} {
		b, err := c.Encode(map[string]any{"TYPE": "READY"})
		if err != nil {
			t.Fatalf("%s: unexpected error: %s", name, err)
		}
		if !bytes.HasSuffix(b, []byte(wire.Terminator)) {
			t.Errorf("%s: missing terminator in %q", name, b)
		}
		if bytes.Count(b, []byte(wire.Terminator)) != 1 {
			t.Errorf("%s: terminator must appear once, have %q", name, b)
		}
	}
}

func TestLegacyCodec_Transforms(t *testing.T) {
	c := wire.NewLegacyCodec(nil)
	b, err := c.Encode(map[string]any{
		"STATUS": "OUT_OF_RANGE",
		"LIST":   []string{"FULL_SUB_CORRECT", "CORRECT"},
		"X-COOR": 3,
	})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if !bytes.Contains(b, []byte(`"OUT-OF-RANGE"`)) {
		t.Errorf("expected underscores sent as hyphens, have %s", b)
	}
	if !bytes.Contains(b, []byte(`"FULL_SUB_CORRECT,CORRECT"`)) {
		t.Errorf("expected list joined with comma, have %s", b)
	}

	have, err := c.Decode(b)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	want := map[string]any{
		"STATUS": "OUT_OF_RANGE",
		"LIST":   []string{"FULL_SUB_CORRECT", "CORRECT"},
		"X-COOR": 3,
	}
	if !reflect.DeepEqual(want, have) {
		t.Errorf("want %#v, have %#v", want, have)
	}
}

func TestLegacyCodec_SingleElementList(t *testing.T) {
	isList := func(m map[string]any, key string) bool { return key == "STATUS" }

	b, err := wire.NewLegacyCodec(nil).Encode(map[string]any{"STATUS": []string{"INCORRECT"}})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	// Without a hint the list collapses into a string.
	have, _ := wire.NewLegacyCodec(nil).Decode(b)
	if want := "INCORRECT"; have["STATUS"] != want {
		t.Errorf("want %#v, have %#v", want, have["STATUS"])
	}

	have, _ = wire.NewLegacyCodec(isList).Decode(b)
	if want := []string{"INCORRECT"}; !reflect.DeepEqual(want, have["STATUS"]) {
		t.Errorf("want %#v, have %#v", want, have["STATUS"])
	}
}

func TestJSONCodec_StringsVerbatim(t *testing.T) {
	c := wire.NewJSONCodec()
	in := map[string]any{
		"NOTE": "a-b_c,d",
		"LIST": []string{"x,y", "z-w"},
	}
	b, err := c.Encode(in)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	have, err := c.Decode(b)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if !reflect.DeepEqual(in, have) {
		t.Errorf("want %#v, have %#v", in, have)
	}
}

func TestJSONCodec_Numbers(t *testing.T) {
	have, err := wire.NewJSONCodec().Decode([]byte(`{"VERSION":1.0,"X-COOR":4,"R":0.5}` + wire.Terminator))
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	want := map[string]any{"VERSION": 1, "X-COOR": 4, "R": 0.5}
	if !reflect.DeepEqual(want, have) {
		t.Errorf("want %#v, have %#v", want, have)
	}
}

func TestDecode_Malformed(t *testing.T) {
	for name, c := range map[string]wire.Codec{
		"json":   wire.NewJSONCodec(),
		"legacy": wire.NewLegacyCodec(nil),
	} {
		for _, in := range []string{`{"TYPE":`, `[1,2]`, `null`, ``} {
			_, err := c.Decode([]byte(in))
			var de *wire.DecodeError
			if !errors.As(err, &de) {
				t.Errorf("%s: %q: expected *wire.DecodeError, have %#v", name, in, err)
			}
		}
	}
}

func TestDecode_NoRequiredFieldCheck(t *testing.T) {
	// Missing fields are the validators' business.
	have, err := wire.NewJSONCodec().Decode([]byte(`{}`))
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if len(have) != 0 {
		t.Errorf("expected empty mapping, have %#v", have)
	}
}
