package protocol_test

import (
	"reflect"
	"testing"

	"github.com/yookoala/submarines/protocol"
	"github.com/yookoala/submarines/wire"
)

func allRequests() []protocol.Request {
	return []protocol.Request{
		protocol.Ready{},
		protocol.Ready{Nonce: "00ff00ff"},
		protocol.Attempt{X: 0, Y: 9},
		protocol.NewAnswer(protocol.StatusVictory, protocol.StatusFullSubCorrect, protocol.StatusCorrect),
		protocol.NewAnswerAt(3, 4, protocol.StatusIncorrect),
		protocol.NewAnswerAt(0, 0, protocol.StatusFullSubCorrect, protocol.StatusCorrect),
		protocol.Error{Status: protocol.StatusOutOfRange},
		protocol.Error{Status: protocol.StatusAttemptNotInTurn},
		protocol.Error{Status: protocol.StatusClosed},
	}
}

func TestRoundTrip(t *testing.T) {
	codecs := map[string]wire.Codec{
		"json":   wire.NewJSONCodec(),
		"legacy": wire.NewLegacyCodec(protocol.IsListField),
	}
	for name, c := range codecs {
		for _, r := range allRequests() {
			want := map[string]any(r.Fields())
			b, err := c.Encode(r.Fields())
			if err != nil {
				t.Fatalf("%s: unexpected error encoding %#v: %s", name, r, err)
			}
			have, err := c.Decode(b)
			if err != nil {
				t.Fatalf("%s: unexpected error decoding %q: %s", name, b, err)
			}
			if !reflect.DeepEqual(want, have) {
				t.Errorf("%s: round trip mismatch.\nwant %#v\nhave %#v", name, want, have)
			}
		}
	}
}

func TestAnswer_OmitsCoordinates(t *testing.T) {
	f := protocol.NewAnswer(protocol.StatusVictory).Fields()
	if f.Has(protocol.FieldX) || f.Has(protocol.FieldY) {
		t.Errorf("expected no coordinate fields, have %#v", f)
	}

	// A zero coordinate is still a coordinate.
	f = protocol.NewAnswerAt(0, 0, protocol.StatusCorrect).Fields()
	if x, ok := f.Int(protocol.FieldX); !ok || x != 0 {
		t.Errorf("expected X-COOR 0, have %#v", f[protocol.FieldX])
	}
	if y, ok := f.Int(protocol.FieldY); !ok || y != 0 {
		t.Errorf("expected Y-COOR 0, have %#v", f[protocol.FieldY])
	}
}

func TestRequiredFields(t *testing.T) {
	for _, r := range allRequests() {
		f := r.Fields()
		if v, ok := f.Int(protocol.FieldVersion); !ok || v != protocol.Version {
			t.Errorf("%T: unexpected VERSION %#v", r, f[protocol.FieldVersion])
		}
		if typ, ok := f.Type(); !ok || typ != r.Type() {
			t.Errorf("%T: unexpected TYPE %#v", r, f[protocol.FieldType])
		}
	}
}

func TestReady_Nonce(t *testing.T) {
	if f := (protocol.Ready{}).Fields(); f.Has(protocol.FieldNonce) {
		t.Errorf("expected no nonce, have %#v", f)
	}
	f := protocol.Ready{Nonce: "abc"}.Fields()
	if want, have := "abc", f[protocol.FieldNonce]; want != have {
		t.Errorf("want %#v, have %#v", want, have)
	}
}

func TestParseAnswerStatuses(t *testing.T) {
	statuses, ok := protocol.ParseAnswerStatuses([]string{"VICTORY", "CORRECT"})
	if !ok {
		t.Fatal("expected known tags to parse")
	}
	if !protocol.ContainsStatus(statuses, protocol.StatusVictory) {
		t.Errorf("expected VICTORY in %v", statuses)
	}
	if _, ok := protocol.ParseAnswerStatuses([]string{"CORRECT", "BOOM"}); ok {
		t.Error("expected unknown tag to fail")
	}
	if _, ok := protocol.ParseAnswerStatuses(nil); ok {
		t.Error("expected empty list to fail")
	}
}

func TestFields_Accessors(t *testing.T) {
	f := protocol.Fields{
		"a": 1.0,
		"b": 1.5,
		"c": "x",
		"d": []any{"p", "q"},
		"e": []any{"p", 1},
	}
	if v, ok := f.Int("a"); !ok || v != 1 {
		t.Errorf("expected integral float to read as int, have %v %v", v, ok)
	}
	if _, ok := f.Int("b"); ok {
		t.Error("expected fractional float to be rejected")
	}
	if _, ok := f.Int("c"); ok {
		t.Error("expected string to be rejected")
	}
	if v, ok := f.Strings("c"); !ok || len(v) != 1 || v[0] != "x" {
		t.Errorf("expected one element list, have %v %v", v, ok)
	}
	if v, ok := f.Strings("d"); !ok || len(v) != 2 {
		t.Errorf("expected two element list, have %v %v", v, ok)
	}
	if _, ok := f.Strings("e"); ok {
		t.Error("expected mixed list to be rejected")
	}
	if _, ok := f.Type(); ok {
		t.Error("expected missing TYPE")
	}
}

func TestIsErrorStatus(t *testing.T) {
	f := protocol.Error{Status: protocol.StatusClosed}.Fields()
	if !f.IsErrorStatus(protocol.StatusClosed) {
		t.Error("expected CLOSED")
	}
	if f.IsErrorStatus(protocol.StatusUnexpected) {
		t.Error("did not expect UNEXPECTED")
	}
	if (protocol.Ready{}).Fields().IsErrorStatus(protocol.StatusClosed) {
		t.Error("READY is not an error")
	}
}
