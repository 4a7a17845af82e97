// Package protocol holds the requests two peers exchange.
//
// A request is plain data. It knows how to present itself as a field
// mapping and nothing else: encoding belongs to package wire and checking
// to package validator.
package protocol

import "fmt"

// Request is any message a peer sends.
type Request interface {
	// Type returns the request discriminant.
	Type() Type

	// Fields returns the field mapping for the codec.
	Fields() Fields
}

func required(t Type) Fields {
	return Fields{
		FieldVersion: Version,
		FieldType:    string(t),
	}
}

// Coord is a cell address on the board.
type Coord struct {
	X int
	Y int
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d, %d)", c.X, c.Y)
}

// Ready announces that the sender has placed its fleet.
type Ready struct {
	// Nonce breaks the start-order tie. It is left out of the mapping
	// when empty.
	Nonce string
}

func (r Ready) Type() Type { return TypeReady }

func (r Ready) Fields() Fields {
	f := required(TypeReady)
	if r.Nonce != "" {
		f[FieldNonce] = r.Nonce
	}
	return f
}

// Attempt is a guess at one cell of the opponent's board.
type Attempt struct {
	X int
	Y int
}

func (a Attempt) Type() Type { return TypeAttempt }

func (a Attempt) Fields() Fields {
	f := required(TypeAttempt)
	f[FieldX] = a.X
	f[FieldY] = a.Y
	return f
}

// Answer carries the outcome of an attempt.
type Answer struct {
	Statuses []AnswerStatus

	// At echoes the attempt's coordinates. When nil the coordinate
	// fields are omitted entirely.
	At *Coord
}

// NewAnswer returns a status-only answer.
func NewAnswer(statuses ...AnswerStatus) Answer {
	return Answer{Statuses: statuses}
}

// NewAnswerAt returns an answer echoing the attempt at (x, y).
func NewAnswerAt(x, y int, statuses ...AnswerStatus) Answer {
	return Answer{Statuses: statuses, At: &Coord{X: x, Y: y}}
}

func (a Answer) Type() Type { return TypeAnswer }

func (a Answer) Fields() Fields {
	f := required(TypeAnswer)
	tags := make([]string, len(a.Statuses))
	for i, s := range a.Statuses {
		tags[i] = string(s)
	}
	f[FieldStatus] = tags
	if a.At != nil {
		f[FieldX] = a.At.X
		f[FieldY] = a.At.Y
	}
	return f
}

// Error tells the opponent that its last request was rejected, or that
// the sender is leaving.
type Error struct {
	Status ErrorStatus
}

func (e Error) Type() Type { return TypeError }

func (e Error) Fields() Fields {
	f := required(TypeError)
	f[FieldStatus] = string(e.Status)
	return f
}
