// Package validator checks incoming requests against what the match
// expects next.
//
// A validator that refuses a request tells the opponent why by sending an
// ERROR before it returns. Closure and errors reported by the opponent are
// surfaced without a reply.
package validator

import (
	"context"
	"errors"
	"fmt"

	"github.com/yookoala/submarines/board"
	"github.com/yookoala/submarines/comms"
	"github.com/yookoala/submarines/protocol"
)

// ErrConnectionClosed is returned when the opponent sent ERROR/CLOSED.
var ErrConnectionClosed = comms.ErrConnectionClosed

// Replier sends the ERROR that explains a rejection. *comms.Session
// implements it.
type Replier interface {
	Send(r protocol.Request) error
}

// RejectedError means the request was refused and the opponent has been
// told with an ERROR carrying Status.
type RejectedError struct {
	Status protocol.ErrorStatus
	Reason string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("rejected request (%s): %s", e.Status, e.Reason)
}

// PeerError is an ERROR the opponent sent, other than CLOSED.
type PeerError struct {
	Status protocol.ErrorStatus
}

func (e *PeerError) Error() string {
	return fmt.Sprintf("opponent reported %s", e.Status)
}

// Validator checks one kind of request.
type Validator interface {
	// Validate returns nil if f is acceptable.
	Validate(ctx context.Context, f protocol.Fields) error

	// IsValid reports whether f is acceptable. Rejections and peer
	// errors read as (false, nil). The error is non-nil only on closure
	// or when the rejection could not be sent.
	IsValid(ctx context.Context, f protocol.Fields) (bool, error)
}

// Reject tells the opponent that its request was refused with status.
// It returns a *RejectedError, or the send error if the reply failed.
func Reject(ctx context.Context, r Replier, status protocol.ErrorStatus, reason string) error {
	log := comms.GetLogger(ctx)
	log.Infow("rejecting request", "status", string(status), "reason", reason)
	if m, ok := r.(interface{ Metrics() *comms.Metrics }); ok {
		m.Metrics().IncRejected()
	}
	if err := r.Send(protocol.Error{Status: status}); err != nil {
		return fmt.Errorf("reply %s: %w", status, err)
	}
	return &RejectedError{Status: status, Reason: reason}
}

func isValid(err error) (bool, error) {
	if err == nil {
		return true, nil
	}
	var rejected *RejectedError
	var peer *PeerError
	if errors.As(err, &rejected) || errors.As(err, &peer) {
		return false, nil
	}
	return false, err
}

// checkType runs the checks every validator shares.
func checkType(ctx context.Context, r Replier, f protocol.Fields, want protocol.Type) error {
	typ, ok := f.Type()
	if !ok {
		return Reject(ctx, r, protocol.StatusUnexpected, "missing TYPE")
	}
	if !typ.IsValid() {
		return Reject(ctx, r, protocol.StatusUnexpected, fmt.Sprintf("unknown TYPE %q", typ))
	}
	if typ == protocol.TypeError {
		raw, _ := f.String(protocol.FieldStatus)
		status := protocol.ErrorStatus(raw)
		if status == protocol.StatusClosed {
			return ErrConnectionClosed
		}
		if !status.IsValid() {
			return Reject(ctx, r, protocol.StatusUnexpected, fmt.Sprintf("unknown ERROR status %q", raw))
		}
		return &PeerError{Status: status}
	}
	if typ == want {
		return nil
	}
	if typ == protocol.TypeAttempt && want == protocol.TypeAnswer {
		return Reject(ctx, r, protocol.StatusAttemptNotInTurn, "attempt while awaiting answer")
	}
	return Reject(ctx, r, protocol.StatusUnexpected, fmt.Sprintf("want %s, have %s", want, typ))
}

// Ready validates READY.
type Ready struct {
	r            Replier
	requireNonce bool
}

// ReadyOption configures a Ready validator.
type ReadyOption func(*Ready)

// RequireNonce makes NONCE mandatory.
func RequireNonce() ReadyOption {
	return func(v *Ready) {
		v.requireNonce = true
	}
}

// NewReady returns a READY validator replying through r.
func NewReady(r Replier, opts ...ReadyOption) *Ready {
	v := &Ready{r: r}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate implements Validator.
func (v *Ready) Validate(ctx context.Context, f protocol.Fields) error {
	if err := checkType(ctx, v.r, f, protocol.TypeReady); err != nil {
		return err
	}
	if v.requireNonce {
		if nonce, _ := f.String(protocol.FieldNonce); nonce == "" {
			return Reject(ctx, v.r, protocol.StatusUnexpected, "missing NONCE")
		}
	}
	return nil
}

// IsValid implements Validator.
func (v *Ready) IsValid(ctx context.Context, f protocol.Fields) (bool, error) {
	return isValid(v.Validate(ctx, f))
}

// Attempt validates ATTEMPT.
type Attempt struct {
	r Replier
}

// NewAttempt returns an ATTEMPT validator replying through r.
func NewAttempt(r Replier) *Attempt {
	return &Attempt{r: r}
}

// Validate implements Validator.
func (v *Attempt) Validate(ctx context.Context, f protocol.Fields) error {
	if err := checkType(ctx, v.r, f, protocol.TypeAttempt); err != nil {
		return err
	}
	x, okX := f.Int(protocol.FieldX)
	y, okY := f.Int(protocol.FieldY)
	if !okX || !okY {
		return Reject(ctx, v.r, protocol.StatusUnexpected, "coordinates missing or not integers")
	}
	if x < 0 || x >= board.BoardSize || y < 0 || y >= board.BoardSize {
		return Reject(ctx, v.r, protocol.StatusOutOfRange, fmt.Sprintf("(%d, %d) is off the board", x, y))
	}
	return nil
}

// IsValid implements Validator.
func (v *Attempt) IsValid(ctx context.Context, f protocol.Fields) (bool, error) {
	return isValid(v.Validate(ctx, f))
}

// Answer validates ANSWER.
type Answer struct {
	r Replier
}

// NewAnswer returns an ANSWER validator replying through r.
func NewAnswer(r Replier) *Answer {
	return &Answer{r: r}
}

// Validate implements Validator.
func (v *Answer) Validate(ctx context.Context, f protocol.Fields) error {
	if err := checkType(ctx, v.r, f, protocol.TypeAnswer); err != nil {
		return err
	}
	tags, ok := f.Strings(protocol.FieldStatus)
	if !ok {
		return Reject(ctx, v.r, protocol.StatusUnexpected, "STATUS missing or not a list")
	}
	if _, ok := protocol.ParseAnswerStatuses(tags); !ok {
		return Reject(ctx, v.r, protocol.StatusUnexpected, fmt.Sprintf("bad STATUS %v", tags))
	}
	return nil
}

// IsValid implements Validator.
func (v *Answer) IsValid(ctx context.Context, f protocol.Fields) (bool, error) {
	return isValid(v.Validate(ctx, f))
}
