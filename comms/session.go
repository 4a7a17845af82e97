package comms

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/yookoala/submarines/protocol"
	"github.com/yookoala/submarines/wire"
)

// BufferSize is the read buffer of a session.
const BufferSize = 1024

// ErrConnectionClosed means the opponent left: it sent ERROR/CLOSED or
// the transport reported closure.
var ErrConnectionClosed = errors.New("connection closed")

// Conn is the transport a session runs on: an ordered, reliable byte
// stream whose reads can be bounded by a deadline. net.Conn satisfies it.
type Conn interface {
	io.ReadWriteCloser
	SetReadDeadline(t time.Time) error
}

// Role tells which side of the connection setup a peer took.
type Role int

const (
	RoleListener Role = iota
	RoleDialer
)

func (r Role) String() string {
	switch r {
	case RoleListener:
		return "listener"
	case RoleDialer:
		return "dialer"
	default:
		return "unknown"
	}
}

// frameReader splits a byte stream into frames ending with
// wire.Terminator. Bytes read before an error are kept, so a read that
// times out halfway through a frame loses nothing.
type frameReader struct {
	r       *bufio.Reader
	pending []byte
}

func newFrameReader(r io.Reader) *frameReader {
	return &frameReader{r: bufio.NewReaderSize(r, BufferSize)}
}

// ReadFrame returns the next frame, terminator included.
func (fr *frameReader) ReadFrame() ([]byte, error) {
	for {
		line, err := fr.r.ReadBytes('\n')
		fr.pending = append(fr.pending, line...)
		if err != nil {
			return nil, err
		}
		if !bytes.HasSuffix(fr.pending, []byte(wire.Terminator)) {
			continue
		}
		frame := fr.pending
		fr.pending = nil
		if len(bytes.TrimSpace(frame)) == 0 {
			// stray blank lines between frames
			continue
		}
		return frame, nil
	}
}

// Session is one peer's end of a match connection.
type Session struct {
	id   string
	role Role
	conn Conn

	codec   wire.Codec
	fr      *frameReader
	metrics *Metrics
	log     *zap.SugaredLogger

	writeLock sync.Mutex
	closeOnce sync.Once
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithSessionLogger sets the session logger.
func WithSessionLogger(l *zap.SugaredLogger) SessionOption {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMetrics sets the metrics the session updates.
func WithMetrics(m *Metrics) SessionOption {
	return func(s *Session) {
		s.metrics = m
	}
}

// NewSession creates a new Session
func NewSession(id string, role Role, conn Conn, codec wire.Codec, opts ...SessionOption) *Session {
	s := &Session{
		id:    id,
		role:  role,
		conn:  conn,
		codec: codec,
		fr:    newFrameReader(conn),
		log:   nopLogger,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("session", id)
	return s
}

// ID returns the session ID
func (s *Session) ID() string {
	return s.id
}

// Role returns how the connection was set up.
func (s *Session) Role() Role {
	return s.role
}

// Metrics returns the session metrics. It may be nil.
func (s *Session) Metrics() *Metrics {
	return s.metrics
}

// Send encodes r and writes it to the peer.
func (s *Session) Send(r protocol.Request) error {
	b, err := s.codec.Encode(r.Fields())
	if err != nil {
		return err
	}

	s.writeLock.Lock()
	defer s.writeLock.Unlock()
	if _, err = s.conn.Write(b); err != nil {
		if isClosed(err) {
			return ErrConnectionClosed
		}
		return err
	}
	s.metrics.IncSent()
	if r.Type() == protocol.TypeError {
		s.metrics.IncErrorsSent()
	}
	s.log.Debugf("sent %s: %s", r.Type(), bytes.TrimSpace(b))
	return nil
}

// Receive reads and decodes the next frame.
//
// It blocks until a frame arrives, the transport closes or ctx is done.
// A context deadline bounds the read and surfaces as
// context.DeadlineExceeded. Closure surfaces as ErrConnectionClosed. A
// frame the codec cannot read returns a *wire.DecodeError and leaves the
// stream positioned at the next frame.
func (s *Session) Receive(ctx context.Context) (protocol.Fields, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	deadline, hasDeadline := ctx.Deadline()
	if err := s.conn.SetReadDeadline(deadline); err != nil {
		if isClosed(err) {
			return nil, ErrConnectionClosed
		}
		return nil, err
	}

	// Cancelling ctx aborts a blocked read. Wait for the callback if it
	// already started so it cannot disturb the next Receive.
	done := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		_ = s.conn.SetReadDeadline(time.Now())
		close(done)
	})
	defer func() {
		if !stop() {
			<-done
		}
	}()

	frame, err := s.fr.ReadFrame()
	if err != nil {
		if errors.Is(err, os.ErrDeadlineExceeded) {
			if cerr := ctx.Err(); cerr != nil {
				return nil, cerr
			}
			if hasDeadline {
				return nil, context.DeadlineExceeded
			}
		}
		if isClosed(err) {
			return nil, ErrConnectionClosed
		}
		return nil, err
	}
	s.metrics.IncReceived()

	fields, err := s.codec.Decode(frame)
	if err != nil {
		s.metrics.IncMalformed()
		s.log.Warnf("malformed frame: %s", err)
		return nil, err
	}
	s.log.Debugf("received: %s", bytes.TrimSpace(frame))
	return protocol.Fields(fields), nil
}

// Close tells the peer the session is over with a best-effort
// ERROR/CLOSED, then closes the transport. It is safe to call more than
// once.
func (s *Session) Close() (err error) {
	s.closeOnce.Do(func() {
		if serr := s.Send(protocol.Error{Status: protocol.StatusClosed}); serr != nil {
			s.log.Debugf("could not announce close: %s", serr)
		}
		err = s.conn.Close()
		s.log.Info("session closed")
	})
	return
}

// isClosed reports whether err means the transport is gone.
func isClosed(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, websocket.ErrCloseSent)
}
