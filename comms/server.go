package comms

import (
	"context"
	"crypto/sha1"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/yookoala/submarines/wire"
)

// Transport names a supported transport.
type Transport string

const (
	TransportTCP       Transport = "tcp"
	TransportWebSocket Transport = "ws"
)

// IsValid reports whether t is supported.
func (t Transport) IsValid() bool {
	return t == TransportTCP || t == TransportWebSocket
}

// Connector establishes the single session of a match.
type Connector interface {
	Connect(ctx context.Context) (*Session, error)
}

// Options holds what both ends of the connection setup need.
type Options struct {
	Transport Transport
	Addr      string
	Codec     wire.Codec
	Logger    *zap.SugaredLogger
	Metrics   *Metrics
}

func (o Options) logger() *zap.SugaredLogger {
	if o.Logger == nil {
		return nopLogger
	}
	return o.Logger
}

func (o Options) codec() wire.Codec {
	if o.Codec == nil {
		return wire.NewJSONCodec()
	}
	return o.Codec
}

func (o Options) newSession(role Role, conn Conn, remote string) *Session {
	id := newSessionID(remote)
	o.logger().Infof("%s session %s established with %s over %s", role, id, remote, o.Transport)
	return NewSession(id, role, conn, o.codec(),
		WithSessionLogger(o.Logger),
		WithMetrics(o.Metrics),
	)
}

var sessionSeq int64

// newSessionID derives a short ID for log correlation.
func newSessionID(remote string) string {
	seq := atomic.AddInt64(&sessionSeq, 1)
	hash := sha1.New()
	hash.Write([]byte(fmt.Sprintf("%d.%s.%d", seq, remote, time.Now().UnixMicro())))
	return fmt.Sprintf("%x", hash.Sum(nil))[0:12]
}

// Listener waits for exactly one peer to connect, then stops listening.
type Listener struct {
	Options

	// OnListen, if set, is called with the bound address once the
	// listener is ready to accept.
	OnListen func(addr net.Addr)
}

// Connect implements Connector.
func (l *Listener) Connect(ctx context.Context) (*Session, error) {
	log := l.logger()

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", l.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", l.Addr, err)
	}
	log.Infof("start listening on %s", ln.Addr().String())
	if l.OnListen != nil {
		l.OnListen(ln.Addr())
	}

	var conn Conn
	var remote string
	switch l.Transport {
	case TransportWebSocket:
		conn, remote, err = acceptWebSocket(ctx, ln, log)
	default:
		conn, remote, err = acceptTCP(ctx, ln)
	}
	if err != nil {
		return nil, err
	}
	return l.newSession(RoleListener, conn, remote), nil
}

func acceptTCP(ctx context.Context, ln net.Listener) (Conn, string, error) {
	defer ln.Close()
	stop := context.AfterFunc(ctx, func() {
		ln.Close()
	})
	defer stop()

	conn, err := ln.Accept()
	if err != nil {
		if cerr := ctx.Err(); cerr != nil {
			return nil, "", cerr
		}
		return nil, "", fmt.Errorf("accept: %w", err)
	}
	return conn, conn.RemoteAddr().String(), nil
}
