package comms

import (
	"context"
	"fmt"
	"net"
	"strings"
)

// Dialer connects to a listening peer.
type Dialer struct {
	Options
}

// Connect implements Connector.
func (d *Dialer) Connect(ctx context.Context) (*Session, error) {
	addr := dialAddr(d.Addr)

	var conn Conn
	var err error
	switch d.Transport {
	case TransportWebSocket:
		conn, err = dialWebSocket(ctx, addr)
	default:
		var nd net.Dialer
		conn, err = nd.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", addr, err)
	}
	return d.newSession(RoleDialer, conn, addr), nil
}

// dialAddr turns a bare ":port" into a loopback address.
func dialAddr(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "localhost" + addr
	}
	return addr
}
