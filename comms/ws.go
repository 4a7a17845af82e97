package comms

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// WSPath is the route a WebSocket peer connects to.
const WSPath = "/peer"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  BufferSize,
	WriteBufferSize: BufferSize,
	CheckOrigin: func(r *http.Request) bool {
		// peers are not browsers
		return true
	},
}

// wsConn presents a WebSocket connection as a byte stream. A read pump
// moves incoming messages into a channel so that a read deadline only
// abandons the wait, never the connection.
type wsConn struct {
	ws *websocket.Conn

	in   chan []byte
	done chan struct{}
	buf  []byte

	mu       sync.Mutex
	deadline time.Time
	wake     chan struct{}

	writeLock sync.Mutex
	closeOnce sync.Once
}

func newWSConn(ws *websocket.Conn) *wsConn {
	c := &wsConn{
		ws:   ws,
		in:   make(chan []byte, 16),
		done: make(chan struct{}),
		wake: make(chan struct{}),
	}
	ws.SetReadLimit(1 << 20) // 1MB
	go c.readPump()
	return c
}

// readPump runs in its own goroutine until the connection fails.
func (c *wsConn) readPump() {
	defer close(c.in)
	for {
		_, payload, err := c.ws.ReadMessage()
		if err != nil {
			return
		}
		select {
		case c.in <- payload:
		case <-c.done:
			return
		}
	}
}

// Read implements io.Reader.
func (c *wsConn) Read(p []byte) (int, error) {
	for len(c.buf) == 0 {
		b, err := c.next()
		if err != nil {
			return 0, err
		}
		c.buf = b
	}
	n := copy(p, c.buf)
	c.buf = c.buf[n:]
	return n, nil
}

// next waits for the next message, honouring the read deadline.
func (c *wsConn) next() ([]byte, error) {
	for {
		c.mu.Lock()
		deadline, wake := c.deadline, c.wake
		c.mu.Unlock()

		var timer *time.Timer
		var timeout <-chan time.Time
		if !deadline.IsZero() {
			d := time.Until(deadline)
			if d <= 0 {
				return nil, os.ErrDeadlineExceeded
			}
			timer = time.NewTimer(d)
			timeout = timer.C
		}

		select {
		case b, ok := <-c.in:
			stopTimer(timer)
			if !ok {
				return nil, io.EOF
			}
			return b, nil
		case <-timeout:
			return nil, os.ErrDeadlineExceeded
		case <-wake:
			// deadline changed; wait again
			stopTimer(timer)
		case <-c.done:
			stopTimer(timer)
			return nil, net.ErrClosed
		}
	}
}

func stopTimer(t *time.Timer) {
	if t != nil {
		t.Stop()
	}
}

// Write sends p as one text message.
func (c *wsConn) Write(p []byte) (int, error) {
	c.writeLock.Lock()
	defer c.writeLock.Unlock()
	select {
	case <-c.done:
		return 0, net.ErrClosed
	default:
	}
	c.ws.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if err := c.ws.WriteMessage(websocket.TextMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// SetReadDeadline implements Conn.
func (c *wsConn) SetReadDeadline(t time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deadline = t
	close(c.wake)
	c.wake = make(chan struct{})
	return nil
}

// Close sends a close frame and closes the connection.
func (c *wsConn) Close() (err error) {
	c.closeOnce.Do(func() {
		c.writeLock.Lock()
		_ = c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		close(c.done)
		c.writeLock.Unlock()
		err = c.ws.Close()
	})
	return
}

// acceptWebSocket serves ln until one peer upgrades on WSPath. Later
// peers are turned away.
func acceptWebSocket(ctx context.Context, ln net.Listener, log *zap.SugaredLogger) (Conn, string, error) {
	accepted := make(chan *websocket.Conn, 1)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Get(WSPath, func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warnf("upgrade error: %v", err)
			return
		}
		select {
		case accepted <- ws:
		default:
			log.Warnf("turning away extra peer %s", r.RemoteAddr)
			_ = ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "match in progress"),
				time.Now().Add(time.Second))
			ws.Close()
		}
	})

	srv := &http.Server{Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Warnf("websocket listener: %v", err)
		}
	}()
	// Upgraded connections are hijacked, so closing the server leaves
	// the accepted peer alone.
	defer srv.Close()

	select {
	case ws := <-accepted:
		return newWSConn(ws), ws.RemoteAddr().String(), nil
	case <-ctx.Done():
		return nil, "", ctx.Err()
	}
}

func dialWebSocket(ctx context.Context, addr string) (Conn, error) {
	url := fmt.Sprintf("ws://%s%s", addr, WSPath)
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return newWSConn(ws), nil
}
