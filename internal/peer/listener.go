package peer

import (
	"errors"
	"fmt"
	"net"

	"github.com/muurk/wsecho/internal/logging"
)

// Listener accepts inbound connections and spawns a server-role session per
// connection. Sessions are fire-and-forget: the listener keeps no reference
// to them and their failures never reach it.
type Listener struct {
	ln      net.Listener
	pool    *Pool
	verbose bool
}

// NewListener binds addr and starts listening. A bind failure aborts
// startup; there is nothing to retry.
func NewListener(addr string, pool *Pool, verbose bool) (*Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to bind %s: %w", addr, err)
	}
	return &Listener{ln: ln, pool: pool, verbose: verbose}, nil
}

// Addr returns the bound address, useful when addr was ":0".
func (l *Listener) Addr() net.Addr {
	return l.ln.Addr()
}

// Port returns the bound TCP port.
func (l *Listener) Port() int {
	if addr, ok := l.ln.Addr().(*net.TCPAddr); ok {
		return addr.Port
	}
	return 0
}

// AcceptLoop accepts connections until the listener is closed. Session
// construction does not block the loop: Run posts the session's handshake
// and returns, so the loop is back in Accept before the session does any
// work. Closing the listener surfaces here as a clean stop, not an error.
func (l *Listener) AcceptLoop() error {
	for {
		conn, err := l.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				logging.Info("Listener closed")
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}

		logging.LogConnection(conn.RemoteAddr().String(), "accepted")
		NewServerSession(conn, l.pool, l.verbose).Run()
	}
}

// Close shuts the listening endpoint down; the pending accept fails with a
// cancellation that AcceptLoop treats as a clean stop.
func (l *Listener) Close() error {
	return l.ln.Close()
}
