package protocol

import (
	"bytes"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
)

// DefaultMaxMessage caps incoming messages at 64 MiB. An oversized message
// terminates the session with ErrMessageTooBig instead of growing the buffer
// without bound.
const DefaultMaxMessage = 64 << 20

// Config carries the per-session protocol options.
type Config struct {
	// Agent is the identifying header value sent with the handshake:
	// the Server header in server role, User-Agent in client role.
	// Empty means no identity header is sent.
	Agent string

	// MaxMessage bounds the size of one incoming message in bytes.
	// Zero means DefaultMaxMessage.
	MaxMessage int64
}

// Session wraps one WebSocket connection in either role. It exposes the
// handshake, message read/write, ping, close and raw-transport operations
// the echo loop is built from.
//
// A Session is not safe for concurrent use: the owning connection session
// issues at most one operation at a time, so no locking is done here.
type Session struct {
	conn   net.Conn
	src    io.Reader // conn, or the dialer's buffered reader when it holds early frames
	side   ws.State
	target *url.URL // client role dial target, nil for server role
	agent  string
	max    int64
	rd     *wsutil.Reader
	ctrl   wsutil.FrameHandlerFunc
}

// NewServer wraps an accepted connection in a server-role session.
// The WebSocket upgrade is not performed until Handshake is called.
func NewServer(conn net.Conn, cfg Config) *Session {
	return newSession(conn, ws.StateServerSide, nil, cfg)
}

// NewClient wraps an established outbound connection in a client-role
// session. target is the remote "host:port"; the handshake requests the
// resource path "/" on it.
func NewClient(conn net.Conn, target string, cfg Config) *Session {
	u := &url.URL{Scheme: "ws", Host: target, Path: "/"}
	return newSession(conn, ws.StateClientSide, u, cfg)
}

func newSession(conn net.Conn, side ws.State, target *url.URL, cfg Config) *Session {
	max := cfg.MaxMessage
	if max <= 0 {
		max = DefaultMaxMessage
	}
	return &Session{
		conn:   conn,
		src:    conn,
		side:   side,
		target: target,
		agent:  cfg.Agent,
		max:    max,
	}
}

// Handshake performs the role-appropriate side of the WebSocket upgrade on
// the underlying connection. It must complete successfully before any
// message operation is issued.
func (s *Session) Handshake() error {
	if s.side == ws.StateClientSide {
		return s.handshakeClient()
	}
	return s.handshakeServer()
}

func (s *Session) handshakeServer() error {
	u := ws.Upgrader{
		Header: s.identityHeader("Server"),
	}
	if _, err := u.Upgrade(s.conn); err != nil {
		return fmt.Errorf("websocket upgrade: %w", err)
	}
	s.initReader()
	return nil
}

func (s *Session) handshakeClient() error {
	d := ws.Dialer{
		Header: s.identityHeader("User-Agent"),
	}
	br, _, err := d.Upgrade(s.conn, s.target)
	if err != nil {
		return fmt.Errorf("websocket upgrade: %w", err)
	}
	// The dialer hands back a buffered reader only when the server sent
	// frames on the heels of its 101 response; those bytes must be
	// consumed before reading from the connection again.
	if br != nil {
		s.src = br
	}
	s.initReader()
	return nil
}

func (s *Session) identityHeader(key string) ws.HandshakeHeader {
	if s.agent == "" {
		return nil
	}
	return ws.HandshakeHeaderHTTP(http.Header{key: []string{s.agent}})
}

func (s *Session) initReader() {
	// Control frames are answered inline: ping gets a pong, close gets the
	// close echo and surfaces as wsutil.ClosedError. OnIntermediate covers
	// only controls arriving between fragments; Read invokes the same
	// handler for the ones NextFrame returns directly.
	s.ctrl = wsutil.ControlFrameHandler(s.conn, s.side)
	s.rd = &wsutil.Reader{
		Source:         s.src,
		State:          s.side,
		CheckUTF8:      true,
		OnIntermediate: s.ctrl,
	}
}

// Read reads one complete message into buf and reports its opcode. The
// message may span several frames; reassembly, unmasking and UTF-8
// validation are handled here. A close from the peer surfaces as
// wsutil.ClosedError, which IsExpectedClose recognizes.
func (s *Session) Read(buf *bytes.Buffer) (Opcode, error) {
	for {
		hdr, err := s.rd.NextFrame()
		if err != nil {
			return 0, err
		}
		if hdr.OpCode.IsControl() {
			if err := s.ctrl(hdr, s.rd); err != nil {
				return 0, err
			}
			continue
		}

		n, err := io.Copy(buf, io.LimitReader(s.rd, s.max+1))
		if err != nil {
			return 0, err
		}
		if n > s.max {
			return 0, ErrMessageTooBig
		}
		return Opcode(hdr.OpCode), nil
	}
}

// Write sends one complete message with the given opcode, masked when in
// client role.
func (s *Session) Write(op Opcode, p []byte) error {
	return wsutil.WriteMessage(s.conn, s.side, ws.OpCode(op), p)
}

// WriteRaw writes p directly on the transport, bypassing WebSocket framing
// entirely. The bytes land inside the peer's frame parser as-is.
func (s *Session) WriteRaw(p []byte) error {
	_, err := s.conn.Write(p)
	return err
}

// Ping sends a ping frame carrying p. The caller bounds p to
// MaxPingPayload.
func (s *Session) Ping(p []byte) error {
	return wsutil.WriteMessage(s.conn, s.side, ws.OpPing, p)
}

// Close initiates the protocol close handshake with an empty payload.
func (s *Session) Close() error {
	return wsutil.WriteMessage(s.conn, s.side, ws.OpClose, nil)
}

// Shutdown tears down the underlying transport connection.
func (s *Session) Shutdown() error {
	return s.conn.Close()
}

// RemoteAddr returns the remote end of the connection for logging.
func (s *Session) RemoteAddr() string {
	if addr := s.conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return ""
}
