package peer

import (
	"bytes"
	"net"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/muurk/wsecho/internal/logging"
	"github.com/muurk/wsecho/internal/protocol"
)

// Role selects which side of a connection a session drives.
type Role int

const (
	RoleServer Role = iota
	RoleClient
)

// String returns a human-readable role name
func (r Role) String() string {
	switch r {
	case RoleServer:
		return "server"
	case RoleClient:
		return "client"
	default:
		return "unknown"
	}
}

// Identity header values announced during the handshake: the Server header
// in server role, User-Agent in client role.
const (
	serverAgent = "wsecho-server"
	clientAgent = "wsecho-client"
)

// Session ids come from a process-wide counter and exist purely for log
// correlation.
var sessionIDCounter atomic.Int64

// phase names the completion a session is waiting on. It is the single
// dispatch tag for resume: a session has exactly one operation in flight,
// and resume only ever runs on the session's strand, so phase needs no
// locking.
type phase int

const (
	phaseConnect   phase = iota // client role: transport dial pending
	phaseHandshake              // WebSocket upgrade pending
	phaseRead                   // message read pending
	phaseWrite                  // echo/raw/ping write pending; next step is a read
	phaseClose                  // close send pending; next step is terminal
)

// Session drives one WebSocket connection through handshake, read,
// command-dispatch and write phases until the peer closes or an operation
// fails. Once constructed it owns its connection outright and holds no
// reference back to the listener or host that spawned it; the only thing
// keeping it alive is the continuation of its in-flight operation.
type Session struct {
	id      int64
	role    Role
	remote  string // dial target, client role only
	verbose bool

	strand *strand
	ws     *protocol.Session // nil in client role until the dial completes

	phase  phase
	opName string          // operation in flight, named in failure reports
	buf    bytes.Buffer    // incoming message, cleared at every read start
	lastOp protocol.Opcode // opcode of the most recent complete message

	done chan struct{}
}

// NewServerSession wraps a connection the listener just accepted. Nothing
// happens until Run posts the handshake.
func NewServerSession(conn net.Conn, pool *Pool, verbose bool) *Session {
	return &Session{
		id:      sessionIDCounter.Add(1),
		role:    RoleServer,
		verbose: verbose,
		strand:  newStrand(pool),
		ws:      protocol.NewServer(conn, protocol.Config{Agent: serverAgent}),
		done:    make(chan struct{}),
	}
}

// NewClientSession prepares a session that will dial target ("host:port")
// when Run is called.
func NewClientSession(target string, pool *Pool, verbose bool) *Session {
	return &Session{
		id:      sessionIDCounter.Add(1),
		role:    RoleClient,
		remote:  target,
		verbose: verbose,
		strand:  newStrand(pool),
		done:    make(chan struct{}),
	}
}

// ID returns the session's diagnostic id.
func (s *Session) ID() int64 { return s.id }

// Done is closed once the session reaches its terminal state.
func (s *Session) Done() <-chan struct{} { return s.done }

// Run posts the session's first operation and returns immediately.
func (s *Session) Run() {
	logging.Debug("Session starting",
		zap.Int64("session", s.id),
		zap.String("role", s.role.String()),
	)
	switch s.role {
	case RoleServer:
		s.phase = phaseHandshake
		s.begin("handshake", s.ws.Handshake)
	case RoleClient:
		s.phase = phaseConnect
		s.begin("connect", s.dial)
	}
}

func (s *Session) dial() error {
	conn, err := net.Dial("tcp", s.remote)
	if err != nil {
		return err
	}
	s.ws = protocol.NewClient(conn, s.remote, protocol.Config{Agent: clientAgent})
	return nil
}

// begin issues op as the session's single outstanding asynchronous
// operation. The completion is funneled through the strand, so resume never
// races itself and the issuing worker is freed immediately.
func (s *Session) begin(name string, op func() error) {
	s.opName = name
	go func() {
		err := op()
		s.strand.post(func() { s.resume(err) })
	}()
}

// resume is the session's only continuation: every completed operation
// lands here, and phase alone decides the next step.
func (s *Session) resume(err error) {
	switch s.phase {
	case phaseConnect:
		if err != nil {
			s.fail("connect", err)
			return
		}
		s.phase = phaseHandshake
		s.begin("handshake", s.ws.Handshake)

	case phaseHandshake:
		if err != nil {
			s.fail("handshake", err)
			return
		}
		logging.LogConnection(s.ws.RemoteAddr(), "websocket_established")
		s.startRead()

	case phaseRead:
		if err != nil {
			if protocol.IsExpectedClose(err) {
				s.terminate()
				return
			}
			s.fail("read", err)
			return
		}
		s.dispatch()

	case phaseWrite:
		if err != nil {
			s.fail(s.opName, err)
			return
		}
		s.startRead()

	case phaseClose:
		if err != nil && !protocol.IsExpectedClose(err) {
			s.fail("close", err)
			return
		}
		s.terminate()
	}
}

// startRead clears the buffer and begins reading the next message.
func (s *Session) startRead() {
	s.phase = phaseRead
	s.buf.Reset()
	s.begin("read", func() error {
		op, err := s.ws.Read(&s.buf)
		if err == nil {
			s.lastOp = op
		}
		return err
	})
}

// dispatch inspects the message just read and starts the reply operation.
func (s *Session) dispatch() {
	cmd, rest := matchCommand(s.buf.Bytes())
	logging.LogMessage(s.id, "received", s.lastOp.String(), s.buf.Bytes())
	logging.Debug("Dispatching command",
		zap.Int64("session", s.id),
		zap.String("command", cmd.String()),
	)

	switch cmd {
	case cmdRaw:
		s.phase = phaseWrite
		s.begin("raw write", func() error { return s.ws.WriteRaw(rest) })

	case cmdText:
		s.phase = phaseWrite
		s.begin("write", func() error { return s.ws.Write(protocol.OpText, rest) })

	case cmdPing:
		payload := rest
		if len(payload) > protocol.MaxPingPayload {
			payload = payload[:protocol.MaxPingPayload]
		}
		s.phase = phaseWrite
		s.begin("ping", func() error { return s.ws.Ping(payload) })

	case cmdClose:
		s.phase = phaseClose
		s.begin("close", s.ws.Close)

	default:
		echo := s.buf.Bytes()
		op := s.lastOp
		s.phase = phaseWrite
		s.begin("write", func() error { return s.ws.Write(op, echo) })
	}
}

// fail reports a failed operation and ends the session. Reports carry the
// operation name and session id so interleaved sessions can be told apart
// in the log; nothing is reported unless the session is verbose.
func (s *Session) fail(op string, err error) {
	if s.verbose {
		logging.LogSessionFailure(s.id, op, err)
	}
	s.terminate()
}

// terminate releases the transport and marks the session done. The session
// object itself is collected once the last continuation referencing it
// returns; nothing tracks it.
func (s *Session) terminate() {
	if s.ws != nil {
		_ = s.ws.Shutdown()
	}
	logging.Debug("Session finished", zap.Int64("session", s.id))
	close(s.done)
}
