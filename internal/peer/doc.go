// Package peer implements the asynchronous echo peer: the session state
// machine, the worker pool and strands that drive it, and the host that
// ties listener, sessions, and discovery together.
//
// The same Session type serves both roles. A server session is created
// from an accepted connection and starts at the handshake; a client
// session is created from a target address and starts at the dial. After
// the handshake both run the identical read/dispatch loop.
//
// # Session Lifecycle
//
// A session moves through a small set of phases, one outstanding
// operation at a time:
//
//	connect -> handshake -> read <-> write
//	                           \-> close (terminal)
//
// Each operation runs on its own short-lived goroutine; its completion
// is posted to the session's strand, which resumes the state machine.
// The phase field names the operation in flight, so a completion is
// always interpreted against the step that issued it. No session state
// is touched outside strand-executed functions.
//
// # Command Dispatch
//
// An inbound message is matched against command prefixes in a fixed
// order before echoing:
//
//	RAW   write the remainder straight to the transport, no framing
//	TEXT  send the remainder as a text message
//	PING  send a ping carrying the remainder, capped at 125 bytes
//	CLOSE start the closing handshake and end the session
//
// Anything else is echoed back with the opcode it arrived with. Matching
// is exact byte comparison at the start of the payload; there is no
// escape mechanism, so a payload that begins with a command word is
// always a command.
//
// # Execution Model
//
// A fixed pool of workers executes completions for every session. Each
// session owns a strand that serializes its completions: tasks posted to
// a strand run one at a time and in order, but different sessions run
// concurrently on the pool. Posting never blocks the poster.
//
// # Failure Handling
//
// A clean peer close (close frame or EOF) ends the session silently.
// Any other operation failure tears the session down; with verbose
// reporting enabled the failing operation and error are logged first.
// A failed bind is the only fatal error a host reports.
//
// # Shutdown
//
// Host.Shutdown closes the listener, withdraws the mDNS registration,
// and drains the worker pool with a bounded wait. Sessions are never
// tracked or force-closed; one parked on a silent peer simply never
// resumes and is reclaimed when the process exits.
package peer
