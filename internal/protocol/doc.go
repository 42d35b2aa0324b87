// Package protocol wraps one WebSocket connection behind the small set of
// operations the echo loop needs.
//
// The package is the boundary between the connection state machine in
// internal/peer and the wire protocol: peer code never touches frames,
// masking or the HTTP upgrade, it only sees Sessions, Opcodes and an
// expected-close classification. The wire work is done by gobwas/ws.
//
// # Session Operations
//
// A Session is created around an established net.Conn in one of two roles:
//
//	s := protocol.NewServer(conn, protocol.Config{Agent: "wsecho-server"})
//	s := protocol.NewClient(conn, "192.168.1.20:9001", protocol.Config{Agent: "wsecho-client"})
//
// and then exposes:
//
//   - Handshake: server-accept or client-upgrade side of the HTTP upgrade,
//     with the identity header (Server or User-Agent) from Config.Agent.
//   - Read: one complete message into a bytes.Buffer, reporting its opcode.
//     Fragmented messages are reassembled; interleaved pings are answered;
//     incoming text is UTF-8 validated; messages are size-capped.
//   - Write: one complete message with a chosen opcode.
//   - Ping: a ping frame with a payload of at most MaxPingPayload bytes.
//   - Close: the outgoing half of the close handshake, empty payload.
//   - WriteRaw: bytes straight onto the transport with no framing.
//
// # Error Classification
//
// IsExpectedClose separates "the peer hung up normally" (close handshake,
// EOF, our own teardown) from real transport and protocol failures. Callers
// terminate silently on the former and report the latter.
//
// # Concurrency
//
// Sessions are intentionally not synchronized. Each Session is owned by one
// connection session which issues at most one operation at a time through
// its serializing lane.
package protocol
