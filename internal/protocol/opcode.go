package protocol

import "github.com/gobwas/ws"

// Opcode identifies the frame type of a WebSocket data message.
type Opcode byte

// Data message opcodes
const (
	OpText   Opcode = Opcode(ws.OpText)
	OpBinary Opcode = Opcode(ws.OpBinary)
)

// MaxPingPayload is the largest payload a ping frame may carry. Control
// frames are capped at 125 bytes by RFC 6455.
const MaxPingPayload = ws.MaxControlFramePayloadSize

// String returns a human-readable opcode name
func (o Opcode) String() string {
	switch o {
	case OpText:
		return "text"
	case OpBinary:
		return "binary"
	default:
		return "unknown"
	}
}
