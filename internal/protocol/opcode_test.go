package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpcodeString(t *testing.T) {
	assert.Equal(t, "text", OpText.String())
	assert.Equal(t, "binary", OpBinary.String())
	assert.Equal(t, "unknown", Opcode(0x05).String())
}

func TestMaxPingPayload(t *testing.T) {
	// RFC 6455 section 5.5 caps control frame payloads.
	assert.Equal(t, 125, MaxPingPayload)
}
