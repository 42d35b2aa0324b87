package protocol

import (
	"errors"
	"io"
	"net"

	"github.com/gobwas/ws/wsutil"
)

// ErrMessageTooBig indicates an incoming message exceeded the configured
// size limit. The session is terminated; nothing of the message is echoed.
var ErrMessageTooBig = errors.New("incoming message exceeds size limit")

// IsExpectedClose reports whether err means the peer ended the session
// normally rather than something failing. That covers the protocol close
// handshake (any status code), the peer shutting down the underlying
// connection, and our own teardown racing a pending operation. Expected
// closes terminate a session silently; everything else is reported.
func IsExpectedClose(err error) bool {
	if err == nil {
		return false
	}

	// Close handshake completed by the control handler
	var closed wsutil.ClosedError
	if errors.As(err, &closed) {
		return true
	}

	// Peer shut the transport down between messages
	if errors.Is(err, io.EOF) {
		return true
	}

	// Our own side closed the connection out from under a pending operation
	return errors.Is(err, net.ErrClosed)
}

// CloseStatus extracts the close handshake status code from err, if err
// carries one. ok is false when err was not a protocol close.
func CloseStatus(err error) (code uint16, reason string, ok bool) {
	var closed wsutil.ClosedError
	if errors.As(err, &closed) {
		return uint16(closed.Code), closed.Reason, true
	}
	return 0, "", false
}
