package protocol

import (
	"errors"
	"fmt"
	"io"
	"net"
	"testing"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/stretchr/testify/assert"
)

func TestIsExpectedClose(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"close handshake", wsutil.ClosedError{Code: ws.StatusNormalClosure}, true},
		{"close with another status", wsutil.ClosedError{Code: ws.StatusGoingAway}, true},
		{"wrapped close", fmt.Errorf("read: %w", wsutil.ClosedError{Code: ws.StatusNormalClosure}), true},
		{"eof", io.EOF, true},
		{"wrapped eof", fmt.Errorf("read: %w", io.EOF), true},
		{"our own shutdown", net.ErrClosed, true},
		{"plain failure", errors.New("connection reset"), false},
		{"oversize message", ErrMessageTooBig, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsExpectedClose(tt.err))
		})
	}
}

func TestCloseStatus(t *testing.T) {
	code, reason, ok := CloseStatus(wsutil.ClosedError{Code: ws.StatusNormalClosure, Reason: "done"})
	assert.True(t, ok)
	assert.EqualValues(t, ws.StatusNormalClosure, code)
	assert.Equal(t, "done", reason)

	code, reason, ok = CloseStatus(fmt.Errorf("read: %w", wsutil.ClosedError{Code: ws.StatusGoingAway}))
	assert.True(t, ok)
	assert.EqualValues(t, ws.StatusGoingAway, code)
	assert.Empty(t, reason)

	_, _, ok = CloseStatus(io.EOF)
	assert.False(t, ok)

	_, _, ok = CloseStatus(nil)
	assert.False(t, ok)
}
