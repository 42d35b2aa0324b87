package console

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseInput(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		action  inputAction
		data    []byte
		wantErr bool
	}{
		{
			name:   "plain text",
			input:  "hello there",
			action: actionText,
			data:   []byte("hello there"),
		},
		{
			name:   "text keeps leading whitespace",
			input:  "  padded",
			action: actionText,
			data:   []byte("  padded"),
		},
		{
			name:   "empty line is ignored",
			input:  "",
			action: actionNone,
		},
		{
			name:   "whitespace only is ignored",
			input:  "   ",
			action: actionNone,
		},
		{
			name:   "binary from hex",
			input:  "/bin deadbeef",
			action: actionBinary,
			data:   []byte{0xde, 0xad, 0xbe, 0xef},
		},
		{
			name:   "binary hex may contain spaces",
			input:  "/bin de ad be ef",
			action: actionBinary,
			data:   []byte{0xde, 0xad, 0xbe, 0xef},
		},
		{
			name:    "binary rejects invalid hex",
			input:   "/bin zz",
			wantErr: true,
		},
		{
			name:    "binary requires an argument",
			input:   "/bin",
			wantErr: true,
		},
		{
			name:   "ping with payload",
			input:  "/ping heartbeat",
			action: actionPing,
			data:   []byte("heartbeat"),
		},
		{
			name:   "ping without payload",
			input:  "/ping",
			action: actionPing,
			data:   []byte{},
		},
		{
			name:   "close",
			input:  "/close",
			action: actionClose,
		},
		{
			name:   "quit",
			input:  "/quit",
			action: actionQuit,
		},
		{
			name:    "unknown command",
			input:   "/frobnicate",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action, data, err := parseInput(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseInput(%q) expected error, got action=%v", tt.input, action)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseInput(%q) error = %v", tt.input, err)
			}
			if action != tt.action {
				t.Errorf("parseInput(%q) action = %v, want %v", tt.input, action, tt.action)
			}
			if !bytes.Equal(data, tt.data) {
				t.Errorf("parseInput(%q) data = %q, want %q", tt.input, data, tt.data)
			}
		})
	}
}

func TestFormatBinary(t *testing.T) {
	short := formatBinary([]byte{0xde, 0xad})
	if short != "0xdead (2 bytes)" {
		t.Errorf("formatBinary(short) = %q", short)
	}

	long := formatBinary(bytes.Repeat([]byte{0xab}, 100))
	if !strings.Contains(long, "(100 bytes)") {
		t.Errorf("formatBinary(long) should report the full length, got %q", long)
	}
	if !strings.Contains(long, "…") {
		t.Errorf("formatBinary(long) should be truncated, got %q", long)
	}
}
