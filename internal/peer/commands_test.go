package peer

import (
	"bytes"
	"testing"
)

func TestMatchCommand(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		cmd     command
		rest    string
	}{
		{"plain text echoes", "hello", cmdEcho, "hello"},
		{"empty payload echoes", "", cmdEcho, ""},
		{"raw with remainder", "RAW abc", cmdRaw, " abc"},
		{"raw with empty remainder", "RAW", cmdRaw, ""},
		{"text", "TEXTpayload", cmdText, "payload"},
		{"ping", "PING hb", cmdPing, " hb"},
		{"close", "CLOSE", cmdClose, ""},
		{"close ignores trailer", "CLOSE now", cmdClose, " now"},
		{"lowercase does not match", "raw abc", cmdEcho, "raw abc"},
		{"shorter than token", "RA", cmdEcho, "RA"},
		{"token mid-payload ignored", "say RAW", cmdEcho, "say RAW"},
		{"first match wins", "RAWTEXT", cmdRaw, "TEXT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, rest := matchCommand([]byte(tt.payload))
			if cmd != tt.cmd {
				t.Errorf("matchCommand(%q) cmd = %v, want %v", tt.payload, cmd, tt.cmd)
			}
			if !bytes.Equal(rest, []byte(tt.rest)) {
				t.Errorf("matchCommand(%q) rest = %q, want %q", tt.payload, rest, tt.rest)
			}
		})
	}
}

func TestCommandString(t *testing.T) {
	names := map[command]string{
		cmdEcho:     "echo",
		cmdRaw:      "raw",
		cmdText:     "text",
		cmdPing:     "ping",
		cmdClose:    "close",
		command(99): "unknown",
	}
	for cmd, want := range names {
		if got := cmd.String(); got != want {
			t.Errorf("command(%d).String() = %q, want %q", cmd, got, want)
		}
	}
}

func BenchmarkMatchCommand(b *testing.B) {
	payload := []byte("an ordinary message that matches no command token")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		matchCommand(payload)
	}
}
