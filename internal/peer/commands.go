package peer

import "bytes"

// command is the action a message payload asks for.
type command int

const (
	cmdEcho command = iota // no token matched: echo the payload back
	cmdRaw
	cmdText
	cmdPing
	cmdClose
)

// commandTokens in match order. Only the first match applies, so a payload
// starting with "RAW" never reaches the later tokens.
var commandTokens = []struct {
	token []byte
	cmd   command
}{
	{[]byte("RAW"), cmdRaw},
	{[]byte("TEXT"), cmdText},
	{[]byte("PING"), cmdPing},
	{[]byte("CLOSE"), cmdClose},
}

// matchCommand checks payload for a leading command token. On a match the
// token is consumed and the remainder returned; otherwise the payload comes
// back untouched. Matching is exact and case-sensitive, and a payload
// shorter than a token cannot match it. There is no escaping: a message
// that merely happens to begin with a token is treated as that command.
func matchCommand(payload []byte) (command, []byte) {
	for _, t := range commandTokens {
		if bytes.HasPrefix(payload, t.token) {
			return t.cmd, payload[len(t.token):]
		}
	}
	return cmdEcho, payload
}

// String returns a human-readable command name
func (c command) String() string {
	switch c {
	case cmdEcho:
		return "echo"
	case cmdRaw:
		return "raw"
	case cmdText:
		return "text"
	case cmdPing:
		return "ping"
	case cmdClose:
		return "close"
	default:
		return "unknown"
	}
}
