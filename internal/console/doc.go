// Package console implements the interactive terminal client for talking
// to a running echo peer.
//
// The console connects as an ordinary WebSocket client, shows a running
// transcript of the conversation, and sends whatever is typed as a text
// message. Slash commands select other frame types:
//
//	/bin <hex>     send the decoded bytes as a binary message
//	/ping [text]   send a ping carrying the given payload
//	/close         start the closing handshake
//	/quit          leave the console
//
// Because the peer interprets message prefixes as commands, typing
// "PING hello" makes the peer ping the console, and "CLOSE" makes it
// close the connection; both show up in the transcript as they happen.
//
// The UI is a Bubble Tea program. All network reads happen on a pump
// goroutine and reach the UI as messages, so the input line stays live
// while frames arrive.
package console
