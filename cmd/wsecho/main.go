// Wsecho is a WebSocket echo peer that runs as either a server or a client.
//
// In server mode it accepts any number of connections and echoes every
// message back; in client mode it opens a single connection to a remote
// echo server and does the same. Both sides obey in-band commands (RAW,
// TEXT, PING, CLOSE) carried in message payloads, which makes the tool a
// convenient fixture for exercising WebSocket implementations.
//
// Usage:
//
//	wsecho serve [flags]
//	wsecho connect <host:port> [flags]
//	wsecho console <host:port> [flags]
//	wsecho scan [flags]
//
// See 'wsecho --help' for available options.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/wsecho/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "wsecho",
	Short: "WebSocket Echo Peer",
	Long: `A WebSocket echo peer that runs as either a server or a client.

The server accepts any number of concurrent connections; the client opens
a single connection to a remote server. Either way each session echoes
every message back with its original opcode unless the payload starts
with one of the in-band commands:

  RAW <data>    write <data> straight to the transport, without framing
  TEXT <data>   send <data> as a text message
  PING <data>   send a ping carrying <data> (truncated to 125 bytes)
  CLOSE         perform the closing handshake and end the session

Servers can announce themselves over mDNS so that 'wsecho scan' and the
--discover flag can find them on the local network.`,
	Version: version.Version,
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("wsecho %s\n", version.Full())
	},
}
