package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/wsecho/internal/config"
	"github.com/muurk/wsecho/internal/console"
	"github.com/muurk/wsecho/internal/discovery"
	"github.com/muurk/wsecho/internal/logging"
	"github.com/muurk/wsecho/internal/peer"
)

// Command flags
var (
	logLevel    string
	workers     int
	verbose     bool
	listenAddr  string
	advertise   bool
	instance    string
	discover    bool
	scanTimeout int
)

func init() {
	// Common flags shared by the peer commands (persistent on root)
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0, "Worker pool size (0 = one per CPU)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Report session failures")

	// Add subcommands directly to root
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(connectCmd)
	rootCmd.AddCommand(consoleCmd)
	rootCmd.AddCommand(scanCmd)
}

// serveCmd runs the echo server
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run an echo server",
	Long: `Run a WebSocket echo server.

The server accepts any number of concurrent connections and runs the
echo loop on each until the peer closes or fails. With --advertise the
server registers itself over mDNS so clients on the local network can
find it with 'wsecho scan' or '--discover'.`,
	Example: `  # Serve on the default port
  wsecho serve

  # Serve on a specific address with more workers
  wsecho serve --listen :9100 --workers 8

  # Serve without announcing over mDNS
  wsecho serve --advertise=false`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "Bind address (default from config, then :9001)")
	serveCmd.Flags().BoolVar(&advertise, "advertise", true, "Announce the server over mDNS")
	serveCmd.Flags().StringVar(&instance, "instance", "", "mDNS instance name (default: hostname)")
}

func runServe(cmd *cobra.Command, args []string) error {
	prefs, err := loadPreferences()
	if err != nil {
		return err
	}
	if err := initLogging(cmd, prefs, "info"); err != nil {
		return err
	}

	listen := resolveString(cmd, "listen", listenAddr, prefs.Listen)
	if listen == "" {
		listen = ":9001"
	}

	cfg := peer.Config{
		Role:      peer.RoleServer,
		Listen:    listen,
		Workers:   resolveInt(cmd, "workers", workers, prefs.Workers),
		Verbose:   resolveBool(cmd, "verbose", verbose, prefs.Verbose),
		Advertise: resolveBool(cmd, "advertise", advertise, prefs.Advertise),
		Instance:  resolveString(cmd, "instance", instance, prefs.Instance),
	}

	host, err := peer.Start(cfg)
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return host.Run()
}

// connectCmd runs the echo client
var connectCmd = &cobra.Command{
	Use:   "connect [host:port]",
	Short: "Run an echo client",
	Long: `Connect to a remote echo server and run the echo loop as a client.

The client opens one connection and then behaves exactly like a server
session: every message from the peer is echoed back, and payload
commands (RAW, TEXT, PING, CLOSE) are obeyed. The command exits when
the session ends or on SIGINT/SIGTERM.

With --discover the target is found over mDNS instead of being given on
the command line.`,
	Example: `  # Connect to a local server
  wsecho connect localhost:9001

  # Find a server over mDNS and connect to it
  wsecho connect --discover`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConnect,
}

func init() {
	connectCmd.Flags().BoolVar(&discover, "discover", false, "Discover the target over mDNS")
}

func runConnect(cmd *cobra.Command, args []string) error {
	prefs, err := loadPreferences()
	if err != nil {
		return err
	}
	if err := initLogging(cmd, prefs, "info"); err != nil {
		return err
	}

	target, err := resolveTarget(args)
	if err != nil {
		return err
	}

	cfg := peer.Config{
		Role:    peer.RoleClient,
		Target:  target,
		Workers: resolveInt(cmd, "workers", workers, prefs.Workers),
		Verbose: resolveBool(cmd, "verbose", verbose, prefs.Verbose),
	}

	host, err := peer.Start(cfg)
	if err != nil {
		return err
	}
	return host.Run()
}

// consoleCmd opens the interactive console
var consoleCmd = &cobra.Command{
	Use:   "console [host:port]",
	Short: "Open an interactive console to an echo server",
	Long: `Open an interactive terminal console connected to an echo server.

Typed lines are sent as text messages; slash commands select other frame
types (/bin for binary, /ping, /close, /quit). Incoming messages, pings,
pongs, and the closing handshake all show up in a running transcript.

Note that the server interprets message prefixes as commands: typing
"PING hello" makes it ping you back, and "CLOSE" ends the session.`,
	Example: `  # Talk to a local server
  wsecho console localhost:9001

  # Find a server over mDNS first
  wsecho console --discover`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConsole,
}

func init() {
	consoleCmd.Flags().BoolVar(&discover, "discover", false, "Discover the target over mDNS")
}

func runConsole(cmd *cobra.Command, args []string) error {
	target, err := resolveTarget(args)
	if err != nil {
		return err
	}
	return console.Run(target)
}

// scanCmd discovers echo servers on the network
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for echo servers on the network",
	Long: `Scan for echo servers using mDNS/DNS-SD discovery.

Discovered servers are printed with their instance name, address, and
advertised metadata, and remembered in the config file for later use.`,
	Example: `  # Scan with the default timeout
  wsecho scan

  # Quick 2-second scan
  wsecho scan --timeout 2`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().IntVar(&scanTimeout, "timeout", 5, "Scan timeout in seconds")
}

func runScan(cmd *cobra.Command, args []string) error {
	prefs, err := loadPreferences()
	if err != nil {
		return err
	}

	timeout := resolveInt(cmd, "timeout", scanTimeout, prefs.DiscoverTimeout)
	if timeout <= 0 {
		timeout = 5
	}

	fmt.Printf("Scanning for echo servers (timeout: %ds)...\n\n", timeout)

	scanner := discovery.NewScanner()
	scanner.Timeout = time.Duration(timeout) * time.Second

	found, err := scanner.Rescan()
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if len(found) == 0 {
		fmt.Println("No echo servers found.")
		fmt.Println("\nTroubleshooting:")
		fmt.Println("  - Ensure a server is running with --advertise")
		fmt.Println("  - Check that mDNS traffic is allowed on your network")
		fmt.Println("  - Try increasing --timeout for slower networks")
		return nil
	}

	fmt.Printf("Found %d server(s):\n\n", len(found))

	registry, regErr := config.LoadRegistry()
	for i, p := range found {
		fmt.Printf("%d. %s\n", i+1, p.Instance)
		fmt.Printf("   Address: %s\n", p.Addr())
		if len(p.Metadata) > 0 {
			fmt.Printf("   Metadata: %v\n", p.Metadata)
		}
		fmt.Println()

		if regErr == nil {
			registry.RememberPeer(p.Instance, p.Addr())
		}
	}
	if regErr == nil {
		if err := registry.Save(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to save config: %v\n", err)
		}
	}

	fmt.Println("Use 'wsecho connect <address>' to run an echo client against a server")
	fmt.Println("Use 'wsecho console <address>' for an interactive session")

	return nil
}

// resolveTarget picks the connection target from the argument list or,
// with --discover, from an mDNS scan.
func resolveTarget(args []string) (string, error) {
	if discover {
		if len(args) > 0 {
			return "", fmt.Errorf("give either a target or --discover, not both")
		}

		fmt.Println("Scanning for echo servers...")
		found, err := discovery.NewScanner().First()
		if err != nil {
			return "", err
		}
		fmt.Printf("Found %s at %s\n\n", found.Instance, found.Addr())

		if registry, err := config.LoadRegistry(); err == nil {
			registry.RememberPeer(found.Instance, found.Addr())
			if err := registry.Save(); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to save config: %v\n", err)
			}
		}

		return found.Addr(), nil
	}

	if len(args) == 0 {
		return "", fmt.Errorf("target required (host:port), or use --discover")
	}
	return args[0], nil
}

// loadPreferences loads the config file's flag defaults.
func loadPreferences() (*config.Preferences, error) {
	registry, err := config.LoadRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return registry.Preferences, nil
}

// initLogging wires the logger: an explicit --log-level wins, then the
// WSECHO_LOG_LEVEL environment variable, then the config file, then the
// command's default.
func initLogging(cmd *cobra.Command, prefs *config.Preferences, fallback string) error {
	if cmd.Flags().Changed("log-level") {
		return logging.Initialize(logLevel)
	}
	if os.Getenv(logging.LogLevelEnvVar) != "" {
		return logging.InitializeFromEnv()
	}
	if prefs.LogLevel != "" {
		return logging.Initialize(prefs.LogLevel)
	}
	return logging.Initialize(fallback)
}

// Preference resolution: a flag given on the command line wins over the
// config file value.

func resolveString(cmd *cobra.Command, name, flagValue, pref string) string {
	if !cmd.Flags().Changed(name) && pref != "" {
		return pref
	}
	return flagValue
}

func resolveInt(cmd *cobra.Command, name string, flagValue, pref int) int {
	if !cmd.Flags().Changed(name) && pref != 0 {
		return pref
	}
	return flagValue
}

func resolveBool(cmd *cobra.Command, name string, flagValue, pref bool) bool {
	if !cmd.Flags().Changed(name) {
		return pref
	}
	return flagValue
}
