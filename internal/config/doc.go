// Package config provides user configuration management for wsecho.
//
// This package manages a YAML-based configuration file that stores default
// values for command-line flags and a registry of peers remembered from
// discovery scans. The configuration follows OS-specific conventions for
// storage location.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/wsecho/config.yaml or $HOME/.config/wsecho/config.yaml
//   - macOS: $HOME/.config/wsecho/config.yaml
//   - Windows: %LOCALAPPDATA%\wsecho\config.yaml
//
// # Usage Example
//
//	// Load the global registry
//	registry, err := config.LoadRegistry()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Remember a peer found during a scan
//	registry.RememberPeer("echo-lab", "192.168.1.50:9001")
//
//	// Save changes atomically
//	if err := registry.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// The global registry uses sync.Once for safe initialization across goroutines.
// File operations are protected by a mutex to ensure atomic writes.
package config
