package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Peer represents a wsecho instance discovered on the local network
type Peer struct {
	// Instance is the advertised mDNS instance name (typically the
	// machine hostname)
	Instance string

	// Hostname is the mDNS hostname (e.g., "office-mini.local.")
	Hostname string

	// IP is the address to dial (IPv4 preferred)
	IP string

	// Port is the WebSocket listen port
	Port int

	// Metadata contains additional mDNS TXT record data
	// Common fields: "proto=13", "vsn=0.3.0"
	Metadata map[string]string

	// DiscoveredAt is when the peer was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the peer
func (p *Peer) String() string {
	return fmt.Sprintf("wsecho peer %q at %s", p.Instance, p.Addr())
}

// Addr returns the dialable "host:port" for the peer
func (p *Peer) Addr() string {
	return net.JoinHostPort(p.IP, strconv.Itoa(p.Port))
}

// URL returns the WebSocket URL for the peer
func (p *Peer) URL() string {
	return "ws://" + p.Addr() + "/"
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (p *Peer) GetMetadata(key string) string {
	if p.Metadata == nil {
		return ""
	}
	return p.Metadata[key]
}
