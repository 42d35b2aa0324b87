package discovery

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"
	"github.com/patrickmn/go-cache"

	"github.com/muurk/wsecho/internal/version"
)

const (
	// ServiceType is the mDNS service type wsecho instances advertise as
	ServiceType = "_wsecho._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultScanTimeout is the default timeout for peer discovery
	DefaultScanTimeout = 5 * time.Second

	// scanCacheTTL is how long a completed scan's results stay fresh.
	// Back-to-back scan+connect invocations reuse the cached peer list
	// instead of holding the network for another browse window.
	scanCacheTTL = 30 * time.Second

	scanCacheKey = "peers"
)

// scanCache holds the most recent scan results across Scanner instances.
var scanCache = cache.New(scanCacheTTL, time.Minute)

// Scanner handles mDNS peer discovery
type Scanner struct {
	// Timeout is the maximum time to wait for peer discovery
	Timeout time.Duration
}

// NewScanner creates a new mDNS scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
	}
}

// Scan discovers wsecho peers on the local network, serving cached results
// when a scan completed within the last scanCacheTTL.
func (s *Scanner) Scan() ([]*Peer, error) {
	if cached, ok := scanCache.Get(scanCacheKey); ok {
		return cached.([]*Peer), nil
	}
	return s.Rescan()
}

// Rescan discovers peers, bypassing and refreshing the cache.
func (s *Scanner) Rescan() ([]*Peer, error) {
	peers, err := s.ScanWithContext(context.Background())
	if err != nil {
		return nil, err
	}
	scanCache.Set(scanCacheKey, peers, cache.DefaultExpiration)
	return peers, nil
}

// ScanWithContext discovers peers with a custom context
func (s *Scanner) ScanWithContext(ctx context.Context) ([]*Peer, error) {
	// Create a context with timeout
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	// Channel to receive service entries
	entries := make(chan *zeroconf.ServiceEntry)
	peers := make([]*Peer, 0)
	collected := make(chan struct{})

	// Start the resolver
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	// Collect entries in a goroutine; the channel closes when browsing ends
	go func() {
		defer close(collected)
		for entry := range entries {
			peer := parseServiceEntry(entry)
			if peer != nil {
				peers = append(peers, peer)
			}
		}
	}()

	// Start browsing for wsecho services
	err = resolver.Browse(ctx, ServiceType, ServiceDomain, entries)
	if err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	// Wait for the browse window to end and the collector to drain
	<-ctx.Done()
	<-collected

	return peers, nil
}

// First returns the first peer discovered on the network, scanning (or
// serving the cache) as needed.
func (s *Scanner) First() (*Peer, error) {
	peers, err := s.Scan()
	if err != nil {
		return nil, err
	}
	if len(peers) == 0 {
		return nil, fmt.Errorf("no wsecho peers found within %s", s.Timeout)
	}
	return peers[0], nil
}

// parseServiceEntry converts a zeroconf service entry to a Peer.
// Returns nil if the entry carries no usable address.
func parseServiceEntry(entry *zeroconf.ServiceEntry) *Peer {
	// Get IP address (prefer IPv4)
	var ip string
	for _, addr := range entry.AddrIPv4 {
		ip = addr.String()
		break
	}

	// Fallback to IPv6 if no IPv4
	if ip == "" && len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}

	if ip == "" {
		return nil
	}

	// Parse TXT records into metadata
	metadata := make(map[string]string)
	for _, txt := range entry.Text {
		// TXT records are in "key=value" format
		parts := strings.SplitN(txt, "=", 2)
		if len(parts) == 2 {
			metadata[parts[0]] = parts[1]
		} else {
			// Key without value
			metadata[parts[0]] = ""
		}
	}

	return &Peer{
		Instance:     entry.Instance,
		Hostname:     entry.HostName,
		IP:           ip,
		Port:         entry.Port,
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}

// Announcer keeps one wsecho instance registered over mDNS until Shutdown.
type Announcer struct {
	server *zeroconf.Server
}

// Announce registers a wsecho server instance on the local network. An
// empty instance name falls back to the machine hostname.
func Announce(instance string, port int) (*Announcer, error) {
	if instance == "" {
		host, err := os.Hostname()
		if err != nil {
			host = "wsecho"
		}
		instance = host
	}

	txt := []string{
		"proto=13",
		"vsn=" + version.Version,
	}

	server, err := zeroconf.Register(instance, ServiceType, ServiceDomain, port, txt, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to register mDNS service: %w", err)
	}
	return &Announcer{server: server}, nil
}

// Shutdown withdraws the mDNS registration.
func (a *Announcer) Shutdown() {
	if a.server != nil {
		a.server.Shutdown()
	}
}
