package config

import (
	"sort"
	"time"
)

// Registry represents the entire user configuration file.
// It stores command-line defaults and peers remembered from discovery scans.
type Registry struct {
	Version     int                   `yaml:"version"`
	Peers       map[string]*KnownPeer `yaml:"peers,omitempty"` // Keyed by mDNS instance name
	Preferences *Preferences          `yaml:"preferences,omitempty"`
}

// KnownPeer is a peer remembered from a previous scan or connection.
type KnownPeer struct {
	Address  string    `yaml:"address"`             // host:port
	LastSeen time.Time `yaml:"last_seen,omitempty"` // Last discovery/connection time
}

// Preferences holds defaults applied when the matching flag is not given.
type Preferences struct {
	Listen          string `yaml:"listen"`              // serve bind address
	Workers         int    `yaml:"workers"`             // Worker pool size (0 = one per CPU)
	Verbose         bool   `yaml:"verbose"`             // Report session failures
	Advertise       bool   `yaml:"advertise"`           // Announce served instances over mDNS
	Instance        string `yaml:"instance,omitempty"`  // mDNS instance name override
	LogLevel        string `yaml:"log_level,omitempty"` // debug/info/warn/error, empty = per-command default
	DiscoverTimeout int    `yaml:"discover_timeout"`    // mDNS scan timeout in seconds
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version: 1,
		Peers:   make(map[string]*KnownPeer),
		Preferences: &Preferences{
			Listen:          ":9001",
			Advertise:       true,
			DiscoverTimeout: 5,
		},
	}
}

// GetPeer retrieves a remembered peer by instance name.
// Returns nil if the peer is not in the registry.
func (r *Registry) GetPeer(instance string) *KnownPeer {
	return r.Peers[instance]
}

// RememberPeer records or refreshes a peer seen during a scan or connection.
func (r *Registry) RememberPeer(instance, address string) {
	if r.Peers == nil {
		r.Peers = make(map[string]*KnownPeer)
	}
	peer, exists := r.Peers[instance]
	if !exists {
		peer = &KnownPeer{}
		r.Peers[instance] = peer
	}
	peer.Address = address
	peer.LastSeen = time.Now()
}

// ForgetPeer removes a remembered peer. Returns true if it was present.
func (r *Registry) ForgetPeer(instance string) bool {
	if _, exists := r.Peers[instance]; !exists {
		return false
	}
	delete(r.Peers, instance)
	return true
}

// PeerNames returns the remembered instance names in sorted order.
func (r *Registry) PeerNames() []string {
	names := make([]string, 0, len(r.Peers))
	for name := range r.Peers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
