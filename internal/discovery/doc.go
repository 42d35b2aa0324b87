// Package discovery provides mDNS-based discovery of wsecho peers.
//
// Running servers advertise themselves as "_wsecho._tcp" services on the
// local network when started with advertising enabled; the scan subcommand
// and the client's --discover flag browse for them.
//
// # Scanning
//
//	scanner := discovery.NewScanner()
//	peers, err := scanner.Scan()
//	for _, p := range peers {
//	    fmt.Println(p.Instance, p.Addr())
//	}
//
// Scan results are cached for a short window so a scan immediately followed
// by a connect does not browse the network twice; Rescan bypasses the cache.
//
// # Advertising
//
//	ann, err := discovery.Announce("office-mini", 9001)
//	defer ann.Shutdown()
//
// The TXT record carries the WebSocket protocol version ("proto=13") and
// the wsecho build version ("vsn=...").
package discovery
