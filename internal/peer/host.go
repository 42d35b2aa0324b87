package peer

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/muurk/wsecho/internal/discovery"
	"github.com/muurk/wsecho/internal/logging"
)

// shutdownTimeout bounds how long Shutdown waits for queued completions
// to drain before giving up on stragglers.
const shutdownTimeout = 10 * time.Second

// Config holds the host configuration
type Config struct {
	Role      Role
	Listen    string // server role: bind address, e.g. ":9001"
	Target    string // client role: remote "host:port"
	Workers   int    // worker pool size, 0 = one per CPU
	Verbose   bool   // report session failures
	Advertise bool   // server role: announce the instance over mDNS
	Instance  string // mDNS instance name, defaults to the machine hostname
}

// Host owns the worker pool, the listener (server role) or the single
// outbound session (client role), and the shutdown path for all of it.
// Sessions it spawns own themselves; the host never tracks them.
type Host struct {
	cfg       Config
	pool      *Pool
	listener  *Listener
	session   *Session // client role only
	announcer *discovery.Announcer
	group     errgroup.Group
}

// Start brings the host up and returns once it is running: bound and
// accepting for a server, dialing for a client. A server bind failure is
// fatal and returned immediately.
func Start(cfg Config) (*Host, error) {
	h := &Host{
		cfg:  cfg,
		pool: NewPool(cfg.Workers),
	}

	switch cfg.Role {
	case RoleServer:
		ln, err := NewListener(cfg.Listen, h.pool, cfg.Verbose)
		if err != nil {
			h.pool.Close()
			return nil, err
		}
		h.listener = ln
		h.group.Go(ln.AcceptLoop)

		if cfg.Advertise {
			ann, err := discovery.Announce(cfg.Instance, ln.Port())
			if err != nil {
				// Advertising is best-effort; the server runs without it.
				logging.Warn("mDNS announce failed", zap.Error(err))
			} else {
				h.announcer = ann
			}
		}

		logging.Info("Echo server listening",
			zap.String("addr", ln.Addr().String()),
			zap.Int("workers", cfg.Workers),
		)

	case RoleClient:
		h.session = NewClientSession(cfg.Target, h.pool, cfg.Verbose)
		logging.Info("Echo client connecting",
			zap.String("target", cfg.Target),
			zap.Int("workers", cfg.Workers),
		)
		h.session.Run()

	default:
		h.pool.Close()
		return nil, fmt.Errorf("unknown role %d", cfg.Role)
	}

	return h, nil
}

// Addr returns the listener address in server role, nil otherwise.
func (h *Host) Addr() net.Addr {
	if h.listener == nil {
		return nil
	}
	return h.listener.Addr()
}

// Session returns the single client-role session, nil in server role.
func (h *Host) Session() *Session {
	return h.session
}

// Run blocks until an interrupt/termination signal arrives or, in client
// role, the session reaches its terminal state; it then shuts the host
// down. This is the CLI entry point; tests drive Start/Shutdown directly.
func (h *Host) Run() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	var done <-chan struct{}
	if h.session != nil {
		done = h.session.Done()
	}

	select {
	case <-sigChan:
		logging.Info("Shutdown signal received, stopping...")
	case <-done:
		logging.Info("Session ended")
	}
	return h.Shutdown()
}

// Shutdown stops accepting new connections, withdraws the mDNS
// registration, then drains queued completions and joins the workers.
// Sessions blocked on a remote peer hold no host resources and are
// abandoned with the process.
func (h *Host) Shutdown() error {
	logging.Info("Shutting down host...")

	if h.announcer != nil {
		h.announcer.Shutdown()
	}
	if h.listener != nil {
		if err := h.listener.Close(); err != nil {
			logging.Error("Error closing listener", zap.Error(err))
		}
	}

	// The accept loop exits cleanly once the listener is closed
	err := h.group.Wait()

	// Drain the pool with a timeout
	done := make(chan struct{})
	go func() {
		h.pool.Close()
		close(done)
	}()

	select {
	case <-done:
		logging.Info("Workers drained")
	case <-time.After(shutdownTimeout):
		logging.Warn("Shutdown timeout waiting for workers")
	}

	logging.Sync()
	return err
}
