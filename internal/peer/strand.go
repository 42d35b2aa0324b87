package peer

import (
	"sync"

	"github.com/eapache/queue"
)

// strand serializes one session's completions on the shared pool: tasks run
// one at a time, in post order, and posters never wait for execution. All
// access to a session's mutable state goes through its strand, so the state
// needs no lock of its own.
type strand struct {
	pool *Pool

	mu      sync.Mutex
	backlog *queue.Queue // of func()
	active  bool         // a drain pass is queued or running on the pool
}

func newStrand(pool *Pool) *strand {
	return &strand{
		pool:    pool,
		backlog: queue.New(),
	}
}

// post queues fn behind anything already posted to this strand. When no
// drain pass is live one is submitted to the pool; otherwise the running
// pass picks fn up before it exits.
func (s *strand) post(fn func()) {
	s.mu.Lock()
	s.backlog.Add(fn)
	if s.active {
		s.mu.Unlock()
		return
	}
	s.active = true
	s.mu.Unlock()

	if err := s.pool.Submit(s.drain); err != nil {
		// Pool is shutting down; the backlog dies with the session.
		s.mu.Lock()
		s.active = false
		s.backlog = queue.New()
		s.mu.Unlock()
	}
}

// drain runs queued tasks in post order until the backlog is empty. It is
// the only consumer of the backlog, so tasks never run concurrently or out
// of order. Tasks run outside the lock: a task may post again (the usual
// case, scheduling the session's next step) without deadlocking.
func (s *strand) drain() {
	for {
		s.mu.Lock()
		if s.backlog.Length() == 0 {
			s.active = false
			s.mu.Unlock()
			return
		}
		fn := s.backlog.Remove().(func())
		s.mu.Unlock()

		fn()
	}
}
