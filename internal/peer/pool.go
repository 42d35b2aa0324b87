package peer

import (
	"errors"
	"runtime"
	"sync"
)

// ErrPoolClosed is returned by Submit once Close has begun.
var ErrPoolClosed = errors.New("worker pool is closed")

// Pool is a fixed set of workers draining one shared queue of ready
// completions. Any worker may run any completion; per-session ordering is
// the strand's job, not the pool's.
type Pool struct {
	tasks chan func()
	wg    sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewPool starts a pool of n workers. n <= 0 means one worker per CPU.
func NewPool(n int) *Pool {
	if n <= 0 {
		n = runtime.NumCPU()
	}
	p := &Pool{
		tasks: make(chan func(), n*64),
	}
	p.wg.Add(n)
	for i := 0; i < n; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		task()
	}
}

// Submit queues task for execution on some worker. It blocks only while the
// queue is full, never on task execution. Tasks must not call Submit from
// a worker; completion posters are separate goroutines.
func (p *Pool) Submit(task func()) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPoolClosed
	}
	p.tasks <- task
	return nil
}

// Close stops intake, lets already-queued tasks run to completion, and
// joins the workers.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()
	p.wg.Wait()
}
