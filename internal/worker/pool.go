package worker

import (
	"sync"

	"github.com/autopay/backend/internal/metrics"
)

type task func()

type Pool struct {
	wg   sync.WaitGroup
	jobs chan task
}

func NewPool(n int) *Pool {
	p := &Pool{jobs: make(chan task, 1024)}
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				job()
				metrics.WorkerQueueDepth.Dec()
			}
		}()
	}
	return p
}

func (p *Pool) Submit(f task) {
	metrics.WorkerQueueDepth.Inc()
	p.jobs <- f
}

// TrySubmit enqueues without blocking; false means the queue is full and the
// job was dropped. Best-effort work uses this so it never stalls a request.
func (p *Pool) TrySubmit(f task) bool {
	metrics.WorkerQueueDepth.Inc()
	select {
	case p.jobs <- f:
		return true
	default:
		metrics.WorkerQueueDepth.Dec()
		return false
	}
}

func (p *Pool) Stop() { close(p.jobs); p.wg.Wait() }
