package worker

import (
	"sync/atomic"
	"testing"
)

func TestPool_RunsSubmittedJobs(t *testing.T) {
	p := NewPool(4)

	var n atomic.Int32
	for i := 0; i < 100; i++ {
		p.Submit(func() { n.Add(1) })
	}
	p.Stop()

	if got := n.Load(); got != 100 {
		t.Fatalf("expected 100 jobs run, got %d", got)
	}
}

func TestPool_TrySubmitReportsFullQueue(t *testing.T) {
	p := NewPool(1)

	started := make(chan struct{})
	release := make(chan struct{})
	p.Submit(func() {
		close(started)
		<-release
	})
	<-started // the only worker is now parked

	var ran atomic.Int32
	queued := 0
	for p.TrySubmit(func() { ran.Add(1) }) {
		queued++
		if queued > 10_000 {
			t.Fatalf("queue never reported full")
		}
	}
	if queued == 0 {
		t.Fatalf("expected some jobs to queue before the backlog filled")
	}

	close(release)
	p.Stop()

	if got := int(ran.Load()); got != queued {
		t.Fatalf("expected all %d queued jobs to run, got %d", queued, got)
	}
}
