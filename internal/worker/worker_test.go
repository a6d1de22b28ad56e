package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

// countingSweeper signals on every sweep so tests can wait for ticks
// without sleeping.
type countingSweeper struct {
	calls  int64
	ticked chan struct{}
}

func (c *countingSweeper) SweepExpired(ctx context.Context) (int, error) {
	atomic.AddInt64(&c.calls, 1)
	select {
	case c.ticked <- struct{}{}:
	default:
	}
	return 1, nil
}

type countingAdvancer struct {
	calls  int64
	ticked chan struct{}
}

func (c *countingAdvancer) AdvanceLifecycle(ctx context.Context, now time.Time) (int, int, error) {
	atomic.AddInt64(&c.calls, 1)
	select {
	case c.ticked <- struct{}{}:
	default:
	}
	return 0, 0, nil
}

func waitTick(t *testing.T, ch chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for a tick")
	}
}

func TestSweeperRunsImmediatelyAndOnTicks(t *testing.T) {
	fake := &countingSweeper{ticked: make(chan struct{}, 8)}
	s := NewSweeper(fake, 10*time.Millisecond)

	s.Start()
	// The first pass runs synchronously inside Start.
	if got := atomic.LoadInt64(&fake.calls); got < 1 {
		t.Fatalf("calls after Start = %d, want >= 1", got)
	}
	waitTick(t, fake.ticked)
	waitTick(t, fake.ticked)
	s.Stop()

	if got := atomic.LoadInt64(&fake.calls); got < 2 {
		t.Errorf("calls = %d, want >= 2", got)
	}
}

func TestSweeperStopTerminates(t *testing.T) {
	fake := &countingSweeper{ticked: make(chan struct{}, 8)}
	s := NewSweeper(fake, time.Hour)

	s.Start()
	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return")
	}
}

func TestSweeperDefaultInterval(t *testing.T) {
	s := NewSweeper(&countingSweeper{ticked: make(chan struct{}, 1)}, 0)
	if s.interval != 30*time.Second {
		t.Errorf("interval = %v, want %v", s.interval, 30*time.Second)
	}
}

func TestLifecycleSchedulerTicks(t *testing.T) {
	fake := &countingAdvancer{ticked: make(chan struct{}, 8)}
	l := NewLifecycleScheduler(fake, 10*time.Millisecond)

	l.Start()
	waitTick(t, fake.ticked)
	waitTick(t, fake.ticked)
	l.Stop()

	if got := atomic.LoadInt64(&fake.calls); got < 2 {
		t.Errorf("calls = %d, want >= 2", got)
	}
}

func TestLifecycleSchedulerDefaultInterval(t *testing.T) {
	l := NewLifecycleScheduler(&countingAdvancer{ticked: make(chan struct{}, 1)}, 0)
	if l.interval != time.Minute {
		t.Errorf("interval = %v, want %v", l.interval, time.Minute)
	}
}
