package worker

import (
	"context"
	"log"
	"time"
)

// lifecycleAdvancer is the slice of the show service the scheduler needs.
type lifecycleAdvancer interface {
	AdvanceLifecycle(ctx context.Context, now time.Time) (started, completed int, err error)
}

// LifecycleScheduler periodically advances show statuses from wall-clock
// time: SCHEDULED shows past their start become RUNNING, RUNNING shows
// past their end become COMPLETED.
type LifecycleScheduler struct {
	shows    lifecycleAdvancer
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

// NewLifecycleScheduler constructs a LifecycleScheduler.  A zero
// interval defaults to one minute.
func NewLifecycleScheduler(shows lifecycleAdvancer, interval time.Duration) *LifecycleScheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &LifecycleScheduler{
		shows:    shows,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins the tick loop with an immediate first tick.
func (l *LifecycleScheduler) Start() {
	log.Printf("lifecycle: started (every %v)", l.interval)
	l.tick()
	ticker := time.NewTicker(l.interval)
	go func() {
		defer close(l.done)
		for {
			select {
			case <-ticker.C:
				l.tick()
			case <-l.stop:
				ticker.Stop()
				log.Println("lifecycle: stopped")
				return
			}
		}
	}()
}

// Stop terminates the loop and waits for it to exit.
func (l *LifecycleScheduler) Stop() {
	close(l.stop)
	<-l.done
}

func (l *LifecycleScheduler) tick() {
	started, completed, err := l.shows.AdvanceLifecycle(context.Background(), time.Now())
	if err != nil {
		log.Printf("lifecycle: tick failed: %v", err)
		return
	}
	if started > 0 || completed > 0 {
		log.Printf("lifecycle: started %d shows, completed %d shows", started, completed)
	}
}
