// Package worker runs the periodic background passes: the expired-hold
// sweep and the show lifecycle advance.  Both follow the same shape: an
// immediate run at startup, then a ticker loop with a stop channel,
// decoupled from request handling.
package worker

import (
	"context"
	"log"
	"time"
)

// holdSweeper is the slice of the hold manager the sweeper needs.
type holdSweeper interface {
	SweepExpired(ctx context.Context) (int, error)
}

// Sweeper periodically force-releases holds whose TTL has lapsed.
type Sweeper struct {
	holds    holdSweeper
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

// NewSweeper constructs a Sweeper.  A zero interval defaults to 30
// seconds.
func NewSweeper(holds holdSweeper, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Sweeper{
		holds:    holds,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins the sweep loop.  The first pass runs immediately so stale
// holds left over from a previous process don't linger a full interval.
func (s *Sweeper) Start() {
	log.Printf("sweeper: started (every %v)", s.interval)
	s.sweep()
	ticker := time.NewTicker(s.interval)
	go func() {
		defer close(s.done)
		for {
			select {
			case <-ticker.C:
				s.sweep()
			case <-s.stop:
				ticker.Stop()
				log.Println("sweeper: stopped")
				return
			}
		}
	}()
}

// Stop terminates the loop and waits for it to exit.
func (s *Sweeper) Stop() {
	close(s.stop)
	<-s.done
}

// sweep runs one pass.  A failed pass is logged and abandoned; the next
// tick re-derives everything from the clock.
func (s *Sweeper) sweep() {
	released, err := s.holds.SweepExpired(context.Background())
	if err != nil {
		log.Printf("sweeper: pass failed: %v", err)
		return
	}
	if released > 0 {
		log.Printf("sweeper: released %d expired holds", released)
	}
}
