package expiry

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/jonboulle/clockwork"

	"github.com/aquaroute/aquaroute-api/internal/pkg/metrics"
)

// Target deletes expired reports and reports how many went away.
type Target interface {
	SweepExpired(ctx context.Context, source string) (int64, error)
}

// Sweeper periodically purges expired reports between list calls.
type Sweeper struct {
	target   Target
	interval time.Duration
	timeout  time.Duration
	clock    clockwork.Clock

	mu     sync.Mutex
	stopCh chan struct{}
	done   chan struct{}
}

func NewSweeper(target Target, interval, timeout time.Duration, clock clockwork.Clock) *Sweeper {
	return &Sweeper{
		target:   target,
		interval: interval,
		timeout:  timeout,
		clock:    clock,
	}
}

// Start launches the sweep loop. It is a no-op when the interval is zero
// or the loop is already running.
func (s *Sweeper) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.interval <= 0 || s.stopCh != nil {
		return
	}
	s.stopCh = make(chan struct{})
	s.done = make(chan struct{})
	go s.run(s.stopCh, s.done)
}

func (s *Sweeper) run(stopCh, done chan struct{}) {
	defer close(done)
	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()
	log.Infof("[ExpirySweeper] Started (interval: %s)", s.interval)

	// run once immediately
	s.sweepOnce()

	for {
		select {
		case <-stopCh:
			log.Info("[ExpirySweeper] Stopped")
			return
		case <-ticker.Chan():
			s.sweepOnce()
		}
	}
}

func (s *Sweeper) sweepOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	n, err := s.target.SweepExpired(ctx, metrics.SweepSourceTicker)
	if err != nil {
		log.Errorf("[ExpirySweeper] Sweep failed: %v", err)
		return
	}
	if n > 0 {
		log.Infof("[ExpirySweeper] Deleted %d expired reports", n)
	}
}

// Stop ends the loop and waits for an in-flight sweep to finish.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	stopCh, done := s.stopCh, s.done
	s.stopCh, s.done = nil, nil
	s.mu.Unlock()

	if stopCh == nil {
		return
	}
	close(stopCh)
	<-done
}
