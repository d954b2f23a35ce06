// Licensed under the MIT License. See LICENSE file in the project root for details.

package list

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultSweepInterval is the tick period of the background sweeper. Ticks
// that find no completed collection cycle resolve from the epoch cache, so
// an idle container pays almost nothing per tick.
const DefaultSweepInterval = 100 * time.Millisecond

// sweeper periodically runs the container's sweep so dead entries are
// released even when the container goes idle.
type sweeper struct {
	interval time.Duration
	sweep    func()
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	started  atomic.Bool
	stopped  atomic.Bool
}

// newSweeper creates a sweeper that invokes sweep every interval once started.
func newSweeper(interval time.Duration, sweep func()) *sweeper {
	ctx, cancel := context.WithCancel(context.Background())
	return &sweeper{
		interval: interval,
		sweep:    sweep,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start launches the background loop. Subsequent calls are no-ops.
func (s *sweeper) Start() {
	if s.stopped.Load() || !s.started.CompareAndSwap(false, true) {
		return
	}
	s.wg.Add(1)
	go s.run()
}

// Stop halts the loop and waits for it to exit. Safe to call repeatedly and
// without a prior Start.
func (s *sweeper) Stop() {
	s.stopped.Store(true)
	s.cancel()
	s.wg.Wait()
}

// run is the background sweep loop.
func (s *sweeper) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.ctx.Done():
			return
		}
	}
}
