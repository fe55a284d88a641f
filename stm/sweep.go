package stm

import (
	"context"
	"time"
	"weak"
)

// runSweep periodically evicts waiters whose owning attempt has already
// given up (its context is done) but never got a wake to unpark itself —
// e.g. the caller's ctx was cancelled exactly between evaluation and
// park, or the process is tearing down. The normal cancellation path in
// Atomically removes its own waiter eagerly; this is the backstop for the
// case where that goroutine is gone before it gets to run it.
//
// Ticker-driven background loop owned by the runtime, stopped via the
// context passed at New and a done channel — the same shape as the
// teacher's GC and deadlock-detector goroutines, repurposed from
// polling-for-versions to polling-for-abandoned-waiters.
func (rt *Runtime) runSweep(ctx context.Context, interval time.Duration) {
	defer close(rt.sweepDone)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rt.sweepIdleWaiters()
		}
	}
}

func (rt *Runtime) sweepIdleWaiters() {
	rt.cellsMu.Lock()
	live := rt.cells[:0]
	for _, wp := range rt.cells {
		if wp.Value() != nil {
			live = append(live, wp)
		}
	}
	rt.cells = live
	cells := append([]weak.Pointer[tvarCore]{}, rt.cells...)
	rt.cellsMu.Unlock()

	rt.gate.Lock()
	defer rt.gate.Unlock()
	for _, wp := range cells {
		core := wp.Value()
		if core == nil {
			continue
		}
		kept := core.waiters[:0]
		for _, w := range core.waiters {
			if w.ctx != nil && w.ctx.Err() != nil {
				rt.logger.Debug("sweep: evicting idle waiter", "txnID", w.txnID)
				continue
			}
			kept = append(kept, w)
		}
		core.waiters = kept
	}
}
