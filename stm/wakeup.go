package stm

import (
	"context"
	"sync/atomic"
)

// waiter is a single-shot subscription installed on every cell a retrying
// attempt read (spec §3 WaiterHandle). It may be parked on several cells
// at once; cells is the list it needs to be removed from once it fires,
// since the cell that triggers the fire only knows to clear its own set.
type waiter struct {
	txnID  uint64
	fired  atomic.Bool
	wakeFn func()
	ctx    context.Context
	cells  []cellHandle
}

// fire wakes the waiter exactly once, even if the same commit collects it
// twice — a waiter parked on several cells is drained from each of them,
// so a commit touching more than one of those cells hands it to fireAll
// more than once (spec §4.F: "only the first wins"). It reports whether
// this call was the one that actually fired, so callers counting parked
// waiters don't double-count the duplicates.
func (w *waiter) fire(rt *Runtime) bool {
	if !w.fired.CompareAndSwap(false, true) {
		return false
	}
	rt.logger.Debug("waking parked attempt", "txnID", w.txnID)
	rt.gate.Lock()
	for _, c := range w.cells {
		c.unpark(w.txnID)
	}
	rt.gate.Unlock()
	w.wakeFn()
	return true
}

// park installs a waiter on every cell in log's read set, re-validating
// first in case the world already moved since the attempt finished
// evaluating (spec §4.F step 2). It reports false when re-validation
// fails, meaning the caller should reschedule immediately instead of
// waiting for a wake.
func (rt *Runtime) park(ctx context.Context, log *txnLog, txnID uint64, wake func()) bool {
	rt.gate.Lock()
	defer rt.gate.Unlock()

	for _, e := range log.entries {
		if !e.cell.validate(e.observed) {
			return false
		}
	}

	cells := make([]cellHandle, 0, len(log.entries))
	for _, e := range log.entries {
		cells = append(cells, e.cell)
	}
	w := &waiter{txnID: txnID, wakeFn: wake, ctx: ctx, cells: cells}
	for _, c := range cells {
		c.park(w)
	}
	return true
}

// cancelWaiter removes any trace of txnID from the cells in log's read
// set. Called when a parked attempt's context is cancelled, to satisfy
// spec §5's cancellation guarantee (ii): waiters are gone before
// cancellation completes.
func (rt *Runtime) cancelWaiter(log *txnLog, txnID uint64) {
	rt.gate.Lock()
	defer rt.gate.Unlock()
	for _, e := range log.entries {
		e.cell.unpark(txnID)
	}
}

// fireAll wakes every waiter collected by a commit, outside the gate (the
// spec forbids running user work, which wakeFn ultimately triggers, while
// the gate is held). waiters may contain the same waiter more than once
// (see fire), so the parked gauge only counts calls that actually fired.
func (rt *Runtime) fireAll(waiters []*waiter) {
	fired := 0
	for _, w := range waiters {
		if w.fire(rt) {
			fired++
		}
	}
	if rt.metrics != nil && fired > 0 {
		rt.metrics.parked.Sub(float64(fired))
	}
}
