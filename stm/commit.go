package stm

// commitAttempt validates and applies a completed attempt's log under the
// commit gate (spec §4.E). It returns the waiters to fire once the gate is
// released, or errConflict if any entry's observed value no longer
// matches the cell's current value.
//
// Discipline: no user code runs while rt.gate is held here. The gate is
// also taken by snapshotUnderGate (tvar.go), park, cancelWaiter and
// waiter.fire (wakeup.go), and the idle-waiter sweep (sweep.go).
func (rt *Runtime) commitAttempt(log *txnLog) ([]*waiter, error) {
	rt.gate.Lock()
	defer rt.gate.Unlock()

	for _, e := range log.entries {
		if !e.cell.validate(e.observed) {
			return nil, errConflict
		}
	}

	var toWake []*waiter
	for _, e := range log.entries {
		if e.touched {
			toWake = append(toWake, e.cell.publish(e.current)...)
		}
	}
	return toWake, nil
}
