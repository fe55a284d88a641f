package stm

import (
	"context"
	"testing"
	"time"
)

// TestSweepEvictsCancelledWaiter is a white-box check of the idle-waiter
// sweep backstop: a waiter whose owning context is already done gets
// dropped from its cell even though nothing ever fired it.
func TestSweepEvictsCancelledWaiter(t *testing.T) {
	ctx := context.Background()
	rt := New(ctx)
	defer rt.Close()

	cell := NewTVar(rt, 0)

	waiterCtx, cancel := context.WithCancel(ctx)
	cancel()

	w := &waiter{txnID: 1, wakeFn: func() {}, ctx: waiterCtx, cells: []cellHandle{cell}}
	rt.gate.Lock()
	cell.park(w)
	rt.gate.Unlock()

	if len(cell.waiters) != 1 {
		t.Fatalf("expected 1 waiter before sweep, got %d", len(cell.waiters))
	}

	rt.sweepIdleWaiters()

	if len(cell.waiters) != 0 {
		t.Fatalf("expected sweep to evict the cancelled waiter, got %d remaining", len(cell.waiters))
	}
}

// TestSweepKeepsLiveWaiter checks the sweep is not overeager: a waiter
// whose context is still active survives.
func TestSweepKeepsLiveWaiter(t *testing.T) {
	ctx := context.Background()
	rt := New(ctx)
	defer rt.Close()

	cell := NewTVar(rt, 0)
	waiterCtx, cancel := context.WithTimeout(ctx, time.Hour)
	defer cancel()

	w := &waiter{txnID: 1, wakeFn: func() {}, ctx: waiterCtx, cells: []cellHandle{cell}}
	rt.gate.Lock()
	cell.park(w)
	rt.gate.Unlock()

	rt.sweepIdleWaiters()

	if len(cell.waiters) != 1 {
		t.Fatalf("expected live waiter to survive sweep, got %d", len(cell.waiters))
	}
}
