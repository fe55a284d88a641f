package stm

import (
	"sync/atomic"
)

// tvarCore is the non-generic part of a TVar: its id and waiter set. It is
// pulled out of TVar[T] so the runtime can hold a weak reference to it
// (its one registry slice of weak.Pointer needs a single element type
// shared by cells of every T) without
// pinning the TVar itself, and therefore without pinning T's storage
// either.
//
// waiters is only ever read or mutated while the owning runtime's commit
// gate is held — see Runtime.gate in runtime.go.
type tvarCore struct {
	id      uint64
	waiters []*waiter
}

// TVar is a transactional cell holding a value of type T. Values are only
// mutated inside the commit protocol, under the commit gate; Peek is the
// one exception, a lock-free point read for diagnostics (spec §6 item 4).
//
// T is constrained to comparable so the commit protocol can validate a
// read set with a plain equality check ("t.value == entry.observed"),
// exactly as the spec's commit protocol step 1 requires.
type TVar[T comparable] struct {
	tvarCore
	value atomic.Pointer[T]
}

// NewTVar creates a cell committed immediately, outside any transaction
// (spec §6 item 1). It registers the cell with rt's idle-waiter sweep.
func NewTVar[T comparable](rt *Runtime, v T) *TVar[T] {
	t := &TVar[T]{tvarCore: tvarCore{id: rt.cellIDs.next()}}
	t.value.Store(&v)
	rt.registerCell(&t.tvarCore)
	return t
}

// Peek returns the last published value without going through the commit
// gate. It exists for tests and diagnostics that need to assert on
// external state without paying for (or synchronizing with) a
// transaction.
func (t *TVar[T]) Peek() T {
	return *t.value.Load()
}

// snapshotUnderGate takes a gate-consistent point read of the cell. The
// spec is explicit that evaluation-time reads are "gate-consistent point
// reads, not lock-free atomics" (§4.E), so every Read/Write leaf goes
// through this rather than Peek.
func (t *TVar[T]) snapshotUnderGate(rt *Runtime) T {
	rt.gate.Lock()
	defer rt.gate.Unlock()
	return *t.value.Load()
}

// The following methods implement cellHandle and are only ever invoked
// while the caller already holds rt.gate (commitAttempt, park, fire).

func (t *TVar[T]) cellID() uint64 { return t.id }

func (t *TVar[T]) validate(observed any) bool {
	ov, ok := observed.(T)
	if !ok {
		return false
	}
	return *t.value.Load() == ov
}

func (t *TVar[T]) publish(current any) []*waiter {
	cv := current.(T)
	t.value.Store(&cv)
	woken := t.waiters
	t.waiters = nil
	return woken
}

func (t *TVar[T]) park(w *waiter) {
	t.waiters = append(t.waiters, w)
}

func (t *TVar[T]) unpark(txnID uint64) {
	kept := t.waiters[:0]
	for _, w := range t.waiters {
		if w.txnID != txnID {
			kept = append(kept, w)
		}
	}
	t.waiters = kept
}
