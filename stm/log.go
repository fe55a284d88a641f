package stm

import "maps"

// cellHandle is a type-erased capability pair over a *TVar[T]: the
// executor and commit protocol operate on cells of many different T
// within a single attempt, so the log can't hold typed *TVar[T]
// pointers directly. Each TVar[T] satisfies this interface, "type
// recovering" T only inside its own methods (tvar.go).
//
// Every method here is only ever called while the owning Runtime's
// commit gate is held.
type cellHandle interface {
	cellID() uint64
	validate(observed any) bool
	publish(current any) []*waiter
	park(w *waiter)
	unpark(txnID uint64)
}

// logEntry is one TVar's record within a single attempt (spec §3
// LogEntry): the value observed on first contact, the value that would
// be committed (equal to observed until the first write), and whether
// this cell was written at all.
type logEntry struct {
	cell     cellHandle
	observed any
	current  any
	touched  bool
}

// txnLog maps TVar id to logEntry for one attempt. Every cell the attempt
// has touched, read or written, appears exactly once.
type txnLog struct {
	entries map[uint64]logEntry
}

func newTxnLog() *txnLog {
	return &txnLog{entries: make(map[uint64]logEntry)}
}

// clone returns an independent copy of the log suitable for OrElse's
// pre-left snapshot: entries are plain structs (not pointers), so copying
// the map copies the entries by value and later in-place replacement of
// an entry in one copy never affects the other.
func (l *txnLog) clone() map[uint64]logEntry {
	return maps.Clone(l.entries)
}
