package stm

import "fmt"

// signal is the outcome of evaluating one AST node: either it produced a
// value, or it short-circuited the attempt (spec §4.D).
type signal int

const (
	sigValue signal = iota
	sigRetry
	sigAbort
	sigFail
)

// result carries a signal plus its payload up through the recursive
// evaluation of a Txn[T].
type result[T any] struct {
	sig signal
	val T
	err error
}

// evalCtx is the per-attempt evaluation context: the log being built and
// the runtime whose gate guards every snapshot.
type evalCtx struct {
	log *txnLog
	rt  *Runtime
}

// evalTxn walks txn's AST, mutating ev.log as it goes. It performs
// exhaustive case analysis over the closed set of node variants. Bind is
// handled by invoking the closure it was constructed with (see ast.go),
// and Read/Write fall through to evalCellNode (see the default branch).
func evalTxn[T any](ev *evalCtx, txn Txn[T]) result[T] {
	switch n := txn.(type) {
	case pureNode[T]:
		return result[T]{sig: sigValue, val: n.val}

	case retryNode[T]:
		return result[T]{sig: sigRetry}

	case abortNode[T]:
		return result[T]{sig: sigAbort, err: n.err}

	case bindNode[T]:
		return n.run(ev)

	case orElseNode[T]:
		return evalOrElse(ev, n)

	default:
		// readNode[T] / writeNode[T] require T comparable, which this
		// generic switch can't express as a case guard, so they're
		// matched by the comparable-constrained helpers below via a
		// second type assertion layer.
		return evalCellNode(ev, txn)
	}
}

// evalOrElse implements spec §4.D's OrElse rule, including the
// union-of-read-sets requirement when both branches retry.
func evalOrElse[T any](ev *evalCtx, n orElseNode[T]) result[T] {
	snapshot := ev.log.clone()

	lr := evalTxn(ev, n.left)
	if lr.sig != sigRetry {
		// left produced a value, or aborted: it wins outright, right
		// never runs.
		return lr
	}

	leftLog := ev.log.entries
	ev.log.entries = snapshot

	rr := evalTxn(ev, n.right)
	if rr.sig == sigRetry {
		// Neither branch could proceed: remember every cell either one
		// touched so the wakeup registry parks on their union, not just
		// the surviving right-hand log.
		for id, e := range leftLog {
			if _, ok := ev.log.entries[id]; !ok {
				ev.log.entries[id] = logEntry{cell: e.cell, observed: e.observed, current: e.observed, touched: false}
			}
		}
	}
	return rr
}

// evalCellNode type-recovers readNode[T]/writeNode[T] for comparable T.
// It is only reachable when T happens to be comparable (readNode and
// writeNode are constructible only for comparable T via Read/Write), so
// the type assertions below never fail in practice; a mismatch indicates
// a bug elsewhere in this package, not a caller error.
func evalCellNode[T any](ev *evalCtx, txn Txn[T]) result[T] {
	if r, ok := tryEvalRead[T](ev, txn); ok {
		return r
	}
	if r, ok := tryEvalWrite[T](ev, txn); ok {
		return r
	}
	panic(fmt.Sprintf("stm: unreachable AST node %T", txn))
}

func tryEvalRead[T any](ev *evalCtx, txn any) (result[T], bool) {
	rn, ok := txn.(interface{ readCellValue(*evalCtx) any })
	if !ok {
		return result[T]{}, false
	}
	v := rn.readCellValue(ev)
	return result[T]{sig: sigValue, val: v.(T)}, true
}

func tryEvalWrite[T any](ev *evalCtx, txn any) (result[T], bool) {
	wn, ok := txn.(interface{ writeCellValue(*evalCtx) })
	if !ok {
		return result[T]{}, false
	}
	wn.writeCellValue(ev)
	var zero T
	return result[T]{sig: sigValue, val: zero}, true
}

// readCellValue/writeCellValue let readNode[T]/writeNode[T] perform their
// log bookkeeping through the concrete TVar[T] they close over, without
// the generic evalTxn needing to know T is comparable.

func (n readNode[T]) readCellValue(ev *evalCtx) any {
	t := n.tvar
	if e, ok := ev.log.entries[t.id]; ok {
		return e.current
	}
	v := t.snapshotUnderGate(ev.rt)
	ev.log.entries[t.id] = logEntry{cell: t, observed: v, current: v, touched: false}
	return v
}

func (n writeNode[T]) writeCellValue(ev *evalCtx) {
	t := n.tvar
	if e, ok := ev.log.entries[t.id]; ok {
		e.current = n.val
		e.touched = true
		ev.log.entries[t.id] = e
		return
	}
	observed := t.snapshotUnderGate(ev.rt)
	ev.log.entries[t.id] = logEntry{cell: t, observed: observed, current: n.val, touched: true}
}

// evalWithRecover runs txn and converts a host-level panic (e.g. a user
// function passed to Modify raising an unexpected error) into a Failed
// signal, distinguishable internally from Abort even though both surface
// the same error type to the caller (spec §7, §9 Open Question).
func evalWithRecover[T any](ev *evalCtx, txn Txn[T]) (res result[T]) {
	defer func() {
		if r := recover(); r != nil {
			err, ok := r.(error)
			if !ok {
				err = fmt.Errorf("stm: panic during evaluation: %v", r)
			}
			res = result[T]{sig: sigFail, err: err}
		}
	}()
	return evalTxn(ev, txn)
}
