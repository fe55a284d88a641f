package stm

// Txn is a transactional computation yielding a value of type T. It is a
// closed tagged sum — Pure, Read, Write, Bind, Retry, OrElse, Abort are
// the only variants — sealed by the unexported txnNode method so only
// this package can add new ones. The executor performs exhaustive case
// analysis over the concrete node types rather than dispatching through
// open polymorphism (see Design Notes on dynamic dispatch).
//
// A Txn value is immutable and may be committed any number of times;
// each commit allocates an independent attempt with its own TxnId and
// log (see Runtime.Atomically).
type Txn[T any] interface {
	txnNode()
}

type pureNode[T any] struct{ val T }

func (pureNode[T]) txnNode() {}

type readNode[T comparable] struct{ tvar *TVar[T] }

func (readNode[T]) txnNode() {}

type writeNode[T comparable] struct {
	tvar *TVar[T]
	val  T
}

func (writeNode[T]) txnNode() {}

// bindNode carries its own continuation closure rather than a (prev, k)
// pair with a free type parameter: Go's type switches can't match a
// generic variant whose type parameter isn't fixed by the switch's own
// parameter, so the left-hand type A of Bind is captured and erased into
// run at construction time and "type recovered" only inside the closure —
// exactly the capability-pair boxing the design notes call for.
type bindNode[T any] struct {
	run func(*evalCtx) result[T]
}

func (bindNode[T]) txnNode() {}

type retryNode[T any] struct{}

func (retryNode[T]) txnNode() {}

type orElseNode[T any] struct{ left, right Txn[T] }

func (orElseNode[T]) txnNode() {}

type abortNode[T any] struct{ err error }

func (abortNode[T]) txnNode() {}

// Pure yields a with no effect.
func Pure[T any](a T) Txn[T] { return pureNode[T]{val: a} }

// Read yields the cell's value via the attempt's log.
func Read[T comparable](t *TVar[T]) Txn[T] { return readNode[T]{tvar: t} }

// Write records v in the log for t; it yields unit.
func Write[T comparable](t *TVar[T], v T) Txn[struct{}] {
	return writeNode[T]{tvar: t, val: v}
}

// Bind sequences prev, then k(result) once prev produces a value. If prev
// signals retry or abort, k is never invoked and the signal propagates.
func Bind[A, B any](prev Txn[A], k func(A) Txn[B]) Txn[B] {
	return bindNode[B]{run: func(ev *evalCtx) result[B] {
		pr := evalTxn(ev, prev)
		if pr.sig != sigValue {
			return result[B]{sig: pr.sig, err: pr.err}
		}
		return evalTxn(ev, k(pr.val))
	}}
}

// Retry signals that this attempt cannot make progress with the values it
// has observed; it parks on its read set until one of them changes.
func Retry[T any]() Txn[T] { return retryNode[T]{} }

// OrElse runs left; if left signals retry, its log is discarded and right
// is run from the pre-left log state. If left aborts or produces a value,
// right never runs.
func OrElse[T any](left, right Txn[T]) Txn[T] {
	return orElseNode[T]{left: left, right: right}
}

// Abort signals a user-level transactional failure carrying err. The
// attempt unwinds without mutating any cell.
func Abort[T any](err error) Txn[T] { return abortNode[T]{err: err} }

// Check is a guard: it yields unit when p holds, and forces a retry
// otherwise.
func Check(p bool) Txn[struct{}] {
	if p {
		return Pure(struct{}{})
	}
	return Retry[struct{}]()
}

// Get is an alias for Read, matching the application-facing vocabulary of
// spec §4.B ("get ≡ Read").
func Get[T comparable](t *TVar[T]) Txn[T] { return Read(t) }

// Set is an alias for Write ("set(v) ≡ Write(_, v)").
func Set[T comparable](t *TVar[T], v T) Txn[struct{}] { return Write(t, v) }

// Modify desugars to Bind(Read, x -> Write(_, f(x))), per spec §4.B.
func Modify[T comparable](t *TVar[T], f func(T) T) Txn[struct{}] {
	return Bind(Read(t), func(x T) Txn[struct{}] {
		return Write(t, f(x))
	})
}
