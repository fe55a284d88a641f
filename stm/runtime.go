package stm

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
	"weak"
)

// Runtime owns the process-wide-in-scope state a set of transactions
// share: the commit gate, the id counters, and the background idle-waiter
// sweep. It is a value, not a package singleton, so tests can run several
// isolated STM worlds concurrently (Design Notes, "Global State").
type Runtime struct {
	gate sync.Mutex

	cellIDs idgen
	txnIDs  idgen

	cellsMu sync.Mutex
	cells   []weak.Pointer[tvarCore]

	logger  *slog.Logger
	metrics *Metrics

	stopSweep context.CancelFunc
	sweepDone chan struct{}
	closed    atomic.Bool
}

// New builds a Runtime and starts its background idle-waiter sweep.
// Callers must call Close to stop it.
func New(ctx context.Context, opts ...Option) *Runtime {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}

	sweepCtx, cancel := context.WithCancel(ctx)
	rt := &Runtime{
		logger:    cfg.logger,
		metrics:   cfg.metrics,
		stopSweep: cancel,
		sweepDone: make(chan struct{}),
	}

	go rt.runSweep(sweepCtx, cfg.sweepInterval)
	return rt
}

// Close stops the idle-waiter sweep and blocks until it has exited.
func (rt *Runtime) Close() {
	rt.closed.Store(true)
	rt.stopSweep()
	<-rt.sweepDone
}

func (rt *Runtime) registerCell(core *tvarCore) {
	rt.cellsMu.Lock()
	defer rt.cellsMu.Unlock()
	rt.cells = append(rt.cells, weak.Make(core))
}

// Atomically schedules one transaction value to completion: it runs
// attempts, silently re-running on Conflict, parking and resuming on
// Retried, and surfaces Aborted (wrapped in ErrAborted) and Failed to the
// caller (spec §6 item 2, §7). Each call allocates fresh TxnIds for every attempt it
// runs, even when re-committing the same Txn value — referential
// transparency of commit (Design Notes, testable property 5).
func Atomically[T any](ctx context.Context, rt *Runtime, txn Txn[T]) (T, error) {
	var zero T
	for {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		if rt.closed.Load() {
			return zero, ErrRuntimeClosed
		}

		txnID := rt.txnIDs.next()
		ev := &evalCtx{log: newTxnLog(), rt: rt}
		res := evalWithRecover(ev, txn)

		switch res.sig {
		case sigValue:
			waiters, err := rt.commitAttempt(ev.log)
			if err != nil {
				rt.logger.Debug("commit conflict, re-running", "txnID", txnID)
				rt.incConflict()
				continue
			}
			rt.logger.Debug("committed", "txnID", txnID, "entries", len(ev.log.entries))
			rt.incCommit()
			rt.fireAll(waiters)
			return res.val, nil

		case sigAbort:
			rt.logger.Debug("aborted", "txnID", txnID, "err", res.err)
			rt.incAbort()
			return zero, fmt.Errorf("%w: %w", ErrAborted, res.err)

		case sigFail:
			rt.logger.Warn("recovered panic during evaluation", "txnID", txnID, "err", res.err)
			rt.incFailure()
			return zero, res.err

		case sigRetry:
			rt.incRetry()
			woken := make(chan struct{}, 1)
			parked := rt.park(ctx, ev.log, txnID, func() {
				select {
				case woken <- struct{}{}:
				default:
				}
			})
			if !parked {
				// The world already moved since evaluation finished;
				// reschedule immediately rather than waiting for a wake
				// that will never come for this read set.
				continue
			}
			rt.incParked()
			select {
			case <-woken:
				continue
			case <-ctx.Done():
				rt.logger.Debug("parked attempt cancelled", "txnID", txnID)
				rt.cancelWaiter(ev.log, txnID)
				return zero, ctx.Err()
			}
		}
	}
}
