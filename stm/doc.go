// Package stm implements a small Software Transactional Memory runtime:
// transactional cells (TVar) plus a composable transaction description
// (Txn) that is interpreted by an executor and committed under a single
// process-wide commit gate.
//
// A Runtime owns the commit gate, the id counters, and the background
// waiter sweep; application code never touches a package-level singleton,
// so multiple isolated runtimes can coexist in the same process (handy in
// tests).
package stm
