package stm

import "sync/atomic"

// idgen is a monotonic, never-reused 64-bit id counter safe for concurrent
// use. The runtime keeps one instance per id stream (cells, attempts) so
// the two namespaces never collide despite sharing the same underlying
// mechanism.
type idgen struct {
	n atomic.Uint64
}

// next returns a fresh id starting at 1; 0 is reserved so it can double as
// a "no id" sentinel where needed.
func (g *idgen) next() uint64 {
	return g.n.Add(1)
}
