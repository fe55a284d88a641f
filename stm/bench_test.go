package stm_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/jekaa-labs/stm"
)

// BenchmarkConcurrentReadWrite measures throughput under a mixed
// read/write workload, mirroring the teacher's
// BenchmarkConcurrentReadWrite but expressed over Atomically/TVar.
func BenchmarkConcurrentReadWrite(b *testing.B) {
	ctx := context.Background()
	rt := stm.New(ctx)
	defer rt.Close()

	key := stm.NewTVar(rt, 0)

	var ops atomic.Int64
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if ops.Add(1)%10 == 0 {
				_, _ = stm.Atomically(ctx, rt, stm.Set(key, 1))
			} else {
				_, _ = stm.Atomically(ctx, rt, stm.Get(key))
			}
		}
	})
}
