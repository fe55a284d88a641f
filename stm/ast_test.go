package stm_test

import (
	"context"
	"testing"

	"github.com/jekaa-labs/stm"
	"github.com/stretchr/testify/require"
)

// TestBindLeftIdentity checks Bind(Pure(a), k) ≡ k(a).
func TestBindLeftIdentity(t *testing.T) {
	ctx := context.Background()
	rt := stm.New(ctx)
	defer rt.Close()

	k := func(x int) stm.Txn[int] { return stm.Pure(x * 2) }

	left := stm.Bind(stm.Pure(21), k)
	right := k(21)

	lv, err := stm.Atomically(ctx, rt, left)
	require.NoError(t, err)
	rv, err := stm.Atomically(ctx, rt, right)
	require.NoError(t, err)
	require.Equal(t, rv, lv)
}

// TestBindRightIdentity checks Bind(m, Pure) ≡ m.
func TestBindRightIdentity(t *testing.T) {
	ctx := context.Background()
	rt := stm.New(ctx)
	defer rt.Close()

	a := stm.NewTVar(rt, 7)
	m := stm.Read(a)
	bound := stm.Bind(stm.Read(a), stm.Pure[int])

	mv, err := stm.Atomically(ctx, rt, m)
	require.NoError(t, err)
	bv, err := stm.Atomically(ctx, rt, bound)
	require.NoError(t, err)
	require.Equal(t, mv, bv)
}

// TestBindAssociativity checks Bind(Bind(m,k1),k2) ≡ Bind(m, x -> Bind(k1(x),k2)).
func TestBindAssociativity(t *testing.T) {
	ctx := context.Background()
	rt := stm.New(ctx)
	defer rt.Close()

	m := stm.Pure(3)
	k1 := func(x int) stm.Txn[int] { return stm.Pure(x + 1) }
	k2 := func(x int) stm.Txn[int] { return stm.Pure(x * 10) }

	left := stm.Bind(stm.Bind(m, k1), k2)
	right := stm.Bind(m, func(x int) stm.Txn[int] { return stm.Bind(k1(x), k2) })

	lv, err := stm.Atomically(ctx, rt, left)
	require.NoError(t, err)
	rv, err := stm.Atomically(ctx, rt, right)
	require.NoError(t, err)
	require.Equal(t, rv, lv)
	require.Equal(t, 40, lv)
}

// TestModifyLaw checks Modify(f) ≡ Bind(get, x -> set(f(x))).
func TestModifyLaw(t *testing.T) {
	ctx := context.Background()
	rt := stm.New(ctx)
	defer rt.Close()

	a := stm.NewTVar(rt, 10)
	b := stm.NewTVar(rt, 10)
	f := func(x int) int { return x + 5 }

	_, err := stm.Atomically(ctx, rt, stm.Modify(a, f))
	require.NoError(t, err)

	desugared := stm.Bind(stm.Get(b), func(x int) stm.Txn[struct{}] {
		return stm.Set(b, f(x))
	})
	_, err = stm.Atomically(ctx, rt, desugared)
	require.NoError(t, err)

	require.Equal(t, b.Peek(), a.Peek())
}

// TestOrElseRetryLeftIdentity checks OrElse(Retry, t) ≡ t.
func TestOrElseRetryLeftIdentity(t *testing.T) {
	ctx := context.Background()
	rt := stm.New(ctx)
	defer rt.Close()

	inner := stm.Pure(99)
	combined := stm.OrElse(stm.Retry[int](), inner)

	iv, err := stm.Atomically(ctx, rt, inner)
	require.NoError(t, err)
	cv, err := stm.Atomically(ctx, rt, combined)
	require.NoError(t, err)
	require.Equal(t, iv, cv)
}

// TestOrElseRetryRightIdentity checks OrElse(t, Retry) behaves as t when t
// doesn't itself retry.
func TestOrElseRetryRightIdentity(t *testing.T) {
	ctx := context.Background()
	rt := stm.New(ctx)
	defer rt.Close()

	inner := stm.Pure(7)
	combined := stm.OrElse(inner, stm.Retry[int]())

	iv, err := stm.Atomically(ctx, rt, inner)
	require.NoError(t, err)
	cv, err := stm.Atomically(ctx, rt, combined)
	require.NoError(t, err)
	require.Equal(t, iv, cv)
}
