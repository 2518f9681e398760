package segtree_test

import "math/rand/v2"

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func randomValues(r *rand.Rand, n int, lo, hi int64) []int64 {
	values := make([]int64, n)
	for i := range values {
		values[i] = lo + r.Int64N(hi-lo+1)
	}
	return values
}

// randomRange 返回 [0, n] 内的 l <= r，允许空区间。
func randomRange(r *rand.Rand, n int) (int, int) {
	a, b := r.IntN(n+1), r.IntN(n+1)
	if a > b {
		a, b = b, a
	}
	return a, b
}

func foldInt64(values []int64, op func(a, b int64) int64, identity int64) int64 {
	acc := identity
	for _, v := range values {
		acc = op(acc, v)
	}
	return acc
}
