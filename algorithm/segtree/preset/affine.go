package preset

import "github.com/wyfcoding/segtree/algorithm/segtree"

// Affine 表示变换 x -> A*x + B。
type Affine[T Number] struct {
	A, B T
}

// Then 返回先执行 f 再执行 g 的变换。
func (f Affine[T]) Then(g Affine[T]) Affine[T] {
	return Affine[T]{A: g.A * f.A, B: g.A*f.B + g.B}
}

// Eval 对单个值求值。
func (f Affine[T]) Eval(x T) T { return f.A*x + f.B }

// RangeAffineRangeSum 区间仿射变换、区间和。
func RangeAffineRangeSum[T Number]() segtree.LazyOps[T, Affine[T]] {
	return segtree.LazyOps[T, Affine[T]]{
		Op: Sum[T],
		Mapping: func(x T, f Affine[T], size int) T {
			return f.A*x + f.B*T(size)
		},
		Composition: func(existing, incoming Affine[T]) Affine[T] {
			return existing.Then(incoming)
		},
		Identity: 0,
	}
}
