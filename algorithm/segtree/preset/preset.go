// Package preset 提供常用的 (幺半群, 延迟标记) 组合，可直接传给 segtree 的构造函数。
package preset

import (
	"cmp"
	"math"
	"sort"

	"github.com/wyfcoding/segtree/algorithm/segtree"
)

// Number 是支持加法与乘法的数值类型。
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

const (
	// Inf 是 int64 预设使用的正无穷。留出余量，使标记合成中的加减不会溢出。
	Inf int64 = math.MaxInt64 / 4
	// NegInf 是 int64 预设使用的负无穷。
	NegInf int64 = -Inf
)

func Sum[T Number](a, b T) T { return a + b }

func Min[T cmp.Ordered](a, b T) T { return min(a, b) }

func Max[T cmp.Ordered](a, b T) T { return max(a, b) }

// RangeAddRangeSum 区间加、区间和。
func RangeAddRangeSum[T Number]() segtree.LazyOps[T, T] {
	return segtree.LazyOps[T, T]{
		Op:          Sum[T],
		Mapping:     func(x, m T, size int) T { return x + m*T(size) },
		Composition: Sum[T],
		Identity:    0,
	}
}

// RangeAddRangeMin 区间加、区间最小值。inf 为最小值的单位元。
func RangeAddRangeMin[T Number](inf T) segtree.LazyOps[T, T] {
	return segtree.LazyOps[T, T]{
		Op:          Min[T],
		Mapping:     func(x, m T, _ int) T { return x + m },
		Composition: Sum[T],
		Identity:    inf,
	}
}

// RangeAddRangeMax 区间加、区间最大值。negInf 为最大值的单位元。
func RangeAddRangeMax[T Number](negInf T) segtree.LazyOps[T, T] {
	return segtree.LazyOps[T, T]{
		Op:          Max[T],
		Mapping:     func(x, m T, _ int) T { return x + m },
		Composition: Sum[T],
		Identity:    negInf,
	}
}

// RangeAssignRangeMin 区间赋值、区间最小值，后写入者覆盖先写入者。
func RangeAssignRangeMin[T Number](inf T) segtree.LazyOps[T, T] {
	return segtree.LazyOps[T, T]{
		Op:          Min[T],
		Mapping:     func(_, m T, _ int) T { return m },
		Composition: func(_, incoming T) T { return incoming },
		Identity:    inf,
	}
}

// RangeAssignRangeSum 区间赋值、区间和。
func RangeAssignRangeSum[T Number]() segtree.LazyOps[T, T] {
	return segtree.LazyOps[T, T]{
		Op:          Sum[T],
		Mapping:     func(_, m T, size int) T { return m * T(size) },
		Composition: func(_, incoming T) T { return incoming },
		Identity:    0,
	}
}

// RangeChmaxRangeMin 区间取 max(x, m) (下限截断)、区间最小值。
func RangeChmaxRangeMin[T Number](inf T) segtree.LazyOps[T, T] {
	return segtree.LazyOps[T, T]{
		Op:          Min[T],
		Mapping:     func(x, m T, _ int) T { return max(x, m) },
		Composition: Max[T],
		Identity:    inf,
	}
}

// RangeChminRangeMax 区间取 min(x, m) (上限截断)、区间最大值。
func RangeChminRangeMax[T Number](negInf T) segtree.LazyOps[T, T] {
	return segtree.LazyOps[T, T]{
		Op:          Max[T],
		Mapping:     func(x, m T, _ int) T { return min(x, m) },
		Composition: Min[T],
		Identity:    negInf,
	}
}

var catalog = map[string]func() segtree.LazyOps[int64, int64]{
	"add_sum":    RangeAddRangeSum[int64],
	"add_min":    func() segtree.LazyOps[int64, int64] { return RangeAddRangeMin(Inf) },
	"add_max":    func() segtree.LazyOps[int64, int64] { return RangeAddRangeMax(NegInf) },
	"assign_min": func() segtree.LazyOps[int64, int64] { return RangeAssignRangeMin(Inf) },
	"assign_sum": RangeAssignRangeSum[int64],
	"chmax_min":  func() segtree.LazyOps[int64, int64] { return RangeChmaxRangeMin(Inf) },
	"chmin_max":  func() segtree.LazyOps[int64, int64] { return RangeChminRangeMax(NegInf) },
}

// Lookup 按名称返回 int64 延迟预设。
func Lookup(name string) (segtree.LazyOps[int64, int64], bool) {
	f, ok := catalog[name]
	if !ok {
		return segtree.LazyOps[int64, int64]{}, false
	}
	return f(), true
}

// Names 返回全部 int64 延迟预设名称 (已排序)。
func Names() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
