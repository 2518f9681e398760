package preset

import "github.com/wyfcoding/segtree/algorithm/segtree"

// BeatsNode 区间 chmin/chmax/add 与区间和的 Beats 节点 (Ji Driver)。
// 同时维护最大值、严格次大值、最小值、严格次小值及其出现次数。
type BeatsNode struct {
	Sum      int64
	Count    int64 // 区间内真实元素个数，填充叶子为 0
	Max1     int64
	Max2     int64
	MaxCount int64
	Min1     int64
	Min2     int64
	MinCount int64
}

// BeatsIdentity 返回 BeatsNode 的单位元。
func BeatsIdentity() BeatsNode {
	return BeatsNode{Max1: NegInf, Max2: NegInf, Min1: Inf, Min2: Inf}
}

// BeatsLeaf 返回单个元素 v 对应的叶子节点。
func BeatsLeaf(v int64) BeatsNode {
	return BeatsNode{Sum: v, Count: 1, Max1: v, Max2: NegInf, MaxCount: 1, Min1: v, Min2: Inf, MinCount: 1}
}

// BeatsLeaves 将 values 转换为叶子节点切片，供 Build 使用。
func BeatsLeaves(values []int64) []BeatsNode {
	leaves := make([]BeatsNode, len(values))
	for i, v := range values {
		leaves[i] = BeatsLeaf(v)
	}
	return leaves
}

// MergeBeats 合并两个相邻区间。
func MergeBeats(a, b BeatsNode) BeatsNode {
	res := BeatsNode{Sum: a.Sum + b.Sum, Count: a.Count + b.Count}

	switch {
	case a.Max1 > b.Max1:
		res.Max1, res.MaxCount, res.Max2 = a.Max1, a.MaxCount, max(a.Max2, b.Max1)
	case a.Max1 < b.Max1:
		res.Max1, res.MaxCount, res.Max2 = b.Max1, b.MaxCount, max(a.Max1, b.Max2)
	default:
		res.Max1, res.MaxCount, res.Max2 = a.Max1, a.MaxCount+b.MaxCount, max(a.Max2, b.Max2)
	}

	switch {
	case a.Min1 < b.Min1:
		res.Min1, res.MinCount, res.Min2 = a.Min1, a.MinCount, min(a.Min2, b.Min1)
	case a.Min1 > b.Min1:
		res.Min1, res.MinCount, res.Min2 = b.Min1, b.MinCount, min(a.Min1, b.Min2)
	default:
		res.Min1, res.MinCount, res.Min2 = a.Min1, a.MinCount+b.MinCount, min(a.Min2, b.Min2)
	}
	return res
}

// raiseMin 将所有最小值抬高到 lo，要求 Min1 < lo < Min2。
func (x BeatsNode) raiseMin(lo int64) BeatsNode {
	x.Sum += (lo - x.Min1) * x.MinCount
	if x.Min1 == x.Max1 {
		x.Min1, x.Max1 = lo, lo
		return x
	}
	if x.Max2 == x.Min1 {
		x.Max2 = lo
	}
	x.Min1 = lo
	return x
}

// lowerMax 将所有最大值压低到 hi，要求 Max2 < hi < Max1。
func (x BeatsNode) lowerMax(hi int64) BeatsNode {
	x.Sum += (hi - x.Max1) * x.MaxCount
	if x.Max1 == x.Min1 {
		x.Min1, x.Max1 = hi, hi
		return x
	}
	if x.Min2 == x.Max1 {
		x.Min2 = hi
	}
	x.Max1 = hi
	return x
}

func (x BeatsNode) shift(v int64) BeatsNode {
	x.Sum += v * x.Count
	x.Max1 += v
	x.Min1 += v
	if x.Max2 != NegInf {
		x.Max2 += v
	}
	if x.Min2 != Inf {
		x.Min2 += v
	}
	return x
}

// MapBeats 将变换 f 作用到节点 x。仅当所有最小值或所有最大值可以整体移动时成功，
// 否则返回 ok == false，由树下推到子节点。
func MapBeats(x BeatsNode, f ChmaxChminAdd[int64], _ int) (BeatsNode, bool) {
	if x.Count == 0 {
		return x, true
	}
	if f.Chmax > x.Min1 {
		if f.Chmax >= x.Min2 {
			return x, false
		}
		x = x.raiseMin(f.Chmax)
	}
	if f.Chmin < x.Max1 {
		if f.Chmin <= x.Max2 {
			return x, false
		}
		x = x.lowerMax(f.Chmin)
	}
	if f.Add != 0 {
		x = x.shift(f.Add)
	}
	return x, true
}

// RangeChminChmaxAddRangeSum 区间 chmin/chmax/add、区间和/最值的 Beats 预设。
// 均摊复杂度 O(log² N)。
func RangeChminChmaxAddRangeSum() segtree.BeatsOps[BeatsNode, ChmaxChminAdd[int64]] {
	return segtree.BeatsOps[BeatsNode, ChmaxChminAdd[int64]]{
		Op:      MergeBeats,
		Mapping: MapBeats,
		Composition: func(existing, incoming ChmaxChminAdd[int64]) ChmaxChminAdd[int64] {
			return existing.Compose(incoming)
		},
		Identity: BeatsIdentity(),
	}
}
