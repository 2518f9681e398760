package preset

import (
	"github.com/shopspring/decimal"

	"github.com/wyfcoding/segtree/algorithm/segtree"
)

// DecimalSum 高精度十进制加法，适用于金额等不能有浮点误差的场景。
func DecimalSum(a, b decimal.Decimal) decimal.Decimal { return a.Add(b) }

// RangeAddDecimalSum 区间加、区间和 (decimal.Decimal)。
func RangeAddDecimalSum() segtree.LazyOps[decimal.Decimal, decimal.Decimal] {
	return segtree.LazyOps[decimal.Decimal, decimal.Decimal]{
		Op: DecimalSum,
		Mapping: func(x, m decimal.Decimal, size int) decimal.Decimal {
			return x.Add(m.Mul(decimal.NewFromInt(int64(size))))
		},
		Composition: DecimalSum,
		Identity:    decimal.Zero,
	}
}

// NewDecimalSumTree 创建一棵 decimal 区间和的单点更新线段树，单点作用为累加。
func NewDecimalSumTree(values []decimal.Decimal) *segtree.SegmentTree[decimal.Decimal] {
	st := segtree.NewSegmentTree(len(values), DecimalSum, DecimalSum, decimal.Zero)
	// 长度由 values 决定，不会失败。
	_ = st.Build(values)
	return st
}
