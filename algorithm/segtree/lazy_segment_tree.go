package segtree

// LazySegmentTree 延迟传播线段树，支持区间作用与区间查询。
// 空间复杂度 O(2N)；构建 O(N)，作用、查询与单点访问均为 O(log N)。
//
// 节点 i 的聚合值不包含它自身尚未下推的标记；访问节点前总是先下推 (evaluate)。
type LazySegmentTree[T, M any] struct {
	data        []T          // 1 号为根，叶子从 size 开始。
	lazy        []pending[M] // 与 data 一一对应的延迟标记。
	op          Op[T]
	mapping     Mapping[T, M]
	composition Composition[M]
	identity    T
	n           int // 逻辑长度
	size        int // 叶子数，不小于 n 的 2 的幂
	stats       Stats
}

// NewLazySegmentTree 创建一棵所有位置都为 identity 的延迟线段树。
// n: 逻辑长度；op: 查询运算；mapping: 标记作用；composition: 标记合成。
func NewLazySegmentTree[T, M any](n int, op Op[T], mapping Mapping[T, M], composition Composition[M], identity T) *LazySegmentTree[T, M] {
	if n < 0 {
		n = 0
	}
	size := ceilPow2(n)
	data := make([]T, 2*size)
	for i := range data {
		data[i] = identity
	}
	return &LazySegmentTree[T, M]{
		data:        data,
		lazy:        make([]pending[M], 2*size),
		op:          op,
		mapping:     mapping,
		composition: composition,
		identity:    identity,
		n:           n,
		size:        size,
	}
}

// NewLazySegmentTreeWith 使用打包好的策略函数创建延迟线段树。
func NewLazySegmentTreeWith[T, M any](n int, ops LazyOps[T, M]) *LazySegmentTree[T, M] {
	return NewLazySegmentTree(n, ops.Op, ops.Mapping, ops.Composition, ops.Identity)
}

// Len 返回逻辑长度。
func (st *LazySegmentTree[T, M]) Len() int { return st.n }

// Stats 返回操作计数。
func (st *LazySegmentTree[T, M]) Stats() Stats { return st.stats }

// Build 用 values 初始化叶子并自底向上计算内部节点，丢弃所有延迟标记。
// len(values) 必须等于构造时的 n。
func (st *LazySegmentTree[T, M]) Build(values []T) error {
	if len(values) != st.n {
		return sizeError(len(values), st.n)
	}
	for i := range st.lazy {
		st.lazy[i] = pending[M]{}
	}
	for i := 0; i < st.size; i++ {
		if i < st.n {
			st.data[st.size+i] = values[i]
		} else {
			st.data[st.size+i] = st.identity
		}
	}
	for i := st.size - 1; i > 0; i-- {
		st.data[i] = st.op(st.data[2*i], st.data[2*i+1])
	}
	st.stats.Builds++
	return nil
}

// evaluate 将节点 node 的标记作用到自身，并合成进两个子节点。
// [l, r) 是 node 所代表的区间。
func (st *LazySegmentTree[T, M]) evaluate(node, l, r int) {
	p := st.lazy[node]
	if !p.set {
		return
	}
	if node < st.size {
		st.lazy[2*node] = guardCompose(st.composition, st.lazy[2*node], p.tag)
		st.lazy[2*node+1] = guardCompose(st.composition, st.lazy[2*node+1], p.tag)
	}
	st.data[node] = st.mapping(st.data[node], p.tag, r-l)
	st.lazy[node] = pending[M]{}
}

// Apply 将标记 m 作用到 [left, right) 中的每个位置。
func (st *LazySegmentTree[T, M]) Apply(left, right int, m M) {
	left, right = clamp(left, right, st.n)
	st.stats.Applies++
	if left >= right {
		return
	}
	st.apply(1, 0, st.size, left, right, m)
}

func (st *LazySegmentTree[T, M]) apply(node, l, r, left, right int, m M) {
	st.evaluate(node, l, r)

	// 情况1: 完全包含，挂上标记后立即求值，子节点保留合成后的标记。
	if left <= l && r <= right {
		st.lazy[node] = guardCompose(st.composition, st.lazy[node], m)
		st.evaluate(node, l, r)
		return
	}
	// 情况2: 不相交。
	if right <= l || r <= left {
		return
	}
	// 情况3: 部分重叠，递归后由子节点重新计算。
	mid := (l + r) >> 1
	st.apply(2*node, l, mid, left, right, m)
	st.apply(2*node+1, mid, r, left, right, m)
	st.data[node] = st.op(st.data[2*node], st.data[2*node+1])
}

// Query 返回 [left, right) 上所有元素的聚合值，空区间返回单位元。
func (st *LazySegmentTree[T, M]) Query(left, right int) T {
	left, right = clamp(left, right, st.n)
	st.stats.Queries++
	if left >= right {
		return st.identity
	}
	return st.query(1, 0, st.size, left, right)
}

func (st *LazySegmentTree[T, M]) query(node, l, r, left, right int) T {
	st.evaluate(node, l, r)

	if right <= l || r <= left {
		return st.identity
	}
	if left <= l && r <= right {
		return st.data[node]
	}
	mid := (l + r) >> 1
	return st.op(
		st.query(2*node, l, mid, left, right),
		st.query(2*node+1, mid, r, left, right),
	)
}

// GetByIndex 返回位置 index 的当前值。
func (st *LazySegmentTree[T, M]) GetByIndex(index int) (T, error) {
	if index < 0 || index >= st.n {
		var zero T
		return zero, indexError(index, st.n)
	}
	st.stats.Reads++

	node, l, r := 1, 0, st.size
	for {
		st.evaluate(node, l, r)
		if node >= st.size {
			return st.data[node], nil
		}
		mid := (l + r) >> 1
		if index < mid {
			node, r = 2*node, mid
		} else {
			node, l = 2*node+1, mid
		}
	}
}

// evaluateAll 立即求值 node 子树中的所有标记。
func (st *LazySegmentTree[T, M]) evaluateAll(node, l, r int) {
	st.evaluate(node, l, r)
	if node >= st.size {
		return
	}
	mid := (l + r) >> 1
	st.evaluateAll(2*node, l, mid)
	st.evaluateAll(2*node+1, mid, r)
}

// GetData 求值所有标记后返回长度为 n 的逻辑数组视图。
// 返回的切片与树共享内存，调用方不得修改。
func (st *LazySegmentTree[T, M]) GetData() []T {
	st.stats.Reads++
	st.evaluateAll(1, 0, st.size)
	return st.data[st.size : st.size+st.n : st.size+st.n]
}
