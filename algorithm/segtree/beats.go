package segtree

// SegmentTreeBeats 是允许 mapping 失败的延迟线段树 (Segment Tree Beats)。
// 当标记无法折叠进某个内部节点的聚合值时，立即求值两个子节点并由它们重新计算该节点。
// 作用的均摊复杂度取决于具体的作用族 (例如区间 chmin/chmax/add 与区间和)，由调用方保证。
type SegmentTreeBeats[T, M any] struct {
	data        []T
	lazy        []pending[M]
	op          Op[T]
	mapping     BeatsMapping[T, M]
	composition Composition[M]
	identity    T
	n           int
	size        int
	stats       Stats
}

// NewSegmentTreeBeats 创建一棵所有位置都为 identity 的 Beats 线段树。
func NewSegmentTreeBeats[T, M any](n int, op Op[T], mapping BeatsMapping[T, M], composition Composition[M], identity T) *SegmentTreeBeats[T, M] {
	if n < 0 {
		n = 0
	}
	size := ceilPow2(n)
	data := make([]T, 2*size)
	for i := range data {
		data[i] = identity
	}
	return &SegmentTreeBeats[T, M]{
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

// NewSegmentTreeBeatsWith 使用打包好的策略函数创建 Beats 线段树。
func NewSegmentTreeBeatsWith[T, M any](n int, ops BeatsOps[T, M]) *SegmentTreeBeats[T, M] {
	return NewSegmentTreeBeats(n, ops.Op, ops.Mapping, ops.Composition, ops.Identity)
}

func (st *SegmentTreeBeats[T, M]) Len() int     { return st.n }
func (st *SegmentTreeBeats[T, M]) Stats() Stats { return st.stats }

// Build 用 values 初始化叶子并自底向上计算内部节点。
func (st *SegmentTreeBeats[T, M]) Build(values []T) error {
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

func (st *SegmentTreeBeats[T, M]) pushChildren(node int, tag M) {
	st.lazy[2*node] = guardCompose(st.composition, st.lazy[2*node], tag)
	st.lazy[2*node+1] = guardCompose(st.composition, st.lazy[2*node+1], tag)
}

// evaluate 先把标记合成进子节点，再尝试作用到自身；
// 失败时子节点已经持有标记，只需立即求值它们并重新合并。
func (st *SegmentTreeBeats[T, M]) evaluate(node, l, r int) {
	p := st.lazy[node]
	if !p.set {
		return
	}
	st.lazy[node] = pending[M]{}
	leaf := node >= st.size
	if !leaf {
		st.pushChildren(node, p.tag)
	}

	val, ok := st.mapping(st.data[node], p.tag, r-l)
	if ok {
		st.data[node] = val
		return
	}
	if leaf {
		panic(ErrBeatsLeafFailure.Derive("mapping failed at leaf %d", node-st.size).WithContext("index", node-st.size))
	}

	st.stats.Fallbacks++
	mid := (l + r) >> 1
	st.evaluate(2*node, l, mid)
	st.evaluate(2*node+1, mid, r)
	st.data[node] = st.op(st.data[2*node], st.data[2*node+1])
}

// Apply 将标记 m 作用到 [left, right) 中的每个位置。
func (st *SegmentTreeBeats[T, M]) Apply(left, right int, m M) {
	left, right = clamp(left, right, st.n)
	st.stats.Applies++
	if left >= right {
		return
	}
	st.apply(1, 0, st.size, left, right, m)
}

func (st *SegmentTreeBeats[T, M]) apply(node, l, r, left, right int, m M) {
	st.evaluate(node, l, r)

	if left <= l && r <= right {
		st.lazy[node] = guardCompose(st.composition, st.lazy[node], m)
		st.evaluate(node, l, r)
		return
	}
	if right <= l || r <= left {
		return
	}
	mid := (l + r) >> 1
	st.apply(2*node, l, mid, left, right, m)
	st.apply(2*node+1, mid, r, left, right, m)
	st.data[node] = st.op(st.data[2*node], st.data[2*node+1])
}

// Query 返回 [left, right) 的聚合值，空区间返回单位元。
func (st *SegmentTreeBeats[T, M]) Query(left, right int) T {
	left, right = clamp(left, right, st.n)
	st.stats.Queries++
	if left >= right {
		return st.identity
	}
	return st.query(1, 0, st.size, left, right)
}

func (st *SegmentTreeBeats[T, M]) query(node, l, r, left, right int) T {
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
func (st *SegmentTreeBeats[T, M]) GetByIndex(index int) (T, error) {
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

// evaluateAll 自顶向下下推全部标记。内部节点不调用 mapping，
// 而是在子树求值完成后直接由子节点合并，因此不会触发失败路径。
func (st *SegmentTreeBeats[T, M]) evaluateAll(node, l, r int) {
	if node >= st.size {
		st.evaluate(node, l, r)
		return
	}
	if p := st.lazy[node]; p.set {
		st.lazy[node] = pending[M]{}
		st.pushChildren(node, p.tag)
	}
	mid := (l + r) >> 1
	st.evaluateAll(2*node, l, mid)
	st.evaluateAll(2*node+1, mid, r)
	st.data[node] = st.op(st.data[2*node], st.data[2*node+1])
}

// GetData 求值所有标记后返回长度为 n 的逻辑数组视图，调用方不得修改。
func (st *SegmentTreeBeats[T, M]) GetData() []T {
	st.stats.Reads++
	st.evaluateAll(1, 0, st.size)
	return st.data[st.size : st.size+st.n : st.size+st.n]
}
