package segtree

// plNode 持久化延迟线段树节点。
// 节点一旦写入节点池就不再修改；下推标记总是生成新节点。
type plNode[T, M any] struct {
	data        T          // 不包含 lazy 的聚合值
	lazy        pending[M] // 尚未下推的标记
	left, right int        // 子节点在节点池中的索引，叶子为 0
}

// PersistentLazySegmentTree 可持久化延迟线段树。
// Apply 返回新快照号，旧快照保持可查询；未触及的子树在快照之间共享。
// 每个操作 O(log N)，查询同样会为下推标记分配 O(log N) 个新节点。
type PersistentLazySegmentTree[T, M any] struct {
	nodes       []plNode[T, M] // 静态数组模拟动态节点，0 号为空节点。
	roots       []int          // 每个快照的根节点索引。
	op          Op[T]
	mapping     Mapping[T, M]
	composition Composition[M]
	identity    T
	n           int
	stats       Stats
}

// NewPersistentLazySegmentTree 创建一棵尚无快照的持久化延迟线段树。
func NewPersistentLazySegmentTree[T, M any](n int, op Op[T], mapping Mapping[T, M], composition Composition[M], identity T) *PersistentLazySegmentTree[T, M] {
	if n < 0 {
		n = 0
	}
	return &PersistentLazySegmentTree[T, M]{
		nodes:       make([]plNode[T, M], 1, 2*n+1),
		op:          op,
		mapping:     mapping,
		composition: composition,
		identity:    identity,
		n:           n,
	}
}

// NewPersistentLazySegmentTreeWith 使用打包好的策略函数创建持久化延迟线段树。
func NewPersistentLazySegmentTreeWith[T, M any](n int, ops LazyOps[T, M]) *PersistentLazySegmentTree[T, M] {
	return NewPersistentLazySegmentTree(n, ops.Op, ops.Mapping, ops.Composition, ops.Identity)
}

func (t *PersistentLazySegmentTree[T, M]) Len() int { return t.n }

// Identity 返回查询单位元。
func (t *PersistentLazySegmentTree[T, M]) Identity() T { return t.identity }

// Snapshots 返回已登记的快照数。
func (t *PersistentLazySegmentTree[T, M]) Snapshots() int { return len(t.roots) }

// Stats 返回操作计数与节点池大小。
func (t *PersistentLazySegmentTree[T, M]) Stats() Stats {
	s := t.stats
	s.Nodes = len(t.nodes) - 1
	s.Snapshots = len(t.roots)
	return s
}

func (t *PersistentLazySegmentTree[T, M]) alloc(nd plNode[T, M]) int {
	t.nodes = append(t.nodes, nd)
	return len(t.nodes) - 1
}

func (t *PersistentLazySegmentTree[T, M]) merge(left, right int) int {
	return t.alloc(plNode[T, M]{
		data:  t.op(t.nodes[left].data, t.nodes[right].data),
		left:  left,
		right: right,
	})
}

func (t *PersistentLazySegmentTree[T, M]) register(root int) int {
	t.roots = append(t.roots, root)
	return len(t.roots) - 1
}

func (t *PersistentLazySegmentTree[T, M]) rootAt(time int) (int, error) {
	if time < 0 || time >= len(t.roots) {
		return 0, snapshotError(time, len(t.roots))
	}
	return t.roots[time], nil
}

// Build 以 values 构建初始快照并返回其快照号。
func (t *PersistentLazySegmentTree[T, M]) Build(values []T) (int, error) {
	if len(values) != t.n {
		return 0, sizeError(len(values), t.n)
	}
	if t.n == 0 {
		return 0, ErrEmptyData.Derive("persistent tree needs at least one element")
	}
	t.stats.Builds++
	return t.register(t.build(0, t.n, func(i int) T { return values[i] })), nil
}

// BuildClear 以所有位置均为 value 构建初始快照并返回其快照号。
func (t *PersistentLazySegmentTree[T, M]) BuildClear(value T) (int, error) {
	if t.n == 0 {
		return 0, ErrEmptyData.Derive("persistent tree needs at least one element")
	}
	t.stats.Builds++
	return t.register(t.build(0, t.n, func(int) T { return value })), nil
}

func (t *PersistentLazySegmentTree[T, M]) build(l, r int, at func(int) T) int {
	if l+1 >= r {
		return t.alloc(plNode[T, M]{data: at(l)})
	}
	mid := (l + r) >> 1
	left := t.build(l, mid, at)
	right := t.build(mid, r, at)
	return t.merge(left, right)
}

// settle 为一个标记已就位的节点值分配求值后的新节点：
// 作用标记到自身，并用携带合成标记的新副本替换两个子节点。
func (t *PersistentLazySegmentTree[T, M]) settle(nd plNode[T, M], l, r int) int {
	if !nd.lazy.set {
		return t.alloc(nd)
	}
	tag := nd.lazy.tag
	nd.data = t.mapping(nd.data, tag, r-l)
	nd.lazy = pending[M]{}
	if r-l > 1 {
		left := t.nodes[nd.left]
		left.lazy = guardCompose(t.composition, left.lazy, tag)
		right := t.nodes[nd.right]
		right.lazy = guardCompose(t.composition, right.lazy, tag)
		nd.left = t.alloc(left)
		nd.right = t.alloc(right)
	}
	return t.alloc(nd)
}

// evaluate 返回与 idx 等价且自身没有待下推标记的节点。
// 已发布的节点可能被多个快照共享，因此这里只分配、不修改。
func (t *PersistentLazySegmentTree[T, M]) evaluate(idx, l, r int) int {
	if !t.nodes[idx].lazy.set {
		return idx
	}
	return t.settle(t.nodes[idx], l, r)
}

// Apply 在快照 time 的基础上将 m 作用到 [left, right)，返回新快照号。
func (t *PersistentLazySegmentTree[T, M]) Apply(time, left, right int, m M) (int, error) {
	root, err := t.rootAt(time)
	if err != nil {
		return 0, err
	}
	left, right = clamp(left, right, t.n)
	t.stats.Applies++
	if left >= right {
		return t.register(root), nil
	}
	return t.register(t.apply(root, 0, t.n, left, right, m)), nil
}

func (t *PersistentLazySegmentTree[T, M]) apply(idx, l, r, left, right int, m M) int {
	idx = t.evaluate(idx, l, r)

	if left <= l && r <= right {
		nd := t.nodes[idx]
		nd.lazy = pending[M]{tag: m, set: true}
		return t.settle(nd, l, r)
	}
	if right <= l || r <= left {
		return idx
	}
	mid := (l + r) >> 1
	nd := t.nodes[idx]
	newLeft := t.apply(nd.left, l, mid, left, right, m)
	newRight := t.apply(nd.right, mid, r, left, right, m)
	return t.merge(newLeft, newRight)
}

// Query 返回快照 time 中 [left, right) 的聚合值。
func (t *PersistentLazySegmentTree[T, M]) Query(time, left, right int) (T, error) {
	root, err := t.rootAt(time)
	if err != nil {
		var zero T
		return zero, err
	}
	left, right = clamp(left, right, t.n)
	t.stats.Queries++
	if left >= right {
		return t.identity, nil
	}
	return t.query(root, 0, t.n, left, right), nil
}

func (t *PersistentLazySegmentTree[T, M]) query(idx, l, r, left, right int) T {
	idx = t.evaluate(idx, l, r)

	if right <= l || r <= left {
		return t.identity
	}
	if left <= l && r <= right {
		return t.nodes[idx].data
	}
	mid := (l + r) >> 1
	nd := t.nodes[idx]
	return t.op(
		t.query(nd.left, l, mid, left, right),
		t.query(nd.right, mid, r, left, right),
	)
}

// GetByIndex 返回快照 time 中位置 index 的值。
func (t *PersistentLazySegmentTree[T, M]) GetByIndex(time, index int) (T, error) {
	var zero T
	idx, err := t.rootAt(time)
	if err != nil {
		return zero, err
	}
	if index < 0 || index >= t.n {
		return zero, indexError(index, t.n)
	}
	t.stats.Reads++

	l, r := 0, t.n
	for {
		idx = t.evaluate(idx, l, r)
		if r-l == 1 {
			return t.nodes[idx].data, nil
		}
		mid := (l + r) >> 1
		if index < mid {
			idx, r = t.nodes[idx].left, mid
		} else {
			idx, l = t.nodes[idx].right, mid
		}
	}
}

// ClearSnapshots 丢弃所有快照并回收节点池，此后旧快照号均不可用。
func (t *PersistentLazySegmentTree[T, M]) ClearSnapshots() {
	t.roots = t.roots[:0]
	clear(t.nodes)
	t.nodes = t.nodes[:1]
}
