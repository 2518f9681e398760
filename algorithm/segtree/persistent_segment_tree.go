package segtree

// pstNode 主席树节点。
type pstNode[T any] struct {
	L, R int // 左右子节点索引，叶子为 0。
	Data T   // 该区间的聚合值。
}

// PersistentSegmentTree 可持久化线段树 (主席树)，单点作用、区间查询。
// 每次 Apply 只复制根到叶子路径上的 O(log N) 个节点，产生新版本。
// 适用于：历史版本查询、区间第 K 小等离线统计。
type PersistentSegmentTree[T any] struct {
	roots    []int        // 每个版本的根节点索引。
	nodes    []pstNode[T] // 静态数组模拟动态节点，0 号节点作为空节点。
	op       Op[T]
	apply    Op[T]
	identity T
	n        int // 区间为 [0, n)。
	stats    Stats
}

// NewPersistentSegmentTree 创建一棵尚无版本的主席树。
// apply 为空时单点作用等价于赋值。
func NewPersistentSegmentTree[T any](n int, op, apply Op[T], identity T) *PersistentSegmentTree[T] {
	if n < 0 {
		n = 0
	}
	if apply == nil {
		apply = func(_, v T) T { return v }
	}
	return &PersistentSegmentTree[T]{
		nodes:    make([]pstNode[T], 1, 2*n+1),
		op:       op,
		apply:    apply,
		identity: identity,
		n:        n,
	}
}

func (t *PersistentSegmentTree[T]) Len() int       { return t.n }
func (t *PersistentSegmentTree[T]) Identity() T    { return t.identity }
func (t *PersistentSegmentTree[T]) Snapshots() int { return len(t.roots) }

// Stats 返回操作计数与节点池大小。
func (t *PersistentSegmentTree[T]) Stats() Stats {
	s := t.stats
	s.Nodes = len(t.nodes) - 1
	s.Snapshots = len(t.roots)
	return s
}

func (t *PersistentSegmentTree[T]) register(root int) int {
	t.roots = append(t.roots, root)
	return len(t.roots) - 1
}

func (t *PersistentSegmentTree[T]) rootAt(time int) (int, error) {
	if time < 0 || time >= len(t.roots) {
		return 0, snapshotError(time, len(t.roots))
	}
	return t.roots[time], nil
}

// Build 以 values 构建初始版本并返回版本号。
func (t *PersistentSegmentTree[T]) Build(values []T) (int, error) {
	if len(values) != t.n {
		return 0, sizeError(len(values), t.n)
	}
	if t.n == 0 {
		return 0, ErrEmptyData.Derive("persistent tree needs at least one element")
	}
	t.stats.Builds++
	return t.register(t.build(0, t.n, func(i int) T { return values[i] })), nil
}

// BuildClear 以所有位置均为 value 构建初始版本并返回版本号。
func (t *PersistentSegmentTree[T]) BuildClear(value T) (int, error) {
	if t.n == 0 {
		return 0, ErrEmptyData.Derive("persistent tree needs at least one element")
	}
	t.stats.Builds++
	return t.register(t.build(0, t.n, func(int) T { return value })), nil
}

func (t *PersistentSegmentTree[T]) build(l, r int, at func(int) T) int {
	idx := len(t.nodes)
	if l+1 >= r {
		t.nodes = append(t.nodes, pstNode[T]{Data: at(l)})
		return idx
	}
	t.nodes = append(t.nodes, pstNode[T]{})
	mid := (l + r) >> 1
	left := t.build(l, mid, at)
	right := t.build(mid, r, at)
	t.nodes[idx] = pstNode[T]{L: left, R: right, Data: t.op(t.nodes[left].Data, t.nodes[right].Data)}
	return idx
}

// Apply 在版本 time 的基础上将 value 作用到位置 index，产生新版本并返回版本号。
func (t *PersistentSegmentTree[T]) Apply(time, index int, value T) (int, error) {
	root, err := t.rootAt(time)
	if err != nil {
		return 0, err
	}
	if index < 0 || index >= t.n {
		return 0, indexError(index, t.n)
	}
	t.stats.Applies++
	return t.register(t.update(root, 0, t.n, index, value)), nil
}

// update 复制旧节点后沿路径向下，返回新节点索引。
func (t *PersistentSegmentTree[T]) update(prev, l, r, pos int, value T) int {
	idx := len(t.nodes)
	t.nodes = append(t.nodes, t.nodes[prev]) // 复制旧节点。

	if l+1 >= r {
		t.nodes[idx].Data = t.apply(t.nodes[prev].Data, value)
		return idx
	}
	mid := (l + r) >> 1
	// 递归会扩容节点池，先取得子节点索引再写回。
	nd := t.nodes[idx]
	if pos < mid {
		nd.L = t.update(nd.L, l, mid, pos, value)
	} else {
		nd.R = t.update(nd.R, mid, r, pos, value)
	}
	nd.Data = t.op(t.nodes[nd.L].Data, t.nodes[nd.R].Data)
	t.nodes[idx] = nd
	return idx
}

// Query 查询版本 time 中 [left, right) 的聚合值。
func (t *PersistentSegmentTree[T]) Query(time, left, right int) (T, error) {
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

func (t *PersistentSegmentTree[T]) query(idx, l, r, left, right int) T {
	if right <= l || r <= left {
		return t.identity
	}
	if left <= l && r <= right {
		return t.nodes[idx].Data
	}
	mid := (l + r) >> 1
	return t.op(t.query(t.nodes[idx].L, l, mid, left, right), t.query(t.nodes[idx].R, mid, r, left, right))
}

// GetByIndex 返回版本 time 中位置 index 的值，不分配节点。
func (t *PersistentSegmentTree[T]) GetByIndex(time, index int) (T, error) {
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
	for r-l > 1 {
		mid := (l + r) >> 1
		if index < mid {
			idx, r = t.nodes[idx].L, mid
		} else {
			idx, l = t.nodes[idx].R, mid
		}
	}
	return t.nodes[idx].Data, nil
}

// CurrentVersion 获取当前最新版本号，尚无版本时返回 -1。
func (t *PersistentSegmentTree[T]) CurrentVersion() int {
	return len(t.roots) - 1
}

// ClearSnapshots 丢弃所有版本并回收节点池。
func (t *PersistentSegmentTree[T]) ClearSnapshots() {
	t.roots = t.roots[:0]
	clear(t.nodes)
	t.nodes = t.nodes[:1]
}
