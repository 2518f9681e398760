package segtree

// SegmentTree (线段树) 单点更新、区间查询。
// 每个节点代表数组的一个区间，根节点代表整个数组，叶子节点代表单个元素。
// 构建 O(N)，更新与查询均为 O(log N)。
type SegmentTree[T any] struct {
	data     []T   // 1 号为根，叶子从 size 开始。
	op       Op[T] // 查询运算
	apply    Op[T] // 单点作用：data[i] = apply(data[i], value)
	identity T
	n        int
	size     int
	stats    Stats
}

// NewSegmentTree 创建并返回一个所有位置都为 identity 的 SegmentTree。
// apply 为空时单点作用等价于赋值。
func NewSegmentTree[T any](n int, op, apply Op[T], identity T) *SegmentTree[T] {
	if n < 0 {
		n = 0
	}
	if apply == nil {
		apply = func(_, v T) T { return v }
	}
	size := ceilPow2(n)
	data := make([]T, 2*size)
	for i := range data {
		data[i] = identity
	}
	return &SegmentTree[T]{data: data, op: op, apply: apply, identity: identity, n: n, size: size}
}

func (st *SegmentTree[T]) Len() int     { return st.n }
func (st *SegmentTree[T]) Identity() T  { return st.identity }
func (st *SegmentTree[T]) Stats() Stats { return st.stats }

// Build 用 values 初始化叶子并自底向上计算内部节点。
func (st *SegmentTree[T]) Build(values []T) error {
	if len(values) != st.n {
		return sizeError(len(values), st.n)
	}
	copy(st.data[st.size:], values)
	for i := st.size + st.n; i < 2*st.size; i++ {
		st.data[i] = st.identity
	}
	for i := st.size - 1; i > 0; i-- {
		st.data[i] = st.op(st.data[2*i], st.data[2*i+1])
	}
	st.stats.Builds++
	return nil
}

func (st *SegmentTree[T]) update(index int, value T, fn Op[T]) error {
	if index < 0 || index >= st.n {
		return indexError(index, st.n)
	}
	st.stats.Applies++
	node := st.size + index
	st.data[node] = fn(st.data[node], value)
	// 从叶子向上更新所有祖先。
	for node > 1 {
		node >>= 1
		st.data[node] = st.op(st.data[2*node], st.data[2*node+1])
	}
	return nil
}

// Apply 以 apply 函数将 value 作用到位置 index。
func (st *SegmentTree[T]) Apply(index int, value T) error {
	return st.update(index, value, st.apply)
}

// Set 将位置 index 的值替换为 value。
func (st *SegmentTree[T]) Set(index int, value T) error {
	return st.update(index, value, func(_, v T) T { return v })
}

// Get 返回位置 index 的值。
func (st *SegmentTree[T]) Get(index int) (T, error) {
	if index < 0 || index >= st.n {
		var zero T
		return zero, indexError(index, st.n)
	}
	st.stats.Reads++
	return st.data[st.size+index], nil
}

// Query 返回 [left, right) 的聚合值，空区间返回单位元。
func (st *SegmentTree[T]) Query(left, right int) T {
	left, right = clamp(left, right, st.n)
	st.stats.Queries++
	if left >= right {
		return st.identity
	}
	return st.query(1, 0, st.size, left, right)
}

// query 是 Query 的递归辅助函数，[l, r) 为 node 所代表的区间。
func (st *SegmentTree[T]) query(node, l, r, left, right int) T {
	// 情况1: 不相交。
	if right <= l || r <= left {
		return st.identity
	}
	// 情况2: 完全包含。
	if left <= l && r <= right {
		return st.data[node]
	}
	// 情况3: 部分重叠。
	mid := (l + r) >> 1
	return st.op(st.query(2*node, l, mid, left, right), st.query(2*node+1, mid, r, left, right))
}

// GetData 返回长度为 n 的逻辑数组视图，调用方不得修改。
func (st *SegmentTree[T]) GetData() []T {
	st.stats.Reads++
	return st.data[st.size : st.size+st.n : st.size+st.n]
}

// MaxRight 返回最大的 r，使得 pred(Query(left, r)) 为真。
// pred 必须单调且 pred(identity) 为真。
func (st *SegmentTree[T]) MaxRight(left int, pred func(T) bool) int {
	if left >= st.n {
		return st.n
	}
	if left < 0 {
		left = 0
	}
	node := left + st.size
	acc := st.identity
	for {
		for node%2 == 0 {
			node >>= 1
		}
		if !pred(st.op(acc, st.data[node])) {
			for node < st.size {
				node <<= 1
				if next := st.op(acc, st.data[node]); pred(next) {
					acc = next
					node++
				}
			}
			return min(node-st.size, st.n)
		}
		acc = st.op(acc, st.data[node])
		node++
		if node&-node == node {
			return st.n
		}
	}
}

// MinLeft 返回最小的 l，使得 pred(Query(l, right)) 为真。
// pred 必须单调且 pred(identity) 为真。
func (st *SegmentTree[T]) MinLeft(right int, pred func(T) bool) int {
	if right <= 0 {
		return 0
	}
	if right > st.n {
		right = st.n
	}
	node := right + st.size
	acc := st.identity
	for {
		node--
		for node > 1 && node%2 == 1 {
			node >>= 1
		}
		if !pred(st.op(st.data[node], acc)) {
			for node < st.size {
				node = 2*node + 1
				if next := st.op(st.data[node], acc); pred(next) {
					acc = next
					node--
				}
			}
			return node + 1 - st.size
		}
		acc = st.op(st.data[node], acc)
		if node&-node == node {
			return 0
		}
	}
}
