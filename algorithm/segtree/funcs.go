package segtree

// Op 是聚合值上的结合律二元运算 (幺半群运算)。
type Op[T any] func(a, b T) T

// Mapping 将标记 m 作用到覆盖 size 个位置的聚合值 x 上。
type Mapping[T, M any] func(x T, m M, size int) T

// Composition 合成两个标记：existing 先发生，incoming 后发生。
type Composition[M any] func(existing, incoming M) M

// BeatsMapping 与 Mapping 相同，但在标记无法折叠进 x 时返回 ok == false。
// 失败时不得有副作用，调用方会改为下推到子节点。
type BeatsMapping[T, M any] func(x T, m M, size int) (result T, ok bool)

// LazyOps 打包构造延迟线段树所需的全部策略函数。
type LazyOps[T, M any] struct {
	Op          Op[T]
	Mapping     Mapping[T, M]
	Composition Composition[M]
	Identity    T
}

// BeatsOps 打包构造 SegmentTreeBeats 所需的全部策略函数。
type BeatsOps[T, M any] struct {
	Op          Op[T]
	Mapping     BeatsMapping[T, M]
	Composition Composition[M]
	Identity    T
}

// pending 表示一个可能不存在的延迟标记，避免用 M 的某个取值充当哨兵。
type pending[M any] struct {
	tag M
	set bool
}

// guardCompose 在已有标记为空时直接返回新标记。
func guardCompose[M any](compose Composition[M], existing pending[M], incoming M) pending[M] {
	if !existing.set {
		return pending[M]{tag: incoming, set: true}
	}
	return pending[M]{tag: compose(existing.tag, incoming), set: true}
}

// ceilPow2 返回不小于 n 的最小 2 的幂，n <= 1 时为 1。
func ceilPow2(n int) int {
	size := 1
	for size < n {
		size <<= 1
	}
	return size
}

// clamp 将半开区间截断到 [0, n)。
func clamp(left, right, n int) (int, int) {
	if left < 0 {
		left = 0
	}
	if right > n {
		right = n
	}
	return left, right
}
