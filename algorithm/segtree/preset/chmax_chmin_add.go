package preset

// ChmaxChminAdd 合成 chmax、chmin、add 三种操作，表示变换 x -> min(max(x, Chmax), Chmin) + Add。
// 所有合成操作均为 O(1)。边界值需远离类型极值，保证平移时不溢出。
type ChmaxChminAdd[T Number] struct {
	Chmax T // 下限
	Chmin T // 上限
	Add   T
}

// IdentityChmaxChminAdd 返回不改变任何值的变换，negInf/inf 为值域之外的下界和上界。
func IdentityChmaxChminAdd[T Number](negInf, inf T) ChmaxChminAdd[T] {
	return ChmaxChminAdd[T]{Chmax: negInf, Chmin: inf}
}

// Compose 返回先执行 f 再执行 g 的变换。
func (f ChmaxChminAdd[T]) Compose(g ChmaxChminAdd[T]) ChmaxChminAdd[T] {
	// g 的边界平移到 f.Add 之前的坐标系。
	lo := g.Chmax - f.Add
	hi := g.Chmin - f.Add
	return ChmaxChminAdd[T]{
		Chmax: max(f.Chmax, lo),
		Chmin: min(hi, max(f.Chmin, lo)),
		Add:   f.Add + g.Add,
	}
}

// ComposeChmax 在 f 之后追加 chmax。
func (f ChmaxChminAdd[T]) ComposeChmax(v T) ChmaxChminAdd[T] {
	v -= f.Add
	f.Chmax = max(f.Chmax, v)
	f.Chmin = max(f.Chmin, v)
	return f
}

// ComposeChmin 在 f 之后追加 chmin。
func (f ChmaxChminAdd[T]) ComposeChmin(v T) ChmaxChminAdd[T] {
	v -= f.Add
	f.Chmin = min(f.Chmin, v)
	return f
}

// ComposeAdd 在 f 之后追加 add。
func (f ChmaxChminAdd[T]) ComposeAdd(v T) ChmaxChminAdd[T] {
	f.Add += v
	return f
}

// Apply 返回 x 经过变换后的值。
func (f ChmaxChminAdd[T]) Apply(x T) T {
	return min(max(x, f.Chmax), f.Chmin) + f.Add
}

// Chmax 返回 int64 的单一 chmax 变换。
func Chmax(v int64) ChmaxChminAdd[int64] {
	return ChmaxChminAdd[int64]{Chmax: v, Chmin: Inf}
}

// Chmin 返回 int64 的单一 chmin 变换。
func Chmin(v int64) ChmaxChminAdd[int64] {
	return ChmaxChminAdd[int64]{Chmax: NegInf, Chmin: v}
}

// Add 返回 int64 的单一 add 变换。
func Add(v int64) ChmaxChminAdd[int64] {
	return ChmaxChminAdd[int64]{Chmax: NegInf, Chmin: Inf, Add: v}
}
