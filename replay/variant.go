package replay

import (
	"slices"

	"github.com/wyfcoding/segtree/algorithm/segtree"
	"github.com/wyfcoding/segtree/algorithm/segtree/preset"
)

// driver 把一种树变体适配为统一的步骤接口，值域统一为 int64。
type driver interface {
	build(values []int64) (int, error)
	apply(st *Step) (int, error)
	query(st *Step) (int64, error)
	get(st *Step) (int64, error)
	data(st *Step) ([]int64, error)
	clear()
	maxRight(left int, limit int64) int
	minLeft(right int, limit int64) int
	stats() segtree.Stats
}

type variant struct {
	ops         []string
	checkPreset func(name string) error
	open        func(sc *Scenario) driver
}

var commonOps = []string{OpBuild, OpApply, OpQuery, OpGet, OpData}

var variants = map[string]variant{
	VariantLazy: {
		ops:         commonOps,
		checkPreset: lazyPreset,
		open: func(sc *Scenario) driver {
			ops, _ := preset.Lookup(sc.Preset)
			return &lazyDriver{t: segtree.NewLazySegmentTreeWith(len(sc.Values), ops)}
		},
	},
	VariantPersistent: {
		ops:         append(slices.Clone(commonOps), OpClear),
		checkPreset: lazyPreset,
		open: func(sc *Scenario) driver {
			ops, _ := preset.Lookup(sc.Preset)
			return &persistentDriver{t: segtree.NewPersistentLazySegmentTreeWith(len(sc.Values), ops)}
		},
	},
	VariantBeats: {
		ops:         commonOps,
		checkPreset: beatsPreset,
		open: func(sc *Scenario) driver {
			return &beatsDriver{t: segtree.NewSegmentTreeBeatsWith(len(sc.Values), preset.RangeChminChmaxAddRangeSum())}
		},
	},
	VariantPoint: {
		ops:         append(slices.Clone(commonOps), OpMaxRight, OpMinLeft),
		checkPreset: pointPreset,
		open: func(sc *Scenario) driver {
			p := pointPresets[sc.Preset]
			return &pointDriver{t: segtree.NewSegmentTree(len(sc.Values), p.op, p.apply, p.identity)}
		},
	},
	VariantPersistentPoint: {
		ops:         append(slices.Clone(commonOps), OpClear),
		checkPreset: pointPreset,
		open: func(sc *Scenario) driver {
			p := pointPresets[sc.Preset]
			return &persistentPointDriver{t: segtree.NewPersistentSegmentTree(len(sc.Values), p.op, p.apply, p.identity)}
		},
	},
}

// Variants 返回支持的变体名称 (已排序)。
func Variants() []string {
	names := make([]string, 0, len(variants))
	for name := range variants {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func lazyPreset(name string) error {
	if _, ok := preset.Lookup(name); !ok {
		return ErrUnknownPreset.Derive("lazy preset %q", name).WithContext("preset", name)
	}
	return nil
}

// BeatsPreset Beats 变体唯一的预设名称。
const BeatsPreset = "chmin_chmax_add_sum"

func beatsPreset(name string) error {
	if name != "" && name != BeatsPreset {
		return ErrUnknownPreset.Derive("beats preset %q", name).WithContext("preset", name)
	}
	return nil
}

type pointOps struct {
	op       segtree.Op[int64]
	apply    segtree.Op[int64]
	identity int64
}

// 单点变体的预设: 区间聚合 + 单点作用。
var pointPresets = map[string]pointOps{
	"add_sum":    {op: preset.Sum[int64], apply: preset.Sum[int64], identity: 0},
	"assign_sum": {op: preset.Sum[int64], identity: 0},
	"assign_min": {op: preset.Min[int64], identity: preset.Inf},
	"assign_max": {op: preset.Max[int64], identity: preset.NegInf},
	"chmin_min":  {op: preset.Min[int64], apply: preset.Min[int64], identity: preset.Inf},
	"chmax_max":  {op: preset.Max[int64], apply: preset.Max[int64], identity: preset.NegInf},
}

// PointPresets 返回单点变体的预设名称 (已排序)。
func PointPresets() []string {
	names := make([]string, 0, len(pointPresets))
	for name := range pointPresets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func pointPreset(name string) error {
	if _, ok := pointPresets[name]; !ok {
		return ErrUnknownPreset.Derive("point preset %q", name).WithContext("preset", name)
	}
	return nil
}

func beatsTag(b *BeatsTag) preset.ChmaxChminAdd[int64] {
	switch b.Kind {
	case "chmin":
		return preset.Chmin(b.Value)
	case "chmax":
		return preset.Chmax(b.Value)
	default:
		return preset.Add(b.Value)
	}
}

// 谓词 "聚合值 <= limit" 对求和只在非负数据上单调，由场景作者保证。
func atMost(limit int64) func(int64) bool {
	return func(x int64) bool { return x <= limit }
}

// --- mutable ---

type lazyDriver struct {
	t *segtree.LazySegmentTree[int64, int64]
}

func (d *lazyDriver) build(values []int64) (int, error) { return 0, d.t.Build(values) }
func (d *lazyDriver) apply(st *Step) (int, error) {
	d.t.Apply(st.Left, st.Right, *st.Tag)
	return 0, nil
}
func (d *lazyDriver) query(st *Step) (int64, error) { return d.t.Query(st.Left, st.Right), nil }
func (d *lazyDriver) get(st *Step) (int64, error)   { return d.t.GetByIndex(st.Index) }
func (d *lazyDriver) data(*Step) ([]int64, error)   { return slices.Clone(d.t.GetData()), nil }
func (d *lazyDriver) clear()                        {}
func (d *lazyDriver) maxRight(int, int64) int       { return 0 }
func (d *lazyDriver) minLeft(int, int64) int        { return 0 }
func (d *lazyDriver) stats() segtree.Stats          { return d.t.Stats() }

type beatsDriver struct {
	t *segtree.SegmentTreeBeats[preset.BeatsNode, preset.ChmaxChminAdd[int64]]
}

func (d *beatsDriver) build(values []int64) (int, error) {
	return 0, d.t.Build(preset.BeatsLeaves(values))
}
func (d *beatsDriver) apply(st *Step) (int, error) {
	d.t.Apply(st.Left, st.Right, beatsTag(st.Beats))
	return 0, nil
}
func (d *beatsDriver) query(st *Step) (int64, error) { return d.t.Query(st.Left, st.Right).Sum, nil }
func (d *beatsDriver) get(st *Step) (int64, error) {
	v, err := d.t.GetByIndex(st.Index)
	return v.Sum, err
}
func (d *beatsDriver) data(*Step) ([]int64, error) {
	nodes := d.t.GetData()
	out := make([]int64, len(nodes))
	for i, nd := range nodes {
		out[i] = nd.Sum
	}
	return out, nil
}
func (d *beatsDriver) clear()                  {}
func (d *beatsDriver) maxRight(int, int64) int { return 0 }
func (d *beatsDriver) minLeft(int, int64) int  { return 0 }
func (d *beatsDriver) stats() segtree.Stats    { return d.t.Stats() }

type pointDriver struct {
	t *segtree.SegmentTree[int64]
}

func (d *pointDriver) build(values []int64) (int, error) { return 0, d.t.Build(values) }
func (d *pointDriver) apply(st *Step) (int, error)       { return 0, d.t.Apply(st.Index, *st.Tag) }
func (d *pointDriver) query(st *Step) (int64, error)     { return d.t.Query(st.Left, st.Right), nil }
func (d *pointDriver) get(st *Step) (int64, error)       { return d.t.Get(st.Index) }
func (d *pointDriver) data(*Step) ([]int64, error)       { return slices.Clone(d.t.GetData()), nil }
func (d *pointDriver) clear()                            {}
func (d *pointDriver) maxRight(left int, limit int64) int {
	return d.t.MaxRight(left, atMost(limit))
}
func (d *pointDriver) minLeft(right int, limit int64) int {
	return d.t.MinLeft(right, atMost(limit))
}
func (d *pointDriver) stats() segtree.Stats { return d.t.Stats() }

// --- persistent ---

// at 解析步骤的源快照，未声明时取最新快照。
func at(st *Step, snapshots int) int {
	if st.Time != nil {
		return *st.Time
	}
	return snapshots - 1
}

type persistentDriver struct {
	t *segtree.PersistentLazySegmentTree[int64, int64]
}

func (d *persistentDriver) build(values []int64) (int, error) { return d.t.Build(values) }
func (d *persistentDriver) apply(st *Step) (int, error) {
	return d.t.Apply(at(st, d.t.Snapshots()), st.Left, st.Right, *st.Tag)
}
func (d *persistentDriver) query(st *Step) (int64, error) {
	return d.t.Query(at(st, d.t.Snapshots()), st.Left, st.Right)
}
func (d *persistentDriver) get(st *Step) (int64, error) {
	return d.t.GetByIndex(at(st, d.t.Snapshots()), st.Index)
}
func (d *persistentDriver) data(st *Step) ([]int64, error) {
	return collect(d.t.Len(), func(i int) (int64, error) {
		return d.t.GetByIndex(at(st, d.t.Snapshots()), i)
	})
}
func (d *persistentDriver) clear()                  { d.t.ClearSnapshots() }
func (d *persistentDriver) maxRight(int, int64) int { return 0 }
func (d *persistentDriver) minLeft(int, int64) int  { return 0 }
func (d *persistentDriver) stats() segtree.Stats    { return d.t.Stats() }

type persistentPointDriver struct {
	t *segtree.PersistentSegmentTree[int64]
}

func (d *persistentPointDriver) build(values []int64) (int, error) { return d.t.Build(values) }
func (d *persistentPointDriver) apply(st *Step) (int, error) {
	return d.t.Apply(at(st, d.t.Snapshots()), st.Index, *st.Tag)
}
func (d *persistentPointDriver) query(st *Step) (int64, error) {
	return d.t.Query(at(st, d.t.Snapshots()), st.Left, st.Right)
}
func (d *persistentPointDriver) get(st *Step) (int64, error) {
	return d.t.GetByIndex(at(st, d.t.Snapshots()), st.Index)
}
func (d *persistentPointDriver) data(st *Step) ([]int64, error) {
	return collect(d.t.Len(), func(i int) (int64, error) {
		return d.t.GetByIndex(at(st, d.t.Snapshots()), i)
	})
}
func (d *persistentPointDriver) clear()                  { d.t.ClearSnapshots() }
func (d *persistentPointDriver) maxRight(int, int64) int { return 0 }
func (d *persistentPointDriver) minLeft(int, int64) int  { return 0 }
func (d *persistentPointDriver) stats() segtree.Stats    { return d.t.Stats() }

func collect(n int, read func(int) (int64, error)) ([]int64, error) {
	out := make([]int64, n)
	for i := range out {
		v, err := read(i)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
