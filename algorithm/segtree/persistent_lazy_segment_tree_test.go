package segtree_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/segtree/algorithm/segtree"
	"github.com/wyfcoding/segtree/algorithm/segtree/preset"
)

func TestPersistentLazySegmentTree_SnapshotsAreIsolated(t *testing.T) {
	t.Parallel()

	pt := segtree.NewPersistentLazySegmentTreeWith(6, preset.RangeAddRangeSum[int64]())
	base, err := pt.Build([]int64{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)
	assert.Equal(t, 0, base)

	left, err := pt.Apply(base, 0, 3, 10)
	require.NoError(t, err)
	right, err := pt.Apply(base, 3, 6, 100)
	require.NoError(t, err)
	both, err := pt.Apply(left, 2, 5, 1000)
	require.NoError(t, err)

	sums := map[int]int64{base: 21, left: 51, right: 321, both: 3051}
	for time, want := range sums {
		got, err := pt.Query(time, 0, 6)
		require.NoError(t, err)
		assert.Equal(t, want, got, "snapshot %d", time)
	}

	got, err := pt.GetByIndex(both, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3+10+1000), got)

	got, err = pt.GetByIndex(base, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), got)
	assert.Equal(t, 4, pt.Snapshots())
}

func TestPersistentLazySegmentTree_RandomForks(t *testing.T) {
	t.Parallel()

	r := newRand(42)
	const n = 23
	ops := preset.RangeAssignRangeMin(preset.Inf)
	pt := segtree.NewPersistentLazySegmentTreeWith(n, ops)

	initial := randomValues(r, n, -100, 100)
	base, err := pt.Build(initial)
	require.NoError(t, err)

	history := [][]int64{append([]int64(nil), initial...)}
	require.Equal(t, 0, base)

	for step := 0; step < 300; step++ {
		from := r.IntN(len(history))
		l, rr := randomRange(r, n)
		tag := r.Int64N(201) - 100

		next := append([]int64(nil), history[from]...)
		for k := l; k < rr; k++ {
			next[k] = tag
		}
		time, err := pt.Apply(from, l, rr, tag)
		require.NoError(t, err)
		require.Equal(t, len(history), time)
		history = append(history, next)

		// 抽查任意历史快照
		probe := r.IntN(len(history))
		ql, qr := randomRange(r, n)
		got, err := pt.Query(probe, ql, qr)
		require.NoError(t, err)
		assert.Equal(t, foldInt64(history[probe][ql:qr], preset.Min[int64], preset.Inf), got,
			"step %d snapshot %d [%d,%d)", step, probe, ql, qr)
	}

	for time, want := range history {
		for i := range want {
			got, err := pt.GetByIndex(time, i)
			require.NoError(t, err)
			require.Equal(t, want[i], got, "snapshot %d index %d", time, i)
		}
	}
}

func TestPersistentLazySegmentTree_BuildClear(t *testing.T) {
	t.Parallel()

	pt := segtree.NewPersistentLazySegmentTreeWith(5, preset.RangeAddRangeSum[int64]())
	base, err := pt.BuildClear(7)
	require.NoError(t, err)

	got, err := pt.Query(base, 1, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(21), got)

	empty, err := pt.Query(base, 3, 3)
	require.NoError(t, err)
	assert.Equal(t, pt.Identity(), empty)
}

func TestPersistentLazySegmentTree_QueryAllocates(t *testing.T) {
	t.Parallel()

	pt := segtree.NewPersistentLazySegmentTreeWith(8, preset.RangeAddRangeSum[int64]())
	base, err := pt.BuildClear(1)
	require.NoError(t, err)
	time, err := pt.Apply(base, 0, 8, 5)
	require.NoError(t, err)

	before := pt.Stats().Nodes
	first, err := pt.Query(time, 1, 3)
	require.NoError(t, err)
	after := pt.Stats().Nodes
	assert.Greater(t, after, before, "pushing a pending tag during a read allocates replacement nodes")

	second, err := pt.Query(time, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int64(12), first)
}

func TestPersistentLazySegmentTree_Errors(t *testing.T) {
	t.Parallel()

	pt := segtree.NewPersistentLazySegmentTreeWith(3, preset.RangeAddRangeSum[int64]())
	_, err := pt.Build([]int64{1, 2})
	require.ErrorIs(t, err, segtree.ErrSizeMismatch)

	_, err = pt.Query(0, 0, 3)
	require.ErrorIs(t, err, segtree.ErrSnapshotNotFound)

	base, err := pt.Build([]int64{1, 2, 3})
	require.NoError(t, err)

	_, err = pt.GetByIndex(base, 3)
	require.ErrorIs(t, err, segtree.ErrIndexOutOfRange)
	_, err = pt.Apply(base+1, 0, 1, 1)
	require.ErrorIs(t, err, segtree.ErrSnapshotNotFound)

	empty := segtree.NewPersistentLazySegmentTreeWith(0, preset.RangeAddRangeSum[int64]())
	_, err = empty.BuildClear(0)
	require.ErrorIs(t, err, segtree.ErrEmptyData)
}

func TestPersistentLazySegmentTree_ClearSnapshots(t *testing.T) {
	t.Parallel()

	pt := segtree.NewPersistentLazySegmentTreeWith(4, preset.RangeAddRangeSum[int64]())
	base, err := pt.Build([]int64{1, 1, 1, 1})
	require.NoError(t, err)
	_, err = pt.Apply(base, 0, 2, 3)
	require.NoError(t, err)
	require.Positive(t, pt.Stats().Nodes)

	pt.ClearSnapshots()
	assert.Equal(t, 0, pt.Snapshots())
	assert.Equal(t, 0, pt.Stats().Nodes)

	_, err = pt.Query(base, 0, 4)
	require.ErrorIs(t, err, segtree.ErrSnapshotNotFound)

	// 清空后重新构建从 0 号快照开始
	again, err := pt.BuildClear(2)
	require.NoError(t, err)
	assert.Equal(t, 0, again)
	got, err := pt.Query(again, 0, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(8), got)
}

func TestPersistentLazySegmentTree_EmptyApplyRegistersSnapshot(t *testing.T) {
	t.Parallel()

	pt := segtree.NewPersistentLazySegmentTreeWith(3, preset.RangeAddRangeSum[int64]())
	base, err := pt.Build([]int64{1, 2, 3})
	require.NoError(t, err)

	time, err := pt.Apply(base, 2, 1, 50)
	require.NoError(t, err)
	assert.Equal(t, 1, time)

	got, err := pt.Query(time, 0, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(6), got)
}
