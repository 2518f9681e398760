package segtree_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/segtree/algorithm/segtree"
	"github.com/wyfcoding/segtree/algorithm/segtree/preset"
)

func TestPersistentSegmentTree_Versions(t *testing.T) {
	t.Parallel()

	pt := segtree.NewPersistentSegmentTree(5, preset.Sum[int64], preset.Sum[int64], 0)
	assert.Equal(t, -1, pt.CurrentVersion())

	v0, err := pt.BuildClear(0)
	require.NoError(t, err)

	// 主席树用法：依次在位置上计数
	versions := []int{v0}
	for _, pos := range []int{2, 4, 2, 0} {
		v, err := pt.Apply(versions[len(versions)-1], pos, 1)
		require.NoError(t, err)
		versions = append(versions, v)
	}
	assert.Equal(t, 4, pt.CurrentVersion())

	got, err := pt.Query(versions[4], 0, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(4), got)

	got, err = pt.Query(versions[2], 2, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)

	got, err = pt.GetByIndex(versions[3], 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got)

	got, err = pt.GetByIndex(v0, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got)
}

func TestPersistentSegmentTree_RandomAgainstModel(t *testing.T) {
	t.Parallel()

	r := newRand(5)
	const n = 17
	pt := segtree.NewPersistentSegmentTree(n, preset.Max[int64], nil, preset.NegInf)
	initial := randomValues(r, n, 0, 1000)
	_, err := pt.Build(initial)
	require.NoError(t, err)
	history := [][]int64{initial}

	for step := 0; step < 200; step++ {
		from := r.IntN(len(history))
		idx := r.IntN(n)
		val := r.Int64N(1001)

		next := append([]int64(nil), history[from]...)
		next[idx] = val
		_, err := pt.Apply(from, idx, val)
		require.NoError(t, err)
		history = append(history, next)

		probe := r.IntN(len(history))
		l, rr := randomRange(r, n)
		got, err := pt.Query(probe, l, rr)
		require.NoError(t, err)
		assert.Equal(t, foldInt64(history[probe][l:rr], preset.Max[int64], preset.NegInf), got)
	}
}

func TestPersistentSegmentTree_ErrorsAndClear(t *testing.T) {
	t.Parallel()

	pt := segtree.NewPersistentSegmentTree(2, preset.Sum[int64], nil, 0)
	_, err := pt.Build([]int64{1})
	require.ErrorIs(t, err, segtree.ErrSizeMismatch)

	v, err := pt.Build([]int64{1, 2})
	require.NoError(t, err)
	_, err = pt.Apply(v, 2, 1)
	require.ErrorIs(t, err, segtree.ErrIndexOutOfRange)
	_, err = pt.GetByIndex(v, -1)
	require.ErrorIs(t, err, segtree.ErrIndexOutOfRange)

	nodesBefore := pt.Stats().Nodes
	_, err = pt.GetByIndex(v, 1)
	require.NoError(t, err)
	assert.Equal(t, nodesBefore, pt.Stats().Nodes, "point reads never allocate")

	pt.ClearSnapshots()
	_, err = pt.Query(v, 0, 2)
	require.ErrorIs(t, err, segtree.ErrSnapshotNotFound)
	assert.Equal(t, 0, pt.Snapshots())

	empty := segtree.NewPersistentSegmentTree(0, preset.Sum[int64], nil, 0)
	_, err = empty.Build(nil)
	require.ErrorIs(t, err, segtree.ErrEmptyData)
}
