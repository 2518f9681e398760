package segtree_test

import (
	"fmt"

	"github.com/wyfcoding/segtree/algorithm/segtree"
	"github.com/wyfcoding/segtree/algorithm/segtree/preset"
)

func ExampleLazySegmentTree() {
	st := segtree.NewLazySegmentTreeWith(6, preset.RangeAddRangeSum[int64]())
	_ = st.Build([]int64{1, 2, 3, 4, 5, 6})

	st.Apply(1, 4, 10)
	fmt.Println(st.Query(0, 6))
	fmt.Println(st.GetData())
	// Output:
	// 51
	// [1 12 13 14 5 6]
}

func ExamplePersistentLazySegmentTree() {
	pt := segtree.NewPersistentLazySegmentTreeWith(4, preset.RangeAssignRangeMin(preset.Inf))
	v0, _ := pt.Build([]int64{4, 3, 2, 1})
	v1, _ := pt.Apply(v0, 2, 4, 9)

	old, _ := pt.Query(v0, 0, 4)
	cur, _ := pt.Query(v1, 0, 4)
	fmt.Println(old, cur)
	// Output: 1 3
}

func ExampleSegmentTreeBeats() {
	values := []int64{7, 1, 9, 4}
	st := segtree.NewSegmentTreeBeatsWith(len(values), preset.RangeChminChmaxAddRangeSum())
	_ = st.Build(preset.BeatsLeaves(values))

	st.Apply(0, 4, preset.Chmin(5))
	st.Apply(0, 4, preset.Chmax(2))
	fmt.Println(st.Query(0, 4).Sum)
	// Output: 16
}
