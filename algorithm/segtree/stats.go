package segtree

// Stats 记录一棵树自创建以来的操作计数，供上层导出指标。
type Stats struct {
	Builds    uint64 // Build / BuildClear 次数
	Applies   uint64 // 区间或单点作用次数
	Queries   uint64 // 区间查询次数
	Reads     uint64 // 单点读取与 GetData 次数
	Fallbacks uint64 // Beats: mapping 失败后下推子节点的次数
	Nodes     int    // 持久化树: 当前节点池大小 (不含 0 号空节点)
	Snapshots int    // 持久化树: 已登记的快照数
}
