// Package segtree 提供线段树家族的泛型实现：
//
//   - SegmentTree：单点更新、区间查询。
//   - LazySegmentTree：区间作用、区间查询 (延迟传播)。
//   - PersistentSegmentTree / PersistentLazySegmentTree：每次更新产生新的只读快照。
//   - SegmentTreeBeats：作用无法折叠成标记时退化为立即下推子节点 (Segment Tree Beats)。
//
// 聚合值类型 T 配合结合律二元运算 Op 与单位元使用，延迟标记类型 M 配合 Mapping 与 Composition。
// 所有区间均为半开区间 [left, right)，越界部分被截断到 [0, n)。
//
// 本包中的结构都不是并发安全的：查询同样会下推标记并修改内部状态，
// 需要并发访问时由调用方在外部加锁。
package segtree
