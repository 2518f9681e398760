package metrics

import (
	"time"

	"github.com/wyfcoding/segtree/algorithm/segtree"
)

// 场景结果标签
const (
	ResultPass    = "pass"
	ResultFail    = "fail"
	ResultError   = "error"
	ResultSkipped = "skipped"
)

// ObserveStats 将一棵树的操作计数累加到指标中.
// 持久化变体额外记录 arena 规模与快照数，Beats 变体记录回退次数。
func (m *Metrics) ObserveStats(variant, scenario string, s segtree.Stats) {
	if m == nil {
		return
	}
	m.OperationsTotal.WithLabelValues(variant, "build").Add(float64(s.Builds))
	m.OperationsTotal.WithLabelValues(variant, "apply").Add(float64(s.Applies))
	m.OperationsTotal.WithLabelValues(variant, "query").Add(float64(s.Queries))
	m.OperationsTotal.WithLabelValues(variant, "read").Add(float64(s.Reads))

	if s.Fallbacks > 0 {
		m.BeatsFallbacks.WithLabelValues(scenario).Add(float64(s.Fallbacks))
	}
	if s.Snapshots > 0 {
		m.PersistentNodes.WithLabelValues(variant, scenario).Set(float64(s.Nodes))
		m.Snapshots.WithLabelValues(variant, scenario).Set(float64(s.Snapshots))
	}
}

// ObserveScenario 记录一次场景执行的结果与耗时.
func (m *Metrics) ObserveScenario(variant, result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.ScenariosTotal.WithLabelValues(variant, result).Inc()
	m.ScenarioDuration.WithLabelValues(variant).Observe(elapsed.Seconds())
}
