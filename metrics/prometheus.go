// Package metrics 封装了基于 Prometheus 的指标注册表及线段树回放相关的标准指标。
package metrics

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics 封装了基于 Prometheus 的指标采集注册表及预定义的标准监控指标。
type Metrics struct {
	registry  *prometheus.Registry // 内部独立的 Prometheus 注册中心
	namespace string

	OperationsTotal  *prometheus.CounterVec   // 树操作总量 (维度: variant, op)
	BeatsFallbacks   *prometheus.CounterVec   // Beats 打标签失败后下探子树的次数 (维度: scenario)
	PersistentNodes  *prometheus.GaugeVec     // 可持久化树 arena 节点数 (维度: variant, scenario)
	Snapshots        *prometheus.GaugeVec     // 可持久化树快照数 (维度: variant, scenario)
	ScenariosTotal   *prometheus.CounterVec   // 场景执行结果 (维度: variant, result)
	ScenarioDuration *prometheus.HistogramVec // 场景执行耗时分布
	BuildInfo        *prometheus.GaugeVec
}

// NewMetrics 初始化并返回一个新的指标采集器。
// 它会自动注册 Go 运行时指标和进程指标。
func NewMetrics(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{registry: reg, namespace: namespace}

	m.OperationsTotal = m.NewCounterVec(prometheus.CounterOpts{
		Name: "operations_total",
		Help: "Total number of segment tree operations",
	}, []string{"variant", "op"})

	m.BeatsFallbacks = m.NewCounterVec(prometheus.CounterOpts{
		Name: "beats_fallbacks_total",
		Help: "Number of beats tag failures that recursed into children",
	}, []string{"scenario"})

	m.PersistentNodes = m.NewGaugeVec(prometheus.GaugeOpts{
		Name: "persistent_nodes",
		Help: "Arena size of persistent trees at the end of a scenario",
	}, []string{"variant", "scenario"})

	m.Snapshots = m.NewGaugeVec(prometheus.GaugeOpts{
		Name: "persistent_snapshots",
		Help: "Snapshot count of persistent trees at the end of a scenario",
	}, []string{"variant", "scenario"})

	m.ScenariosTotal = m.NewCounterVec(prometheus.CounterOpts{
		Name: "scenarios_total",
		Help: "Replayed scenarios by result",
	}, []string{"variant", "result"})

	m.ScenarioDuration = m.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "scenario_duration_seconds",
		Help:    "Scenario replay latency in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
	}, []string{"variant"})

	slog.Debug("unified metrics registry initialized", "namespace", namespace)
	return m
}

// NewCounterVec 创建并注册一个新的计数器指标。
func (m *Metrics) NewCounterVec(opts prometheus.CounterOpts, labelNames []string) *prometheus.CounterVec {
	if opts.Namespace == "" {
		opts.Namespace = m.namespace
	}
	cv := prometheus.NewCounterVec(opts, labelNames)
	m.registry.MustRegister(cv)
	return cv
}

// NewGaugeVec 创建并注册一个新的仪表盘指标。
func (m *Metrics) NewGaugeVec(opts prometheus.GaugeOpts, labelNames []string) *prometheus.GaugeVec {
	if opts.Namespace == "" {
		opts.Namespace = m.namespace
	}
	gv := prometheus.NewGaugeVec(opts, labelNames)
	m.registry.MustRegister(gv)
	return gv
}

// NewHistogramVec 创建并注册一个新的直方图指标。
func (m *Metrics) NewHistogramVec(opts prometheus.HistogramOpts, labelNames []string) *prometheus.HistogramVec {
	if opts.Namespace == "" {
		opts.Namespace = m.namespace
	}
	hv := prometheus.NewHistogramVec(opts, labelNames)
	m.registry.MustRegister(hv)
	return hv
}

// Registry 返回内部注册表，供测试与自定义导出使用。
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile 以 Prometheus 文本格式原子写入指标文件，供 node_exporter textfile collector 采集。
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return err
	}
	slog.Info("metrics textfile written", "path", path)
	return nil
}
