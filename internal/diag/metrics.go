package diag

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 进程内指标，注册在私有 Registry 上（不暴露 HTTP 端点）：
// - vigcrack_op_total{comp,stage,result}
// - vigcrack_error_total{comp,code}
// - vigcrack_op_duration_ms{comp,stage}
var (
	registry = prometheus.NewRegistry()

	opTotal = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Name: "vigcrack_op_total",
		Help: "Operations by component, stage and result.",
	}, []string{"comp", "stage", "result"})

	errorTotal = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Name: "vigcrack_error_total",
		Help: "Errors by component and classified code.",
	}, []string{"comp", "code"})

	opDuration = promauto.With(registry).NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vigcrack_op_duration_ms",
		Help:    "Stage duration in milliseconds.",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 50, 100, 500, 1000},
	}, []string{"comp", "stage"})
)

// IncOp 累加操作计数（result=success|error）。
func IncOp(comp, stage, result string) {
	opTotal.WithLabelValues(comp, stage, result).Inc()
}

// IncError 按分类累加错误计数。
func IncError(comp, code string) {
	errorTotal.WithLabelValues(comp, code).Inc()
}

// ObserveDuration 记录阶段耗时（毫秒，允许小数）。
func ObserveDuration(comp, stage string, durMS float64) {
	opDuration.WithLabelValues(comp, stage).Observe(durMS)
}

// WriteMetrics 以 Prometheus 文本格式原子写出全部指标（node_exporter textfile 约定）。
func WriteMetrics(path string) error {
	return prometheus.WriteToTextfile(path, registry)
}

// OpCounter 返回指定标签的操作计数器。
func OpCounter(comp, stage, result string) prometheus.Counter {
	return opTotal.WithLabelValues(comp, stage, result)
}
