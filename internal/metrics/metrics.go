// Package metrics 提供生成与对账相关的 Prometheus 指标
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 所有方法对 nil 接收者安全，测试中可直接传 nil
type Metrics struct {
	GenerationsTotal    *prometheus.CounterVec   // purpose, model, outcome
	GenerationDuration  *prometheus.HistogramVec // purpose, model
	GenerationTokens    *prometheus.CounterVec   // model, kind
	ReconcileRunsTotal  prometheus.Counter
	ReconcileCreated    prometheus.Counter
	ReconcileFailures   prometheus.Counter
	BatchItemsProcessed *prometheus.CounterVec // outcome

	registry *prometheus.Registry
}

// New 创建并注册指标
func New(registry *prometheus.Registry) (*Metrics, error) {
	m := &Metrics{registry: registry}

	m.GenerationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watchledger_generations_total",
			Help: "Total number of description generation attempts by purpose, model and outcome",
		},
		[]string{"purpose", "model", "outcome"},
	)
	m.GenerationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "watchledger_generation_duration_seconds",
			Help:    "Time spent generating a description, including the upstream call",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		},
		[]string{"purpose", "model"},
	)
	m.GenerationTokens = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watchledger_generation_tokens_total",
			Help: "Tokens reported by the upstream provider by model and kind",
		},
		[]string{"model", "kind"}, // kind: prompt, completion
	)
	m.ReconcileRunsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "watchledger_reconcile_runs_total",
		Help: "Total number of reference reconciliation runs",
	})
	m.ReconcileCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "watchledger_reconcile_created_total",
		Help: "Reference shells inserted by reconciliation",
	})
	m.ReconcileFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "watchledger_reconcile_failures_total",
		Help: "Listings skipped by reconciliation because of an error",
	})
	m.BatchItemsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watchledger_generate_all_items_total",
			Help: "Items handled by generate-all batches by outcome",
		},
		[]string{"outcome"},
	)

	collectors := []prometheus.Collector{
		m.GenerationsTotal,
		m.GenerationDuration,
		m.GenerationTokens,
		m.ReconcileRunsTotal,
		m.ReconcileCreated,
		m.ReconcileFailures,
		m.BatchItemsProcessed,
	}
	for _, c := range collectors {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register metric: %w", err)
		}
	}
	return m, nil
}

// Handler 暴露 /metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveGeneration 记录一次生成
func (m *Metrics) ObserveGeneration(purpose, model, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.GenerationsTotal.WithLabelValues(purpose, model, outcome).Inc()
	m.GenerationDuration.WithLabelValues(purpose, model).Observe(elapsed.Seconds())
}

// AddTokens 累计 token 用量
func (m *Metrics) AddTokens(model string, prompt, completion int) {
	if m == nil {
		return
	}
	m.GenerationTokens.WithLabelValues(model, "prompt").Add(float64(prompt))
	m.GenerationTokens.WithLabelValues(model, "completion").Add(float64(completion))
}

// ObserveBatchItem 记录 generate-all 单项结果
func (m *Metrics) ObserveBatchItem(outcome string) {
	if m == nil {
		return
	}
	m.BatchItemsProcessed.WithLabelValues(outcome).Inc()
}

// ObserveReconcile 记录一次对账
func (m *Metrics) ObserveReconcile(created, failed int) {
	if m == nil {
		return
	}
	m.ReconcileRunsTotal.Inc()
	m.ReconcileCreated.Add(float64(created))
	m.ReconcileFailures.Add(float64(failed))
}
