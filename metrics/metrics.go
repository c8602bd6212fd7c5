// Package metrics records router metrics with prometheus.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "crossswap"

var (
	metricsInitOnce sync.Once
	sharedMetrics   *routerMetrics
)

type routerMetrics struct {
	quoteLatency     *prometheus.HistogramVec
	executorOutcomes *prometheus.CounterVec
	routingDecisions *prometheus.CounterVec
	providerErrors   *prometheus.CounterVec
}

func getMetrics() *routerMetrics {
	metricsInitOnce.Do(func() {
		m := &routerMetrics{
			quoteLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "quote_latency_seconds",
				Help:      "Cross swap quote latency by topology and result.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"type", "strategy", "result"}),
			executorOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "executor_outcomes_total",
				Help:      "Strategy executor outcomes by mode.",
			}, []string{"mode", "outcome"}),
			routingDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "routing_decisions_total",
				Help:      "Bridge strategy routing decisions by strategy and rule.",
			}, []string{"strategy", "rule"}),
			providerErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "provider_errors_total",
				Help:      "Upstream provider errors by provider and kind.",
			}, []string{"provider", "kind"}),
		}
		prometheus.MustRegister(m.quoteLatency, m.executorOutcomes, m.routingDecisions, m.providerErrors)
		sharedMetrics = m
	})
	return sharedMetrics
}

// ObserveQuoteLatency observe cross swap quote latency
func ObserveQuoteLatency(crossSwapType, strategy string, d time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	getMetrics().quoteLatency.WithLabelValues(crossSwapType, strategy, result).Observe(d.Seconds())
}

// IncExecutorOutcome count executor outcome
func IncExecutorOutcome(mode, outcome string) {
	getMetrics().executorOutcomes.WithLabelValues(mode, outcome).Inc()
}

// IncRoutingDecision count routing decision
func IncRoutingDecision(strategy, rule string) {
	getMetrics().routingDecisions.WithLabelValues(strategy, rule).Inc()
}

// IncProviderError count upstream provider error
func IncProviderError(provider, kind string) {
	getMetrics().providerErrors.WithLabelValues(provider, kind).Inc()
}

// Handler metrics http handler
func Handler() http.Handler {
	getMetrics()
	return promhttp.Handler()
}
