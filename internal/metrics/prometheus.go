package metrics

import "github.com/prometheus/client_golang/prometheus"

// Prometheus holds the collectors of the learning loop.
type Prometheus struct {
	Examples    *prometheus.CounterVec
	Failures    *prometheus.CounterVec
	Batches     *prometheus.CounterVec
	Loss        *prometheus.GaugeVec
	Predictions *prometheus.CounterVec
}

func NewPrometheusMetrics() Prometheus {
	return Prometheus{
		Examples: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "learn",
				Name:      "examples",
				Help:      "recorded examples per label",
			}, []string{"session", "label"}),
		Failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "learn",
				Name:      "capture_failures",
				Help:      "skipped ticks because of frame capture or embedding errors",
			}, []string{"session", "process"}),
		Batches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "learn",
				Name:      "batches",
				Help:      "trained batches",
			}, []string{"session"}),
		Loss: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "learn",
				Name:      "loss",
				Help:      "loss of the last trained batch",
			}, []string{"session"}),
		Predictions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "learn",
				Name:      "predictions",
				Help:      "predictions per label",
			}, []string{"session", "label"}),
	}
}

func (p Prometheus) collectors() []prometheus.Collector {
	return []prometheus.Collector{p.Examples, p.Failures, p.Batches, p.Loss, p.Predictions}
}
