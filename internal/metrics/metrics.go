package metrics

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var Observer = &Metrics{
	mutex:      new(sync.RWMutex),
	prometheus: NewPrometheusMetrics(),
}

func init() {
	prometheus.MustRegister(Observer.prometheus.collectors()...)
}

type Metrics struct {
	mutex      *sync.RWMutex
	prometheus Prometheus
	last       map[string]float64
}

// Example counts a recorded example.
func (m *Metrics) Example(session, label string) {
	m.prometheus.Examples.WithLabelValues(session, label).Inc()
}

// Failure counts a skipped tick.
func (m *Metrics) Failure(session, process string) {
	m.prometheus.Failures.WithLabelValues(session, process).Inc()
}

// Batch counts a trained batch and tracks its loss.
func (m *Metrics) Batch(session string, loss float64) {
	m.prometheus.Batches.WithLabelValues(session).Inc()
	m.prometheus.Loss.WithLabelValues(session).Set(loss)
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.last == nil {
		m.last = make(map[string]float64)
	}
	m.last[session] = loss
}

// Prediction counts a prediction for the label.
func (m *Metrics) Prediction(session, label string) {
	m.prometheus.Predictions.WithLabelValues(session, label).Inc()
}

// Loss returns the loss of the last batch trained within the session.
func (m *Metrics) Loss(session string) (float64, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	loss, ok := m.last[session]
	return loss, ok
}

// Serve exposes the metrics on the given port.
// It blocks until the server stops.
func Serve(port int) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	log.Info().Int("port", port).Msg("serving metrics")
	return http.ListenAndServe(fmt.Sprintf(":%d", port), mux)
}
