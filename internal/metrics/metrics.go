// Package metrics provides Prometheus instrumentation for workflow turns.
package metrics

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "campaignpilot"

// Recorder counts turns, classifications and stage failures, and times turns.
type Recorder struct {
	turns           *prometheus.CounterVec
	classifications *prometheus.CounterVec
	stageFailures   *prometheus.CounterVec
	turnDuration    *prometheus.HistogramVec
}

// NewRecorder creates a Recorder and registers its collectors with reg.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		turns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Workflow turns processed, by resolved intent and outcome.",
		}, []string{"intent", "outcome"}),
		classifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classifications_total",
			Help:      "Intent classifications, by intent.",
		}, []string{"intent"}),
		stageFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_failures_total",
			Help:      "Workflow stage failures, by node and whether the turn was aborted.",
		}, []string{"node", "fatal"}),
		turnDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "turn_duration_seconds",
			Help:      "Duration of workflow turns.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"intent"}),
	}
	for _, c := range []prometheus.Collector{r.turns, r.classifications, r.stageFailures, r.turnDuration} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register collector: %w", err)
		}
	}
	return r, nil
}

func (r *Recorder) ObserveClassification(intent string) {
	r.classifications.WithLabelValues(intent).Inc()
}

func (r *Recorder) ObserveStageFailure(node string, fatal bool) {
	r.stageFailures.WithLabelValues(node, strconv.FormatBool(fatal)).Inc()
}

func (r *Recorder) ObserveTurn(intent, outcome string, seconds float64) {
	r.turns.WithLabelValues(intent, outcome).Inc()
	r.turnDuration.WithLabelValues(intent).Observe(seconds)
}

// Handler serves the metrics gathered by g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
