package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	tracesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "philosophy_traces_total",
		Help: "Finished traversals by outcome.",
	}, []string{"outcome"})

	traceSteps = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "philosophy_trace_steps",
		Help:    "Links followed per finished traversal.",
		Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21, 34, 55, 100},
	})

	fetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "philosophy_fetch_duration_seconds",
		Help:    "Page fetch latency by engine and result.",
		Buckets: prometheus.DefBuckets,
	}, []string{"engine", "result"})
)

// ObserveTrace records a finished traversal.
func ObserveTrace(outcome string, steps int) {
	tracesTotal.WithLabelValues(outcome).Inc()
	traceSteps.Observe(float64(steps))
}

// ObserveFetch records one engine fetch attempt.
func ObserveFetch(engine string, d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	fetchDuration.WithLabelValues(engine, result).Observe(d.Seconds())
}
