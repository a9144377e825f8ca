package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	predictionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "agri_api_prediction_duration_seconds",
		Help:    "Duration of model predictions grouped by kind and outcome",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 15, 30},
	}, []string{"kind", "status"})

	predictionTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agri_api_predictions_total",
		Help: "Total predictions served grouped by kind and outcome",
	}, []string{"kind", "status"})

	persistenceAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agri_api_persistence_attempts_total",
		Help: "Store write attempts grouped by table and outcome",
	}, []string{"table", "status"})

	persistenceDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agri_api_persistence_dropped_total",
		Help: "Records dropped after exhausting the retry budget",
	}, []string{"table"})

	weatherCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agri_api_weather_cache_total",
		Help: "Weather cache lookups grouped by outcome",
	}, []string{"outcome"})
)

// ObservePrediction records the duration and outcome of a prediction.
func ObservePrediction(kind, status string, duration time.Duration) {
	if kind == "" {
		kind = "unknown"
	}
	if status == "" {
		status = "unknown"
	}
	predictionDuration.WithLabelValues(kind, status).Observe(duration.Seconds())
	predictionTotal.WithLabelValues(kind, status).Inc()
}

// ObservePersistenceAttempt records a single store write attempt.
func ObservePersistenceAttempt(table string, success bool) {
	status := "success"
	if !success {
		status = "failed"
	}
	persistenceAttempts.WithLabelValues(table, status).Inc()
}

// ObservePersistenceDrop records a record permanently dropped after retries.
func ObservePersistenceDrop(table string) {
	persistenceDropped.WithLabelValues(table).Inc()
}

// ObserveWeatherCache records a weather cache hit or miss.
func ObserveWeatherCache(hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	weatherCache.WithLabelValues(outcome).Inc()
}
