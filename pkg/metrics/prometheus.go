package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	forecastsTotal *prometheus.CounterVec
	cacheHits      *prometheus.CounterVec
	lastPrediction *prometheus.GaugeVec
	errorsTotal    *prometheus.CounterVec
	latency        *prometheus.HistogramVec
}

// New creates a Prometheus metrics recorder registered with reg.
func New(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		forecastsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "replica_forecast_requests_total",
				Help: "Total number of forecast requests by outcome",
			},
			[]string{"algorithm", "outcome"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "replica_forecast_cache_hits_total",
				Help: "Forecasts answered from the result cache",
			},
			[]string{"algorithm"},
		),
		lastPrediction: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "replica_forecast_last_prediction",
				Help: "Last predicted replica count",
			},
			[]string{"algorithm"},
		),
		errorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "replica_forecast_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "replica_forecast_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordForecast counts a forecast request by outcome: ok, cached, validation or computation.
func (r *Recorder) RecordForecast(algorithm, outcome string) {
	r.forecastsTotal.WithLabelValues(algorithm, outcome).Inc()
}

func (r *Recorder) RecordCacheHit(algorithm string) {
	r.cacheHits.WithLabelValues(algorithm).Inc()
}

func (r *Recorder) RecordPrediction(algorithm string, prediction int) {
	r.lastPrediction.WithLabelValues(algorithm).Set(float64(prediction))
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
