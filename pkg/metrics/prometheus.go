package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	fetchTotal   *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
	lastPrice    *prometheus.GaugeVec
	predictedPct *prometheus.GaugeVec
	confidence   *prometheus.GaugeVec
	latency      *prometheus.HistogramVec
}

// New creates a Prometheus metrics recorder registered on reg.
// A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Recorder{
		fetchTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fincast_fetch_total",
				Help: "Total number of upstream fetches by source, kind and result",
			},
			[]string{"source", "kind", "result"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fincast_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "fincast_last_price",
				Help: "Last recorded price for a symbol",
			},
			[]string{"symbol"},
		),
		predictedPct: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "fincast_predicted_change_pct",
				Help: "Latest predicted next-day change in percent",
			},
			[]string{"symbol"},
		),
		confidence: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "fincast_prediction_confidence",
				Help: "Latest prediction confidence (10-95)",
			},
			[]string{"symbol"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fincast_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordFetch counts one upstream call. result is "ok" or "error".
func (r *Recorder) RecordFetch(source, kind, result string) {
	r.fetchTotal.WithLabelValues(source, kind, result).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

func (r *Recorder) RecordPrediction(symbol string, changePct, confidence float64) {
	r.predictedPct.WithLabelValues(symbol).Set(changePct)
	r.confidence.WithLabelValues(symbol).Set(confidence)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// Nop discards everything. Useful for CLIs and tests.
type Nop struct{}

func (Nop) RecordFetch(string, string, string)        {}
func (Nop) RecordError(string)                        {}
func (Nop) RecordLastPrice(string, float64)           {}
func (Nop) RecordPrediction(string, float64, float64) {}
func (Nop) RecordLatency(string, float64)             {}

// Register registers c on reg and returns it, or the already registered
// collector with the same descriptor.
func Register[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}
