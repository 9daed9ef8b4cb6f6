package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.RecordFetch("finnhub", "quote", "ok")
	r.RecordFetch("finnhub", "quote", "ok")
	r.RecordFetch("grok", "sentiment", "error")
	r.RecordError("parse")
	r.RecordLastPrice("AAPL", 187.5)
	r.RecordPrediction("AAPL", 1.25, 72)
	r.RecordLatency("predict", 0.01)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.fetchTotal.WithLabelValues("finnhub", "quote", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.fetchTotal.WithLabelValues("grok", "sentiment", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.errorsTotal.WithLabelValues("parse")))
	assert.Equal(t, 187.5, testutil.ToFloat64(r.lastPrice.WithLabelValues("AAPL")))
	assert.Equal(t, 1.25, testutil.ToFloat64(r.predictedPct.WithLabelValues("AAPL")))
	assert.Equal(t, 72.0, testutil.ToFloat64(r.confidence.WithLabelValues("AAPL")))

	n, err := testutil.GatherAndCount(reg, "fincast_operation_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRecorderSeparateRegistries(t *testing.T) {
	// two recorders on distinct registries must not collide
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}

func TestRegisterReusesExisting(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := Register(reg, prometheus.NewCounter(prometheus.CounterOpts{Name: "x_total", Help: "x"}))
	b := Register(reg, prometheus.NewCounter(prometheus.CounterOpts{Name: "x_total", Help: "x"}))
	a.Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(b))
}
