package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func TestPublishJSON(t *testing.T) {
	w := &fakeWriter{}
	reg := prometheus.NewRegistry()
	p, err := NewProducer(WithWriter(w), WithRegisterer(reg))
	require.NoError(t, err)

	err = p.Publish(context.Background(), "topic", []byte("k"), map[string]int{"a": 1}, kafka.Header{Key: "type", Value: []byte("report")})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "topic", w.msgs[0].Topic)
	assert.JSONEq(t, `{"a":1}`, string(w.msgs[0].Value))
	assert.Equal(t, "type", w.msgs[0].Headers[0].Key)
	assert.Equal(t, 1.0, testutil.ToFloat64(p.m.msgs.WithLabelValues("topic", "gzip", "ok")))
}

func TestPublishError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	p, err := NewProducer(WithWriter(w), WithRegisterer(nil))
	require.NoError(t, err)
	err = p.Publish(context.Background(), "topic", nil, "raw")
	assert.ErrorContains(t, err, "broker down")
}

func TestNewProducerNeedsBrokers(t *testing.T) {
	_, err := NewProducer(WithRegisterer(nil))
	assert.Error(t, err)
}

func TestParseCompression(t *testing.T) {
	assert.Equal(t, kafka.Zstd, parseCompression("zstd"))
	assert.Equal(t, kafka.Gzip, parseCompression("bogus"))
}
