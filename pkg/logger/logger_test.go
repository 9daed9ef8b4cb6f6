package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONFields(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewWithWriter(&buf, &Config{Level: "debug", Format: "json"})
	require.NoError(t, err)

	l.With("predict").Warn("symbol skipped",
		String("symbol", "AAPL"),
		Float("change_pct", 1.25),
		Int("count", 3),
		Strings("topics", []string{"ai", "earnings"}),
		Error(errors.New("boom")),
	)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &m))
	assert.Equal(t, "warn", m["level"])
	assert.Equal(t, "symbol skipped", m["message"])
	assert.Equal(t, "predict", m["component"])
	assert.Equal(t, "AAPL", m["symbol"])
	assert.Equal(t, 1.25, m["change_pct"])
	assert.Equal(t, float64(3), m["count"])
	assert.Equal(t, "ai, earnings", m["topics"])
	assert.Equal(t, "boom", m["error"])
}

func TestLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewWithWriter(&buf, &Config{Level: "warn", Format: "json"})
	require.NoError(t, err)

	l.Info("hidden")
	l.Debug("hidden")
	assert.Zero(t, buf.Len())

	l.Error("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestInvalidLevel(t *testing.T) {
	_, err := NewWithWriter(&bytes.Buffer{}, &Config{Level: "loud"})
	assert.Error(t, err)
}

func TestDurationAndNilError(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewWithWriter(&buf, &Config{Level: "info", Format: "json"})
	require.NoError(t, err)

	l.Info("fetched", Duration("took_ms", 1500*time.Millisecond), Error(nil), Bool("cached", true))

	var m map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &m))
	assert.Equal(t, float64(1500), m["took_ms"])
	assert.Equal(t, true, m["cached"])
	assert.NotContains(t, m, "error")
}
