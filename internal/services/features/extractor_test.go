package features

import (
	"errors"
	"testing"

	"FinCast/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleQuote() models.Quote {
	return models.Quote{Symbol: "AAPL", Current: 100, Open: 101, High: 102, Low: 98, PrevClose: 100, ChangePct: 1.5}
}

func TestExtractAAPLQuote(t *testing.T) {
	f, err := NewExtractor().Extract(sampleQuote(), models.Sentiment{Score: 0.4, BullishCount: 10, BearishCount: 2})
	require.NoError(t, err)

	assert.InDelta(t, 1.5, f.PriceMomentum, 1e-9)
	assert.InDelta(t, 4.0, f.DailyRange, 1e-9)
	assert.InDelta(t, 1.0, f.GapOpen, 1e-9)
	assert.InDelta(t, 1.9607843, f.CloseToHigh, 1e-6)
	assert.InDelta(t, 0.4, f.SentimentScore, 1e-9)
	assert.InDelta(t, 8.0/12.0, f.SentimentRatio, 1e-9)
	assert.InDelta(t, 65.0, f.RSIProxy, 1e-9)
	assert.InDelta(t, 2.0, f.SupportDistance, 1e-9)
	assert.InDelta(t, 2.0, f.ResistanceDistance, 1e-9)
}

func TestExtractDefaultSentiment(t *testing.T) {
	f, err := NewExtractor().Extract(sampleQuote(), models.Sentiment{})
	require.NoError(t, err)
	assert.Zero(t, f.SentimentScore)
	assert.Zero(t, f.SentimentRatio)
}

func TestExtractDivisionByZero(t *testing.T) {
	tests := []struct {
		name  string
		mut   func(*models.Quote)
		field string
	}{
		{"current", func(q *models.Quote) { q.Current = 0 }, "current"},
		{"high", func(q *models.Quote) { q.High = 0 }, "high"},
		{"prev_close", func(q *models.Quote) { q.PrevClose = 0 }, "prev_close"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := sampleQuote()
			tt.mut(&q)
			_, err := NewExtractor().Extract(q, models.Sentiment{})
			var dz *models.DivisionByZeroError
			require.True(t, errors.As(err, &dz), "want DivisionByZeroError, got %v", err)
			assert.Equal(t, tt.field, dz.Field)
			assert.Equal(t, "AAPL", dz.Symbol)
		})
	}
}

func TestSentimentRatio(t *testing.T) {
	assert.Equal(t, 0.0, SentimentRatio(0, 0))
	assert.Equal(t, 1.0, SentimentRatio(1, 0))
	assert.Equal(t, -1.0, SentimentRatio(0, 3))
	assert.Equal(t, 0.5, SentimentRatio(3, 1))
}
