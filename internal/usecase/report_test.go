package usecase

import (
	"errors"
	"strings"
	"testing"
	"time"

	"FinCast/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildReport(t *testing.T) {
	asOf := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	preds := map[string]models.Prediction{
		"AAPL": {Symbol: "AAPL", PredictedChangePct: 1.2},
		"MSFT": {Symbol: "MSFT", PredictedChangePct: -0.8},
		"NVDA": {Symbol: "NVDA", PredictedChangePct: 0.1},
	}
	skipped := []models.Skipped{{Symbol: "ZZZ", Reason: "ZZZ: current is zero"}}

	r, err := BuildReport(preds, skipped, asOf)
	require.NoError(t, err)

	assert.NotEmpty(t, r.ID)
	assert.Equal(t, asOf.AddDate(0, 0, 1), r.TargetDate)
	require.Len(t, r.Ranked, 3)
	assert.Equal(t, "AAPL", r.Ranked[0].Symbol)
	assert.Equal(t, "MSFT", r.Ranked[2].Symbol)
	require.NotNil(t, r.BestLong)
	require.NotNil(t, r.BestShort)
	assert.Equal(t, "AAPL", r.BestLong.Symbol)
	assert.Equal(t, "MSFT", r.BestShort.Symbol)
	assert.Equal(t, 1, r.Stats.BullishCount)
	assert.Equal(t, 1, r.Stats.BearishCount)
	assert.Equal(t, 1, r.Stats.NeutralCount)
	assert.Equal(t, skipped, r.Skipped)
}

func TestBuildReportEmpty(t *testing.T) {
	_, err := BuildReport(nil, nil, time.Now())
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrEmptyInput))
}

func TestSentimentLabel(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{0.5, "positive"},
		{0.3, "neutral"},
		{0, "neutral"},
		{-0.29, "neutral"},
		{-0.3, "negative"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SentimentLabel(tt.score), "score %v", tt.score)
	}
}

func TestKeyDrivers(t *testing.T) {
	ds := KeyDrivers(models.Factors{Momentum: 0.45, Sentiment: 0.8, GapRecovery: -0.25, SupportBounce: 0.3, ResistancePressure: -0.2})
	names := make([]string, 0, len(ds))
	for _, d := range ds {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"Social Sentiment", "Gap Fill", "Support Bounce", "Resistance"}, names)
}

func TestRenderText(t *testing.T) {
	asOf := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	preds := map[string]models.Prediction{
		"AAPL": {
			Symbol: "AAPL", CurrentPrice: 100, PredictedPrice: 100.85, PredictedChange: 0.85, PredictedChangePct: 0.85,
			Confidence: 72.2, Factors: models.Factors{Momentum: 0.45, Sentiment: 0.8},
			Sentiment: models.Sentiment{Score: 0.4},
		},
		"TSLA": {Symbol: "TSLA", CurrentPrice: 200, PredictedPrice: 195.9, PredictedChange: -4.1, PredictedChangePct: -2.05},
	}
	r, err := BuildReport(preds, []models.Skipped{{Symbol: "ZZZ", Reason: "zero"}}, asOf)
	require.NoError(t, err)

	var b strings.Builder
	require.NoError(t, RenderText(&b, r))
	out := b.String()

	for _, want := range []string{
		"Prediction Date: 2025-01-11",
		"[UP] AAPL",
		"├─ Current Price: $100.00",
		"├─ Expected Change: $0.85 (+0.85%)",
		"├─ Confidence: 72%",
		"├─ Sentiment: positive 0.40",
		"   • Social Sentiment: +0.80%",
		"[DOWN] TSLA",
		"Overall Market Direction: BEARISH",
		"Average Expected Move: -0.60%",
		"  Best Long: AAPL (Target: $100.85, +0.85%)",
		"  Best Short: TSLA (Target: $195.90, -2.05%)",
		"  ZZZ: zero",
		"DISCLAIMER",
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "Momentum: +0.45%")
	assert.Less(t, strings.Index(out, "AAPL"), strings.Index(out, "TSLA"))
}
