package features

import (
	"FinCast/internal/domain/models"
	domsvc "FinCast/internal/domain/service"
)

// Extractor computes per-symbol features from a quote and its sentiment.
type Extractor struct{}

func NewExtractor() *Extractor { return &Extractor{} }

// Extract derives the feature set. It fails with *models.DivisionByZeroError
// when current, high or prev_close is zero.
func (Extractor) Extract(q models.Quote, s models.Sentiment) (models.FeatureSet, error) {
	switch {
	case q.Current == 0:
		return models.FeatureSet{}, &models.DivisionByZeroError{Symbol: q.Symbol, Field: "current"}
	case q.High == 0:
		return models.FeatureSet{}, &models.DivisionByZeroError{Symbol: q.Symbol, Field: "high"}
	case q.PrevClose == 0:
		return models.FeatureSet{}, &models.DivisionByZeroError{Symbol: q.Symbol, Field: "prev_close"}
	}

	return models.FeatureSet{
		PriceMomentum:      q.ChangePct,
		DailyRange:         (q.High - q.Low) / q.Current * 100,
		GapOpen:            (q.Open - q.PrevClose) / q.PrevClose * 100,
		CloseToHigh:        (q.High - q.Current) / q.High * 100,
		SentimentScore:     s.Score,
		SentimentRatio:     SentimentRatio(s.BullishCount, s.BearishCount),
		RSIProxy:           50 + q.ChangePct*10,
		SupportDistance:    (q.Current - q.Low) / q.Current * 100,
		ResistanceDistance: (q.High - q.Current) / q.Current * 100,
	}, nil
}

// SentimentRatio is (bullish - bearish) / max(bullish + bearish, 1).
func SentimentRatio(bullish, bearish int) float64 {
	total := bullish + bearish
	if total < 1 {
		total = 1
	}
	return float64(bullish-bearish) / float64(total)
}

var _ domsvc.FeatureExtractor = Extractor{}
