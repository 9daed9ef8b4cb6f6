package predictor

import (
	"math"

	"FinCast/internal/domain/models"
	domsvc "FinCast/internal/domain/service"
)

// Factor weights. These are fixed; changing them changes every historical report.
const (
	MomentumWeight      = 0.3
	SentimentWeight     = 2.0
	GapRecoveryWeight   = -0.2
	MeanReversionWeight = -0.1

	SupportBounce      = 0.5
	ResistancePressure = -0.3
	// LevelProximityPct is the distance under which support/resistance kicks in.
	LevelProximityPct = 1.0

	MaxChangePct = 5.0

	BaseConfidence        = 50.0
	SentimentConfidence   = 20.0
	RangeConfidenceWeight = 0.2
	GapConfidencePenalty  = 5.0
)

// Predictor applies the weighted-factor formula.
type Predictor struct{}

func New() *Predictor { return &Predictor{} }

// Predict projects the next-day price. Features are assumed validated.
func (Predictor) Predict(q models.Quote, f models.FeatureSet) models.Prediction {
	factors := models.Factors{
		Momentum:      f.PriceMomentum * MomentumWeight,
		Sentiment:     f.SentimentScore * SentimentWeight,
		GapRecovery:   f.GapOpen * GapRecoveryWeight,
		MeanReversion: f.CloseToHigh * MeanReversionWeight,
	}
	if f.SupportDistance < LevelProximityPct {
		factors.SupportBounce = SupportBounce
	}
	if f.ResistanceDistance < LevelProximityPct {
		factors.ResistancePressure = ResistancePressure
	}

	changePct := clamp(factors.Sum(), -MaxChangePct, MaxChangePct)
	predicted := q.Current * (1 + changePct/100)

	return models.Prediction{
		Symbol:             q.Symbol,
		CurrentPrice:       q.Current,
		PredictedPrice:     predicted,
		PredictedChange:    predicted - q.Current,
		PredictedChangePct: changePct,
		Confidence:         Confidence(f),
		Factors:            factors,
		Features:           f,
	}
}

// Confidence scores a feature set in [0, 100].
func Confidence(f models.FeatureSet) float64 {
	c := BaseConfidence +
		math.Abs(f.SentimentScore)*SentimentConfidence +
		(100-f.DailyRange)*RangeConfidenceWeight -
		math.Abs(f.GapOpen)*GapConfidencePenalty
	return clamp(c, 0, 100)
}

// clamp also maps NaN to lo so the output range always holds.
func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

var _ domsvc.PricePredictor = Predictor{}
