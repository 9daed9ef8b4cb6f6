package models

import "time"

// FeatureSet holds the numeric features derived from one quote and one sentiment record.
// All values are percentages except SentimentScore and SentimentRatio.
type FeatureSet struct {
	PriceMomentum      float64 `json:"price_momentum"`
	DailyRange         float64 `json:"daily_range"`
	GapOpen            float64 `json:"gap_open"`
	CloseToHigh        float64 `json:"close_to_high"`
	SentimentScore     float64 `json:"sentiment_score"`
	SentimentRatio     float64 `json:"sentiment_ratio"`
	RSIProxy           float64 `json:"rsi_proxy"` // not a real RSI
	SupportDistance    float64 `json:"support_distance"`
	ResistanceDistance float64 `json:"resistance_distance"`
}

// Factors is the named breakdown of a projected change, in percent.
type Factors struct {
	Momentum           float64 `json:"momentum"`
	Sentiment          float64 `json:"sentiment"`
	GapRecovery        float64 `json:"gap_recovery"`
	MeanReversion      float64 `json:"mean_reversion"`
	SupportBounce      float64 `json:"support_bounce"`
	ResistancePressure float64 `json:"resistance_pressure"`
}

// Sum returns the unclamped total of all factors.
func (f Factors) Sum() float64 {
	return f.Momentum + f.Sentiment + f.GapRecovery + f.MeanReversion + f.SupportBounce + f.ResistancePressure
}

// Prediction is the next-day projection for one symbol.
type Prediction struct {
	Symbol             string     `json:"symbol"`
	CurrentPrice       float64    `json:"current_price"`
	PredictedPrice     float64    `json:"predicted_price"`
	PredictedChange    float64    `json:"predicted_change"`
	PredictedChangePct float64    `json:"predicted_change_pct"`
	Confidence         float64    `json:"confidence"`
	Factors            Factors    `json:"factors"`
	Features           FeatureSet `json:"features"`
	Sentiment          Sentiment  `json:"sentiment"`
	Momentum           *Momentum  `json:"momentum,omitempty"`
}

// Direction labels for the market outlook.
const (
	DirectionBullish = "BULLISH"
	DirectionBearish = "BEARISH"
	DirectionNeutral = "NEUTRAL"
)

// Stats are the aggregate market-direction statistics over a prediction set.
type Stats struct {
	Total        int     `json:"total"`
	BullishCount int     `json:"bullish_count"`
	BearishCount int     `json:"bearish_count"`
	NeutralCount int     `json:"neutral_count"`
	AvgChangePct float64 `json:"avg_change_pct"`
	Direction    string  `json:"direction"`
}

// Skipped records a symbol left out of a report and why.
type Skipped struct {
	Symbol string `json:"symbol"`
	Reason string `json:"reason"`
}

// Report is the ranked prediction report for one snapshot date.
type Report struct {
	ID         string       `json:"id"`
	AsOf       time.Time    `json:"as_of"`
	TargetDate time.Time    `json:"target_date"`
	Ranked     []Prediction `json:"ranked"`
	Stats      Stats        `json:"stats"`
	BestLong   *Prediction  `json:"best_long,omitempty"`
	BestShort  *Prediction  `json:"best_short,omitempty"`
	Skipped    []Skipped    `json:"skipped,omitempty"`
}

// Find returns the ranked prediction for symbol.
func (r *Report) Find(symbol string) (Prediction, bool) {
	for _, p := range r.Ranked {
		if p.Symbol == symbol {
			return p, true
		}
	}
	return Prediction{}, false
}
