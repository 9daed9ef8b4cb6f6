package models

import "time"

// Sentiment is the aggregated social-media signal for a symbol.
// The zero value is the default used when no row exists.
type Sentiment struct {
	Symbol         string    `json:"symbol"`
	Timestamp      string    `json:"timestamp,omitempty"`
	Score          float64   `json:"score"`
	BullishCount   int       `json:"bullish_count"`
	BearishCount   int       `json:"bearish_count"`
	NeutralCount   int       `json:"neutral_count"`
	InfluenceScore int       `json:"influence_score"`
	Topics         []string  `json:"topics"`
	FetchedAt      time.Time `json:"fetched_at"`
}

// Momentum is a qualitative rate-of-change signal. Carried through for display only.
type Momentum struct {
	Symbol          string    `json:"symbol"`
	Timestamp       time.Time `json:"timestamp"`
	VolumeLevel     string    `json:"volume_level"`     // high, normal, low
	SentimentChange string    `json:"sentiment_change"` // accelerating, stable, decelerating
	Direction       string    `json:"direction"`        // bullish, bearish, neutral
	Confidence      int       `json:"confidence"`
	ViralPosts      bool      `json:"viral_posts"`
}

// DefaultMomentum is the record used when a momentum answer cannot be parsed.
func DefaultMomentum(symbol string) Momentum {
	return Momentum{
		Symbol:          symbol,
		VolumeLevel:     "normal",
		SentimentChange: "stable",
		Direction:       "neutral",
		Confidence:      50,
	}
}
