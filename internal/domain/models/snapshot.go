package models

// Snapshot is one day's worth of loaded market records keyed by symbol.
type Snapshot struct {
	Date      string
	Quotes    map[string]Quote
	Sentiment map[string]Sentiment
	Momentum  map[string]Momentum
	// Rejected holds the optional rows that failed to parse.
	Rejected []error
}

// SentimentFor returns the sentiment for symbol or the zero-valued default.
func (s *Snapshot) SentimentFor(symbol string) Sentiment {
	if v, ok := s.Sentiment[symbol]; ok {
		return v
	}
	return Sentiment{Symbol: symbol, Topics: []string{}}
}

// MomentumFor returns the momentum for symbol, or nil when absent.
func (s *Snapshot) MomentumFor(symbol string) *Momentum {
	if v, ok := s.Momentum[symbol]; ok {
		return &v
	}
	return nil
}

// FinnhubBatch is the set of records gathered from Finnhub in one fetch run.
type FinnhubBatch struct {
	Quotes   []Quote
	Candles  []Candle
	Profiles []Profile
}

// GrokBatch is the set of records gathered from Grok in one fetch run.
type GrokBatch struct {
	Sentiments []Sentiment
	Momentums  []Momentum
}
