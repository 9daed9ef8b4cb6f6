package models

import "time"

// Quote is a single-day price snapshot for a symbol.
type Quote struct {
	Symbol    string    `json:"symbol"`
	Timestamp time.Time `json:"timestamp"`
	Current   float64   `json:"current"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	PrevClose float64   `json:"prev_close"`
	Change    float64   `json:"change"`
	ChangePct float64   `json:"change_pct"`
	Volume    *float64  `json:"volume,omitempty"`
}

// Candle represents one daily OHLCV bar.
type Candle struct {
	Symbol    string    `json:"symbol"`
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// Profile is the company profile returned by Finnhub profile2.
type Profile struct {
	Symbol           string    `json:"symbol"`
	Name             string    `json:"name"`
	Country          string    `json:"country"`
	Currency         string    `json:"currency"`
	Exchange         string    `json:"exchange"`
	Industry         string    `json:"industry"`
	MarketCap        float64   `json:"market_cap"`
	ShareOutstanding float64   `json:"share_outstanding"`
	IPO              string    `json:"ipo"`
	Logo             string    `json:"logo"`
	WebURL           string    `json:"weburl"`
	FetchedAt        time.Time `json:"fetched_at"`
}

// Trade is a single print from the live trade stream.
type Trade struct {
	Symbol    string
	Timestamp int64 // unix seconds
	Price     float64
	Volume    float64
}

// Constituent is one row of the S&P 500 constituents table.
type Constituent struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Sector string `json:"sector"`
}
