package repository

import (
	"context"
	"time"

	"FinCast/internal/domain/models"
)

// MarketData fetches quotes, candles and profiles from a market data API.
type MarketData interface {
	Quote(ctx context.Context, symbol string) (*models.Quote, error)
	Candles(ctx context.Context, symbol string, from, to time.Time) ([]models.Candle, error)
	Profile(ctx context.Context, symbol string) (*models.Profile, error)
}

// SocialSignals fetches sentiment and momentum signals for a symbol.
type SocialSignals interface {
	Configured() bool
	Sentiment(ctx context.Context, symbol string) (*models.Sentiment, error)
	Momentum(ctx context.Context, symbol string) (*models.Momentum, error)
}

// SnapshotStore persists and loads dated snapshots.
type SnapshotStore interface {
	Load(ctx context.Context, date string) (*models.Snapshot, error)
	WriteFinnhub(ctx context.Context, date string, b models.FinnhubBatch) error
	WriteGrok(ctx context.Context, date string, b models.GrokBatch) error
}

// MarketStore mirrors fetched records and predictions into an analytical store.
type MarketStore interface {
	StoreQuotes(ctx context.Context, quotes []models.Quote) error
	StoreCandles(ctx context.Context, candles []models.Candle) error
	StorePredictions(ctx context.Context, r *models.Report) error
	Health(ctx context.Context) error
	Close() error
}

// ReportPublisher publishes finished reports.
type ReportPublisher interface {
	Publish(ctx context.Context, r *models.Report) error
	Close() error
}

// MarketStream is a live trade feed.
type MarketStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.Trade, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// ConstituentSource lists index members.
type ConstituentSource interface {
	Constituents(ctx context.Context) ([]models.Constituent, error)
}

type Metrics interface {
	RecordFetch(source, kind, result string)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordPrediction(symbol string, changePct, confidence float64)
	RecordLatency(op string, seconds float64)
}
