package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"FinCast/internal/domain/models"
)

type memStore struct {
	snap    *models.Snapshot
	loadErr error
	finnhub map[string]models.FinnhubBatch
	grok    map[string]models.GrokBatch
}

func newMemStore(snap *models.Snapshot) *memStore {
	return &memStore{snap: snap, finnhub: map[string]models.FinnhubBatch{}, grok: map[string]models.GrokBatch{}}
}

func (s *memStore) Load(_ context.Context, _ string) (*models.Snapshot, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.snap, nil
}

func (s *memStore) WriteFinnhub(_ context.Context, date string, b models.FinnhubBatch) error {
	s.finnhub[date] = b
	return nil
}

func (s *memStore) WriteGrok(_ context.Context, date string, b models.GrokBatch) error {
	s.grok[date] = b
	return nil
}

type recordingMetrics struct {
	mu          sync.Mutex
	fetches     map[string]int
	errors      map[string]int
	lastPrice   map[string]float64
	predictions int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{fetches: map[string]int{}, errors: map[string]int{}, lastPrice: map[string]float64{}}
}

func (m *recordingMetrics) RecordFetch(source, kind, result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetches[source+"/"+kind+"/"+result]++
}

func (m *recordingMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[kind]++
}

func (m *recordingMetrics) RecordLastPrice(symbol string, price float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastPrice[symbol] = price
}

func (m *recordingMetrics) RecordPrediction(string, float64, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.predictions++
}

func (m *recordingMetrics) RecordLatency(string, float64) {}

func (m *recordingMetrics) errorCount(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errors[kind]
}

type fakePublisher struct {
	reports []*models.Report
	err     error
}

func (p *fakePublisher) Publish(_ context.Context, r *models.Report) error {
	if p.err != nil {
		return p.err
	}
	p.reports = append(p.reports, r)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

type fakeMarketStore struct {
	quotes      []models.Quote
	candles     []models.Candle
	predictions int
	err         error
}

func (m *fakeMarketStore) StoreQuotes(_ context.Context, q []models.Quote) error {
	m.quotes = append(m.quotes, q...)
	return m.err
}

func (m *fakeMarketStore) StoreCandles(_ context.Context, c []models.Candle) error {
	m.candles = append(m.candles, c...)
	return m.err
}

func (m *fakeMarketStore) StorePredictions(_ context.Context, r *models.Report) error {
	m.predictions += len(r.Ranked)
	return m.err
}

func (m *fakeMarketStore) Health(context.Context) error { return nil }

func (m *fakeMarketStore) Close() error { return nil }

type fakeMarket struct {
	quotes   map[string]models.Quote
	failKind string
}

func (f *fakeMarket) Quote(_ context.Context, symbol string) (*models.Quote, error) {
	if f.failKind == "quote" {
		return nil, errors.New("boom")
	}
	q, ok := f.quotes[symbol]
	if !ok {
		return nil, models.ErrNoData
	}
	return &q, nil
}

func (f *fakeMarket) Candles(_ context.Context, symbol string, from, to time.Time) ([]models.Candle, error) {
	if f.failKind == "candles" {
		return nil, errors.New("boom")
	}
	return []models.Candle{
		{Symbol: symbol, Timestamp: from, Close: 1},
		{Symbol: symbol, Timestamp: to, Close: 2},
	}, nil
}

func (f *fakeMarket) Profile(_ context.Context, symbol string) (*models.Profile, error) {
	return &models.Profile{Symbol: symbol, Name: symbol + " Inc"}, nil
}

type fakeSocial struct {
	configured bool
	calls      int
}

func (f *fakeSocial) Configured() bool { return f.configured }

func (f *fakeSocial) Sentiment(_ context.Context, symbol string) (*models.Sentiment, error) {
	f.calls++
	return &models.Sentiment{Symbol: symbol, Score: 0.2, Topics: []string{}}, nil
}

func (f *fakeSocial) Momentum(_ context.Context, symbol string) (*models.Momentum, error) {
	f.calls++
	m := models.DefaultMomentum(symbol)
	return &m, nil
}

type fakeStream struct {
	mu         sync.Mutex
	trades     chan *models.Trade
	errs       chan error
	connected  bool
	reconnects int
	closed     int
}

func (s *fakeStream) Connect(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = true
	return nil
}

func (s *fakeStream) Subscribe(context.Context) error { return nil }

func (s *fakeStream) Read(context.Context) (<-chan *models.Trade, <-chan error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trades = make(chan *models.Trade, 16)
	s.errs = make(chan error, 1)
	return s.trades, s.errs
}

func (s *fakeStream) channels() (chan *models.Trade, chan error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.trades, s.errs
}

func (s *fakeStream) Reconnect(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reconnects++
	return nil
}

func (s *fakeStream) reconnectCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reconnects
}

func (s *fakeStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = false
	s.closed++
	return nil
}

func (s *fakeStream) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}
