package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"FinCast/internal/domain/models"
	drepo "FinCast/internal/domain/repository"
	applogger "FinCast/pkg/logger"
	"FinCast/pkg/metrics"
)

// LivePrice is the latest trade seen for a symbol.
type LivePrice struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	Volume    float64   `json:"volume"`
	Timestamp time.Time `json:"timestamp"`
	Trades    int64     `json:"trades"`
}

// LivePrices is a concurrency-safe last-trade board.
type LivePrices struct {
	mu     sync.RWMutex
	prices map[string]LivePrice
}

func NewLivePrices() *LivePrices {
	return &LivePrices{prices: make(map[string]LivePrice)}
}

// Update records t unless an already newer trade is on the board.
func (b *LivePrices) Update(t *models.Trade) {
	ts := time.Unix(t.Timestamp, 0).UTC()
	b.mu.Lock()
	defer b.mu.Unlock()
	cur, ok := b.prices[t.Symbol]
	if ok && ts.Before(cur.Timestamp) {
		cur.Trades++
		b.prices[t.Symbol] = cur
		return
	}
	b.prices[t.Symbol] = LivePrice{Symbol: t.Symbol, Price: t.Price, Volume: t.Volume, Timestamp: ts, Trades: cur.Trades + 1}
}

func (b *LivePrices) Get(symbol string) (LivePrice, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	p, ok := b.prices[symbol]
	return p, ok
}

// Snapshot returns all prices ordered by symbol.
func (b *LivePrices) Snapshot() []LivePrice {
	b.mu.RLock()
	out := make([]LivePrice, 0, len(b.prices))
	for _, p := range b.prices {
		out = append(out, p)
	}
	b.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// LiveCollector feeds a MarketStream into a LivePrices board, reconnecting on stream errors.
type LiveCollector struct {
	stream  drepo.MarketStream
	board   *LivePrices
	metrics drepo.Metrics
	log     *applogger.Logger
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewLiveCollector(stream drepo.MarketStream, board *LivePrices, m drepo.Metrics, l *applogger.Logger) *LiveCollector {
	if m == nil {
		m = metrics.Nop{}
	}
	if l == nil {
		l = applogger.Nop()
	}
	return &LiveCollector{stream: stream, board: board, metrics: m, log: l.With("live")}
}

// IsConnected returns true if the market stream is connected.
func (c *LiveCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

func (c *LiveCollector) Board() *LivePrices { return c.board }

// Start connects and subscribes, then consumes in the background until ctx ends.
func (c *LiveCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		_ = c.stream.Close()
		return err
	}
	ctx, c.cancel = context.WithCancel(ctx)
	c.done = make(chan struct{})
	go c.run(ctx)
	return nil
}

func (c *LiveCollector) run(ctx context.Context) {
	defer close(c.done)
	for {
		trCh, errCh := c.stream.Read(ctx)
		err := c.consume(ctx, trCh, errCh)
		if ctx.Err() != nil {
			return
		}
		c.metrics.RecordError("stream")
		c.log.Warn("stream interrupted, reconnecting", applogger.Error(err))
		for {
			rerr := c.stream.Reconnect(ctx)
			if rerr == nil {
				break
			}
			if ctx.Err() != nil {
				return
			}
			c.metrics.RecordError("stream_reconnect")
			c.log.Warn("reconnect failed", applogger.Error(rerr))
		}
		c.log.Info("stream reconnected")
	}
}

// consume drains the channels until the stream stops; it returns the stream error, if any.
func (c *LiveCollector) consume(ctx context.Context, trCh <-chan *models.Trade, errCh <-chan error) error {
	var streamErr error
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err, ok := <-errCh:
			if ok && err != nil {
				streamErr = err
			}
			if !ok {
				errCh = nil
			}
		case t, ok := <-trCh:
			if !ok {
				return streamErr
			}
			if t == nil {
				continue
			}
			c.board.Update(t)
			c.metrics.RecordLastPrice(t.Symbol, t.Price)
		}
	}
}

// Shutdown closes the stream and waits for the consumer to exit.
func (c *LiveCollector) Shutdown(ctx context.Context) error {
	if c.cancel != nil {
		c.cancel()
	}
	err := c.stream.Close()
	if c.done == nil {
		return err
	}
	select {
	case <-c.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return err
}
