package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"FinCast/internal/domain/models"
	drepo "FinCast/internal/domain/repository"
	applogger "FinCast/pkg/logger"
	"FinCast/pkg/metrics"
)

// FetchOptions selects what a fetch run collects.
type FetchOptions struct {
	Symbols []string
	Finnhub bool
	Grok    bool
}

// FetchSummary counts the records gathered per kind.
type FetchSummary struct {
	Date       string `json:"date"`
	Symbols    int    `json:"symbols"`
	Quotes     int    `json:"quotes"`
	Candles    int    `json:"candles"`
	Profiles   int    `json:"profiles"`
	Sentiments int    `json:"sentiments"`
	Momentums  int    `json:"momentums"`
	Failures   int    `json:"failures"`
}

// DailyFetcher pulls market data and social signals and writes one dated snapshot.
type DailyFetcher struct {
	market       drepo.MarketData
	social       drepo.SocialSignals
	store        drepo.SnapshotStore
	mirror       drepo.MarketStore
	metrics      drepo.Metrics
	log          *applogger.Logger
	lookbackDays int
	dateLayout   string
	now          func() time.Time
}

type FetcherOption func(*DailyFetcher)

// WithMirror copies quotes and candles into an analytical store.
func WithMirror(m drepo.MarketStore) FetcherOption {
	return func(f *DailyFetcher) { f.mirror = m }
}

func WithFetchMetrics(m drepo.Metrics) FetcherOption {
	return func(f *DailyFetcher) { f.metrics = m }
}

func WithFetchLogger(l *applogger.Logger) FetcherOption {
	return func(f *DailyFetcher) { f.log = l }
}

func WithLookbackDays(n int) FetcherOption {
	return func(f *DailyFetcher) { f.lookbackDays = n }
}

func WithFetchDateLayout(layout string) FetcherOption {
	return func(f *DailyFetcher) { f.dateLayout = layout }
}

func NewDailyFetcher(market drepo.MarketData, social drepo.SocialSignals, store drepo.SnapshotStore, opts ...FetcherOption) *DailyFetcher {
	f := &DailyFetcher{
		market:       market,
		social:       social,
		store:        store,
		metrics:      metrics.Nop{},
		log:          applogger.Nop(),
		lookbackDays: 30,
		dateLayout:   "2006-01-02",
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	f.log = f.log.With("fetch")
	return f
}

// Run fetches every selected source for opts.Symbols and writes today's snapshot.
// Individual call failures are logged and counted; only write errors fail the run.
func (f *DailyFetcher) Run(ctx context.Context, opts FetchOptions) (FetchSummary, error) {
	start := f.now()
	sum := FetchSummary{Date: start.Format(f.dateLayout), Symbols: len(opts.Symbols)}
	if len(opts.Symbols) == 0 {
		return sum, &models.EmptyInputError{Op: "fetch"}
	}

	if opts.Finnhub {
		if f.market == nil {
			f.log.Warn("finnhub not configured, skipping")
		} else if err := f.fetchFinnhub(ctx, opts.Symbols, &sum); err != nil {
			return sum, err
		}
	}
	if opts.Grok {
		if f.social == nil || !f.social.Configured() {
			f.log.Warn("grok not configured, skipping")
		} else if err := f.fetchGrok(ctx, opts.Symbols, &sum); err != nil {
			return sum, err
		}
	}

	f.metrics.RecordLatency("fetch", time.Since(start).Seconds())
	f.log.Info("fetch complete",
		applogger.String("date", sum.Date),
		applogger.Int("quotes", sum.Quotes),
		applogger.Int("candles", sum.Candles),
		applogger.Int("profiles", sum.Profiles),
		applogger.Int("sentiments", sum.Sentiments),
		applogger.Int("momentums", sum.Momentums),
		applogger.Int("failures", sum.Failures),
	)
	return sum, nil
}

// record logs and counts the outcome of one upstream call and reports whether it succeeded.
func (f *DailyFetcher) record(source, kind, symbol string, err error, sum *FetchSummary) bool {
	switch {
	case err == nil:
		f.metrics.RecordFetch(source, kind, "ok")
		return true
	case errors.Is(err, models.ErrNoData):
		f.metrics.RecordFetch(source, kind, "empty")
		f.log.Debug("no data", applogger.String("kind", kind), applogger.String("symbol", symbol))
	default:
		f.metrics.RecordFetch(source, kind, "error")
		f.metrics.RecordError(source)
		f.log.Warn("fetch failed", applogger.String("kind", kind), applogger.String("symbol", symbol), applogger.Error(err))
	}
	sum.Failures++
	return false
}

func (f *DailyFetcher) fetchFinnhub(ctx context.Context, symbols []string, sum *FetchSummary) error {
	var batch models.FinnhubBatch
	to := f.now()
	from := to.AddDate(0, 0, -f.lookbackDays)
	for i, sym := range symbols {
		if err := ctx.Err(); err != nil {
			return err
		}
		f.log.Debug("finnhub", applogger.String("symbol", sym), applogger.Int("n", i+1), applogger.Int("of", len(symbols)))
		q, err := f.market.Quote(ctx, sym)
		if f.record("finnhub", "quote", sym, err, sum) {
			batch.Quotes = append(batch.Quotes, *q)
		}
		cs, err := f.market.Candles(ctx, sym, from, to)
		if f.record("finnhub", "candles", sym, err, sum) {
			batch.Candles = append(batch.Candles, cs...)
		}
		p, err := f.market.Profile(ctx, sym)
		if f.record("finnhub", "profile", sym, err, sum) {
			batch.Profiles = append(batch.Profiles, *p)
		}
	}
	sum.Quotes, sum.Candles, sum.Profiles = len(batch.Quotes), len(batch.Candles), len(batch.Profiles)

	if err := f.store.WriteFinnhub(ctx, sum.Date, batch); err != nil {
		return fmt.Errorf("write finnhub snapshot: %w", err)
	}
	if f.mirror != nil {
		if err := f.mirror.StoreQuotes(ctx, batch.Quotes); err != nil {
			f.metrics.RecordError("mirror")
			f.log.Warn("mirror quotes failed", applogger.Error(err))
		}
		if err := f.mirror.StoreCandles(ctx, batch.Candles); err != nil {
			f.metrics.RecordError("mirror")
			f.log.Warn("mirror candles failed", applogger.Error(err))
		}
	}
	return nil
}

func (f *DailyFetcher) fetchGrok(ctx context.Context, symbols []string, sum *FetchSummary) error {
	var batch models.GrokBatch
	for _, sym := range symbols {
		if err := ctx.Err(); err != nil {
			return err
		}
		s, err := f.social.Sentiment(ctx, sym)
		if f.record("grok", "sentiment", sym, err, sum) {
			batch.Sentiments = append(batch.Sentiments, *s)
		}
		m, err := f.social.Momentum(ctx, sym)
		if f.record("grok", "momentum", sym, err, sum) {
			batch.Momentums = append(batch.Momentums, *m)
		}
	}
	sum.Sentiments, sum.Momentums = len(batch.Sentiments), len(batch.Momentums)

	if err := f.store.WriteGrok(ctx, sum.Date, batch); err != nil {
		return fmt.Errorf("write grok snapshot: %w", err)
	}
	return nil
}
