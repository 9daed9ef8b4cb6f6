package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"FinCast/internal/domain/models"
	drepo "FinCast/internal/domain/repository"
	domsvc "FinCast/internal/domain/service"
	applogger "FinCast/pkg/logger"
	"FinCast/pkg/metrics"
)

// PredictionService turns one day's snapshot into a ranked report and fans it out to optional sinks.
type PredictionService struct {
	store      drepo.SnapshotStore
	extractor  domsvc.FeatureExtractor
	predictor  domsvc.PricePredictor
	publisher  drepo.ReportPublisher
	market     drepo.MarketStore
	metrics    drepo.Metrics
	log        *applogger.Logger
	dateLayout string
	now        func() time.Time
}

type PredictionOption func(*PredictionService)

// WithPublisher publishes each report after it is built.
func WithPublisher(p drepo.ReportPublisher) PredictionOption {
	return func(s *PredictionService) { s.publisher = p }
}

// WithMarketStore mirrors prediction rows into an analytical store.
func WithMarketStore(m drepo.MarketStore) PredictionOption {
	return func(s *PredictionService) { s.market = m }
}

func WithMetrics(m drepo.Metrics) PredictionOption {
	return func(s *PredictionService) { s.metrics = m }
}

func WithLogger(l *applogger.Logger) PredictionOption {
	return func(s *PredictionService) { s.log = l }
}

// WithDateLayout sets the snapshot directory date layout.
func WithDateLayout(layout string) PredictionOption {
	return func(s *PredictionService) { s.dateLayout = layout }
}

func NewPredictionService(store drepo.SnapshotStore, ex domsvc.FeatureExtractor, pr domsvc.PricePredictor, opts ...PredictionOption) *PredictionService {
	s := &PredictionService{
		store:      store,
		extractor:  ex,
		predictor:  pr,
		metrics:    metrics.Nop{},
		log:        applogger.Nop(),
		dateLayout: "2006-01-02",
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("predict")
	return s
}

// Run builds the report for date and publishes it to the configured sinks.
func (s *PredictionService) Run(ctx context.Context, date string) (*models.Report, error) {
	r, err := s.Build(ctx, date)
	if err != nil {
		return nil, err
	}
	s.Publish(ctx, r)
	return r, nil
}

// Build loads the snapshot for date ("" or "latest" for the newest) and builds the report
// without touching any sink. Symbols whose quote has a zero divisor are skipped and listed in the report.
func (s *PredictionService) Build(ctx context.Context, date string) (*models.Report, error) {
	start := time.Now()
	snap, err := s.store.Load(ctx, date)
	if err != nil {
		s.metrics.RecordError("load")
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	symbols := make([]string, 0, len(snap.Quotes))
	for sym := range snap.Quotes {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	preds := make(map[string]models.Prediction, len(symbols))
	var skipped []models.Skipped
	for _, sym := range symbols {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		q := snap.Quotes[sym]
		sent := snap.SentimentFor(sym)
		feats, err := s.extractor.Extract(q, sent)
		if err != nil {
			var dz *models.DivisionByZeroError
			if !errors.As(err, &dz) {
				return nil, fmt.Errorf("extract %s: %w", sym, err)
			}
			s.log.Warn("symbol skipped", applogger.String("symbol", sym), applogger.Error(err))
			s.metrics.RecordError("division_by_zero")
			skipped = append(skipped, models.Skipped{Symbol: sym, Reason: err.Error()})
			continue
		}
		p := s.predictor.Predict(q, feats)
		p.Sentiment = sent
		p.Momentum = snap.MomentumFor(sym)
		preds[sym] = p
	}

	report, err := BuildReport(preds, skipped, s.asOf(snap.Date))
	if err != nil {
		return nil, fmt.Errorf("build report: %w", err)
	}
	s.metrics.RecordLatency("predict", time.Since(start).Seconds())
	s.log.Info("report built",
		applogger.String("date", snap.Date),
		applogger.Int("predictions", len(report.Ranked)),
		applogger.Int("skipped", len(skipped)),
		applogger.String("direction", report.Stats.Direction),
		applogger.Float("avg_change_pct", report.Stats.AvgChangePct),
	)

	return report, nil
}

// asOf parses the snapshot date; unparsable dates (e.g. an unresolved "latest") fall back to today.
func (s *PredictionService) asOf(date string) time.Time {
	if t, err := time.Parse(s.dateLayout, date); err == nil {
		return t
	}
	n := s.now()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, n.Location())
}

// Publish delivers r to the configured sinks. Failures are logged and counted, not returned.
func (s *PredictionService) Publish(ctx context.Context, r *models.Report) {
	for _, p := range r.Ranked {
		s.metrics.RecordPrediction(p.Symbol, p.PredictedChangePct, p.Confidence)
	}
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, r); err != nil {
			s.metrics.RecordError("publish")
			s.log.Warn("publish report failed", applogger.Error(err))
		}
	}
	if s.market != nil {
		if err := s.market.StorePredictions(ctx, r); err != nil {
			s.metrics.RecordError("store_predictions")
			s.log.Warn("store predictions failed", applogger.Error(err))
		}
	}
}
