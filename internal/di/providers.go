package di

import (
	"context"
	"fmt"
	"time"

	"FinCast/internal/domain/repository"
	"FinCast/internal/handler/api"
	internalrepo "FinCast/internal/repository"
	icache "FinCast/internal/service/cache"
	"FinCast/internal/service/finnhub"
	"FinCast/internal/service/grok"
	"FinCast/internal/service/sp500"
	"FinCast/internal/services/features"
	"FinCast/internal/services/predictor"
	"FinCast/internal/usecase"
	pkgch "FinCast/pkg/clickhouse"
	"FinCast/pkg/config"
	xhttp "FinCast/pkg/http"
	pkgkafka "FinCast/pkg/kafka"
	applogger "FinCast/pkg/logger"
	"FinCast/pkg/metrics"
	"FinCast/pkg/server"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// BaseContext bounds background work started by request handlers.
type BaseContext context.Context

// ProvideBaseContext returns a context cancelled by the injector cleanup.
func ProvideBaseContext() (BaseContext, func()) {
	ctx, cancel := context.WithCancel(context.Background())
	return ctx, cancel
}

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideRegistry creates the Prometheus registry served on /metrics.
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(reg *prometheus.Registry) repository.Metrics {
	return metrics.New(reg)
}

// ProvideProfileCache returns Redis when enabled, else an in-memory TTL cache.
func ProvideProfileCache(cfg *config.Config, l *applogger.Logger) (icache.BytesCache, func(), error) {
	rc := cfg.Cache.Redis
	if !rc.Enabled {
		return icache.NewTTLCache(), func() {}, nil
	}
	c := icache.NewRedisCache(icache.RedisConfig{Addr: rc.Addr, Password: rc.Password, DB: rc.DB, Prefix: rc.Prefix})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.Ping(ctx); err != nil {
		_ = c.Close()
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}
	return c, func() {
		if err := c.Close(); err != nil {
			l.Warn("redis close error", applogger.Error(err))
		}
	}, nil
}

// ProvideMarketData creates the Finnhub REST client, or nil without an API key.
func ProvideMarketData(cfg *config.Config, cache icache.BytesCache) repository.MarketData {
	if cfg.Finnhub.APIKey == "" {
		return nil
	}
	return finnhub.NewClient(cfg.Finnhub.APIKey,
		finnhub.WithBaseURL(cfg.Finnhub.BaseURL),
		finnhub.WithHTTPClient(xhttp.NewClient(xhttp.WithTimeout(cfg.Finnhub.Timeout), xhttp.WithUserAgent("FinCast/1.0"))),
		finnhub.WithRateDelay(cfg.Finnhub.RateLimitDelay),
		finnhub.WithProfileCache(cache, cfg.Finnhub.ProfileTTL),
	)
}

// ProvideSocialSignals creates the Grok client.
func ProvideSocialSignals(cfg *config.Config) repository.SocialSignals {
	return grok.NewClient(cfg.Grok.APIKey,
		grok.WithBaseURL(cfg.Grok.BaseURL),
		grok.WithModel(cfg.Grok.Model),
		grok.WithTemperature(cfg.Grok.Temperature),
		grok.WithHTTPClient(xhttp.NewClient(xhttp.WithTimeout(cfg.Grok.Timeout), xhttp.WithUserAgent("FinCast/1.0"))),
		grok.WithRateDelay(cfg.Grok.RateLimitDelay),
	)
}

// ProvideSnapshotStore creates the CSV snapshot store under data.raw_dir.
func ProvideSnapshotStore(cfg *config.Config, l *applogger.Logger) repository.SnapshotStore {
	return internalrepo.NewCSVSnapshotStore(cfg.Data.RawDir, l)
}

// ProvideConstituentSource creates the S&P 500 scraper.
func ProvideConstituentSource() repository.ConstituentSource {
	return sp500.NewScraper(sp500.DefaultURL, nil)
}

// ProvideClickHouseClient creates a ClickHouse client and its schema, or nil when disabled.
func ProvideClickHouseClient(cfg *config.Config, l *applogger.Logger) (*pkgch.Client, func(), error) {
	ch := cfg.ClickHouse
	if !ch.Enabled {
		return nil, func() {}, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := pkgch.NewClient(ctx,
		pkgch.WithHost(ch.Host),
		pkgch.WithPort(ch.Port),
		pkgch.WithDatabase(ch.Database),
		pkgch.WithCredentials(ch.User, ch.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(ch.UseHTTP),
		pkgch.WithAsyncInsert(ch.AsyncInsert, ch.WaitForAsync),
		pkgch.WithTimeouts(ch.DialTimeout, ch.ReadTimeout),
		pkgch.WithMaxExecutionTime(ch.MaxExecutionTime),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("clickhouse client: %w", err)
	}
	if err := client.InitSchema(ctx, internalrepo.Schema(ch.Database)); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	l.Info("clickhouse ready", applogger.String("database", ch.Database))
	return client, func() {
		if err := client.Close(); err != nil {
			l.Warn("clickhouse close error", applogger.Error(err))
		}
	}, nil
}

// ProvideMarketStore wraps the ClickHouse client, or returns nil without one.
func ProvideMarketStore(client *pkgch.Client, l *applogger.Logger) repository.MarketStore {
	if client == nil {
		return nil
	}
	return internalrepo.NewClickHouseMarketStore(client.DB(), client.Database(), l)
}

// ProvideKafkaProducer creates a Kafka producer, or nil when disabled.
func ProvideKafkaProducer(cfg *config.Config, reg *prometheus.Registry, l *applogger.Logger) (*pkgkafka.Producer, func(), error) {
	k := cfg.Kafka
	if !k.Enabled {
		return nil, func() {}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(k.Brokers),
		pkgkafka.WithCompression(k.Compression),
		pkgkafka.WithRequiredAcks(k.RequiredAcks),
		pkgkafka.WithTimeouts(k.WriteTimeout, k.WriteTimeout),
		pkgkafka.WithMaxAttempts(k.MaxAttempts),
		pkgkafka.WithHashByKey(true),
		pkgkafka.WithRegisterer(reg),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	l.Info("kafka producer ready", applogger.Strings("brokers", k.Brokers), applogger.String("topic", k.Topic))
	return producer, func() {
		if err := producer.Close(); err != nil {
			l.Warn("kafka close error", applogger.Error(err))
		}
	}, nil
}

// ProvideReportPublisher publishes reports to Kafka, or returns nil without a producer.
func ProvideReportPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.ReportPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaReportPublisher(producer, cfg.Kafka.Topic)
}

// ProvidePredictionService creates the prediction pipeline with its optional sinks.
func ProvidePredictionService(
	cfg *config.Config,
	store repository.SnapshotStore,
	pub repository.ReportPublisher,
	market repository.MarketStore,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.PredictionService {
	opts := []usecase.PredictionOption{
		usecase.WithMetrics(m),
		usecase.WithLogger(l),
		usecase.WithDateLayout(cfg.Data.DateFormat),
	}
	if pub != nil {
		opts = append(opts, usecase.WithPublisher(pub))
	}
	if market != nil {
		opts = append(opts, usecase.WithMarketStore(market))
	}
	return usecase.NewPredictionService(store, features.NewExtractor(), predictor.New(), opts...)
}

// ProvideDailyFetcher creates the fetch use case.
func ProvideDailyFetcher(
	cfg *config.Config,
	md repository.MarketData,
	social repository.SocialSignals,
	store repository.SnapshotStore,
	market repository.MarketStore,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.DailyFetcher {
	opts := []usecase.FetcherOption{
		usecase.WithFetchMetrics(m),
		usecase.WithFetchLogger(l),
		usecase.WithLookbackDays(cfg.Finnhub.LookbackDays),
		usecase.WithFetchDateLayout(cfg.Data.DateFormat),
	}
	if market != nil {
		opts = append(opts, usecase.WithMirror(market))
	}
	return usecase.NewDailyFetcher(md, social, store, opts...)
}

// ProvideLiveCollector creates the live trade collector, or nil when the stream is disabled.
func ProvideLiveCollector(cfg *config.Config, m repository.Metrics, l *applogger.Logger) *usecase.LiveCollector {
	if !cfg.Server.LiveStream || cfg.Finnhub.APIKey == "" {
		return nil
	}
	stream := finnhub.NewStream(
		cfg.Finnhub.APIKey,
		cfg.Finnhub.WebSocketURL,
		cfg.Finnhub.Symbols,
		cfg.Finnhub.ReconnectDelay,
		cfg.Finnhub.PingInterval,
		l,
	)
	return usecase.NewLiveCollector(stream, usecase.NewLivePrices(), m, l)
}

// ProvideRunGate creates the gate shared by the fetch API and the daily schedule.
func ProvideRunGate() *usecase.RunGate {
	return usecase.NewRunGate()
}

// ProvidePredictionsHandler creates the HTTP API handler.
func ProvidePredictionsHandler(
	ctx BaseContext,
	cfg *config.Config,
	gate *usecase.RunGate,
	svc *usecase.PredictionService,
	fetcher *usecase.DailyFetcher,
	collector *usecase.LiveCollector,
	client *pkgch.Client,
	cache icache.BytesCache,
	l *applogger.Logger,
) *api.PredictionsHandler {
	opts := []api.HandlerOption{
		api.WithBaseContext(ctx),
		api.WithRunGate(gate),
		api.WithFetcher(fetcher, cfg.Finnhub.Symbols, cfg.Server.FetchInterval),
		api.WithReportCache(icache.NewTTLCache(), cfg.Server.ReportCacheTTL),
	}
	if collector != nil {
		opts = append(opts, api.WithLiveBoard(collector.Board(), collector.IsConnected))
	}
	if client != nil {
		opts = append(opts, api.WithHealthCheck("clickhouse", client.Health))
	}
	if rc, ok := cache.(*icache.RedisCache); ok {
		opts = append(opts, api.WithHealthCheck("redis", rc.Ping))
	}
	return api.NewPredictionsHandler(l, svc, opts...)
}

// ProvideHTTPServer creates Echo server with the API routes.
func ProvideHTTPServer(cfg *config.Config, h *api.PredictionsHandler, reg *prometheus.Registry, l *applogger.Logger) *xhttp.Server {
	return xhttp.NewServer([]xhttp.Handler{h},
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithLogger(l),
		xhttp.WithRegistry(reg),
	)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	srv *xhttp.Server,
	fetcher *usecase.DailyFetcher,
	svc *usecase.PredictionService,
	collector *usecase.LiveCollector,
	gate *usecase.RunGate,
) *server.App {
	opts := []server.Option{server.WithRunGate(gate)}
	if collector != nil {
		opts = append(opts, server.WithCollector(collector))
	}
	return server.New(cfg, l, srv, fetcher, svc, opts...)
}

// Tools bundles the use cases the command line binaries run.
type Tools struct {
	Logger       *applogger.Logger
	Fetcher      *usecase.DailyFetcher
	Predictor    *usecase.PredictionService
	Constituents repository.ConstituentSource
}

func ProvideTools(l *applogger.Logger, f *usecase.DailyFetcher, p *usecase.PredictionService, cs repository.ConstituentSource) *Tools {
	return &Tools{Logger: l, Fetcher: f, Predictor: p, Constituents: cs}
}
