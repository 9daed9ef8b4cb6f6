package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"FinCast/internal/domain/models"
	"FinCast/internal/usecase"
	"FinCast/pkg/config"
	xhttp "FinCast/pkg/http"
	applogger "FinCast/pkg/logger"

	"github.com/robfig/cron/v3"
)

// Fetcher runs a data fetch.
type Fetcher interface {
	Run(ctx context.Context, opts usecase.FetchOptions) (usecase.FetchSummary, error)
}

// Predictor builds the report for a snapshot date.
type Predictor interface {
	Run(ctx context.Context, date string) (*models.Report, error)
}

// Collector is a background live-price feed.
type Collector interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// App encapsulates the server lifecycle: HTTP API, daily schedule and live stream.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	httpServer *xhttp.Server
	fetcher    Fetcher
	predictor  Predictor
	collector  Collector
	cron       *cron.Cron
	gate       *usecase.RunGate
}

type Option func(*App)

// WithRunGate shares g with other snapshot writers such as the fetch API.
func WithRunGate(g *usecase.RunGate) Option {
	return func(a *App) { a.gate = g }
}

// WithCollector starts c with the app and stops it on shutdown.
func WithCollector(c Collector) Option {
	return func(a *App) { a.collector = c }
}

// New creates a new App instance with all dependencies.
func New(cfg *config.Config, l *applogger.Logger, srv *xhttp.Server, f Fetcher, p Predictor, opts ...Option) *App {
	if l == nil {
		l = applogger.Nop()
	}
	a := &App{cfg: cfg, log: l.With("app"), httpServer: srv, fetcher: f, predictor: p}
	for _, opt := range opts {
		opt(a)
	}
	if a.gate == nil {
		a.gate = usecase.NewRunGate()
	}
	return a
}

// Schedule registers the daily fetch and predict job. It is a no-op when scheduling is disabled.
func (a *App) Schedule(ctx context.Context) error {
	if !a.cfg.Schedule.Enabled {
		return nil
	}
	a.cron = cron.New()
	if _, err := a.cron.AddFunc(a.cfg.Schedule.Cron, func() {
		if _, err := a.RunDaily(ctx); err != nil {
			a.log.Error("scheduled run failed", applogger.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("schedule %q: %w", a.cfg.Schedule.Cron, err)
	}
	a.cron.Start()
	a.log.Info("schedule started", applogger.String("cron", a.cfg.Schedule.Cron))
	return nil
}

// ErrRunInProgress is returned when a daily run is requested while a fetch holds the gate.
var ErrRunInProgress = usecase.ErrRunInProgress

// RunDaily fetches every configured symbol from both sources, then predicts on the fresh snapshot.
func (a *App) RunDaily(ctx context.Context) (*models.Report, error) {
	if !a.gate.TryAcquire() {
		return nil, ErrRunInProgress
	}
	defer a.gate.Release()

	start := time.Now()
	sum, err := a.fetcher.Run(ctx, usecase.FetchOptions{Symbols: a.cfg.Finnhub.Symbols, Finnhub: true, Grok: true})
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	r, err := a.predictor.Run(ctx, sum.Date)
	if err != nil {
		return nil, fmt.Errorf("predict %s: %w", sum.Date, err)
	}
	a.log.Info("daily run complete",
		applogger.String("date", sum.Date),
		applogger.Int("predictions", len(r.Ranked)),
		applogger.String("direction", r.Stats.Direction),
		applogger.Duration("took", time.Since(start)),
	)
	return r, nil
}

// Run starts the application and blocks until SIGINT or SIGTERM.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext starts the application and blocks until ctx ends, then shuts down.
func (a *App) RunContext(ctx context.Context) error {
	if a.collector != nil {
		if err := a.collector.Start(ctx); err != nil {
			a.log.Warn("live stream not started", applogger.Error(err))
			a.collector = nil
		} else {
			a.log.Info("live stream started", applogger.Strings("symbols", a.cfg.Finnhub.Symbols))
		}
	}
	if err := a.Schedule(ctx); err != nil {
		return err
	}
	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}

	<-ctx.Done()
	a.log.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.httpServer.ShutdownTimeout())
	defer cancel()

	if a.cron != nil {
		select {
		case <-a.cron.Stop().Done():
		case <-ctx.Done():
			a.log.Warn("scheduled job still running at shutdown")
		}
	}
	if a.collector != nil {
		if err := a.collector.Shutdown(ctx); err != nil {
			a.log.Warn("collector stop error", applogger.Error(err))
		}
	}
	if err := a.httpServer.Stop(ctx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
		return err
	}
	a.log.Info("shutdown complete")
	return nil
}
