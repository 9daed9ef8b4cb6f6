package api

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"FinCast/internal/domain/models"
	icache "FinCast/internal/service/cache"
	"FinCast/internal/service/ratelimit"
	"FinCast/internal/usecase"
	xhttp "FinCast/pkg/http"
	applogger "FinCast/pkg/logger"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ReportBuilder builds the prediction report for a snapshot date without publishing it.
type ReportBuilder interface {
	Build(ctx context.Context, date string) (*models.Report, error)
}

// FetchRunner runs a data fetch.
type FetchRunner interface {
	Run(ctx context.Context, opts usecase.FetchOptions) (usecase.FetchSummary, error)
}

// HealthCheck checks one dependency.
type HealthCheck func(ctx context.Context) error

// PredictionsHandler serves reports, live prices and on-demand fetches.
type PredictionsHandler struct {
	logger   *applogger.Logger
	reports  ReportBuilder
	fetcher  FetchRunner
	board    *usecase.LivePrices
	live     func() bool
	cache    icache.BytesCache
	cacheTTL time.Duration
	rl       *ratelimit.Limiter
	symbols  []string
	checks   map[string]HealthCheck
	baseCtx  context.Context
	gate     *usecase.RunGate
}

type HandlerOption func(*PredictionsHandler)

// WithFetcher enables POST /api/fetch for symbols, at most once per interval per client.
// A zero interval disables the per-client limit.
func WithFetcher(f FetchRunner, symbols []string, interval time.Duration) HandlerOption {
	return func(h *PredictionsHandler) {
		h.fetcher = f
		h.symbols = symbols
		if interval > 0 {
			h.rl = ratelimit.New(1, interval)
		}
	}
}

// WithLiveBoard exposes the live board; connected reports the stream state.
func WithLiveBoard(b *usecase.LivePrices, connected func() bool) HandlerOption {
	return func(h *PredictionsHandler) {
		h.board = b
		h.live = connected
	}
}

// WithReportCache caches rendered reports per date.
func WithReportCache(c icache.BytesCache, ttl time.Duration) HandlerOption {
	return func(h *PredictionsHandler) {
		h.cache = c
		h.cacheTTL = ttl
	}
}

func WithHealthCheck(name string, fn HealthCheck) HandlerOption {
	return func(h *PredictionsHandler) { h.checks[name] = fn }
}

// WithRunGate shares g with the scheduled daily run so only one fetch writes at a time.
func WithRunGate(g *usecase.RunGate) HandlerOption {
	return func(h *PredictionsHandler) { h.gate = g }
}

// WithBaseContext bounds background fetches to ctx.
func WithBaseContext(ctx context.Context) HandlerOption {
	return func(h *PredictionsHandler) { h.baseCtx = ctx }
}

func NewPredictionsHandler(logger *applogger.Logger, reports ReportBuilder, opts ...HandlerOption) *PredictionsHandler {
	if logger == nil {
		logger = applogger.Nop()
	}
	h := &PredictionsHandler{
		logger:  logger.With("api"),
		reports: reports,
		checks:  map[string]HealthCheck{},
		baseCtx: context.Background(),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.gate == nil {
		h.gate = usecase.NewRunGate()
	}
	return h
}

func (h *PredictionsHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)
	g := e.Group("/api")
	g.GET("/predictions", h.List)
	g.GET("/predictions/:symbol", h.Get)
	g.GET("/live", h.Live)
	g.POST("/fetch", h.Fetch)
}

// report returns the report for date through the cache.
func (h *PredictionsHandler) report(ctx context.Context, date string) (*models.Report, error) {
	key := "report:" + date
	if date == "" {
		key = "report:latest"
	}
	if h.cache != nil {
		var r models.Report
		if ok, err := icache.GetJSON(ctx, h.cache, key, &r); err != nil {
			h.logger.Warn("report cache_get_error", applogger.Error(err))
		} else if ok {
			h.logger.Debug("report cache_hit", applogger.String("key", key))
			return &r, nil
		}
	}
	r, err := h.reports.Build(ctx, date)
	if err != nil {
		return nil, err
	}
	if h.cache != nil {
		if err := icache.SetJSON(ctx, h.cache, key, r, h.cacheTTL); err != nil {
			h.logger.Warn("report cache_set_error", applogger.Error(err))
		}
	}
	return r, nil
}

// reportError maps pipeline errors onto API errors.
func reportError(err error) *xhttp.AppError {
	var pe *models.ParseError
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return xhttp.NotFoundError("no snapshot for date")
	case errors.Is(err, models.ErrEmptyInput):
		return xhttp.UnprocessableError("ERR_EMPTY_INPUT", "snapshot has no usable quotes")
	case errors.As(err, &pe):
		return xhttp.UnprocessableError("ERR_PARSE", pe.Error())
	default:
		return xhttp.InternalError("build report failed").WithError(err)
	}
}

// List returns the ranked report, optionally narrowed to one side and a limit.
func (h *PredictionsHandler) List(c echo.Context) error {
	req := &models.PredictionsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	r, err := h.report(c.Request().Context(), req.Date)
	if err != nil {
		h.logger.Error("predictions usecase error", applogger.Error(err))
		return xhttp.AppErrorResponse(c, reportError(err))
	}
	out := *r
	out.Ranked = Filter(r.Ranked, req.Side, req.Limit)
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=60")
	return xhttp.SuccessResponse(c, out)
}

// Filter keeps the long (positive) or short (negative, most negative first) side and caps the result.
func Filter(ranked []models.Prediction, side string, limit int) []models.Prediction {
	out := make([]models.Prediction, 0, len(ranked))
	switch side {
	case "long":
		for _, p := range ranked {
			if p.PredictedChangePct > 0 {
				out = append(out, p)
			}
		}
	case "short":
		for i := len(ranked) - 1; i >= 0; i-- {
			if ranked[i].PredictedChangePct < 0 {
				out = append(out, ranked[i])
			}
		}
	default:
		out = append(out, ranked...)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (h *PredictionsHandler) Get(c echo.Context) error {
	req := &models.PredictionRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	r, err := h.report(c.Request().Context(), req.Date)
	if err != nil {
		h.logger.Error("prediction usecase error", applogger.Error(err))
		return xhttp.AppErrorResponse(c, reportError(err))
	}
	p, ok := r.Find(normalizeSymbol(req.Symbol))
	if !ok {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("no prediction for %s", req.Symbol))
	}
	return xhttp.SuccessResponse(c, p)
}

func (h *PredictionsHandler) Live(c echo.Context) error {
	if h.board == nil {
		return xhttp.AppErrorResponse(c, xhttp.UnavailableError("live stream disabled"))
	}
	rows := h.board.Snapshot()
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

type fetchAccepted struct {
	JobID   string   `json:"job_id"`
	Symbols []string `json:"symbols"`
	Finnhub bool     `json:"finnhub"`
	Grok    bool     `json:"grok"`
}

// Fetch starts a background fetch. Only one runs at a time.
func (h *PredictionsHandler) Fetch(c echo.Context) error {
	if h.fetcher == nil {
		return xhttp.AppErrorResponse(c, xhttp.UnavailableError("fetch disabled"))
	}
	req := &models.FetchRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if h.rl != nil && !h.rl.Allow(c.RealIP()) {
		h.logger.Warn("fetch rate_limited", applogger.String("remote", c.RealIP()))
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("fetch rate limited"))
	}
	if !h.gate.TryAcquire() {
		return xhttp.AppErrorResponse(c, xhttp.ConflictError("fetch already running"))
	}

	opts := usecase.FetchOptions{Symbols: h.symbols, Finnhub: req.Finnhub, Grok: req.Grok}
	if len(req.Symbols) > 0 {
		opts.Symbols = make([]string, 0, len(req.Symbols))
		for _, s := range req.Symbols {
			opts.Symbols = append(opts.Symbols, normalizeSymbol(s))
		}
	}
	if !opts.Finnhub && !opts.Grok {
		opts.Finnhub, opts.Grok = true, true
	}
	job := fetchAccepted{JobID: uuid.NewString(), Symbols: opts.Symbols, Finnhub: opts.Finnhub, Grok: opts.Grok}

	go func() {
		defer h.gate.Release()
		sum, err := h.fetcher.Run(h.baseCtx, opts)
		if err != nil {
			h.logger.Error("fetch job failed", applogger.String("job_id", job.JobID), applogger.Error(err))
			return
		}
		h.logger.Info("fetch job done",
			applogger.String("job_id", job.JobID),
			applogger.Int("quotes", sum.Quotes),
			applogger.Int("sentiments", sum.Sentiments),
			applogger.Int("failures", sum.Failures),
		)
	}()
	return xhttp.AcceptedResponse(c, job)
}

type healthResponse struct {
	Status        string            `json:"status"`
	LiveConnected bool              `json:"live_connected"`
	FetchRunning  bool              `json:"fetch_running"`
	Checks        map[string]string `json:"checks,omitempty"`
}

func (h *PredictionsHandler) Health(c echo.Context) error {
	res := healthResponse{Status: "ok", FetchRunning: h.gate.Busy()}
	if h.live != nil {
		res.LiveConnected = h.live()
	}
	if len(h.checks) > 0 {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		res.Checks = make(map[string]string, len(h.checks))
		for name, check := range h.checks {
			if err := check(ctx); err != nil {
				res.Checks[name] = err.Error()
				res.Status = "degraded"
				continue
			}
			res.Checks[name] = "ok"
		}
	}
	if res.Status != "ok" {
		return xhttp.DataResponse(c, http.StatusServiceUnavailable, res)
	}
	return xhttp.SuccessResponse(c, res)
}

func normalizeSymbol(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }
