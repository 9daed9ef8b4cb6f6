package finnhub

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"FinCast/internal/domain/models"
	drepo "FinCast/internal/domain/repository"
	icache "FinCast/internal/service/cache"
	xhttp "FinCast/pkg/http"

	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL   = "https://finnhub.io/api/v1"
	DefaultRateDelay = 50 * time.Millisecond
)

// Client is the Finnhub REST client for quotes, daily candles and company profiles.
type Client struct {
	apiKey     string
	baseURL    string
	http       *xhttp.Client
	limiter    *rate.Limiter
	cache      icache.BytesCache
	profileTTL time.Duration
	now        func() time.Time
}

// Option configures Client.
type Option func(*Client)

// WithBaseURL overrides the API root.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient sets the transport client.
func WithHTTPClient(h *xhttp.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithRateDelay spaces calls at least d apart. Zero disables pacing.
func WithRateDelay(d time.Duration) Option {
	return func(c *Client) { c.limiter = newLimiter(d) }
}

// WithProfileCache caches profile responses for ttl.
func WithProfileCache(cache icache.BytesCache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = cache
		c.profileTTL = ttl
	}
}

// NewClient creates a Finnhub REST client.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		http:    xhttp.NewClient(xhttp.WithTimeout(15 * time.Second)),
		limiter: newLimiter(DefaultRateDelay),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func newLimiter(d time.Duration) *rate.Limiter {
	if d <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(d), 1)
}

type quoteResponse struct {
	C  float64  `json:"c"`
	D  float64  `json:"d"`
	DP float64  `json:"dp"`
	H  float64  `json:"h"`
	L  float64  `json:"l"`
	O  float64  `json:"o"`
	PC float64  `json:"pc"`
	T  int64    `json:"t"`
	V  *float64 `json:"v,omitempty"`
}

type candleResponse struct {
	S string    `json:"s"`
	T []int64   `json:"t"`
	O []float64 `json:"o"`
	H []float64 `json:"h"`
	L []float64 `json:"l"`
	C []float64 `json:"c"`
	V []float64 `json:"v"`
}

type profileResponse struct {
	Country          string  `json:"country"`
	Currency         string  `json:"currency"`
	Exchange         string  `json:"exchange"`
	FinnhubIndustry  string  `json:"finnhubIndustry"`
	IPO              string  `json:"ipo"`
	Logo             string  `json:"logo"`
	MarketCap        float64 `json:"marketCapitalization"`
	Name             string  `json:"name"`
	ShareOutstanding float64 `json:"shareOutstanding"`
	Ticker           string  `json:"ticker"`
	WebURL           string  `json:"weburl"`
}

func (c *Client) get(ctx context.Context, path string, params map[string][]string, dest any) error {
	if c.apiKey == "" {
		return fmt.Errorf("finnhub %s: %w", path, models.ErrNotConfigured)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("finnhub rate wait: %w", err)
	}
	params["token"] = []string{c.apiKey}
	if err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         c.baseURL + path,
		QueryParams: params,
	}, dest); err != nil {
		return fmt.Errorf("finnhub %s: %w", path, err)
	}
	return nil
}

// Quote fetches the real-time quote. The timestamp is the fetch time.
func (c *Client) Quote(ctx context.Context, symbol string) (*models.Quote, error) {
	var r quoteResponse
	if err := c.get(ctx, "/quote", xhttp.Query("symbol", symbol), &r); err != nil {
		return nil, err
	}
	// unknown symbols come back as all zeros
	if r.C == 0 && r.PC == 0 && r.T == 0 {
		return nil, fmt.Errorf("finnhub quote %s: %w", symbol, models.ErrNoData)
	}
	return &models.Quote{
		Symbol:    symbol,
		Timestamp: c.now(),
		Current:   r.C,
		Open:      r.O,
		High:      r.H,
		Low:       r.L,
		PrevClose: r.PC,
		Change:    r.D,
		ChangePct: r.DP,
		Volume:    r.V,
	}, nil
}

// Candles fetches daily candles between from and to.
func (c *Client) Candles(ctx context.Context, symbol string, from, to time.Time) ([]models.Candle, error) {
	var r candleResponse
	q := xhttp.Query(
		"symbol", symbol,
		"resolution", "D",
		"from", strconv.FormatInt(from.Unix(), 10),
		"to", strconv.FormatInt(to.Unix(), 10),
	)
	if err := c.get(ctx, "/stock/candle", q, &r); err != nil {
		return nil, err
	}
	if r.S != "ok" {
		return nil, fmt.Errorf("finnhub candles %s: status %q: %w", symbol, r.S, models.ErrNoData)
	}
	n := len(r.T)
	for _, col := range [][]float64{r.O, r.H, r.L, r.C, r.V} {
		if len(col) < n {
			n = len(col)
		}
	}
	out := make([]models.Candle, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, models.Candle{
			Symbol:    symbol,
			Timestamp: time.Unix(r.T[i], 0),
			Open:      r.O[i],
			High:      r.H[i],
			Low:       r.L[i],
			Close:     r.C[i],
			Volume:    r.V[i],
		})
	}
	return out, nil
}

func profileKey(symbol string) string { return "finnhub:profile:" + symbol }

// Profile fetches the company profile, served from cache when configured.
func (c *Client) Profile(ctx context.Context, symbol string) (*models.Profile, error) {
	if c.cache != nil {
		var p models.Profile
		if ok, err := icache.GetJSON(ctx, c.cache, profileKey(symbol), &p); err == nil && ok {
			return &p, nil
		}
	}

	var r profileResponse
	if err := c.get(ctx, "/stock/profile2", xhttp.Query("symbol", symbol), &r); err != nil {
		return nil, err
	}
	if r.Name == "" && r.Ticker == "" {
		return nil, fmt.Errorf("finnhub profile %s: %w", symbol, models.ErrNoData)
	}
	p := &models.Profile{
		Symbol:           symbol,
		Name:             r.Name,
		Country:          r.Country,
		Currency:         r.Currency,
		Exchange:         r.Exchange,
		Industry:         r.FinnhubIndustry,
		MarketCap:        r.MarketCap,
		ShareOutstanding: r.ShareOutstanding,
		IPO:              r.IPO,
		Logo:             r.Logo,
		WebURL:           r.WebURL,
		FetchedAt:        c.now(),
	}
	if c.cache != nil {
		_ = icache.SetJSON(ctx, c.cache, profileKey(symbol), p, c.profileTTL)
	}
	return p, nil
}

// IsNoData reports whether err means the upstream had nothing for the symbol.
func IsNoData(err error) bool { return errors.Is(err, models.ErrNoData) }

var _ drepo.MarketData = (*Client)(nil)
