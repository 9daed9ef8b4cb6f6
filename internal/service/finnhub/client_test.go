package finnhub

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"FinCast/internal/domain/models"
	icache "FinCast/internal/service/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	opts = append([]Option{WithBaseURL(srv.URL), WithRateDelay(0)}, opts...)
	c := NewClient("test-key", opts...)
	c.now = func() time.Time { return time.Date(2025, 3, 4, 16, 0, 0, 0, time.UTC) }
	return c
}

func TestQuote(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quote", r.URL.Path)
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
		assert.Equal(t, "test-key", r.URL.Query().Get("token"))
		_, _ = w.Write([]byte(`{"c":101,"d":1,"dp":1.0,"h":102,"l":98,"o":99,"pc":100,"t":1741104000}`))
	})

	q, err := c.Quote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", q.Symbol)
	assert.Equal(t, 101.0, q.Current)
	assert.Equal(t, 100.0, q.PrevClose)
	assert.Equal(t, 99.0, q.Open)
	assert.Nil(t, q.Volume)
	assert.Equal(t, 2025, q.Timestamp.Year())
}

func TestQuoteUnknownSymbol(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"c":0,"d":null,"dp":null,"h":0,"l":0,"o":0,"pc":0,"t":0}`))
	})
	_, err := c.Quote(context.Background(), "NOPE")
	assert.True(t, IsNoData(err))
}

func TestQuoteHTTPError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "limit", http.StatusTooManyRequests)
	})
	_, err := c.Quote(context.Background(), "AAPL")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestMissingKey(t *testing.T) {
	c := NewClient("")
	_, err := c.Quote(context.Background(), "AAPL")
	assert.True(t, errors.Is(err, models.ErrNotConfigured))
}

func TestCandles(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stock/candle", r.URL.Path)
		assert.Equal(t, "D", r.URL.Query().Get("resolution"))
		assert.NotEmpty(t, r.URL.Query().Get("from"))
		_, _ = w.Write([]byte(`{"s":"ok","t":[1,2],"o":[1,2],"h":[3,4],"l":[0.5,1],"c":[2,3],"v":[10,20]}`))
	})
	to := time.Now()
	candles, err := c.Candles(context.Background(), "MSFT", to.AddDate(0, 0, -30), to)
	require.NoError(t, err)
	require.Len(t, candles, 2)
	assert.Equal(t, "MSFT", candles[1].Symbol)
	assert.Equal(t, 3.0, candles[1].Close)
	assert.Equal(t, int64(2), candles[1].Timestamp.Unix())
}

func TestCandlesNoData(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"s":"no_data"}`))
	})
	_, err := c.Candles(context.Background(), "MSFT", time.Now(), time.Now())
	assert.True(t, IsNoData(err))
}

func TestProfileCached(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`{"name":"Apple Inc","ticker":"AAPL","finnhubIndustry":"Technology","marketCapitalization":3000000.5,"currency":"USD"}`))
	}, WithProfileCache(icache.NewTTLCache(), time.Hour))

	p, err := c.Profile(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "Technology", p.Industry)
	assert.Equal(t, 3000000.5, p.MarketCap)

	p2, err := c.Profile(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, p.Name, p2.Name)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestProfileEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})
	_, err := c.Profile(context.Background(), "ZZZZ")
	assert.True(t, IsNoData(err))
}

func TestRateLimiterWaitsOnContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"c":1,"pc":1,"t":1}`))
	}, WithRateDelay(time.Hour))

	_, err := c.Quote(context.Background(), "A")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.Quote(ctx, "B")
	assert.Error(t, err)
}
