package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"FinCast/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestLoadMicrosecondTimestamps(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "finnhub", "2025-01-10", "quotes.csv"),
		"symbol,timestamp,current,open,high,low,prev_close,change,change_pct,volume\n"+
			"AAPL,2025-01-10T16:00:01.123456,101,99,102,98,100,1,1.0,\n"+
			"MSFT,2025-01-10T16:00:02.000001,410.5,405,412,404,408,2.5,0.61,123456\n")
	writeFile(t, filepath.Join(root, "grok", "2025-01-10", "sentiment.csv"),
		"symbol,timestamp,sentiment_score,bullish_count,bearish_count,neutral_count,influence_score,key_topics,fetched_at\n"+
			`AAPL,2025-01-10T15:00:00Z,0.5,30,10,5,80,"[""iPhone"", ""AI""]",2025-01-10T16:00:00`+"\n"+
			"TSLA,,not-a-number,1,1,1,1,[],\n")
	writeFile(t, filepath.Join(root, "grok", "2025-01-10", "momentum.csv"),
		"symbol,timestamp,volume_level,sentiment_change,momentum_direction,confidence,viral_posts\n"+
			"AAPL,2025-01-10T16:00:00,high,accelerating,bullish,75,True\n")

	snap, err := NewCSVSnapshotStore(root, nil).Load(context.Background(), "2025-01-10")
	require.NoError(t, err)

	require.Len(t, snap.Quotes, 2)
	aapl := snap.Quotes["AAPL"]
	assert.Equal(t, 101.0, aapl.Current)
	assert.Nil(t, aapl.Volume)
	require.NotNil(t, snap.Quotes["MSFT"].Volume)
	assert.Equal(t, 123456.0, *snap.Quotes["MSFT"].Volume)

	s := snap.SentimentFor("AAPL")
	assert.Equal(t, 0.5, s.Score)
	assert.Equal(t, []string{"iPhone", "AI"}, s.Topics)

	// malformed optional row is rejected and falls back to the default
	require.Len(t, snap.Rejected, 1)
	var pe *models.ParseError
	require.True(t, errors.As(snap.Rejected[0], &pe))
	assert.Equal(t, "sentiment_score", pe.Field)
	assert.Equal(t, "TSLA", pe.Symbol)
	assert.Equal(t, 3, pe.Line)
	assert.Zero(t, snap.SentimentFor("TSLA").Score)

	m := snap.MomentumFor("AAPL")
	require.NotNil(t, m)
	assert.True(t, m.ViralPosts)
	assert.Equal(t, 75, m.Confidence)
	assert.Nil(t, snap.MomentumFor("MSFT"))
}

func TestLoadMalformedQuoteAborts(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "finnhub", "2025-01-10", "quotes.csv"),
		"symbol,timestamp,current,open,high,low,prev_close,change,change_pct,volume\n"+
			"AAPL,,101,99,102,98,100,1,1.0,\n"+
			"BAD,,abc,99,102,98,100,1,1.0,\n")

	_, err := NewCSVSnapshotStore(root, nil).Load(context.Background(), "2025-01-10")
	var pe *models.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "current", pe.Field)
	assert.Equal(t, "abc", pe.Value)
	assert.Equal(t, "BAD", pe.Symbol)
}

func TestLoadNonFiniteQuoteAborts(t *testing.T) {
	tests := []struct {
		name  string
		row   string
		field string
		value string
	}{
		{"nan current", "NANX,,NaN,101,102,98,100,1,1.5,", "current", "NaN"},
		{"inf change pct", "INFX,,100,101,102,98,100,1,Inf,", "change_pct", "Inf"},
		{"negative inf low", "NINF,,100,101,102,-Inf,100,1,1.5,", "low", "-Inf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			writeFile(t, filepath.Join(root, "finnhub", "d", "quotes.csv"),
				"symbol,timestamp,current,open,high,low,prev_close,change,change_pct,volume\n"+tt.row+"\n")

			_, err := NewCSVSnapshotStore(root, nil).Load(context.Background(), "d")
			var pe *models.ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.field, pe.Field)
			assert.Equal(t, tt.value, pe.Value)
			assert.ErrorIs(t, err, errNonFinite)
		})
	}
}

func TestLoadRejectsOutOfRangeCounts(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "finnhub", "d", "quotes.csv"),
		"symbol,current,open,high,low,prev_close,change,change_pct\n"+
			"AAPL,101,99,102,98,100,1,1.0\n"+
			"MSFT,410,405,412,404,408,2,0.5\n")
	writeFile(t, filepath.Join(root, "grok", "d", "sentiment.csv"),
		"symbol,timestamp,sentiment_score,bullish_count,bearish_count,neutral_count,influence_score,key_topics,fetched_at\n"+
			"AAPL,,0.4,1e30,1,1,1,[],\n"+
			"MSFT,,0.2,12.0,3,1,1,[],\n")

	snap, err := NewCSVSnapshotStore(root, nil).Load(context.Background(), "d")
	require.NoError(t, err)

	require.Len(t, snap.Rejected, 1)
	var pe *models.ParseError
	require.True(t, errors.As(snap.Rejected[0], &pe))
	assert.Equal(t, "bullish_count", pe.Field)
	assert.ErrorIs(t, snap.Rejected[0], errNotCount)
	assert.Zero(t, snap.SentimentFor("AAPL").Score)

	// whole floats are still accepted as counts
	assert.Equal(t, 12, snap.SentimentFor("MSFT").BullishCount)
}

func TestLoadEmptyQuoteField(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "finnhub", "d", "quotes.csv"),
		"symbol,current,open,high,low,prev_close,change,change_pct\n"+
			"AAPL,101,,102,98,100,1,1.0\n")
	_, err := NewCSVSnapshotStore(root, nil).Load(context.Background(), "d")
	var pe *models.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "open", pe.Field)
}

func TestLoadMissingColumn(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "finnhub", "d", "quotes.csv"), "symbol,current\nAAPL,1\n")
	_, err := NewCSVSnapshotStore(root, nil).Load(context.Background(), "d")
	var pe *models.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "open", pe.Field)
}

func TestLoadMissingQuotesFile(t *testing.T) {
	_, err := NewCSVSnapshotStore(t.TempDir(), nil).Load(context.Background(), "2020-01-01")
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadWithoutGrokFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "finnhub", "d", "quotes.csv"),
		"symbol,current,open,high,low,prev_close,change,change_pct,extra\nAAPL,1,1,1,1,1,0,0,zzz\n")
	snap, err := NewCSVSnapshotStore(root, nil).Load(context.Background(), "d")
	require.NoError(t, err)
	assert.Len(t, snap.Quotes, 1)
	assert.Empty(t, snap.Sentiment)
	assert.Empty(t, snap.Momentum)
}

func TestWriteRoundTripAndLatest(t *testing.T) {
	root := t.TempDir()
	store := NewCSVSnapshotStore(root, nil)
	ctx := context.Background()
	ts := time.Date(2025, 2, 3, 16, 0, 0, 0, time.UTC)
	vol := 5000.0

	fb := models.FinnhubBatch{
		Quotes: []models.Quote{
			{Symbol: "AAPL", Timestamp: ts, Current: 101.25, Open: 99, High: 102, Low: 98, PrevClose: 100, Change: 1.25, ChangePct: 1.25, Volume: &vol},
			{Symbol: "MSFT", Timestamp: ts, Current: 400, Open: 401, High: 405, Low: 399, PrevClose: 402, Change: -2, ChangePct: -0.4975},
		},
		Candles:  []models.Candle{{Symbol: "AAPL", Timestamp: ts, Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 10}},
		Profiles: []models.Profile{{Symbol: "AAPL", Name: "Apple, Inc.", MarketCap: 3e6, FetchedAt: ts}},
	}
	gb := models.GrokBatch{
		Sentiments: []models.Sentiment{{Symbol: "AAPL", Score: -0.25, BullishCount: 1, BearishCount: 3, Topics: []string{"tariffs, china", `quote "x"`}, FetchedAt: ts}},
		Momentums:  []models.Momentum{{Symbol: "AAPL", Timestamp: ts, VolumeLevel: "low", SentimentChange: "stable", Direction: "bearish", Confidence: 40}},
	}
	require.NoError(t, store.WriteFinnhub(ctx, "2025-02-03", fb))
	require.NoError(t, store.WriteGrok(ctx, "2025-02-03", gb))

	for _, f := range []string{"quotes.csv", "candles.csv", "profiles.csv"} {
		assert.FileExists(t, filepath.Join(root, "finnhub", "2025-02-03", f))
	}
	target, err := os.Readlink(filepath.Join(root, "finnhub", "latest"))
	require.NoError(t, err)
	assert.Equal(t, "2025-02-03", target)

	snap, err := store.Load(ctx, "latest")
	require.NoError(t, err)
	assert.Equal(t, "2025-02-03", snap.Date)
	assert.Empty(t, snap.Rejected)

	got := snap.Quotes["AAPL"]
	assert.Equal(t, fb.Quotes[0].Current, got.Current)
	assert.True(t, got.Timestamp.Equal(ts))
	require.NotNil(t, got.Volume)
	assert.Equal(t, vol, *got.Volume)
	assert.Nil(t, snap.Quotes["MSFT"].Volume)
	assert.Equal(t, -0.4975, snap.Quotes["MSFT"].ChangePct)

	assert.Equal(t, gb.Sentiments[0].Topics, snap.SentimentFor("AAPL").Topics)
	assert.Equal(t, -0.25, snap.SentimentFor("AAPL").Score)
	assert.Equal(t, "bearish", snap.MomentumFor("AAPL").Direction)

	// a second day moves the link
	require.NoError(t, store.WriteFinnhub(ctx, "2025-02-04", models.FinnhubBatch{Quotes: fb.Quotes[:1]}))
	target, err = os.Readlink(filepath.Join(root, "finnhub", "latest"))
	require.NoError(t, err)
	assert.Equal(t, "2025-02-04", target)
}

func TestWriteSkipsEmptySets(t *testing.T) {
	root := t.TempDir()
	store := NewCSVSnapshotStore(root, nil)
	require.NoError(t, store.WriteGrok(context.Background(), "2025-02-03", models.GrokBatch{}))
	assert.NoFileExists(t, filepath.Join(root, "grok", "2025-02-03", "sentiment.csv"))
}

func TestConcurrentWritersRepointLatest(t *testing.T) {
	root := t.TempDir()
	store := NewCSVSnapshotStore(root, nil)
	batch := models.FinnhubBatch{Quotes: []models.Quote{{Symbol: "AAPL", Current: 1, Open: 1, High: 1, Low: 1, PrevClose: 1}}}

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- store.WriteFinnhub(context.Background(), "2025-02-03", batch)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}

	target, err := os.Readlink(filepath.Join(root, "finnhub", "latest"))
	require.NoError(t, err)
	assert.Equal(t, "2025-02-03", target)
	matches, _ := filepath.Glob(filepath.Join(root, "finnhub", "latest.*.tmp"))
	assert.Empty(t, matches)
}
