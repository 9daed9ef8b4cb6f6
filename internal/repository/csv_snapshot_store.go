package repository

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"FinCast/internal/domain/models"
	drepo "FinCast/internal/domain/repository"
	applogger "FinCast/pkg/logger"
	"FinCast/pkg/util"
)

const (
	finnhubDir = "finnhub"
	grokDir    = "grok"
	latestLink = "latest"

	quotesFile    = "quotes.csv"
	candlesFile   = "candles.csv"
	profilesFile  = "profiles.csv"
	sentimentFile = "sentiment.csv"
	momentumFile  = "momentum.csv"
)

var (
	quoteColumns     = []string{"symbol", "timestamp", "current", "open", "high", "low", "prev_close", "change", "change_pct", "volume"}
	candleColumns    = []string{"symbol", "timestamp", "open", "high", "low", "close", "volume"}
	profileColumns   = []string{"symbol", "name", "country", "currency", "exchange", "industry", "market_cap", "share_outstanding", "ipo", "logo", "weburl", "fetched_at"}
	sentimentColumns = []string{"symbol", "timestamp", "sentiment_score", "bullish_count", "bearish_count", "neutral_count", "influence_score", "key_topics", "fetched_at"}
	momentumColumns  = []string{"symbol", "timestamp", "volume_level", "sentiment_change", "momentum_direction", "confidence", "viral_posts"}

	// every price field of a quote row is mandatory
	quotePriceFields = []string{"current", "open", "high", "low", "prev_close", "change", "change_pct"}

	errMissingColumn = errors.New("missing column")
	errEmptyField    = errors.New("empty field")
	errNonFinite     = errors.New("not a finite number")
	errNotCount      = errors.New("not a whole count")
)

// CSVSnapshotStore reads and writes dated snapshots under <root>/{finnhub,grok}/<date>/.
type CSVSnapshotStore struct {
	root string
	log  *applogger.Logger
}

func NewCSVSnapshotStore(root string, l *applogger.Logger) *CSVSnapshotStore {
	if l == nil {
		l = applogger.Nop()
	}
	return &CSVSnapshotStore{root: root, log: l.With("snapshot_store")}
}

// Root is the raw data directory.
func (s *CSVSnapshotStore) Root() string { return s.root }

func (s *CSVSnapshotStore) dir(source, date string) string {
	if date == "" {
		date = latestLink
	}
	return filepath.Join(s.root, source, date)
}

// csvTable is a header-indexed view over a CSV file. Unknown columns are ignored.
type csvTable struct {
	file string
	cols map[string]int
	rows [][]string
}

func readTable(path string) (*csvTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &csvTable{file: path, cols: map[string]int{}}, nil
		}
		return nil, fmt.Errorf("read header %s: %w", path, err)
	}
	t := &csvTable{file: path, cols: make(map[string]int, len(header))}
	for i, h := range header {
		t.cols[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	t.rows = rows
	return t, nil
}

// get returns the trimmed cell for col, "" when absent.
func (t *csvTable) get(row []string, col string) string {
	i, ok := t.cols[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// line is the 1-based file line of data row i (header is line 1).
func line(i int) int { return i + 2 }

type rowParser struct {
	t      *csvTable
	row    []string
	line   int
	symbol string
	err    error
}

func (p *rowParser) fail(field, value string, err error) {
	if p.err == nil {
		p.err = &models.ParseError{File: filepath.Base(p.t.file), Line: p.line, Symbol: p.symbol, Field: field, Value: value, Err: err}
	}
}

func (p *rowParser) float(field string, required bool) float64 {
	v := p.t.get(p.row, field)
	if v == "" {
		if required {
			p.fail(field, v, errEmptyField)
		}
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.fail(field, v, err)
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		p.fail(field, v, errNonFinite)
		return 0
	}
	return f
}

func (p *rowParser) int(field string) int {
	v := p.t.get(p.row, field)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		// counts may be written as floats
		f, ferr := strconv.ParseFloat(v, 64)
		if ferr != nil {
			p.fail(field, v, err)
			return 0
		}
		if f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
			p.fail(field, v, errNotCount)
			return 0
		}
		return int(f)
	}
	return n
}

func (p *rowParser) bool(field string) bool {
	v := p.t.get(p.row, field)
	if v == "" {
		return false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.fail(field, v, err)
	}
	return b
}

func (p *rowParser) topics(field string) []string {
	v := p.t.get(p.row, field)
	if v == "" {
		return []string{}
	}
	var out []string
	if err := json.Unmarshal([]byte(v), &out); err != nil {
		p.fail(field, v, err)
		return []string{}
	}
	if out == nil {
		out = []string{}
	}
	return out
}

func (t *csvTable) parser(i int) *rowParser {
	row := t.rows[i]
	return &rowParser{t: t, row: row, line: line(i), symbol: t.get(row, "symbol")}
}

// Load reads the snapshot for date ("" or "latest" follow the latest link).
// A malformed quote aborts the load; malformed sentiment or momentum rows are
// collected in Snapshot.Rejected and the symbol falls back to defaults.
func (s *CSVSnapshotStore) Load(ctx context.Context, date string) (*models.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	snap := &models.Snapshot{
		Date:      date,
		Quotes:    map[string]models.Quote{},
		Sentiment: map[string]models.Sentiment{},
		Momentum:  map[string]models.Momentum{},
	}
	if date == "" || date == latestLink {
		snap.Date = s.resolveLatest()
	}

	if err := s.loadQuotes(filepath.Join(s.dir(finnhubDir, date), quotesFile), snap); err != nil {
		return nil, err
	}
	if err := s.loadSentiment(filepath.Join(s.dir(grokDir, date), sentimentFile), snap); err != nil {
		return nil, err
	}
	if err := s.loadMomentum(filepath.Join(s.dir(grokDir, date), momentumFile), snap); err != nil {
		return nil, err
	}
	for _, rej := range snap.Rejected {
		s.log.Warn("row rejected", applogger.Error(rej))
	}
	s.log.Debug("snapshot loaded",
		applogger.String("date", snap.Date),
		applogger.Int("quotes", len(snap.Quotes)),
		applogger.Int("sentiment", len(snap.Sentiment)),
		applogger.Int("momentum", len(snap.Momentum)),
		applogger.Int("rejected", len(snap.Rejected)),
	)
	return snap, nil
}

// resolveLatest returns the date the finnhub latest link points at, or "latest".
func (s *CSVSnapshotStore) resolveLatest() string {
	target, err := os.Readlink(filepath.Join(s.root, finnhubDir, latestLink))
	if err != nil {
		return latestLink
	}
	return filepath.Base(target)
}

func (s *CSVSnapshotStore) loadQuotes(path string, snap *models.Snapshot) error {
	t, err := readTable(path)
	if err != nil {
		return fmt.Errorf("load quotes: %w", err)
	}
	for _, col := range append([]string{"symbol"}, quotePriceFields...) {
		if _, ok := t.cols[col]; !ok {
			return fmt.Errorf("load quotes: %w", &models.ParseError{File: quotesFile, Line: 1, Field: col, Err: errMissingColumn})
		}
	}
	for i := range t.rows {
		p := t.parser(i)
		if p.symbol == "" {
			p.fail("symbol", "", errEmptyField)
		}
		q := models.Quote{
			Symbol:    p.symbol,
			Timestamp: util.ParseTimeDefault(t.get(p.row, "timestamp"), time.Time{}),
			Current:   p.float("current", true),
			Open:      p.float("open", true),
			High:      p.float("high", true),
			Low:       p.float("low", true),
			PrevClose: p.float("prev_close", true),
			Change:    p.float("change", true),
			ChangePct: p.float("change_pct", true),
		}
		if t.get(p.row, "volume") != "" {
			v := p.float("volume", false)
			q.Volume = &v
		}
		if p.err != nil {
			return fmt.Errorf("load quotes: %w", p.err)
		}
		snap.Quotes[q.Symbol] = q
	}
	return nil
}

func (s *CSVSnapshotStore) loadSentiment(path string, snap *models.Snapshot) error {
	t, err := readTable(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load sentiment: %w", err)
	}
	for i := range t.rows {
		p := t.parser(i)
		if p.symbol == "" {
			continue
		}
		rec := models.Sentiment{
			Symbol:         p.symbol,
			Timestamp:      t.get(p.row, "timestamp"),
			Score:          p.float("sentiment_score", false),
			BullishCount:   p.int("bullish_count"),
			BearishCount:   p.int("bearish_count"),
			NeutralCount:   p.int("neutral_count"),
			InfluenceScore: p.int("influence_score"),
			Topics:         p.topics("key_topics"),
			FetchedAt:      util.ParseTimeDefault(t.get(p.row, "fetched_at"), time.Time{}),
		}
		if p.err != nil {
			snap.Rejected = append(snap.Rejected, p.err)
			continue
		}
		snap.Sentiment[rec.Symbol] = rec
	}
	return nil
}

func (s *CSVSnapshotStore) loadMomentum(path string, snap *models.Snapshot) error {
	t, err := readTable(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load momentum: %w", err)
	}
	for i := range t.rows {
		p := t.parser(i)
		if p.symbol == "" {
			continue
		}
		rec := models.Momentum{
			Symbol:          p.symbol,
			Timestamp:       util.ParseTimeDefault(t.get(p.row, "timestamp"), time.Time{}),
			VolumeLevel:     t.get(p.row, "volume_level"),
			SentimentChange: t.get(p.row, "sentiment_change"),
			Direction:       t.get(p.row, "momentum_direction"),
			Confidence:      p.int("confidence"),
			ViralPosts:      p.bool("viral_posts"),
		}
		if p.err != nil {
			snap.Rejected = append(snap.Rejected, p.err)
			continue
		}
		snap.Momentum[rec.Symbol] = rec
	}
	return nil
}

// WriteFinnhub writes the non-empty record sets and repoints finnhub/latest at date.
func (s *CSVSnapshotStore) WriteFinnhub(ctx context.Context, date string, b models.FinnhubBatch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := s.dir(finnhubDir, date)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	if len(b.Quotes) > 0 {
		rows := make([][]string, 0, len(b.Quotes))
		for _, q := range b.Quotes {
			vol := ""
			if q.Volume != nil {
				vol = util.FormatFloat(*q.Volume)
			}
			rows = append(rows, []string{
				q.Symbol, util.ISO(q.Timestamp),
				util.FormatFloat(q.Current), util.FormatFloat(q.Open), util.FormatFloat(q.High), util.FormatFloat(q.Low),
				util.FormatFloat(q.PrevClose), util.FormatFloat(q.Change), util.FormatFloat(q.ChangePct), vol,
			})
		}
		if err := writeTable(filepath.Join(dir, quotesFile), quoteColumns, rows); err != nil {
			return err
		}
	}
	if len(b.Candles) > 0 {
		rows := make([][]string, 0, len(b.Candles))
		for _, c := range b.Candles {
			rows = append(rows, []string{
				c.Symbol, util.ISO(c.Timestamp),
				util.FormatFloat(c.Open), util.FormatFloat(c.High), util.FormatFloat(c.Low), util.FormatFloat(c.Close), util.FormatFloat(c.Volume),
			})
		}
		if err := writeTable(filepath.Join(dir, candlesFile), candleColumns, rows); err != nil {
			return err
		}
	}
	if len(b.Profiles) > 0 {
		rows := make([][]string, 0, len(b.Profiles))
		for _, p := range b.Profiles {
			rows = append(rows, []string{
				p.Symbol, p.Name, p.Country, p.Currency, p.Exchange, p.Industry,
				util.FormatFloat(p.MarketCap), util.FormatFloat(p.ShareOutstanding),
				p.IPO, p.Logo, p.WebURL, util.ISO(p.FetchedAt),
			})
		}
		if err := writeTable(filepath.Join(dir, profilesFile), profileColumns, rows); err != nil {
			return err
		}
	}
	return s.pointLatest(finnhubDir, date)
}

// WriteGrok writes the non-empty record sets and repoints grok/latest at date.
func (s *CSVSnapshotStore) WriteGrok(ctx context.Context, date string, b models.GrokBatch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := s.dir(grokDir, date)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	if len(b.Sentiments) > 0 {
		rows := make([][]string, 0, len(b.Sentiments))
		for _, r := range b.Sentiments {
			topics := r.Topics
			if topics == nil {
				topics = []string{}
			}
			tb, err := json.Marshal(topics)
			if err != nil {
				return fmt.Errorf("encode topics %s: %w", r.Symbol, err)
			}
			rows = append(rows, []string{
				r.Symbol, r.Timestamp, util.FormatFloat(r.Score),
				strconv.Itoa(r.BullishCount), strconv.Itoa(r.BearishCount), strconv.Itoa(r.NeutralCount),
				strconv.Itoa(r.InfluenceScore), string(tb), util.ISO(r.FetchedAt),
			})
		}
		if err := writeTable(filepath.Join(dir, sentimentFile), sentimentColumns, rows); err != nil {
			return err
		}
	}
	if len(b.Momentums) > 0 {
		rows := make([][]string, 0, len(b.Momentums))
		for _, m := range b.Momentums {
			rows = append(rows, []string{
				m.Symbol, util.ISO(m.Timestamp), m.VolumeLevel, m.SentimentChange, m.Direction,
				strconv.Itoa(m.Confidence), strconv.FormatBool(m.ViralPosts),
			})
		}
		if err := writeTable(filepath.Join(dir, momentumFile), momentumColumns, rows); err != nil {
			return err
		}
	}
	return s.pointLatest(grokDir, date)
}

// writeTable writes through a temp file so readers never see a partial CSV.
func writeTable(path string, header []string, rows [][]string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := w.WriteAll(rows); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}

var linkSeq atomic.Int64

func (s *CSVSnapshotStore) pointLatest(source, date string) error {
	if date == "" || date == latestLink {
		return nil
	}
	link := filepath.Join(s.root, source, latestLink)
	// rename replaces the old link in one step, so concurrent writers never see it missing
	tmp := fmt.Sprintf("%s.%d-%d.tmp", link, os.Getpid(), linkSeq.Add(1))
	if err := os.Symlink(date, tmp); err != nil {
		return fmt.Errorf("symlink %s: %w", link, err)
	}
	if err := os.Rename(tmp, link); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", link, err)
	}
	return nil
}

var _ drepo.SnapshotStore = (*CSVSnapshotStore)(nil)
