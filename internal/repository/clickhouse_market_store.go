package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"FinCast/internal/domain/models"
	domrepo "FinCast/internal/domain/repository"
	applogger "FinCast/pkg/logger"
)

// insertChunk rows per multi-row INSERT.
const insertChunk = 2000

// Schema returns the idempotent DDL for database.
func Schema(database string) []string {
	return []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.quotes (
    ts DateTime, symbol LowCardinality(String), current Float64, open Float64, high Float64, low Float64,
    prev_close Float64, change Float64, change_pct Float64, volume Nullable(Float64)
) ENGINE = ReplacingMergeTree ORDER BY (symbol, ts)`, database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.candles (
    ts DateTime, symbol LowCardinality(String), open Float64, high Float64, low Float64, close Float64, volume Float64
) ENGINE = ReplacingMergeTree ORDER BY (symbol, ts)`, database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.predictions (
    report_id String, as_of Date, target_date Date, rank UInt32, symbol LowCardinality(String),
    current_price Float64, predicted_price Float64, predicted_change_pct Float64, confidence Float64,
    f_momentum Float64, f_sentiment Float64, f_gap_recovery Float64, f_mean_reversion Float64,
    f_support_bounce Float64, f_resistance_pressure Float64
) ENGINE = MergeTree ORDER BY (as_of, symbol)`, database),
	}
}

// ClickHouseMarketStore mirrors quotes, candles and prediction reports into ClickHouse.
type ClickHouseMarketStore struct {
	db       *sql.DB
	database string
	l        *applogger.Logger
}

func NewClickHouseMarketStore(db *sql.DB, database string, l *applogger.Logger) *ClickHouseMarketStore {
	if l == nil {
		l = applogger.Nop()
	}
	return &ClickHouseMarketStore{db: db, database: database, l: l.With("clickhouse_store")}
}

// batchInsert builds chunked multi-row INSERT statements for table.
func batchInsert(table string, cols []string, rows [][]any) []stmt {
	if len(rows) == 0 {
		return nil
	}
	placeholder := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ") + ")"
	var out []stmt
	for start := 0; start < len(rows); start += insertChunk {
		end := start + insertChunk
		if end > len(rows) {
			end = len(rows)
		}
		values := make([]string, 0, end-start)
		args := make([]any, 0, (end-start)*len(cols))
		for _, r := range rows[start:end] {
			values = append(values, placeholder)
			args = append(args, r...)
		}
		out = append(out, stmt{
			query: fmt.Sprintf("INSERT INTO %s (%s) VALUES %s", table, strings.Join(cols, ", "), strings.Join(values, ",")),
			args:  args,
		})
	}
	return out
}

type stmt struct {
	query string
	args  []any
}

func (s *ClickHouseMarketStore) exec(ctx context.Context, table string, stmts []stmt) error {
	for _, st := range stmts {
		if _, err := s.db.ExecContext(ctx, st.query, st.args...); err != nil {
			s.l.Error("clickhouse insert error", applogger.String("table", table), applogger.Error(err))
			return fmt.Errorf("insert %s: %w", table, err)
		}
	}
	return nil
}

func quoteRows(quotes []models.Quote) [][]any {
	rows := make([][]any, 0, len(quotes))
	for _, q := range quotes {
		if q.Symbol == "" {
			continue
		}
		var vol any
		if q.Volume != nil {
			vol = *q.Volume
		}
		rows = append(rows, []any{q.Timestamp, q.Symbol, q.Current, q.Open, q.High, q.Low, q.PrevClose, q.Change, q.ChangePct, vol})
	}
	return rows
}

func candleRows(candles []models.Candle) [][]any {
	rows := make([][]any, 0, len(candles))
	for _, c := range candles {
		if c.Symbol == "" {
			continue
		}
		rows = append(rows, []any{c.Timestamp, c.Symbol, c.Open, c.High, c.Low, c.Close, c.Volume})
	}
	return rows
}

func predictionRows(r *models.Report) [][]any {
	rows := make([][]any, 0, len(r.Ranked))
	for i, p := range r.Ranked {
		f := p.Factors
		rows = append(rows, []any{
			r.ID, r.AsOf, r.TargetDate, uint32(i + 1), p.Symbol,
			p.CurrentPrice, p.PredictedPrice, p.PredictedChangePct, p.Confidence,
			f.Momentum, f.Sentiment, f.GapRecovery, f.MeanReversion, f.SupportBounce, f.ResistancePressure,
		})
	}
	return rows
}

var (
	quoteCols      = []string{"ts", "symbol", "current", "open", "high", "low", "prev_close", "change", "change_pct", "volume"}
	candleCols     = []string{"ts", "symbol", "open", "high", "low", "close", "volume"}
	predictionCols = []string{
		"report_id", "as_of", "target_date", "rank", "symbol",
		"current_price", "predicted_price", "predicted_change_pct", "confidence",
		"f_momentum", "f_sentiment", "f_gap_recovery", "f_mean_reversion", "f_support_bounce", "f_resistance_pressure",
	}
)

func (s *ClickHouseMarketStore) StoreQuotes(ctx context.Context, quotes []models.Quote) error {
	table := s.database + ".quotes"
	return s.exec(ctx, table, batchInsert(table, quoteCols, quoteRows(quotes)))
}

func (s *ClickHouseMarketStore) StoreCandles(ctx context.Context, candles []models.Candle) error {
	table := s.database + ".candles"
	return s.exec(ctx, table, batchInsert(table, candleCols, candleRows(candles)))
}

func (s *ClickHouseMarketStore) StorePredictions(ctx context.Context, r *models.Report) error {
	if r == nil {
		return nil
	}
	table := s.database + ".predictions"
	return s.exec(ctx, table, batchInsert(table, predictionCols, predictionRows(r)))
}

func (s *ClickHouseMarketStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseMarketStore) Close() error {
	return nil // pool owned by pkg/clickhouse.Client
}

var _ domrepo.MarketStore = (*ClickHouseMarketStore)(nil)
