package repository

import (
	"strings"
	"testing"
	"time"

	"FinCast/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchInsertChunks(t *testing.T) {
	rows := make([][]any, insertChunk+1)
	for i := range rows {
		rows[i] = []any{i, "S"}
	}
	stmts := batchInsert("db.t", []string{"a", "b"}, rows)
	require.Len(t, stmts, 2)
	assert.True(t, strings.HasPrefix(stmts[0].query, "INSERT INTO db.t (a, b) VALUES (?, ?),(?, ?)"))
	assert.Len(t, stmts[0].args, insertChunk*2)
	assert.Equal(t, "INSERT INTO db.t (a, b) VALUES (?, ?)", stmts[1].query)
	assert.Equal(t, []any{insertChunk, "S"}, stmts[1].args)

	assert.Nil(t, batchInsert("db.t", []string{"a"}, nil))
}

func TestQuoteRows(t *testing.T) {
	vol := 10.0
	rows := quoteRows([]models.Quote{
		{Symbol: "AAPL", Current: 1, Volume: &vol},
		{Symbol: "MSFT", Current: 2},
		{Current: 3},
	})
	require.Len(t, rows, 2)
	assert.Len(t, rows[0], len(quoteCols))
	assert.Equal(t, 10.0, rows[0][9])
	assert.Nil(t, rows[1][9])
}

func TestPredictionRows(t *testing.T) {
	asOf := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	r := &models.Report{
		ID:   "r1",
		AsOf: asOf,
		Ranked: []models.Prediction{
			{Symbol: "A", PredictedChangePct: 2, Factors: models.Factors{Momentum: 0.3}},
			{Symbol: "B", PredictedChangePct: -1},
		},
	}
	rows := predictionRows(r)
	require.Len(t, rows, 2)
	assert.Len(t, rows[0], len(predictionCols))
	assert.Equal(t, uint32(1), rows[0][3])
	assert.Equal(t, "B", rows[1][4])
	assert.Equal(t, 0.3, rows[0][9])
}

func TestSchema(t *testing.T) {
	ddl := Schema("fincast")
	require.Len(t, ddl, 4)
	assert.Contains(t, ddl[3], "fincast.predictions")
}
