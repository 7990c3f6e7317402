package cmd

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RiskEngine/internal/model"
)

func rows(ticker string, n int) []model.MetricRecord {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]model.MetricRecord, n)
	for i := range out {
		out[i] = model.MetricRecord{Date: start.AddDate(0, 0, i), Ticker: ticker, Close: float64(10 + i)}
	}
	return out
}

func TestTail(t *testing.T) {
	records := append(rows("PETR4", 5), rows("VALE3", 2)...)

	got := tail(records, 3)
	require.Len(t, got, 5)
	assert.Equal(t, "PETR4", got[0].Ticker)
	assert.Equal(t, 12.0, got[0].Close)
	assert.Equal(t, "VALE3", got[3].Ticker)
	assert.Equal(t, 10.0, got[3].Close)

	assert.Len(t, tail(records, 0), 7)
	assert.Empty(t, tail(nil, 3))
}

func TestPrintTail(t *testing.T) {
	records := rows("PETR4", 2)
	records[1].SharpeRatio = math.NaN()
	records[1].Beta21d = math.Inf(-1)

	var buf bytes.Buffer
	require.NoError(t, printTail(&buf, records, 1))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "volatility_21d")
	assert.Contains(t, lines[1], "2024-01-02")
	assert.Contains(t, lines[1], "11.00")
	assert.Equal(t, 2, strings.Count(lines[1], "NaN"))
}
