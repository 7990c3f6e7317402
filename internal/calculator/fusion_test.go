package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RiskEngine/internal/model"
)

func testTable(n int, tickers ...string) model.PriceTable {
	table := model.PriceTable{}
	for i, t := range tickers {
		table[t] = series(t, randomWalk(int64(100+i), n)...)
	}
	return table
}

func TestFuse_InnerJoin(t *testing.T) {
	prices := series("X", 10, 11, 12, 13)
	returns := seriesFrom("X", day0.AddDate(0, 0, 1), 0.1, 0.09, 0.08)
	vol := seriesFrom("X", day0.AddDate(0, 0, 2), 0.2, 0.3)
	sharpe := seriesFrom("X", day0.AddDate(0, 0, 2), 1.1, 1.2)
	beta := seriesFrom("X", day0.AddDate(0, 0, 3), 0.9)

	records := Fuse("X", prices, returns, vol, sharpe, beta)
	require.Len(t, records, 1)
	assert.Equal(t, model.MetricRecord{
		Date:          day0.AddDate(0, 0, 3),
		Ticker:        "X",
		Close:         13,
		DailyReturn:   0.08,
		Volatility21d: 0.3,
		SharpeRatio:   1.2,
		Beta21d:       0.9,
	}, records[0])
}

func TestComputeTicker_WarmUp(t *testing.T) {
	const n, w = 60, 21
	table := testTable(n, "BOVA11", "PETR4")
	bench, err := Returns(table["BOVA11"])
	require.NoError(t, err)

	records, err := ComputeTicker("PETR4", table["PETR4"], bench, DefaultParams())
	require.NoError(t, err)

	// w returns are needed, which takes w+1 prices
	require.Len(t, records, n-w)
	assert.Equal(t, table["PETR4"].Points[w].Date, records[0].Date)

	for i, r := range records {
		if i > 0 {
			assert.True(t, r.Date.After(records[i-1].Date))
		}
		assert.False(t, IsUndefined(r.SharpeRatio))
		assert.False(t, IsUndefined(r.Beta21d))
	}
}

func TestComputeTicker_Idempotent(t *testing.T) {
	table := testTable(120, "BOVA11", "VALE3")
	bench, err := Returns(table["BOVA11"])
	require.NoError(t, err)

	first, err := ComputeTicker("VALE3", table["VALE3"], bench, DefaultParams())
	require.NoError(t, err)
	second, err := ComputeTicker("VALE3", table["VALE3"], bench, DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestComputeTicker_InsufficientData(t *testing.T) {
	table := testTable(15, "BOVA11", "PETR4")
	bench, err := Returns(table["BOVA11"])
	require.NoError(t, err)

	_, err = ComputeTicker("PETR4", table["PETR4"], bench, DefaultParams())
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestFuseTable_OrderAndCounts(t *testing.T) {
	tickers := []string{"PETR4", "VALE3", "ITUB4", "BOVA11", "WEGE3", "AAPL34"}
	table := testTable(80, tickers...)

	p := DefaultParams()
	p.Workers = 4
	res, err := FuseTable(table, tickers, "BOVA11", p)
	require.NoError(t, err)

	assert.Equal(t, tickers, res.Processed)
	assert.Empty(t, res.Skipped)
	require.Len(t, res.Records, len(tickers)*(80-21))

	// grouped by ticker in input order, dates ascending within a ticker
	for i, r := range res.Records {
		assert.Equal(t, tickers[i/(80-21)], r.Ticker)
	}

	// the benchmark against itself has beta 1
	for _, r := range res.Records {
		if r.Ticker == "BOVA11" {
			assert.InDelta(t, 1.0, r.Beta21d, 1e-9)
		}
	}
}

func TestFuseTable_Deterministic(t *testing.T) {
	tickers := []string{"PETR4", "VALE3", "ITUB4", "BOVA11"}
	table := testTable(70, tickers...)

	serial := DefaultParams()
	serial.Workers = 1
	parallel := DefaultParams()
	parallel.Workers = 8

	a, err := FuseTable(table, tickers, "BOVA11", serial)
	require.NoError(t, err)
	b, err := FuseTable(table, tickers, "BOVA11", parallel)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestFuseTable_MissingBenchmark(t *testing.T) {
	table := testTable(60, "PETR4", "VALE3")

	res, err := FuseTable(table, []string{"PETR4", "VALE3"}, "BOVA11", DefaultParams())
	assert.ErrorIs(t, err, ErrMissingBenchmark)
	assert.Nil(t, res)
}

func TestFuseTable_EmptyBenchmarkColumn(t *testing.T) {
	table := testTable(60, "PETR4")
	table["BOVA11"] = model.Series{Ticker: "BOVA11"}

	_, err := FuseTable(table, []string{"PETR4"}, "BOVA11", DefaultParams())
	assert.ErrorIs(t, err, ErrMissingBenchmark)
}

func TestFuseTable_MissingTickerSkipped(t *testing.T) {
	table := testTable(60, "BOVA11", "PETR4", "VALE3")

	res, err := FuseTable(table, []string{"PETR4", "XPTO3", "VALE3"}, "BOVA11", DefaultParams())
	require.NoError(t, err)

	assert.Equal(t, []string{"PETR4", "VALE3"}, res.Processed)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "XPTO3", res.Skipped[0].Ticker)
	assert.Contains(t, res.Skipped[0].Reason, ErrMissingTicker.Error())
	assert.Len(t, res.Records, 2*(60-21))
}

func TestFuseTable_ShortHistorySkipped(t *testing.T) {
	table := testTable(60, "BOVA11", "PETR4")
	table["WEGE3"] = series("WEGE3", randomWalk(3, 10)...)

	res, err := FuseTable(table, []string{"PETR4", "WEGE3"}, "BOVA11", DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, []string{"PETR4"}, res.Processed)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "WEGE3", res.Skipped[0].Ticker)
	assert.Contains(t, res.Skipped[0].Reason, ErrInsufficientData.Error())
}

func TestFuseTable_DuplicateTickers(t *testing.T) {
	table := testTable(40, "BOVA11", "PETR4")

	res, err := FuseTable(table, []string{"PETR4", "PETR4"}, "BOVA11", DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, []string{"PETR4"}, res.Processed)
	assert.Len(t, res.Records, 40-21)
}

func TestFuseTable_UndefinedRatiosKept(t *testing.T) {
	// a flat benchmark has zero variance, so every beta is undefined
	flat := make([]float64, 40)
	for i := range flat {
		flat[i] = 100
	}
	table := testTable(40, "PETR4")
	table["BOVA11"] = series("BOVA11", flat...)

	res, err := FuseTable(table, []string{"PETR4"}, "BOVA11", DefaultParams())
	require.NoError(t, err)
	require.Len(t, res.Records, 40-21)
	assert.Equal(t, len(res.Records), res.Undefined)
	for _, r := range res.Records {
		assert.True(t, IsUndefined(r.Beta21d))
		assert.False(t, IsUndefined(r.Volatility21d))
	}
}

func TestFuseTable_InvalidWindow(t *testing.T) {
	table := testTable(40, "BOVA11")
	p := DefaultParams()
	p.Window = 1

	_, err := FuseTable(table, []string{"BOVA11"}, "BOVA11", p)
	assert.ErrorIs(t, err, ErrInvalidWindow)
}
