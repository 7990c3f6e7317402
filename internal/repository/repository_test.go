package repository

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RiskEngine/internal/model"
)

func day(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

func sampleRecords() []model.MetricRecord {
	return []model.MetricRecord{
		{Date: day(5), Ticker: "VALE3", Close: 68.2, DailyReturn: 0.004, Volatility21d: 0.28, SharpeRatio: 0.9, Beta21d: 1.1},
		{Date: day(4), Ticker: "PETR4", Close: 36.1, DailyReturn: -0.01, Volatility21d: 0.31, SharpeRatio: 1.4, Beta21d: 0.95},
		{Date: day(5), Ticker: "PETR4", Close: 36.6, DailyReturn: 0.0138, Volatility21d: 0.30, SharpeRatio: math.Inf(1), Beta21d: math.NaN()},
	}
}

// exerciseRepository runs the behaviour every Repository must share.
func exerciseRepository(t *testing.T, repo Repository) {
	t.Helper()
	ctx := context.Background()

	_, err := repo.LastRun(ctx)
	assert.ErrorIs(t, err, ErrNoRuns)

	require.NoError(t, repo.SaveMetrics(ctx, sampleRecords()))

	all, err := repo.LoadMetrics(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	// ordered by ticker then date
	assert.Equal(t, "PETR4", all[0].Ticker)
	assert.Equal(t, day(4), all[0].Date)
	assert.Equal(t, "PETR4", all[1].Ticker)
	assert.Equal(t, day(5), all[1].Date)
	assert.Equal(t, "VALE3", all[2].Ticker)

	assert.InDelta(t, 36.1, all[0].Close, 1e-12)
	assert.InDelta(t, 0.95, all[0].Beta21d, 1e-12)
	// non-finite values come back as NaN
	assert.True(t, math.IsNaN(all[1].SharpeRatio))
	assert.True(t, math.IsNaN(all[1].Beta21d))
	assert.InDelta(t, 0.30, all[1].Volatility21d, 1e-12)

	petr, err := repo.LoadMetrics(ctx, "PETR4")
	require.NoError(t, err)
	assert.Len(t, petr, 2)

	// a second save replaces the table
	require.NoError(t, repo.SaveMetrics(ctx, sampleRecords()[:1]))
	all, err = repo.LoadMetrics(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "VALE3", all[0].Ticker)

	started := time.Date(2024, 3, 5, 19, 0, 0, 0, time.UTC)
	first := &model.RunSummary{
		RunID:      "01HRKX0000000000000000000A",
		StartedAt:  started,
		FinishedAt: started.Add(3 * time.Second),
		Benchmark:  "BOVA11",
		Tickers:    []string{"PETR4", "VALE3", "XPTO3"},
		Processed:  []string{"PETR4", "VALE3"},
		Skipped:    []model.TickerWarning{{Ticker: "XPTO3", Reason: "missing ticker"}},
		Rows:       3,
		Status:     model.RunSucceeded,
	}
	require.NoError(t, repo.RecordRun(ctx, first))

	second := &model.RunSummary{
		RunID:     "01HRKX0000000000000000000B",
		StartedAt: started.Add(time.Hour),
		Benchmark: "BOVA11",
		Tickers:   []string{"PETR4"},
		Status:    model.RunFailed,
		Err:       "nothing processed",
	}
	require.NoError(t, repo.RecordRun(ctx, second))

	last, err := repo.LastRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.RunID, last.RunID)
	assert.Equal(t, model.RunFailed, last.Status)
	assert.Equal(t, "nothing processed", last.Err)
	assert.True(t, last.FinishedAt.IsZero())
	assert.Empty(t, last.Skipped)
	assert.True(t, second.StartedAt.Equal(last.StartedAt))

	// duplicate run ids are rejected
	assert.Error(t, repo.RecordRun(ctx, first))
}

func TestNoopRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewNoopRepository()

	require.NoError(t, repo.SaveMetrics(ctx, sampleRecords()))
	require.NoError(t, repo.RecordRun(ctx, &model.RunSummary{RunID: "x"}))
	recs, err := repo.LoadMetrics(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, recs)
	_, err = repo.LastRun(ctx)
	assert.ErrorIs(t, err, ErrNoRuns)
	assert.NoError(t, repo.Close())
}

func TestSkippedEncoding(t *testing.T) {
	ws := []model.TickerWarning{{Ticker: "A", Reason: "r"}}
	assert.Equal(t, ws, decodeSkipped(encodeSkipped(ws)))
	assert.Nil(t, decodeSkipped(encodeSkipped(nil)))
	assert.Nil(t, decodeSkipped("not json"))
}
