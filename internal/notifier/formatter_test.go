package notifier

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"RiskEngine/internal/model"
)

func TestFormatRunSummary(t *testing.T) {
	started := time.Date(2024, 6, 28, 19, 0, 0, 0, time.UTC)
	s := &model.RunSummary{
		RunID:           "01J1ABCDEF0000000000000000",
		StartedAt:       started,
		FinishedAt:      started.Add(2500 * time.Millisecond),
		Benchmark:       "BOVA11",
		Tickers:         []string{"PETR4", "VALE3", "XPTO3"},
		Processed:       []string{"PETR4", "VALE3"},
		Skipped:         []model.TickerWarning{{Ticker: "XPTO3", Reason: "XPTO3 has no price column: missing ticker"}},
		Rows:            400,
		UndefinedRatios: 3,
		Status:          model.RunSucceeded,
	}

	msg := FormatRunSummary(s)
	assert.True(t, strings.HasPrefix(msg, "✅"))
	assert.Contains(t, msg, "01J1ABCDEF0000000000000000")
	assert.Contains(t, msg, "Processed: 2/3 tickers, 400 rows")
	assert.Contains(t, msg, "Took: 2.5s")
	assert.Contains(t, msg, "undefined ratios: 3")
	assert.Contains(t, msg, "XPTO3: XPTO3 has no price column")
	assert.NotContains(t, msg, "Error:")
}

func TestFormatRunSummary_EscapesHTML(t *testing.T) {
	s := &model.RunSummary{Status: model.RunFailed, Err: "bad <input> & more"}
	msg := FormatRunSummary(s)
	assert.True(t, strings.HasPrefix(msg, "⚠️"))
	assert.Contains(t, msg, "bad &lt;input&gt; &amp; more")
}

func TestFormatFailure(t *testing.T) {
	msg := FormatFailure(errors.New("benchmark BOVA11 has no price column: missing benchmark"))
	assert.Contains(t, msg, "failed")
	assert.Contains(t, msg, "missing benchmark")
}

func TestFormatLatest(t *testing.T) {
	d1 := time.Date(2024, 6, 27, 0, 0, 0, 0, time.UTC)
	d2 := d1.AddDate(0, 0, 1)
	records := []model.MetricRecord{
		{Date: d1, Ticker: "VALE3", Close: 60, Volatility21d: 0.2, SharpeRatio: 1, Beta21d: 1},
		{Date: d2, Ticker: "VALE3", Close: 61.5, Volatility21d: 0.25, SharpeRatio: 1.234, Beta21d: 0.9},
		{Date: d2, Ticker: "PETR4", Close: 36.6, Volatility21d: 0.3, SharpeRatio: math.NaN(), Beta21d: math.Inf(1)},
	}

	msg := FormatLatest(records)
	lines := strings.Split(msg, "\n")
	var body []string
	for _, l := range lines {
		if strings.HasPrefix(l, "PETR4") || strings.HasPrefix(l, "VALE3") {
			body = append(body, l)
		}
	}
	if assert.Len(t, body, 2) {
		assert.True(t, strings.HasPrefix(body[0], "PETR4"))
		assert.Contains(t, body[0], "n/a")
		assert.Contains(t, body[1], "2024-06-28")
		assert.Contains(t, body[1], "61.50")
		assert.Contains(t, body[1], "25.0%")
		assert.Contains(t, body[1], "1.23")
	}
}

func TestFormatLatest_Empty(t *testing.T) {
	assert.Equal(t, "No metrics stored yet.", FormatLatest(nil))
}

func TestFormatHelp(t *testing.T) {
	help := FormatHelp()
	for _, cmd := range []string{"/run", "/status", "/latest", "/chart"} {
		assert.Contains(t, help, cmd)
	}
}
