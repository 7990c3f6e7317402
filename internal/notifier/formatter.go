package notifier

import (
	"fmt"
	"html"
	"math"
	"sort"
	"strings"

	"RiskEngine/internal/model"
)

// FormatRunSummary formats a pipeline run for a chat message.
func FormatRunSummary(s *model.RunSummary) string {
	var b strings.Builder

	icon := "✅"
	switch s.Status {
	case model.RunFailed:
		icon = "⚠️"
	case model.RunAborted:
		icon = "❌"
	}
	b.WriteString(fmt.Sprintf("%s <b>RiskEngine run</b> | %s\n\n", icon, s.StartedAt.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Run: <code>%s</code>\n", s.RunID))
	b.WriteString(fmt.Sprintf("Status: %s\n", s.Status))
	b.WriteString(fmt.Sprintf("Benchmark: %s\n", html.EscapeString(s.Benchmark)))
	b.WriteString(fmt.Sprintf("Processed: %d/%d tickers, %d rows\n", len(s.Processed), len(s.Tickers), s.Rows))
	if d := s.Duration(); d > 0 {
		b.WriteString(fmt.Sprintf("Took: %.1fs\n", d.Seconds()))
	}
	if s.UndefinedRatios > 0 {
		b.WriteString(fmt.Sprintf("Rows with undefined ratios: %d\n", s.UndefinedRatios))
	}

	if len(s.Skipped) > 0 {
		b.WriteString("\n<b>Skipped:</b>\n")
		for _, w := range s.Skipped {
			b.WriteString(fmt.Sprintf("  • %s: %s\n", html.EscapeString(w.Ticker), html.EscapeString(w.Reason)))
		}
	}
	if s.Err != "" {
		b.WriteString(fmt.Sprintf("\nError: %s\n", html.EscapeString(s.Err)))
	}
	return b.String()
}

// FormatFailure formats an error that ended a run before a summary existed.
func FormatFailure(err error) string {
	return fmt.Sprintf("❌ <b>RiskEngine run failed</b>\n\n%s", html.EscapeString(err.Error()))
}

// FormatLatest formats the most recent row of every ticker in records.
func FormatLatest(records []model.MetricRecord) string {
	if len(records) == 0 {
		return "No metrics stored yet."
	}

	latest := make(map[string]model.MetricRecord)
	for _, r := range records {
		if cur, ok := latest[r.Ticker]; !ok || r.Date.After(cur.Date) {
			latest[r.Ticker] = r
		}
	}
	tickers := make([]string, 0, len(latest))
	for t := range latest {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	var b strings.Builder
	b.WriteString("📊 <b>Latest risk metrics</b>\n\n<pre>")
	b.WriteString(fmt.Sprintf("%-8s %-10s %9s %7s %7s %6s\n", "Ticker", "Date", "Close", "Vol", "Sharpe", "Beta"))
	for _, t := range tickers {
		r := latest[t]
		b.WriteString(fmt.Sprintf("%-8s %-10s %9.2f %7s %7s %6s\n",
			html.EscapeString(t), model.DateKey(r.Date), r.Close,
			pct(r.Volatility21d), num(r.SharpeRatio), num(r.Beta21d)))
	}
	b.WriteString("</pre>")
	return b.String()
}

// FormatHelp lists the chat commands.
func FormatHelp() string {
	return "Available commands:\n" +
		"• /run - run the pipeline now\n" +
		"• /status - last run summary\n" +
		"• /latest [TICKER] - latest metrics\n" +
		"• /chart [TICKER] - cumulative return chart"
}

func num(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", v)
}

func pct(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", v*100)
}
