package cmd

import (
	"fmt"
	"io"
	"math"
	"text/tabwriter"

	"RiskEngine/internal/model"
)

// printTail writes the last n rows of every ticker as an aligned table.
// records must be grouped by ticker in date order.
func printTail(w io.Writer, records []model.MetricRecord, n int) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "date\tticker\tclose\tdaily_return\tvolatility_21d\tsharpe_ratio\tbeta_21d\t")
	for _, r := range tail(records, n) {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%s\t%s\t%s\t%s\t\n",
			model.DateKey(r.Date), r.Ticker, r.Close,
			cell(r.DailyReturn, 5), cell(r.Volatility21d, 4), cell(r.SharpeRatio, 3), cell(r.Beta21d, 3))
	}
	return tw.Flush()
}

// tail keeps the last n rows of each ticker run in records. n <= 0 keeps all.
func tail(records []model.MetricRecord, n int) []model.MetricRecord {
	if n <= 0 {
		return records
	}
	var out []model.MetricRecord
	start := 0
	for i := 1; i <= len(records); i++ {
		if i < len(records) && records[i].Ticker == records[start].Ticker {
			continue
		}
		from := max(start, i-n)
		out = append(out, records[from:i]...)
		start = i
	}
	return out
}

func cell(v float64, prec int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "NaN"
	}
	return fmt.Sprintf("%.*f", prec, v)
}
