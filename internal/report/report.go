// Package report turns stored metric rows into exports: cumulative return
// curves, PNG charts and CSV files.
package report

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"

	"github.com/gocarina/gocsv"

	"RiskEngine/internal/calculator"
	"RiskEngine/internal/model"
)

// CumulativeByTicker compounds each ticker's stored daily returns into a
// cumulative return curve. Rows without a return are skipped. Output is
// sorted by ticker.
func CumulativeByTicker(records []model.MetricRecord) []model.Series {
	returns := make(map[string][]model.Point)
	for _, r := range records {
		if math.IsNaN(r.DailyReturn) || math.IsInf(r.DailyReturn, 0) {
			continue
		}
		returns[r.Ticker] = append(returns[r.Ticker], model.Point{Date: r.Date, Value: r.DailyReturn})
	}

	tickers := make([]string, 0, len(returns))
	for t := range returns {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	out := make([]model.Series, 0, len(tickers))
	for _, t := range tickers {
		s := model.Series{Ticker: t, Points: model.Normalize(returns[t])}
		out = append(out, calculator.CumulativeReturn(s))
	}
	return out
}

type csvRow struct {
	Date          string `csv:"date"`
	Ticker        string `csv:"ticker"`
	Close         string `csv:"close"`
	DailyReturn   string `csv:"daily_return"`
	Volatility21d string `csv:"volatility_21d"`
	SharpeRatio   string `csv:"sharpe_ratio"`
	Beta21d       string `csv:"beta_21d"`
}

// WriteCSV writes records with a header row in market_data column order.
// Undefined values are written as empty cells.
func WriteCSV(w io.Writer, records []model.MetricRecord) error {
	rows := make([]*csvRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, &csvRow{
			Date:          model.DateKey(r.Date),
			Ticker:        r.Ticker,
			Close:         cell(r.Close),
			DailyReturn:   cell(r.DailyReturn),
			Volatility21d: cell(r.Volatility21d),
			SharpeRatio:   cell(r.SharpeRatio),
			Beta21d:       cell(r.Beta21d),
		})
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func cell(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
