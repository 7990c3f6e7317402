package calculator

import (
	"fmt"
	"runtime"
	"sync"

	"RiskEngine/internal/model"
)

// Fuse aligns one ticker's prices and derived metric series into records.
// Policy is an inner join on date: a date is emitted only if every input
// series has a value for it. Present-but-undefined ratios (NaN/Inf) are kept.
func Fuse(ticker string, prices, returns, vol, sharpe, beta model.Series) []model.MetricRecord {
	ret := returns.Index()
	vl := vol.Index()
	sh := sharpe.Index()
	bt := beta.Index()

	records := make([]model.MetricRecord, 0, len(bt))
	for _, p := range prices.Points {
		key := model.DateKey(p.Date)
		r, ok := ret[key]
		if !ok {
			continue
		}
		v, ok := vl[key]
		if !ok {
			continue
		}
		s, ok := sh[key]
		if !ok {
			continue
		}
		b, ok := bt[key]
		if !ok {
			continue
		}
		records = append(records, model.MetricRecord{
			Date:          p.Date,
			Ticker:        ticker,
			Close:         p.Value,
			DailyReturn:   r,
			Volatility21d: v,
			SharpeRatio:   s,
			Beta21d:       b,
		})
	}
	return records
}

// ComputeTicker runs the per-ticker chain returns -> volatility -> sharpe ->
// beta -> fusion against a shared, read-only benchmark return series.
func ComputeTicker(ticker string, prices, benchmarkReturns model.Series, p Params) ([]model.MetricRecord, error) {
	returns, err := Returns(prices)
	if err != nil {
		return nil, err
	}
	vol, err := Volatility(returns, p.Window, p.Annualization)
	if err != nil {
		return nil, err
	}
	sharpe, err := Sharpe(returns, vol, p.Window, p.Annualization, p.RiskFreeRate)
	if err != nil {
		return nil, err
	}
	beta, err := Beta(returns, benchmarkReturns, p.Window)
	if err != nil {
		return nil, err
	}
	return Fuse(ticker, prices, returns, vol, sharpe, beta), nil
}

// CountUndefined returns how many records carry a NaN/Inf Sharpe or beta.
func CountUndefined(records []model.MetricRecord) int {
	n := 0
	for _, r := range records {
		if IsUndefined(r.SharpeRatio) || IsUndefined(r.Beta21d) {
			n++
		}
	}
	return n
}

// TableResult is the fused output of a whole price table.
type TableResult struct {
	Records   []model.MetricRecord
	Processed []string
	Skipped   []model.TickerWarning
	Undefined int
}

type tickerResult struct {
	records []model.MetricRecord
	err     error
}

// FuseTable computes records for every ticker in table, one chain per ticker
// on a bounded set of goroutines. Records come back grouped in ticker order.
// A missing benchmark column aborts with ErrMissingBenchmark; per-ticker
// failures are reported in Skipped.
func FuseTable(table model.PriceTable, tickers []string, benchmark string, p Params) (*TableResult, error) {
	if err := checkWindow(p.Window); err != nil {
		return nil, err
	}
	benchPrices, ok := table.Column(benchmark)
	if !ok {
		return nil, fmt.Errorf("benchmark %s has no price column: %w", benchmark, ErrMissingBenchmark)
	}
	benchReturns, err := Returns(benchPrices)
	if err != nil {
		return nil, fmt.Errorf("benchmark %s: %w", benchmark, err)
	}

	tickers = dedupe(tickers)
	results := make([]tickerResult, len(tickers))

	workers := p.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(tickers) {
		workers = len(tickers)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				prices, ok := table.Column(tickers[i])
				if !ok {
					results[i].err = fmt.Errorf("%s has no price column: %w", tickers[i], ErrMissingTicker)
					continue
				}
				results[i].records, results[i].err = ComputeTicker(tickers[i], prices, benchReturns, p)
			}
		}()
	}
	for i := range tickers {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	out := &TableResult{}
	for i, res := range results {
		if res.err == nil && len(res.records) == 0 {
			res.err = fmt.Errorf("%s: no dates with every metric defined: %w", tickers[i], ErrInsufficientData)
		}
		if res.err != nil {
			out.Skipped = append(out.Skipped, model.TickerWarning{Ticker: tickers[i], Reason: res.err.Error()})
			continue
		}
		out.Processed = append(out.Processed, tickers[i])
		out.Records = append(out.Records, res.records...)
	}
	out.Undefined = CountUndefined(out.Records)
	return out, nil
}

func dedupe(tickers []string) []string {
	seen := make(map[string]struct{}, len(tickers))
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
