package calculator

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"RiskEngine/internal/model"
)

// Beta computes the rolling beta of asset returns against benchmark returns.
// The two series are inner-joined by date first; only dates present in both
// survive. beta[t] = cov(asset, bench) / var(bench), both sample estimates
// over the trailing window of the joined series. A zero benchmark variance
// yields an infinite or NaN beta.
func Beta(asset, benchmark model.Series, window int) (model.Series, error) {
	if err := checkWindow(window); err != nil {
		return model.Series{}, err
	}

	bench := benchmark.Index()
	joined := make([]model.Point, 0, len(asset.Points))
	xs := make([]float64, 0, len(asset.Points))
	ys := make([]float64, 0, len(asset.Points))
	for _, p := range asset.Points {
		m, ok := bench[model.DateKey(p.Date)]
		if !ok {
			continue
		}
		joined = append(joined, p)
		xs = append(xs, p.Value)
		ys = append(ys, m)
	}
	if len(xs) < window {
		return model.Series{}, fmt.Errorf("beta for %s vs %s: need %d joined returns, got %d: %w",
			asset.Ticker, benchmark.Ticker, window, len(xs), ErrInsufficientData)
	}

	betas := rollingPair(xs, ys, window, func(x, y []float64) float64 {
		return stat.Covariance(x, y, nil) / stat.Variance(y, nil)
	})

	out := make([]model.Point, len(betas))
	for k, b := range betas {
		out[k] = model.Point{Date: joined[k+window-1].Date, Value: b}
	}
	return model.Series{Ticker: asset.Ticker, Points: out}, nil
}
