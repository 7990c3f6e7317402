package calculator

import (
	"fmt"
	"math"

	"RiskEngine/internal/model"
)

// Volatility computes the annualized rolling volatility of a return series:
// sample standard deviation of each full window times sqrt(annualization).
// Dates before the first full window are absent from the output.
func Volatility(returns model.Series, window int, annualization float64) (model.Series, error) {
	if err := checkWindow(window); err != nil {
		return model.Series{}, err
	}
	n := len(returns.Points)
	if n < window {
		return model.Series{}, fmt.Errorf("volatility for %s: need %d returns, got %d: %w", returns.Ticker, window, n, ErrInsufficientData)
	}

	scale := math.Sqrt(annualization)
	stds := rolling(returns.Values(), window, sampleStdDev)

	out := make([]model.Point, len(stds))
	for k, sd := range stds {
		out[k] = model.Point{Date: returns.Points[k+window-1].Date, Value: sd * scale}
	}
	return model.Series{Ticker: returns.Ticker, Points: out}, nil
}
