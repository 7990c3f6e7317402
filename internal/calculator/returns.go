package calculator

import (
	"fmt"
	"math"

	"RiskEngine/internal/model"
)

// Returns converts a price series into simple returns:
// r[t] = p[t]/p[t-1] - 1, indexed by the later date.
// The first date has no prior price and is absent from the output.
func Returns(prices model.Series) (model.Series, error) {
	n := len(prices.Points)
	if n < 2 {
		return model.Series{}, fmt.Errorf("returns for %s: need 2 prices, got %d: %w", prices.Ticker, n, ErrInsufficientData)
	}
	if err := validatePrices(prices); err != nil {
		return model.Series{}, err
	}

	out := make([]model.Point, n-1)
	for t := 1; t < n; t++ {
		out[t-1] = model.Point{
			Date:  prices.Points[t].Date,
			Value: prices.Points[t].Value/prices.Points[t-1].Value - 1,
		}
	}
	return model.Series{Ticker: prices.Ticker, Points: out}, nil
}

func validatePrices(prices model.Series) error {
	for i, p := range prices.Points {
		if p.Value <= 0 || math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
			return fmt.Errorf("%s: close %v on %s: %w", prices.Ticker, p.Value, model.DateKey(p.Date), ErrInvalidSeries)
		}
		if i > 0 && !p.Date.After(prices.Points[i-1].Date) {
			return fmt.Errorf("%s: dates not strictly increasing at %s: %w", prices.Ticker, model.DateKey(p.Date), ErrInvalidSeries)
		}
	}
	return nil
}
