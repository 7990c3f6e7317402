package calculator

import (
	"fmt"

	"RiskEngine/internal/model"
)

// Sharpe computes the rolling Sharpe ratio
//
//	(mean(returns over window) * annualization - riskFree) / vol[t]
//
// for every volatility date that closes a full return window. The risk-free
// rate is a constant annual rate. A zero volatility is not guarded and yields
// an infinite or NaN ratio.
func Sharpe(returns, vol model.Series, window int, annualization, riskFree float64) (model.Series, error) {
	if err := checkWindow(window); err != nil {
		return model.Series{}, err
	}
	n := len(returns.Points)
	if n < window {
		return model.Series{}, fmt.Errorf("sharpe for %s: need %d returns, got %d: %w", returns.Ticker, window, n, ErrInsufficientData)
	}

	values := returns.Values()
	pos := make(map[string]int, n)
	for i, p := range returns.Points {
		pos[model.DateKey(p.Date)] = i
	}

	out := make([]model.Point, 0, len(vol.Points))
	for _, v := range vol.Points {
		i, ok := pos[model.DateKey(v.Date)]
		if !ok || i < window-1 {
			continue
		}
		annualReturn := mean(values[i-window+1:i+1]) * annualization
		out = append(out, model.Point{Date: v.Date, Value: (annualReturn - riskFree) / v.Value})
	}
	return model.Series{Ticker: returns.Ticker, Points: out}, nil
}
