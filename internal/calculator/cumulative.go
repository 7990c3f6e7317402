package calculator

import "RiskEngine/internal/model"

// CumulativeReturn compounds a return series: cum[t] = prod(1 + r[i], i <= t) - 1.
// It has no warm-up; the output starts at the first return date.
func CumulativeReturn(returns model.Series) model.Series {
	out := make([]model.Point, len(returns.Points))
	growth := 1.0
	for i, p := range returns.Points {
		growth *= 1 + p.Value
		out[i] = model.Point{Date: p.Date, Value: growth - 1}
	}
	return model.Series{Ticker: returns.Ticker, Points: out}
}
