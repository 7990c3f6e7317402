package calculator

import (
	"math"
	"math/rand"
	"time"

	"RiskEngine/internal/model"
)

var day0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// series builds a daily series starting at day0.
func series(ticker string, values ...float64) model.Series {
	return seriesFrom(ticker, day0, values...)
}

func seriesFrom(ticker string, start time.Time, values ...float64) model.Series {
	pts := make([]model.Point, len(values))
	for i, v := range values {
		pts[i] = model.Point{Date: start.AddDate(0, 0, i), Value: v}
	}
	return model.Series{Ticker: ticker, Points: pts}
}

// randomWalk returns n positive prices from a seeded geometric walk.
func randomWalk(seed int64, n int) []float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	p := 100.0
	for i := range out {
		p *= 1 + rng.NormFloat64()*0.015
		out[i] = p
	}
	return out
}

func manualMean(xs []float64) float64 {
	s := 0.0
	for _, x := range xs {
		s += x
	}
	return s / float64(len(xs))
}

func manualStd(xs []float64) float64 {
	m := manualMean(xs)
	s := 0.0
	for _, x := range xs {
		s += (x - m) * (x - m)
	}
	return math.Sqrt(s / float64(len(xs)-1))
}

func manualCov(xs, ys []float64) float64 {
	mx, my := manualMean(xs), manualMean(ys)
	s := 0.0
	for i := range xs {
		s += (xs[i] - mx) * (ys[i] - my)
	}
	return s / float64(len(xs)-1)
}
