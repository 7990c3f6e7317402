package calculator

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

func checkWindow(window int) error {
	if window < 2 {
		return fmt.Errorf("%w: window must be >= 2, got %d", ErrInvalidWindow, window)
	}
	return nil
}

// rolling applies fn to every full trailing window of xs. The result has
// len(xs)-window+1 entries; entry k covers xs[k : k+window].
func rolling(xs []float64, window int, fn func(win []float64) float64) []float64 {
	if len(xs) < window {
		return nil
	}
	out := make([]float64, len(xs)-window+1)
	for k := range out {
		out[k] = fn(xs[k : k+window])
	}
	return out
}

// rollingPair is rolling over two aligned slices.
func rollingPair(xs, ys []float64, window int, fn func(x, y []float64) float64) []float64 {
	if len(xs) < window || len(xs) != len(ys) {
		return nil
	}
	out := make([]float64, len(xs)-window+1)
	for k := range out {
		out[k] = fn(xs[k:k+window], ys[k:k+window])
	}
	return out
}

// sampleStdDev is the unbiased (n-1) standard deviation.
func sampleStdDev(win []float64) float64 { return stat.StdDev(win, nil) }

func mean(win []float64) float64 { return stat.Mean(win, nil) }
