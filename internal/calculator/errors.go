package calculator

import (
	"errors"
	"math"
)

var (
	// ErrInsufficientData is returned when a transform gets fewer observations
	// than its window requires. Recoverable per ticker.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrMissingTicker marks a requested ticker with no price column.
	ErrMissingTicker = errors.New("missing ticker")

	// ErrMissingBenchmark marks a run whose benchmark has no price column.
	// Fatal for the whole run.
	ErrMissingBenchmark = errors.New("missing benchmark")

	// ErrUndefinedRatio describes a Sharpe or beta value whose denominator was
	// zero or near zero. Such values are kept as NaN/Inf in the output rows;
	// the error is only used to label warnings.
	ErrUndefinedRatio = errors.New("undefined ratio")

	// ErrInvalidSeries is returned for unordered dates or non-positive prices.
	ErrInvalidSeries = errors.New("invalid series")

	// ErrInvalidWindow is returned for rolling windows smaller than 2.
	ErrInvalidWindow = errors.New("invalid window")
)

// IsUndefined reports whether v is NaN or infinite.
func IsUndefined(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}
