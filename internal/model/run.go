package model

import "time"

// RunStatus is the outcome of one pipeline invocation.
type RunStatus string

const (
	RunSucceeded RunStatus = "SUCCEEDED"
	RunFailed    RunStatus = "FAILED"
	RunAborted   RunStatus = "ABORTED"
)

// TickerWarning records why a ticker was excluded from the output.
type TickerWarning struct {
	Ticker string
	Reason string
}

// RunSummary describes what a pipeline invocation did.
type RunSummary struct {
	RunID           string
	StartedAt       time.Time
	FinishedAt      time.Time
	Benchmark       string
	Tickers         []string
	Processed       []string
	Skipped         []TickerWarning
	Rows            int
	UndefinedRatios int
	Status          RunStatus
	Err             string
}

// Duration returns how long the run took.
func (s *RunSummary) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}
