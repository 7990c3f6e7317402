package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"math"
	"strings"

	"RiskEngine/internal/model"
)

// ErrNoRuns is returned by LastRun before any run has been recorded.
var ErrNoRuns = errors.New("no pipeline runs recorded")

// Repository persists fused metric rows and pipeline run summaries.
type Repository interface {
	// SaveMetrics replaces the contents of market_data with records in one
	// transaction.
	SaveMetrics(ctx context.Context, records []model.MetricRecord) error
	// RecordRun appends a run summary to pipeline_runs.
	RecordRun(ctx context.Context, summary *model.RunSummary) error
	// LoadMetrics returns stored rows ordered by ticker then date. An empty
	// ticker loads every ticker.
	LoadMetrics(ctx context.Context, ticker string) ([]model.MetricRecord, error)
	// LastRun returns the most recently started run.
	LastRun(ctx context.Context) (*model.RunSummary, error)
	Close() error
}

// finite maps NaN and ±Inf to SQL NULL.
func finite(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

// orNaN maps SQL NULL back to NaN.
func orNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

func encodeSkipped(ws []model.TickerWarning) string {
	if len(ws) == 0 {
		return "[]"
	}
	b, err := json.Marshal(ws)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func decodeSkipped(s string) []model.TickerWarning {
	var ws []model.TickerWarning
	if s == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(s), &ws); err != nil || len(ws) == 0 {
		return nil
	}
	return ws
}

func joinList(xs []string) string { return strings.Join(xs, ",") }

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
