package repository

import (
	"context"

	"RiskEngine/internal/model"
)

// NoopRepository is a no-op implementation used when no database is configured.
type NoopRepository struct{}

func NewNoopRepository() *NoopRepository { return &NoopRepository{} }

func (n *NoopRepository) SaveMetrics(context.Context, []model.MetricRecord) error { return nil }
func (n *NoopRepository) RecordRun(context.Context, *model.RunSummary) error      { return nil }
func (n *NoopRepository) LoadMetrics(context.Context, string) ([]model.MetricRecord, error) {
	return nil, nil
}
func (n *NoopRepository) LastRun(context.Context) (*model.RunSummary, error) { return nil, ErrNoRuns }
func (n *NoopRepository) Close() error                                      { return nil }
