package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"RiskEngine/internal/calculator"
	"RiskEngine/internal/id"
	"RiskEngine/internal/logging"
	"RiskEngine/internal/model"
	"RiskEngine/internal/repository"
)

// ErrNothingProcessed is returned when no ticker produced a single row.
// The stored table is left untouched.
var ErrNothingProcessed = errors.New("no ticker produced metrics")

// PriceCollector assembles a price table for a ticker universe.
type PriceCollector interface {
	Collect(ctx context.Context, tickers []string) (model.PriceTable, error)
}

// Pipeline drives price collection, the metric chain and persistence for
// one ticker universe against one benchmark.
type Pipeline struct {
	collector PriceCollector
	repo      repository.Repository
	tickers   []string
	benchmark string
	params    calculator.Params
	log       zerolog.Logger
	now       func() time.Time
}

// New creates a Pipeline.
func New(collector PriceCollector, repo repository.Repository, tickers []string, benchmark string,
	params calculator.Params, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		collector: collector,
		repo:      repo,
		tickers:   append([]string(nil), tickers...),
		benchmark: benchmark,
		params:    params,
		log:       logging.Component(log, "pipeline"),
		now:       time.Now,
	}
}

// Run executes one pipeline pass and returns its summary.
func (p *Pipeline) Run(ctx context.Context) (*model.RunSummary, error) {
	summary, _, err := p.RunWithRecords(ctx)
	return summary, err
}

// RunWithRecords is Run that also hands back the fused rows it stored.
//
// A missing or unusable benchmark aborts before anything is written. A run
// in which every ticker was skipped is recorded as failed and leaves
// market_data as it was.
func (p *Pipeline) RunWithRecords(ctx context.Context) (*model.RunSummary, []model.MetricRecord, error) {
	started := p.now().UTC()
	summary := &model.RunSummary{
		RunID:     id.NewAt(started),
		StartedAt: started,
		Benchmark: p.benchmark,
		Tickers:   append([]string(nil), p.tickers...),
	}
	log := p.log.With().Str("run_id", summary.RunID).Logger()
	log.Info().Strs("tickers", p.tickers).Str("benchmark", p.benchmark).Msg("pipeline run started")

	table, err := p.collector.Collect(ctx, p.universe())
	if err != nil {
		p.finish(summary, model.RunAborted, err)
		log.Error().Err(err).Msg("price collection aborted")
		return summary, nil, fmt.Errorf("collect prices: %w", err)
	}

	res, err := calculator.FuseTable(table, p.tickers, p.benchmark, p.params)
	if err != nil {
		p.finish(summary, model.RunAborted, err)
		log.Error().Err(err).Msg("run aborted, nothing written")
		return summary, nil, err
	}

	summary.Processed = res.Processed
	summary.Skipped = res.Skipped
	summary.Rows = len(res.Records)
	summary.UndefinedRatios = res.Undefined
	for _, w := range res.Skipped {
		log.Warn().Str("ticker", w.Ticker).Str("reason", w.Reason).Msg("ticker skipped")
	}
	if res.Undefined > 0 {
		log.Warn().Err(calculator.ErrUndefinedRatio).Int("rows", res.Undefined).Msg("rows with undefined sharpe or beta")
	}

	if len(res.Records) == 0 {
		p.finish(summary, model.RunFailed, ErrNothingProcessed)
		p.record(ctx, log, summary)
		log.Error().Int("skipped", len(res.Skipped)).Msg("no ticker produced metrics")
		return summary, nil, ErrNothingProcessed
	}

	if err := p.repo.SaveMetrics(ctx, res.Records); err != nil {
		p.finish(summary, model.RunFailed, err)
		p.record(ctx, log, summary)
		log.Error().Err(err).Msg("save metrics failed")
		return summary, nil, fmt.Errorf("save metrics: %w", err)
	}

	p.finish(summary, model.RunSucceeded, nil)
	p.record(ctx, log, summary)
	log.Info().
		Int("processed", len(summary.Processed)).
		Int("skipped", len(summary.Skipped)).
		Int("rows", summary.Rows).
		Dur("took", summary.Duration()).
		Msg("pipeline run finished")
	return summary, res.Records, nil
}

// universe is the ticker list with the benchmark appended once.
func (p *Pipeline) universe() []string {
	out := append([]string(nil), p.tickers...)
	for _, t := range out {
		if t == p.benchmark {
			return out
		}
	}
	return append(out, p.benchmark)
}

func (p *Pipeline) finish(s *model.RunSummary, status model.RunStatus, err error) {
	s.Status = status
	s.FinishedAt = p.now().UTC()
	if err != nil {
		s.Err = err.Error()
	}
}

// record stores the run summary. Failures are logged, not returned: the
// metrics themselves are already committed.
func (p *Pipeline) record(ctx context.Context, log zerolog.Logger, s *model.RunSummary) {
	if err := p.repo.RecordRun(ctx, s); err != nil {
		log.Error().Err(err).Msg("record run failed")
	}
}
