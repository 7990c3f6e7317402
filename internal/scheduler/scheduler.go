package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"RiskEngine/internal/logging"
	"RiskEngine/internal/model"
	"RiskEngine/internal/notifier"
	"RiskEngine/internal/report"
	"RiskEngine/internal/repository"
)

// ErrRunInProgress is returned by RunNow while another run is active.
var ErrRunInProgress = errors.New("a pipeline run is already in progress")

// Runner executes one pipeline pass.
type Runner interface {
	Run(ctx context.Context) (*model.RunSummary, error)
}

// Notifier delivers run reports to the operator.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
	SendPhoto(ctx context.Context, name string, img []byte, caption string) error
}

// Scheduler runs the pipeline on a cron schedule and answers chat commands.
type Scheduler struct {
	cron     *cron.Cron
	runner   Runner
	repo     repository.Repository
	notifier Notifier
	log      zerolog.Logger
	ctx      context.Context
	running  sync.Mutex
}

// NewScheduler creates a new Scheduler. ctx bounds every scheduled run.
func NewScheduler(ctx context.Context, runner Runner, repo repository.Repository, n Notifier, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		runner:   runner,
		repo:     repo,
		notifier: n,
		log:      logging.Component(log, "scheduler"),
		ctx:      ctx,
	}
}

// RegisterAll registers the pipeline run under a six-field cron spec
// (seconds first).
func (s *Scheduler) RegisterAll(runCron string) error {
	if _, err := s.cron.AddFunc(runCron, s.scheduledRun); err != nil {
		return fmt.Errorf("register pipeline task: %w", err)
	}
	s.log.Info().Str("cron", runCron).Msg("pipeline task registered")
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
}

func (s *Scheduler) scheduledRun() {
	if _, err := s.RunNow(s.ctx); errors.Is(err, ErrRunInProgress) {
		s.log.Warn().Msg("skipping scheduled run, previous run still active")
	}
}

// RunNow executes the pipeline immediately and sends the outcome. Runs never
// overlap: a call made while another run is active returns ErrRunInProgress.
func (s *Scheduler) RunNow(ctx context.Context) (*model.RunSummary, error) {
	if !s.running.TryLock() {
		return nil, ErrRunInProgress
	}
	defer s.running.Unlock()

	s.log.Info().Msg("running pipeline")
	summary, err := s.runner.Run(ctx)
	switch {
	case summary != nil:
		s.trySend(ctx, notifier.FormatRunSummary(summary))
	case err != nil:
		s.trySend(ctx, notifier.FormatFailure(err))
	}
	if err != nil {
		s.log.Error().Err(err).Msg("pipeline run failed")
	}
	return summary, err
}

// HandleCommand processes a chat command and returns a reply. Commands that
// deliver their own output return "".
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.FormatHelp()
	}
	name := strings.ToLower(fields[0])
	if i := strings.Index(name, "@"); i > 0 {
		name = name[:i]
	}
	var arg string
	if len(fields) > 1 {
		arg = strings.ToUpper(fields[1])
	}

	switch name {
	case "/run":
		if _, err := s.RunNow(ctx); errors.Is(err, ErrRunInProgress) {
			return "A run is already in progress."
		}
		return ""
	case "/status":
		run, err := s.repo.LastRun(ctx)
		if errors.Is(err, repository.ErrNoRuns) {
			return "No runs recorded yet."
		}
		if err != nil {
			s.log.Error().Err(err).Msg("load last run")
			return "Could not load the last run."
		}
		return notifier.FormatRunSummary(run)
	case "/latest":
		records, err := s.repo.LoadMetrics(ctx, arg)
		if err != nil {
			s.log.Error().Err(err).Msg("load metrics")
			return "Could not load metrics."
		}
		return notifier.FormatLatest(records)
	case "/chart":
		return s.sendChart(ctx, arg)
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) sendChart(ctx context.Context, ticker string) string {
	records, err := s.repo.LoadMetrics(ctx, ticker)
	if err != nil {
		s.log.Error().Err(err).Msg("load metrics")
		return "Could not load metrics."
	}
	title := "Cumulative return"
	if ticker != "" {
		title += " | " + ticker
	}
	img, err := report.RenderCumulativeChart(title, report.CumulativeByTicker(records))
	if errors.Is(err, report.ErrNoSeries) {
		return "No metrics stored yet."
	}
	if err != nil {
		s.log.Error().Err(err).Msg("render chart")
		return "Could not render the chart."
	}
	if err := s.notifier.SendPhoto(ctx, "cumulative.png", img, title); err != nil {
		s.log.Error().Err(err).Msg("send chart")
		return "Could not send the chart."
	}
	return ""
}

func (s *Scheduler) trySend(ctx context.Context, text string) {
	if err := s.notifier.SendWithRetry(ctx, text, 3); err != nil {
		s.log.Error().Err(err).Msg("send notification")
	}
}
