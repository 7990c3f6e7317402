package repository

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"RiskEngine/internal/logging"
	"RiskEngine/internal/model"
)

// PostgresRepository persists metrics to PostgreSQL through a pgx pool.
type PostgresRepository struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// NewPostgresRepository connects, pings and migrates the schema.
func NewPostgresRepository(ctx context.Context, dsn string, log zerolog.Logger) (*PostgresRepository, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	r := &PostgresRepository{pool: pool, log: logging.Component(log, "postgres")}
	if err := r.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.log.Info().Str("database", config.ConnConfig.Database).Msg("postgres repository opened")
	return r, nil
}

func (r *PostgresRepository) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS market_data (
			date           DATE NOT NULL,
			ticker         TEXT NOT NULL,
			close          DOUBLE PRECISION,
			daily_return   DOUBLE PRECISION,
			volatility_21d DOUBLE PRECISION,
			sharpe_ratio   DOUBLE PRECISION,
			beta_21d       DOUBLE PRECISION
		)`,
		`CREATE INDEX IF NOT EXISTS idx_market_data_ticker_date ON market_data(ticker, date)`,

		`CREATE TABLE IF NOT EXISTS pipeline_runs (
			run_id           TEXT PRIMARY KEY,
			started_at       TIMESTAMPTZ NOT NULL,
			finished_at      TIMESTAMPTZ,
			benchmark        TEXT,
			tickers          TEXT[],
			processed        TEXT[],
			skipped          JSONB,
			row_count        INTEGER,
			undefined_ratios INTEGER,
			status           TEXT,
			error            TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_pipeline_runs_started ON pipeline_runs(started_at)`,
	}

	for _, s := range stmts {
		if _, err := r.pool.Exec(ctx, s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

var marketDataColumns = []string{
	"date", "ticker", "close", "daily_return", "volatility_21d", "sharpe_ratio", "beta_21d",
}

// SaveMetrics truncates market_data and bulk-loads records with COPY.
func (r *PostgresRepository) SaveMetrics(ctx context.Context, records []model.MetricRecord) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM market_data`); err != nil {
		return fmt.Errorf("clear market_data: %w", err)
	}

	n, err := tx.CopyFrom(ctx, pgx.Identifier{"market_data"}, marketDataColumns,
		pgx.CopyFromSlice(len(records), func(i int) ([]any, error) {
			rec := records[i]
			return []any{
				rec.Date, rec.Ticker, finite(rec.Close), finite(rec.DailyReturn),
				finite(rec.Volatility21d), finite(rec.SharpeRatio), finite(rec.Beta21d),
			}, nil
		}))
	if err != nil {
		return fmt.Errorf("copy market_data: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	r.log.Info().Int64("rows", n).Msg("market_data replaced")
	return nil
}

func (r *PostgresRepository) RecordRun(ctx context.Context, s *model.RunSummary) error {
	var finished *time.Time
	if !s.FinishedAt.IsZero() {
		finished = &s.FinishedAt
	}
	_, err := r.pool.Exec(ctx, `INSERT INTO pipeline_runs
		(run_id, started_at, finished_at, benchmark, tickers, processed, skipped,
		 row_count, undefined_ratios, status, error)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		s.RunID, s.StartedAt, finished, s.Benchmark, nonNil(s.Tickers), nonNil(s.Processed),
		encodeSkipped(s.Skipped), s.Rows, s.UndefinedRatios, string(s.Status), s.Err,
	)
	if err != nil {
		return fmt.Errorf("record run %s: %w", s.RunID, err)
	}
	return nil
}

func (r *PostgresRepository) LoadMetrics(ctx context.Context, ticker string) ([]model.MetricRecord, error) {
	query := `SELECT date, ticker, close, daily_return, volatility_21d, sharpe_ratio, beta_21d
		FROM market_data`
	var args []any
	if ticker != "" {
		query += ` WHERE ticker = $1`
		args = append(args, ticker)
	}
	query += ` ORDER BY ticker, date`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query market_data: %w", err)
	}
	defer rows.Close()

	var out []model.MetricRecord
	for rows.Next() {
		var (
			rec                            model.MetricRecord
			closeV, ret, vol, sharpe, beta *float64
		)
		if err := rows.Scan(&rec.Date, &rec.Ticker, &closeV, &ret, &vol, &sharpe, &beta); err != nil {
			return nil, fmt.Errorf("scan market_data: %w", err)
		}
		rec.Date = model.Day(rec.Date)
		rec.Close = deref(closeV)
		rec.DailyReturn = deref(ret)
		rec.Volatility21d = deref(vol)
		rec.SharpeRatio = deref(sharpe)
		rec.Beta21d = deref(beta)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) LastRun(ctx context.Context) (*model.RunSummary, error) {
	var (
		s        model.RunSummary
		finished *time.Time
		skipped  string
		status   string
		errText  *string
	)
	err := r.pool.QueryRow(ctx, `SELECT run_id, started_at, finished_at, benchmark,
		tickers, processed, skipped::text, row_count, undefined_ratios, status, error
		FROM pipeline_runs ORDER BY started_at DESC, run_id DESC LIMIT 1`).
		Scan(&s.RunID, &s.StartedAt, &finished, &s.Benchmark, &s.Tickers, &s.Processed,
			&skipped, &s.Rows, &s.UndefinedRatios, &status, &errText)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoRuns
	}
	if err != nil {
		return nil, fmt.Errorf("query last run: %w", err)
	}

	s.StartedAt = s.StartedAt.UTC()
	if finished != nil {
		s.FinishedAt = finished.UTC()
	}
	if errText != nil {
		s.Err = *errText
	}
	if len(s.Tickers) == 0 {
		s.Tickers = nil
	}
	if len(s.Processed) == 0 {
		s.Processed = nil
	}
	s.Skipped = decodeSkipped(skipped)
	s.Status = model.RunStatus(status)
	return &s, nil
}

func (r *PostgresRepository) Close() error {
	r.log.Info().Msg("closing postgres repository")
	r.pool.Close()
	return nil
}

func deref(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

func nonNil(xs []string) []string {
	if xs == nil {
		return []string{}
	}
	return xs
}
