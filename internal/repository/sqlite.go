package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"RiskEngine/internal/logging"
	"RiskEngine/internal/model"
)

// SQLiteRepository persists metrics to a SQLite database.
type SQLiteRepository struct {
	db  *sql.DB
	mu  sync.Mutex
	log zerolog.Logger
}

// NewSQLiteRepository opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRepository(dbPath string, log zerolog.Logger) (*SQLiteRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets report readers run while a pipeline run writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRepository{db: db, log: logging.Component(log, "sqlite")}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.log.Info().Str("path", dbPath).Msg("sqlite repository opened")
	return r, nil
}

func (r *SQLiteRepository) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS market_data (
			date           DATE NOT NULL,
			ticker         TEXT NOT NULL,
			close          REAL,
			daily_return   REAL,
			volatility_21d REAL,
			sharpe_ratio   REAL,
			beta_21d       REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_market_data_ticker_date ON market_data(ticker, date)`,

		`CREATE TABLE IF NOT EXISTS pipeline_runs (
			run_id           TEXT PRIMARY KEY,
			started_at       INTEGER NOT NULL,
			finished_at      INTEGER,
			benchmark        TEXT,
			tickers          TEXT,
			processed        TEXT,
			skipped          TEXT,
			row_count        INTEGER,
			undefined_ratios INTEGER,
			status           TEXT,
			error            TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_pipeline_runs_started ON pipeline_runs(started_at)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRepository) SaveMetrics(ctx context.Context, records []model.MetricRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM market_data`); err != nil {
		return fmt.Errorf("clear market_data: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO market_data
		(date, ticker, close, daily_return, volatility_21d, sharpe_ratio, beta_21d)
		VALUES (?,?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.ExecContext(ctx,
			model.DateKey(rec.Date), rec.Ticker, finite(rec.Close), finite(rec.DailyReturn),
			finite(rec.Volatility21d), finite(rec.SharpeRatio), finite(rec.Beta21d),
		); err != nil {
			return fmt.Errorf("insert %s %s: %w", rec.Ticker, model.DateKey(rec.Date), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	r.log.Info().Int("rows", len(records)).Msg("market_data replaced")
	return nil
}

func (r *SQLiteRepository) RecordRun(ctx context.Context, s *model.RunSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var finished any
	if !s.FinishedAt.IsZero() {
		finished = s.FinishedAt.UnixMilli()
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO pipeline_runs
		(run_id, started_at, finished_at, benchmark, tickers, processed, skipped,
		 row_count, undefined_ratios, status, error)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		s.RunID, s.StartedAt.UnixMilli(), finished, s.Benchmark,
		joinList(s.Tickers), joinList(s.Processed), encodeSkipped(s.Skipped),
		s.Rows, s.UndefinedRatios, string(s.Status), s.Err,
	)
	if err != nil {
		return fmt.Errorf("record run %s: %w", s.RunID, err)
	}
	return nil
}

func (r *SQLiteRepository) LoadMetrics(ctx context.Context, ticker string) ([]model.MetricRecord, error) {
	query := `SELECT date, ticker, close, daily_return, volatility_21d, sharpe_ratio, beta_21d
		FROM market_data`
	var args []any
	if ticker != "" {
		query += ` WHERE ticker = ?`
		args = append(args, ticker)
	}
	query += ` ORDER BY ticker, date`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query market_data: %w", err)
	}
	defer rows.Close()

	var out []model.MetricRecord
	for rows.Next() {
		var (
			date                           any
			rec                            model.MetricRecord
			closeV, ret, vol, sharpe, beta sql.NullFloat64
		)
		if err := rows.Scan(&date, &rec.Ticker, &closeV, &ret, &vol, &sharpe, &beta); err != nil {
			return nil, fmt.Errorf("scan market_data: %w", err)
		}
		d, err := scanDate(date)
		if err != nil {
			return nil, err
		}
		rec.Date = d
		rec.Close = orNaN(closeV)
		rec.DailyReturn = orNaN(ret)
		rec.Volatility21d = orNaN(vol)
		rec.SharpeRatio = orNaN(sharpe)
		rec.Beta21d = orNaN(beta)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// scanDate accepts the driver's time.Time for DATE columns as well as the
// raw text form.
func scanDate(v any) (time.Time, error) {
	switch d := v.(type) {
	case time.Time:
		return model.Day(d), nil
	case string:
		return parseDateText(d)
	case []byte:
		return parseDateText(string(d))
	}
	return time.Time{}, fmt.Errorf("unexpected date value %T", v)
}

func parseDateText(s string) (time.Time, error) {
	if len(s) >= len(model.DateLayout) {
		if d, err := time.Parse(model.DateLayout, s[:len(model.DateLayout)]); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse date %q", s)
}

func (r *SQLiteRepository) LastRun(ctx context.Context) (*model.RunSummary, error) {
	row := r.db.QueryRowContext(ctx, `SELECT run_id, started_at, finished_at, benchmark,
		tickers, processed, skipped, row_count, undefined_ratios, status, error
		FROM pipeline_runs ORDER BY started_at DESC, run_id DESC LIMIT 1`)

	var (
		s                           model.RunSummary
		started                     int64
		finished                    sql.NullInt64
		tickers, processed, skipped string
		status                      string
	)
	err := row.Scan(&s.RunID, &started, &finished, &s.Benchmark, &tickers, &processed,
		&skipped, &s.Rows, &s.UndefinedRatios, &status, &s.Err)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoRuns
	}
	if err != nil {
		return nil, fmt.Errorf("query last run: %w", err)
	}

	s.StartedAt = time.UnixMilli(started).UTC()
	if finished.Valid {
		s.FinishedAt = time.UnixMilli(finished.Int64).UTC()
	}
	s.Tickers = splitList(tickers)
	s.Processed = splitList(processed)
	s.Skipped = decodeSkipped(skipped)
	s.Status = model.RunStatus(status)
	return &s, nil
}

func (r *SQLiteRepository) Close() error {
	r.log.Info().Msg("closing sqlite repository")
	return r.db.Close()
}
