package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/ambiclean/apenso/internal/core/domain"
	"github.com/ambiclean/apenso/internal/infrastructure/resilience"
)

const schemaLockID = int64(2026101901)

// ReportRunRepository keeps the history of generated reports.
type ReportRunRepository struct {
	db       *sql.DB
	executor *resilience.Executor
}

// NewReportRunRepository accepts a nil executor; writes then run once.
func NewReportRunRepository(db *sql.DB, executor *resilience.Executor) *ReportRunRepository {
	return &ReportRunRepository{db: db, executor: executor}
}

func OpenDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, domain.WrapError(domain.ErrTemporary, "db ping", err)
	}
	return db, nil
}

func (r *ReportRunRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across concurrent CLI invocations.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, schemaLockID); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS report_runs (
	id TEXT PRIMARY KEY,
	template_path TEXT NOT NULL,
	visit_path TEXT NOT NULL,
	worksheet_path TEXT NOT NULL,
	output_path TEXT NOT NULL,
	summary_path TEXT,
	technical_items INTEGER NOT NULL,
	cost_items INTEGER NOT NULL,
	matched_items INTEGER NOT NULL,
	total_amount NUMERIC(14,2) NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_report_runs_created_at ON report_runs(created_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *ReportRunRepository) SaveRun(ctx context.Context, run *domain.ReportRun) error {
	call := func(ctx context.Context) error {
		return r.insertRun(ctx, run)
	}

	var err error
	if r.executor != nil {
		err = r.executor.Execute(ctx, "postgres.save_run", call, classifyDBError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return wrapTemporaryIfNeeded(err)
	}
	return nil
}

func (r *ReportRunRepository) insertRun(ctx context.Context, run *domain.ReportRun) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO report_runs (
	id, template_path, visit_path, worksheet_path, output_path, summary_path,
	technical_items, cost_items, matched_items, total_amount, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
`,
		run.ID, run.TemplatePath, run.VisitPath, run.WorksheetPath, run.OutputPath, nullString(run.SummaryPath),
		run.TechnicalItems, run.CostItems, run.MatchedItems, run.TotalAmount, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert report run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs first.
func (r *ReportRunRepository) ListRuns(ctx context.Context, limit int) ([]domain.ReportRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, template_path, visit_path, worksheet_path, output_path, summary_path,
	technical_items, cost_items, matched_items, total_amount, created_at
FROM report_runs
ORDER BY created_at DESC
LIMIT $1
`, limit)
	if err != nil {
		return nil, fmt.Errorf("query report runs: %w", err)
	}
	defer rows.Close()

	runs := make([]domain.ReportRun, 0)
	for rows.Next() {
		var run domain.ReportRun
		var summary sql.NullString
		if err := rows.Scan(
			&run.ID, &run.TemplatePath, &run.VisitPath, &run.WorksheetPath, &run.OutputPath, &summary,
			&run.TechnicalItems, &run.CostItems, &run.MatchedItems, &run.TotalAmount, &run.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan report run: %w", err)
		}
		run.SummaryPath = summary.String
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate report runs: %w", err)
	}
	return runs, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
