package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"suppqc/domain/core"
	"suppqc/domain/pvalue"
	"suppqc/ports"
)

const schema = `CREATE TABLE IF NOT EXISTS pvalue_summaries (
	run_id     TEXT NOT NULL,
	seq        INT  NOT NULL,
	table_id   TEXT NOT NULL,
	record     JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (run_id, seq)
)`

// summaryRepository implements the SummaryRepository interface
type summaryRepository struct {
	db *sqlx.DB
}

// NewSummaryRepository creates a new summary repository
func NewSummaryRepository(db *sqlx.DB) ports.SummaryRepository {
	return &summaryRepository{db: db}
}

// Connect opens a pooled connection and ensures the summary schema exists.
func Connect(ctx context.Context, databaseURL string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure summary schema: %w", err)
	}
	return db, nil
}

// SaveRun persists all summaries of a run in input order.
func (r *summaryRepository) SaveRun(ctx context.Context, runID core.RunID, summaries []pvalue.TableSummary) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO pvalue_summaries (run_id, seq, table_id, record) VALUES ($1, $2, $3, $4)`
	for i, s := range summaries {
		recordJSON, err := json.Marshal(s.Record)
		if err != nil {
			return fmt.Errorf("failed to marshal record for %s: %w", s.ID, err)
		}
		if _, err := tx.ExecContext(ctx, query, runID.String(), i, s.ID, recordJSON); err != nil {
			return fmt.Errorf("failed to insert summary for %s: %w", s.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit summaries: %w", err)
	}
	return nil
}

// ListRun retrieves the summaries of a run in their original order.
func (r *summaryRepository) ListRun(ctx context.Context, runID core.RunID) ([]pvalue.TableSummary, error) {
	query := `SELECT table_id, record FROM pvalue_summaries WHERE run_id = $1 ORDER BY seq`
	rows, err := r.db.QueryContext(ctx, query, runID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list summaries: %w", err)
	}
	defer rows.Close()

	var out []pvalue.TableSummary
	for rows.Next() {
		var s pvalue.TableSummary
		var recordJSON []byte
		if err := rows.Scan(&s.ID, &recordJSON); err != nil {
			return nil, fmt.Errorf("failed to scan summary: %w", err)
		}
		if err := json.Unmarshal(recordJSON, &s.Record); err != nil {
			return nil, fmt.Errorf("failed to unmarshal record for %s: %w", s.ID, err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
