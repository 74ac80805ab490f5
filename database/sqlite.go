package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteStore persists analysis history and per-type usage metrics.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

const historySchema = `
CREATE TABLE IF NOT EXISTS analysis_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	filename TEXT NOT NULL,
	document_type TEXT NOT NULL,
	document_hash TEXT NOT NULL,
	analysis_data TEXT NOT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS user_metrics (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	document_type TEXT NOT NULL UNIQUE,
	analysis_count INTEGER DEFAULT 1,
	last_analyzed TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

// NewSQLiteStore opens (or creates) the history database at path and ensures
// the schema exists. WAL mode keeps concurrent reads cheap.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec(historySchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &SQLiteStore{db: db, path: path}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// RecordAnalysis appends a history row and bumps the per-type metric in one
// transaction. Returns the new history row id.
func (s *SQLiteStore) RecordAnalysis(ctx context.Context, rec *AnalysisRecord) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO analysis_history (run_id, filename, document_type, document_hash, analysis_data)
		VALUES (?, ?, ?, ?, ?)`,
		rec.RunID, rec.Filename, rec.DocumentType, rec.DocumentHash, rec.Analysis)
	if err != nil {
		return 0, fmt.Errorf("inserting history row: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO user_metrics (document_type, analysis_count, last_analyzed)
		VALUES (?, 1, CURRENT_TIMESTAMP)
		ON CONFLICT (document_type)
		DO UPDATE SET
			analysis_count = user_metrics.analysis_count + 1,
			last_analyzed = CURRENT_TIMESTAMP`,
		rec.DocumentType); err != nil {
		return 0, fmt.Errorf("updating metrics: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading insert id: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing: %w", err)
	}
	return id, nil
}

func (s *SQLiteStore) RecentAnalyses(ctx context.Context, limit int) ([]AnalysisRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_id, filename, document_type, document_hash, created_at
		FROM analysis_history
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var records []AnalysisRecord
	for rows.Next() {
		var rec AnalysisRecord
		if err := rows.Scan(&rec.ID, &rec.RunID, &rec.Filename, &rec.DocumentType,
			&rec.DocumentHash, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *SQLiteStore) Analytics(ctx context.Context) (*UsageAnalytics, error) {
	analytics := &UsageAnalytics{}

	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM analysis_history`).Scan(&analytics.TotalAnalyses); err != nil {
		return nil, fmt.Errorf("counting analyses: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM analysis_history
		WHERE created_at >= datetime('now', '-7 days')`).Scan(&analytics.RecentAnalyses7d); err != nil {
		return nil, fmt.Errorf("counting recent analyses: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT document_type, analysis_count, last_analyzed
		FROM user_metrics
		ORDER BY analysis_count DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying metrics: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m TypeMetric
		if err := rows.Scan(&m.DocumentType, &m.Count, &m.LastAnalyzed); err != nil {
			return nil, fmt.Errorf("scanning metric row: %w", err)
		}
		analytics.TypeDistribution = append(analytics.TypeDistribution, m)
	}
	return analytics, rows.Err()
}
