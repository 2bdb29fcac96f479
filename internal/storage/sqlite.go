package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS runs (
	id                     TEXT PRIMARY KEY,
	topic                  TEXT NOT NULL,
	status                 TEXT NOT NULL,
	report_path            TEXT NOT NULL DEFAULT '',
	json_path              TEXT NOT NULL DEFAULT '',
	total_articles         INTEGER NOT NULL,
	search_results_count   INTEGER NOT NULL,
	scraped_articles_count INTEGER NOT NULL,
	error                  TEXT NOT NULL DEFAULT '',
	started_at             INTEGER NOT NULL,
	finished_at            INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_finished ON runs(finished_at DESC);
`

// SQLiteStore keeps run history in a local SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) the database at path.
func NewSQLiteStore(path string, logger *slog.Logger) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		path:   path,
		logger: logger.With("component", "sqlite_history"),
	}, nil
}

func (s *SQLiteStore) Name() string { return "sqlite" }

func (s *SQLiteStore) Save(ctx context.Context, rec RunRecord) error {
	_, err := s.db.ExecContext(ctx, `
	INSERT OR REPLACE INTO runs (
		id, topic, status, report_path, json_path, total_articles,
		search_results_count, scraped_articles_count, error, started_at, finished_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.Topic,
		rec.Status,
		rec.ReportPath,
		rec.JSONPath,
		rec.TotalArticles,
		rec.SearchResultsCount,
		rec.ScrapedArticlesCount,
		rec.Error,
		rec.StartedAt.UnixNano(),
		rec.FinishedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("sqlite insert: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]RunRecord, error) {
	query := `SELECT id, topic, status, report_path, json_path, total_articles,
		search_results_count, scraped_articles_count, error, started_at, finished_at
		FROM runs ORDER BY finished_at DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite query: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var (
			rec               RunRecord
			started, finished int64
		)
		if err := rows.Scan(
			&rec.ID, &rec.Topic, &rec.Status, &rec.ReportPath, &rec.JSONPath, &rec.TotalArticles,
			&rec.SearchResultsCount, &rec.ScrapedArticlesCount, &rec.Error, &started, &finished,
		); err != nil {
			return nil, fmt.Errorf("sqlite scan: %w", err)
		}
		rec.StartedAt = time.Unix(0, started).UTC()
		rec.FinishedAt = time.Unix(0, finished).UTC()
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	s.logger.Info("sqlite history closing", "path", s.path)
	return s.db.Close()
}
