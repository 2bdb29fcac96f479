// Package storage keeps an optional history of finished runs.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/IshaanNene/knowledge-aggregator/internal/config"
	"github.com/IshaanNene/knowledge-aggregator/internal/types"
)

// RunRecord is one line of run history.
type RunRecord struct {
	ID                   string    `json:"id"                     bson:"_id"`
	Topic                string    `json:"topic"                  bson:"topic"`
	Status               string    `json:"status"                 bson:"status"`
	ReportPath           string    `json:"report_path,omitempty"  bson:"report_path,omitempty"`
	JSONPath             string    `json:"json_path,omitempty"    bson:"json_path,omitempty"`
	TotalArticles        int       `json:"total_articles"         bson:"total_articles"`
	SearchResultsCount   int       `json:"search_results_count"   bson:"search_results_count"`
	ScrapedArticlesCount int       `json:"scraped_articles_count" bson:"scraped_articles_count"`
	Error                string    `json:"error,omitempty"        bson:"error,omitempty"`
	StartedAt            time.Time `json:"started_at"             bson:"started_at"`
	FinishedAt           time.Time `json:"finished_at"            bson:"finished_at"`
}

// RecordFromResult converts a finished run into a history record.
func RecordFromResult(r *types.RunResult) RunRecord {
	return RunRecord{
		ID:                   r.ID,
		Topic:                r.Topic,
		Status:               r.Status,
		ReportPath:           r.ReportPath,
		JSONPath:             r.JSONPath,
		TotalArticles:        r.TotalArticles,
		SearchResultsCount:   r.SearchResultsCount,
		ScrapedArticlesCount: r.ScrapedArticlesCount,
		Error:                r.Error,
		StartedAt:            r.StartedAt,
		FinishedAt:           r.FinishedAt,
	}
}

// RunStore is the interface for all history backends.
type RunStore interface {
	// Save appends one record.
	Save(ctx context.Context, rec RunRecord) error

	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, limit int) ([]RunRecord, error)

	// Close flushes pending writes and releases resources.
	Close() error

	// Name returns the backend identifier.
	Name() string
}

// Open creates the backend(s) named by history.type. Several comma-separated
// types fan out through a MultiStore.
func Open(cfg *config.Config, logger *slog.Logger) (RunStore, error) {
	kinds := config.HistoryTypes(cfg.History.Type)

	var stores []RunStore
	for _, kind := range kinds {
		s, err := open(kind, cfg, logger)
		if err != nil {
			for _, opened := range stores {
				_ = opened.Close()
			}
			return nil, err
		}
		if s != nil {
			stores = append(stores, s)
		}
	}

	switch len(stores) {
	case 0:
		return Nop{}, nil
	case 1:
		return stores[0], nil
	default:
		return NewMultiStore(stores, logger), nil
	}
}

func open(kind string, cfg *config.Config, logger *slog.Logger) (RunStore, error) {
	switch kind {
	case "none":
		return nil, nil
	case "jsonl":
		return NewJSONLStore(filepath.Join(cfg.Output.Dir, "history.jsonl"), logger)
	case "sqlite":
		path := cfg.History.Path
		if path == "" {
			path = DefaultSQLitePath()
		}
		return NewSQLiteStore(path, logger)
	case "mongodb":
		return NewMongoStore(cfg.History.MongoURI, cfg.History.Database, cfg.History.Collection, logger)
	default:
		return nil, fmt.Errorf("unsupported history type: %s", kind)
	}
}

// DefaultSQLitePath is the history database under the XDG data home.
func DefaultSQLitePath() string {
	return filepath.Join(xdg.DataHome, "knowledge-aggregator", "history.db")
}

// Nop discards every record.
type Nop struct{}

func (Nop) Name() string { return "none" }
func (Nop) Save(context.Context, RunRecord) error { return nil }
func (Nop) Recent(context.Context, int) ([]RunRecord, error) { return nil, nil }
func (Nop) Close() error { return nil }
