// Package store persists reconciliation reports so the dashboard can serve
// the latest run without re-fetching three catalogs.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/catalog-recon/internal/config"
	"github.com/sells-group/catalog-recon/internal/model"
)

// RunRecord summarizes one persisted reconciliation run.
type RunRecord struct {
	ID           string    `json:"id"`
	TotalRows    int       `json:"total_rows"`
	MismatchRows int       `json:"mismatch_rows"`
	CreatedAt    time.Time `json:"created_at"`
}

// Store defines the persistence interface for reconciliation reports.
type Store interface {
	SaveReport(ctx context.Context, report *model.Report) (string, error)
	GetReport(ctx context.Context, id string) (*model.Report, error)
	// LatestReport returns the most recent report, or nil when none exists.
	LatestReport(ctx context.Context) (*model.Report, error)
	ListRuns(ctx context.Context, limit int) ([]RunRecord, error)

	Migrate(ctx context.Context) error
	Close() error
}

// New creates a Store for the configured driver.
func New(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "", "sqlite":
		path := cfg.SQLitePath
		if path == "" {
			path = "catalog-recon.db"
		}
		return NewSQLite(path)
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
