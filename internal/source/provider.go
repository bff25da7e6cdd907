// Package source implements the three catalog collaborators the
// reconciliation engine consumes: a Salesforce-backed CRM catalog and two
// paginated REST catalogs (field service, inventory). Providers own all
// authentication, pagination, retry, and vendor field mapping; the engine
// only ever sees SourceRecord lists plus health.
package source

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/catalog-recon/internal/model"
	"github.com/sells-group/catalog-recon/internal/recon"
)

// Provider fetches one catalog's product listing.
type Provider interface {
	Source() model.Source
	Configured() bool
	Fetch(ctx context.Context) ([]model.SourceRecord, error)
}

// FetchAll fetches every catalog in parallel and never fails: a provider
// error or missing configuration becomes an empty record list with a carried
// health error, so reconciliation of the remaining sources proceeds.
func FetchAll(ctx context.Context, providers []Provider) map[model.Source]recon.SourceInput {
	results := make([]recon.SourceInput, len(providers))

	g, ctx := errgroup.WithContext(ctx)
	for i, p := range providers {
		g.Go(func() error {
			results[i] = fetchOne(ctx, p)
			return nil
		})
	}
	// Goroutines never return errors; failures are carried in health.
	_ = g.Wait()

	inputs := make(map[model.Source]recon.SourceInput, len(providers))
	for i, p := range providers {
		inputs[p.Source()] = results[i]
	}
	return inputs
}

func fetchOne(ctx context.Context, p Provider) recon.SourceInput {
	if !p.Configured() {
		return recon.SourceInput{
			Health: model.SourceHealth{Configured: false, Error: "source not configured"},
		}
	}

	records, err := p.Fetch(ctx)
	if err != nil {
		zap.L().Warn("source: fetch failed",
			zap.String("source", string(p.Source())),
			zap.Error(err),
		)
		return recon.SourceInput{
			Health: model.SourceHealth{Configured: true, Error: err.Error()},
		}
	}

	zap.L().Debug("source: fetched catalog",
		zap.String("source", string(p.Source())),
		zap.Int("count", len(records)),
	)
	return recon.SourceInput{
		Records: records,
		Health:  model.SourceHealth{Configured: true, Count: len(records)},
	}
}
