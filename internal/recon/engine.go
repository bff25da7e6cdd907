package recon

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/catalog-recon/internal/model"
)

// Config bundles the engine's read-only tuning. Nothing mutates it after
// Validate; a run sees one frozen set of weights and thresholds.
type Config struct {
	Score  ScoreConfig  `yaml:"score" mapstructure:"score"`
	Finder FinderConfig `yaml:"finder" mapstructure:"finder"`
	Merge  MergeConfig  `yaml:"merge" mapstructure:"merge"`
}

// DefaultConfig returns the production engine tuning.
func DefaultConfig() Config {
	return Config{
		Score:  DefaultScoreConfig(),
		Finder: DefaultFinderConfig(),
		Merge:  DefaultMergeConfig(),
	}
}

// Validate checks the full engine configuration.
func (c Config) Validate() error {
	if err := c.Score.Validate(); err != nil {
		return err
	}
	return c.Finder.Validate()
}

// SourceInput is one catalog's contribution to a run: the fetched records
// plus the collaborator's health report. A failed or unconfigured source
// arrives as an empty record list with a descriptive health error; it never
// aborts reconciliation of the remaining sources.
type SourceInput struct {
	Records []model.SourceRecord
	Health  model.SourceHealth
}

// Engine is the reconciliation orchestrator. It is pure computation over
// already-fetched inputs: single-threaded, no I/O, and deterministic —
// identical input lists produce byte-identical reports.
type Engine struct {
	cfg Config
	now func() time.Time
}

// NewEngine creates a reconciliation engine.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg, now: time.Now}
}

// WithNow sets a fixed clock for testing.
func (e *Engine) WithNow(t time.Time) *Engine {
	e.now = func() time.Time { return t }
	return e
}

// Reconcile runs the full pipeline: normalize, group into rows, find
// candidates, auto-merge, re-find candidates on the merged rows, sort, and
// assemble the report. Input-quality problems degrade rather than fail;
// Reconcile never returns an error.
func (e *Engine) Reconcile(inputs map[model.Source]SourceInput) *model.Report {
	var warnings []string
	health := make(map[model.Source]model.SourceHealth, len(model.Sources))
	sourceCounts := make(map[model.Source]int, len(model.Sources))
	pools := make(map[model.Source][]*Record, len(model.Sources))
	var all []*Record

	for _, src := range model.Sources {
		in := inputs[src]
		health[src] = in.Health
		sourceCounts[src] = len(in.Records)

		if in.Health.Error != "" {
			warnings = append(warnings, src.Label()+": "+in.Health.Error)
		}

		dropped := 0
		for _, raw := range in.Records {
			raw.Source = src
			rec := NewRecord(raw)
			if !rec.Keyable() {
				dropped++
				continue
			}
			pools[src] = append(pools[src], rec)
			all = append(all, rec)
		}
		if dropped > 0 {
			warnings = append(warnings, fmt.Sprintf("%s: dropped %d records with no id, name, or SKU", src.Label(), dropped))
		}
	}

	rows := BuildRows(all)

	finder := NewFinder(e.cfg.Score, e.cfg.Finder, pools)
	finder.Populate(rows)

	rows = NewMerger(finder, e.cfg.Merge).Run(rows)

	// Second candidate pass: merges change which slots are empty and which
	// records are claimed, so suggestions are recomputed from the merged
	// state before the report is assembled.
	finder.Populate(rows)

	sortRows(rows)

	report := e.assemble(rows, health, sourceCounts, warnings)
	zap.L().Info("recon: reconciliation complete",
		zap.Int("rows", report.Summary.TotalRows),
		zap.Int("mismatches", report.Summary.MismatchRows),
		zap.Int("warnings", len(report.Warnings)),
	)
	return report
}

func (e *Engine) assemble(rows []*Row, health map[model.Source]model.SourceHealth, sourceCounts map[model.Source]int, warnings []string) *model.Report {
	out := make([]model.ComparisonRow, 0, len(rows))
	missing := make(map[model.Source]int, len(model.Sources))
	for _, src := range model.Sources {
		missing[src] = 0
	}

	mismatches := 0
	for _, row := range rows {
		mr := model.ComparisonRow{
			Key:        row.Key,
			Products:   make(map[model.Source]*model.SourceRecord, len(model.Sources)),
			Reasons:    row.Reasons,
			IsMismatch: row.IsMismatch,
		}
		for _, src := range model.Sources {
			if p := row.Primary(src); p != nil {
				rec := p.SourceRecord
				mr.Products[src] = &rec
			} else {
				missing[src]++
			}
		}
		for _, c := range row.Possible {
			rec := c.Record.SourceRecord
			mr.PossibleMatches = append(mr.PossibleMatches, model.CandidateMatch{
				Source:  c.Source,
				Product: &rec,
				Score:   c.Score,
				Signals: c.Signals,
			})
		}
		if row.IsMismatch {
			mismatches++
		}
		out = append(out, mr)
	}

	return &model.Report{
		Rows: out,
		Summary: model.Summary{
			TotalRows:        len(out),
			MismatchRows:     mismatches,
			FullyMatchedRows: len(out) - mismatches,
			MissingBySource:  missing,
			SourceCounts:     sourceCounts,
		},
		Health:      health,
		Warnings:    warnings,
		LastUpdated: e.now().UTC(),
	}
}
