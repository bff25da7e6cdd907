package recon

import (
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/catalog-recon/internal/model"
	"github.com/sells-group/catalog-recon/internal/normalize"
)

// Candidate is a proposed fill for a missing source slot on a mismatched row.
type Candidate struct {
	Source  model.Source
	Record  *Record
	Score   float64
	Signals []string
}

// FinderConfig holds the candidate-search thresholds.
type FinderConfig struct {
	// MatchThreshold is the minimum full score a candidate must reach to
	// be suggested at all.
	MatchThreshold float64 `yaml:"match_threshold" mapstructure:"match_threshold"`

	// MaxPerSource caps how many candidates are kept per missing source.
	MaxPerSource int `yaml:"max_per_source" mapstructure:"max_per_source"`

	// Quick pre-filter bounds, applied before full scoring so large
	// catalogs stay cheap: a candidate must clear at least one of these
	// against at least one anchor or it is discarded unscored.
	QuickNameJaccard  float64 `yaml:"quick_name_jaccard" mapstructure:"quick_name_jaccard"`
	QuickPriceRelDiff float64 `yaml:"quick_price_rel_diff" mapstructure:"quick_price_rel_diff"`
}

// DefaultFinderConfig returns the production candidate-search thresholds.
func DefaultFinderConfig() FinderConfig {
	return FinderConfig{
		MatchThreshold:    0.45,
		MaxPerSource:      3,
		QuickNameJaccard:  0.20,
		QuickPriceRelDiff: 0.25,
	}
}

// Validate checks that a FinderConfig is internally consistent.
func (c FinderConfig) Validate() error {
	var errs []string
	if c.MatchThreshold <= 0 || c.MatchThreshold > 1 {
		errs = append(errs, "match_threshold must be in (0,1]")
	}
	if c.MaxPerSource < 1 {
		errs = append(errs, "max_per_source must be >= 1")
	}
	if c.QuickNameJaccard < 0 || c.QuickNameJaccard > 1 {
		errs = append(errs, "quick_name_jaccard must be in [0,1]")
	}
	if c.QuickPriceRelDiff <= 0 {
		errs = append(errs, "quick_price_rel_diff must be > 0")
	}
	if len(errs) > 0 {
		return eris.Errorf("recon: finder config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Finder searches the unclaimed record pools for plausible fills for a
// row's missing source slots.
type Finder struct {
	score ScoreConfig
	cfg   FinderConfig
	pools map[model.Source][]*Record
}

// NewFinder builds a finder over the full per-source record pools. Pools
// keep input order; claimed records are excluded at search time so the same
// finder stays valid across auto-merge.
func NewFinder(score ScoreConfig, cfg FinderConfig, pools map[model.Source][]*Record) *Finder {
	return &Finder{score: score, cfg: cfg, pools: pools}
}

// claimedSet collects the "{source}:{id}" refs of every primary settled in
// a fully matched row. Those records are never proposed as fills: poaching
// from a reconciled row would just trade one mismatch for another. Primaries
// of mismatched rows stay in the pool — they are the unmatched records the
// auto-merge links rows through.
func claimedSet(rows []*Row) map[string]struct{} {
	claimed := make(map[string]struct{})
	for _, row := range rows {
		if row.IsMismatch {
			continue
		}
		for _, p := range row.Primaries() {
			claimed[p.Ref()] = struct{}{}
		}
	}
	return claimed
}

// Populate recomputes PossibleMatches for every mismatched row with at
// least one empty slot. Fully matched rows get none.
func (f *Finder) Populate(rows []*Row) {
	claimed := claimedSet(rows)
	for _, row := range rows {
		row.Possible = f.ForRow(row, claimed)
	}
}

// ForRow returns candidate fills for one row: for each missing source, the
// unclaimed records of that source are pre-filtered, fully scored against
// every anchor keeping the best score, thresholded, ranked, and capped.
// Results concatenate across missing sources in canonical order.
func (f *Finder) ForRow(row *Row, claimed map[string]struct{}) []Candidate {
	if !row.IsMismatch {
		return nil
	}
	anchors := row.Primaries()
	if len(anchors) == 0 {
		return nil
	}

	var out []Candidate
	for _, src := range row.MissingSources() {
		kept := make([]Candidate, 0, f.cfg.MaxPerSource)
		for _, cand := range f.pools[src] {
			if _, taken := claimed[cand.Ref()]; taken {
				continue
			}
			if !f.quickFilter(anchors, cand) {
				continue
			}

			best, bestSignals := 0.0, []string(nil)
			for _, anchor := range anchors {
				s, sig := f.score.Score(anchor, cand)
				if s > best {
					best, bestSignals = s, sig
				}
			}
			if best < f.cfg.MatchThreshold {
				continue
			}
			kept = append(kept, Candidate{
				Source:  src,
				Record:  cand,
				Score:   best,
				Signals: bestSignals,
			})
		}

		sort.SliceStable(kept, func(i, j int) bool {
			if kept[i].Score != kept[j].Score {
				return kept[i].Score > kept[j].Score
			}
			if kept[i].Record.Name != kept[j].Record.Name {
				return kept[i].Record.Name < kept[j].Record.Name
			}
			return kept[i].Record.ID < kept[j].Record.ID
		})
		if len(kept) > f.cfg.MaxPerSource {
			kept = kept[:f.cfg.MaxPerSource]
		}
		out = append(out, kept...)
	}
	return out
}

// quickFilter is the cheap, necessarily-not-sufficient pre-check: the
// candidate passes if, against any anchor, it shares a SKU (exact or
// long-enough containment), shares an identifier token, has enough name
// token overlap, or sits within the loose price band.
func (f *Finder) quickFilter(anchors []*Record, cand *Record) bool {
	for _, anchor := range anchors {
		if skuQuickMatch(anchor.NormSKU, cand.NormSKU, f.score.MinPartialSKULen) {
			return true
		}
		if anchor.SharesIdentifier(cand) {
			return true
		}
		if normalize.Jaccard(anchor.NameTokens, cand.NameTokens) >= f.cfg.QuickNameJaccard {
			return true
		}
		if diff, ok := relPriceDiff(anchor, cand); ok && diff <= f.cfg.QuickPriceRelDiff {
			return true
		}
	}
	return false
}

func skuQuickMatch(a, b string, minLen int) bool {
	if a == "" || b == "" {
		return false
	}
	if a == b {
		return true
	}
	if len(a) < minLen || len(b) < minLen {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}
