package recon

import (
	"go.uber.org/zap"

	"github.com/sells-group/catalog-recon/internal/model"
)

// MergeConfig holds the auto-merge gate.
type MergeConfig struct {
	// MinScore is the minimum candidate score for an automatic merge.
	// Suggestion-level candidates below it are surfaced but never merged.
	MinScore float64 `yaml:"min_score" mapstructure:"min_score"`
}

// DefaultMergeConfig returns the production auto-merge gate.
func DefaultMergeConfig() MergeConfig {
	return MergeConfig{MinScore: 0.78}
}

// Merger folds high-confidence candidate matches back into rows so two rows
// holding complementary pieces of the same product become one row instead of
// two partial mismatches. The algorithm is greedy: scan order, first match
// wins, accepted merges are never undone.
type Merger struct {
	finder *Finder
	cfg    MergeConfig
}

// NewMerger builds a merger sharing the candidate finder's pools so a merged
// row's suggestions can be recomputed in place.
func NewMerger(finder *Finder, cfg MergeConfig) *Merger {
	return &Merger{finder: finder, cfg: cfg}
}

// Run applies auto-merge over the row list and returns the surviving rows.
// Rows are replaced, never mutated in place: index lookups taken before a
// merge stay valid for every row not involved in it.
func (m *Merger) Run(rows []*Row) []*Row {
	// Ref -> row index for every primary currently present in any row.
	index := make(map[string]int)
	for i, row := range rows {
		for _, p := range row.Primaries() {
			index[p.Ref()] = i
		}
	}
	absorbed := make([]bool, len(rows))

	for i := range rows {
		if absorbed[i] {
			continue
		}
		// Re-scan the same row after each accepted merge: another slot
		// may have become fillable.
		for m.mergeOnce(rows, index, absorbed, i) {
		}
	}

	return liveRows(rows, absorbed)
}

func liveRows(rows []*Row, absorbed []bool) []*Row {
	out := make([]*Row, 0, len(rows))
	for i, row := range rows {
		if !absorbed[i] {
			out = append(out, row)
		}
	}
	return out
}

// mergeOnce attempts a single merge for rows[i] and reports whether one was
// accepted. Rejections (missing target, self, absorbed, conflict) are
// silently skipped per the engine's no-fatal-invariants rule.
func (m *Merger) mergeOnce(rows []*Row, index map[string]int, absorbed []bool, i int) bool {
	row := rows[i]
	if !row.IsMismatch {
		return false
	}

	for _, src := range row.MissingSources() {
		cand, ok := topCandidate(row, src)
		if !ok || !m.highConfidence(cand) {
			continue
		}

		ti, ok := index[cand.Record.Ref()]
		if !ok || ti == i || absorbed[ti] {
			continue
		}
		target := rows[ti]

		if conflicts(row, target) {
			zap.L().Debug("recon: merge rejected on source conflict",
				zap.String("key", row.Key),
				zap.String("target_key", target.Key),
			)
			continue
		}

		combined := combineRows(row, target)
		evaluateReasons(combined)

		rows[i] = combined
		absorbed[ti] = true
		for _, p := range combined.Primaries() {
			index[p.Ref()] = i
		}

		// Suggestions for the merged row are recomputed against the
		// post-merge claimed set: completing a row settles its records.
		combined.Possible = m.finder.ForRow(combined, claimedSet(liveRows(rows, absorbed)))

		zap.L().Debug("recon: merged rows",
			zap.String("key", combined.Key),
			zap.String("absorbed_key", target.Key),
			zap.Float64("score", cand.Score),
		)
		return true
	}
	return false
}

// topCandidate returns the best-scoring suggestion for one missing slot.
// Possible is already sorted per source, so the first hit is the top one.
func topCandidate(row *Row, src model.Source) (Candidate, bool) {
	for _, c := range row.Possible {
		if c.Source == src {
			return c, true
		}
	}
	return Candidate{}, false
}

// highConfidence applies the stricter auto-merge bar: the score must clear
// the gate and the match must rest on a hard signal (exact SKU or shared
// identifier), not on fuzzy name or price similarity alone.
func (m *Merger) highConfidence(c Candidate) bool {
	if c.Score < m.cfg.MinScore {
		return false
	}
	for _, sig := range c.Signals {
		if sig == SignalSKUExact || sig == SignalIdentifierMatch {
			return true
		}
	}
	return false
}

// conflicts reports whether two rows both hold a primary for any shared
// source with different records. Such a merge would require guessing which
// record is correct, so it is rejected.
func conflicts(a, b *Row) bool {
	for _, src := range model.Sources {
		pa, pb := a.Primary(src), b.Primary(src)
		if pa != nil && pb != nil && pa.Ref() != pb.Ref() {
			return true
		}
	}
	return false
}

// combineRows builds the merged row: per source the current row's records
// win when present, the target's fill the gaps. The current row's key is
// kept unless it is a fallback key and the target's is not.
func combineRows(cur, target *Row) *Row {
	key := cur.Key
	if isFallbackKey(cur.Key) && !isFallbackKey(target.Key) {
		key = target.Key
	}

	combined := &Row{
		Key:     key,
		records: make(map[model.Source][]*Record, len(model.Sources)),
	}
	for _, src := range model.Sources {
		if recs := cur.records[src]; len(recs) > 0 {
			combined.records[src] = recs
		} else if recs := target.records[src]; len(recs) > 0 {
			combined.records[src] = recs
		}
	}
	return combined
}
