package recon

import (
	"fmt"
	"sort"

	"github.com/sells-group/catalog-recon/internal/model"
)

// Row groups the records that share one canonical key, with at most one
// primary record per source. Rows are never mutated after construction by
// code outside this package; auto-merge builds replacement rows instead.
type Row struct {
	Key string

	// records holds every group member per source, in input order. The
	// first record per source is that source's primary; extras are the
	// duplicate condition.
	records map[model.Source][]*Record

	Reasons    []string
	IsMismatch bool

	// Possible is populated by the candidate finder for mismatched rows
	// with empty slots, and reset whenever the row is rebuilt by a merge.
	Possible []Candidate
}

// Primary returns the row's chosen record for a source, or nil.
func (r *Row) Primary(src model.Source) *Record {
	recs := r.records[src]
	if len(recs) == 0 {
		return nil
	}
	return recs[0]
}

// Primaries returns the present primaries in canonical source order.
func (r *Row) Primaries() []*Record {
	out := make([]*Record, 0, len(model.Sources))
	for _, src := range model.Sources {
		if p := r.Primary(src); p != nil {
			out = append(out, p)
		}
	}
	return out
}

// MissingSources returns the sources with no primary, in canonical order.
func (r *Row) MissingSources() []model.Source {
	var out []model.Source
	for _, src := range model.Sources {
		if r.Primary(src) == nil {
			out = append(out, src)
		}
	}
	return out
}

// BuildRows groups records by canonical key. Row order follows first
// appearance of each key in the input, which keeps the pre-sort merge scan
// deterministic for identical inputs.
func BuildRows(records []*Record) []*Row {
	byKey := make(map[string]*Row)
	var rows []*Row

	for _, rec := range records {
		row, ok := byKey[rec.Key]
		if !ok {
			row = &Row{
				Key:     rec.Key,
				records: make(map[model.Source][]*Record, len(model.Sources)),
			}
			byKey[rec.Key] = row
			rows = append(rows, row)
		}
		row.records[rec.Source] = append(row.records[rec.Source], rec)
	}

	for _, row := range rows {
		evaluateReasons(row)
	}
	return rows
}

// evaluateReasons recomputes a row's discrepancy reasons from scratch. Each
// condition is independent and additive; IsMismatch is always derived from
// the reason list, never set on its own.
func evaluateReasons(row *Row) {
	var reasons []string

	for _, src := range model.Sources {
		if row.Primary(src) == nil {
			reasons = append(reasons, "Missing in "+src.Label())
		}
	}

	for _, src := range model.Sources {
		if n := len(row.records[src]); n > 1 {
			reasons = append(reasons, fmt.Sprintf("Duplicate %s entries (%d)", src.Label(), n))
		}
	}

	primaries := row.Primaries()

	if namesDisagree(primaries) && !shareCommonSKU(primaries) {
		reasons = append(reasons, "Product name mismatch")
	}

	if distinctSKUs(primaries) > 1 {
		reasons = append(reasons, "SKU mismatch")
	}

	if pricesDisagree(primaries) {
		reasons = append(reasons, "Price mismatch")
	}

	row.Reasons = reasons
	row.IsMismatch = len(reasons) > 0
}

func namesDisagree(primaries []*Record) bool {
	var first string
	seen := false
	for _, p := range primaries {
		if !seen {
			first = p.NormName
			seen = true
			continue
		}
		if p.NormName != first {
			return true
		}
	}
	return false
}

// shareCommonSKU reports whether every present primary carries the same
// non-empty normalized SKU. A shared SKU overrides a name disagreement.
func shareCommonSKU(primaries []*Record) bool {
	if len(primaries) == 0 {
		return false
	}
	sku := primaries[0].NormSKU
	if sku == "" {
		return false
	}
	for _, p := range primaries[1:] {
		if p.NormSKU != sku {
			return false
		}
	}
	return true
}

func distinctSKUs(primaries []*Record) int {
	seen := make(map[string]struct{})
	for _, p := range primaries {
		if p.NormSKU == "" {
			continue
		}
		seen[p.NormSKU] = struct{}{}
	}
	return len(seen)
}

// pricesDisagree reports whether at least two primaries carry numeric prices
// that differ once rounded to cents.
func pricesDisagree(primaries []*Record) bool {
	var first int64
	n := 0
	for _, p := range primaries {
		cents, ok := p.PriceCents()
		if !ok {
			continue
		}
		n++
		if n == 1 {
			first = cents
			continue
		}
		if cents != first {
			return true
		}
	}
	return false
}

// sortRows orders the final output: mismatched rows first, then matched
// rows, each partition alphabetical by key.
func sortRows(rows []*Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].IsMismatch != rows[j].IsMismatch {
			return rows[i].IsMismatch
		}
		return rows[i].Key < rows[j].Key
	})
}
