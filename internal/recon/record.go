// Package recon implements the cross-catalog product reconciliation engine:
// deterministic keying, fuzzy multi-signal scoring, candidate search with a
// cheap pre-filter, and a greedy conflict-avoiding auto-merge.
package recon

import (
	"github.com/sells-group/catalog-recon/internal/model"
	"github.com/sells-group/catalog-recon/internal/normalize"
)

// Record is the normalized, read-only view of a SourceRecord the engine
// compares. All derived fields are computed once at construction and never
// mutated.
type Record struct {
	model.SourceRecord

	NormName    string
	NormSKU     string
	Identifiers []string
	NameTokens  []string
	DescTokens  []string
	Key         string

	idSet map[string]struct{}
}

// NewRecord builds the normalized view of a source record.
func NewRecord(src model.SourceRecord) *Record {
	r := &Record{
		SourceRecord: src,
		NormName:     normalize.Text(src.Name),
		NormSKU:      normalize.SKU(src.SKU),
		NameTokens:   normalize.Tokens(src.Name),
		DescTokens:   normalize.Tokens(src.Description),
	}

	// Identifier tokens come from both the name and the SKU, unioned.
	seen := make(map[string]struct{})
	for _, field := range []string{src.Name, src.SKU} {
		for _, tok := range normalize.Identifiers(field) {
			if _, dup := seen[tok]; dup {
				continue
			}
			seen[tok] = struct{}{}
			r.Identifiers = append(r.Identifiers, tok)
		}
	}
	r.idSet = seen

	r.Key = keyFor(r)
	return r
}

// Keyable reports whether the record can participate in reconciliation at
// all. A record with no id, no usable name, and no usable SKU cannot be
// keyed or matched and is dropped by the orchestrator.
func (r *Record) Keyable() bool {
	return r.ID != "" || r.NormName != "" || r.NormSKU != ""
}

// SharesIdentifier reports whether two records have any product-code token
// in common.
func (r *Record) SharesIdentifier(other *Record) bool {
	if len(r.idSet) == 0 || len(other.idSet) == 0 {
		return false
	}
	// Probe the smaller set against the larger.
	a, b := r.idSet, other.idSet
	if len(b) < len(a) {
		a, b = b, a
	}
	for tok := range a {
		if _, ok := b[tok]; ok {
			return true
		}
	}
	return false
}

// PriceCents returns the record price rounded to cents, or false when the
// record carries no numeric price.
func (r *Record) PriceCents() (int64, bool) {
	if r.Price == nil {
		return 0, false
	}
	return roundCents(*r.Price), true
}
