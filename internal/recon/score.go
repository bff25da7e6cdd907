package recon

import (
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/catalog-recon/internal/normalize"
)

// Signal labels attached to a match score. These are user-facing strings
// rendered on the dashboard, so changing one is a breaking change.
const (
	SignalIdentifierMatch = "Identifier match"
	SignalSKUExact        = "SKU exact"
	SignalSKUPartial      = "SKU partial"
	SignalNameVeryClose   = "Name very close"
	SignalNameSimilar     = "Name similar"
	SignalNameOverlap     = "Name overlap"
	SignalDescSimilar     = "Description similar"
	SignalDescOverlap     = "Description overlap"
	SignalPriceClose      = "Price close"
	SignalPriceSimilar    = "Price similar"
	SignalPriceNearby     = "Price somewhat close"
)

// ScoreConfig holds the similarity weights and thresholds. Values are fixed
// read-only configuration for a run; nothing mutates them after Validate.
type ScoreConfig struct {
	IdentifierWeight float64 `yaml:"identifier_weight" mapstructure:"identifier_weight"`
	SKUExactWeight   float64 `yaml:"sku_exact_weight" mapstructure:"sku_exact_weight"`
	SKUPartialWeight float64 `yaml:"sku_partial_weight" mapstructure:"sku_partial_weight"`

	NameVeryCloseWeight float64 `yaml:"name_very_close_weight" mapstructure:"name_very_close_weight"`
	NameSimilarWeight   float64 `yaml:"name_similar_weight" mapstructure:"name_similar_weight"`
	NameOverlapWeight   float64 `yaml:"name_overlap_weight" mapstructure:"name_overlap_weight"`

	DescSimilarWeight float64 `yaml:"desc_similar_weight" mapstructure:"desc_similar_weight"`
	DescOverlapWeight float64 `yaml:"desc_overlap_weight" mapstructure:"desc_overlap_weight"`

	PriceCloseWeight   float64 `yaml:"price_close_weight" mapstructure:"price_close_weight"`
	PriceSimilarWeight float64 `yaml:"price_similar_weight" mapstructure:"price_similar_weight"`
	PriceNearbyWeight  float64 `yaml:"price_nearby_weight" mapstructure:"price_nearby_weight"`

	// Jaccard tiers.
	NameVeryCloseJaccard float64 `yaml:"name_very_close_jaccard" mapstructure:"name_very_close_jaccard"`
	NameSimilarJaccard   float64 `yaml:"name_similar_jaccard" mapstructure:"name_similar_jaccard"`
	NameOverlapJaccard   float64 `yaml:"name_overlap_jaccard" mapstructure:"name_overlap_jaccard"`
	DescSimilarJaccard   float64 `yaml:"desc_similar_jaccard" mapstructure:"desc_similar_jaccard"`
	DescOverlapJaccard   float64 `yaml:"desc_overlap_jaccard" mapstructure:"desc_overlap_jaccard"`

	// Relative price difference tiers.
	PriceCloseRelDiff   float64 `yaml:"price_close_rel_diff" mapstructure:"price_close_rel_diff"`
	PriceSimilarRelDiff float64 `yaml:"price_similar_rel_diff" mapstructure:"price_similar_rel_diff"`
	PriceNearbyRelDiff  float64 `yaml:"price_nearby_rel_diff" mapstructure:"price_nearby_rel_diff"`

	// MinPartialSKULen is the minimum normalized-SKU length for the
	// substring-containment partial match to apply.
	MinPartialSKULen int `yaml:"min_partial_sku_len" mapstructure:"min_partial_sku_len"`
}

// DefaultScoreConfig returns the production similarity weights.
func DefaultScoreConfig() ScoreConfig {
	return ScoreConfig{
		IdentifierWeight: 0.58,
		SKUExactWeight:   0.72,
		SKUPartialWeight: 0.42,

		NameVeryCloseWeight: 0.56,
		NameSimilarWeight:   0.42,
		NameOverlapWeight:   0.25,

		DescSimilarWeight: 0.14,
		DescOverlapWeight: 0.08,

		PriceCloseWeight:   0.20,
		PriceSimilarWeight: 0.12,
		PriceNearbyWeight:  0.05,

		NameVeryCloseJaccard: 0.90,
		NameSimilarJaccard:   0.60,
		NameOverlapJaccard:   0.40,
		DescSimilarJaccard:   0.60,
		DescOverlapJaccard:   0.35,

		PriceCloseRelDiff:   0.03,
		PriceSimilarRelDiff: 0.10,
		PriceNearbyRelDiff:  0.20,

		MinPartialSKULen: 5,
	}
}

// Validate checks that a ScoreConfig is internally consistent.
func (c ScoreConfig) Validate() error {
	var errs []string

	weights := map[string]float64{
		"identifier_weight":      c.IdentifierWeight,
		"sku_exact_weight":       c.SKUExactWeight,
		"sku_partial_weight":     c.SKUPartialWeight,
		"name_very_close_weight": c.NameVeryCloseWeight,
		"name_similar_weight":    c.NameSimilarWeight,
		"name_overlap_weight":    c.NameOverlapWeight,
		"desc_similar_weight":    c.DescSimilarWeight,
		"desc_overlap_weight":    c.DescOverlapWeight,
		"price_close_weight":     c.PriceCloseWeight,
		"price_similar_weight":   c.PriceSimilarWeight,
		"price_nearby_weight":    c.PriceNearbyWeight,
	}
	for name, w := range weights {
		if w < 0 || w > 1 {
			errs = append(errs, fmt.Sprintf("%s must be in [0,1]", name))
		}
	}

	// Tiers must be ordered strictest-first.
	if !(c.NameVeryCloseJaccard > c.NameSimilarJaccard && c.NameSimilarJaccard > c.NameOverlapJaccard && c.NameOverlapJaccard > 0) {
		errs = append(errs, "name jaccard tiers must be strictly decreasing and positive")
	}
	if !(c.DescSimilarJaccard > c.DescOverlapJaccard && c.DescOverlapJaccard > 0) {
		errs = append(errs, "description jaccard tiers must be strictly decreasing and positive")
	}
	if !(c.PriceCloseRelDiff < c.PriceSimilarRelDiff && c.PriceSimilarRelDiff < c.PriceNearbyRelDiff) {
		errs = append(errs, "price rel-diff tiers must be strictly increasing")
	}
	if c.MinPartialSKULen < 1 {
		errs = append(errs, "min_partial_sku_len must be >= 1")
	}

	if len(errs) > 0 {
		return eris.Errorf("recon: score config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Score computes the match confidence between two normalized records. Each
// signal is independent and additive; the sum is capped at 1.0 and rounded
// to three decimals. The signal list explains every point awarded, in the
// fixed order identifier, SKU, name, description, price.
func (c ScoreConfig) Score(anchor, candidate *Record) (float64, []string) {
	total := 0.0
	var signals []string

	add := func(w float64, label string) {
		total += w
		signals = append(signals, label)
	}

	if anchor.SharesIdentifier(candidate) {
		add(c.IdentifierWeight, SignalIdentifierMatch)
	}

	switch {
	case anchor.NormSKU != "" && anchor.NormSKU == candidate.NormSKU:
		add(c.SKUExactWeight, SignalSKUExact)
	case c.skuPartialMatch(anchor.NormSKU, candidate.NormSKU):
		add(c.SKUPartialWeight, SignalSKUPartial)
	}

	switch nameSim := normalize.Jaccard(anchor.NameTokens, candidate.NameTokens); {
	case nameSim >= c.NameVeryCloseJaccard:
		add(c.NameVeryCloseWeight, SignalNameVeryClose)
	case nameSim >= c.NameSimilarJaccard:
		add(c.NameSimilarWeight, SignalNameSimilar)
	case nameSim >= c.NameOverlapJaccard:
		add(c.NameOverlapWeight, SignalNameOverlap)
	}

	switch descSim := normalize.Jaccard(anchor.DescTokens, candidate.DescTokens); {
	case descSim >= c.DescSimilarJaccard:
		add(c.DescSimilarWeight, SignalDescSimilar)
	case descSim >= c.DescOverlapJaccard:
		add(c.DescOverlapWeight, SignalDescOverlap)
	}

	if diff, ok := relPriceDiff(anchor, candidate); ok {
		switch {
		case diff <= c.PriceCloseRelDiff:
			add(c.PriceCloseWeight, SignalPriceClose)
		case diff <= c.PriceSimilarRelDiff:
			add(c.PriceSimilarWeight, SignalPriceSimilar)
		case diff <= c.PriceNearbyRelDiff:
			add(c.PriceNearbyWeight, SignalPriceNearby)
		}
	}

	if total > 1.0 {
		total = 1.0
	}
	return math.Round(total*1000) / 1000, signals
}

// skuPartialMatch reports whether one SKU contains the other, with both long
// enough for containment to be meaningful. Exact equality is handled by the
// caller.
func (c ScoreConfig) skuPartialMatch(a, b string) bool {
	if a == "" || b == "" || a == b {
		return false
	}
	if len(a) < c.MinPartialSKULen || len(b) < c.MinPartialSKULen {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// relPriceDiff returns |a-b| / max(a,b) for two positive prices.
func relPriceDiff(a, b *Record) (float64, bool) {
	if a.Price == nil || b.Price == nil {
		return 0, false
	}
	pa, pb := *a.Price, *b.Price
	if pa <= 0 || pb <= 0 {
		return 0, false
	}
	return math.Abs(pa-pb) / math.Max(pa, pb), true
}
