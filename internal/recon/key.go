package recon

import (
	"math"
	"strings"
)

// Key prefixes. A record keys by SKU when it has one, by name otherwise, and
// by a per-record fallback when it has neither, so an un-keyable record is
// its own singleton group rather than silently dropped.
const (
	keyPrefixSKU      = "sku:"
	keyPrefixName     = "name:"
	keyPrefixFallback = "fallback:"
)

func keyFor(r *Record) string {
	if r.NormSKU != "" {
		return keyPrefixSKU + r.NormSKU
	}
	if r.NormName != "" {
		return keyPrefixName + r.NormName
	}
	return keyPrefixFallback + string(r.Source) + ":" + r.ID
}

// isFallbackKey reports whether a row key is a last-resort singleton key.
// Auto-merge prefers a real SKU/name key over a fallback key when combining
// two rows.
func isFallbackKey(key string) bool {
	return strings.HasPrefix(key, keyPrefixFallback)
}

func roundCents(v float64) int64 {
	return int64(math.Round(v * 100))
}
