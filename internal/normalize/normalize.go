// Package normalize provides the pure canonicalization primitives the
// reconciliation engine compares records with. Every function is total:
// malformed input degrades to an empty string or nil, never an error.
package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	nonAlnumRunRe = regexp.MustCompile(`[^a-z0-9]+`)
	nonAlnumRe    = regexp.MustCompile(`[^A-Z0-9]`)
	priceJunkRe   = regexp.MustCompile(`[^0-9.\-]`)
)

// Text canonicalizes free text: lowercase, every run of non-alphanumeric
// characters collapsed to a single space, trimmed. Idempotent.
func Text(s string) string {
	s = cases.Lower(language.Und).String(s)
	s = nonAlnumRunRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// SKU canonicalizes a stock-keeping code: uppercase with every
// non-alphanumeric character stripped. Idempotent.
func SKU(s string) string {
	s = cases.Upper(language.Und).String(s)
	return nonAlnumRe.ReplaceAllString(s, "")
}

// Price parses a vendor price string. Returns nil for empty or unparseable
// input rather than an error; vendor feeds routinely carry currency symbols,
// thousands separators, and blank cells.
func Price(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	s = priceJunkRe.ReplaceAllString(s, "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
