package normalize

import (
	"regexp"
	"sort"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// identifierRe matches part-number-like tokens: 1-8 letters, an optional
// hyphen, a digit, then at least one more letter, digit, or hyphen
// (e.g. "MOD-100", "XR5000-B", "AB1C").
var identifierRe = regexp.MustCompile(`[A-Z]{1,8}-?[0-9][A-Z0-9-]+`)

const minIdentifierLen = 4

// Identifiers extracts the set of product-code tokens from free text.
// Matches are uppercased, stripped of non-alphanumerics, deduplicated, and
// returned sorted so callers get a deterministic order.
func Identifiers(text string) []string {
	if text == "" {
		return nil
	}
	upper := cases.Upper(language.Und).String(text)

	seen := make(map[string]struct{})
	for _, m := range identifierRe.FindAllString(upper, -1) {
		tok := nonAlnumRe.ReplaceAllString(m, "")
		if len(tok) < minIdentifierLen {
			continue
		}
		seen[tok] = struct{}{}
	}
	if len(seen) == 0 {
		return nil
	}

	out := make([]string, 0, len(seen))
	for tok := range seen {
		out = append(out, tok)
	}
	sort.Strings(out)
	return out
}
