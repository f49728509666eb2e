package agents

import "regexp"

// multiProductPatterns recognize requests naming several products, each
// with its own quantity. The list is heuristic: it can match plain lists
// such as "red, blue, and green" and misses product words it does not
// know.
var multiProductPatterns = []*regexp.Regexp{
	// "100 pcs X and 50 pcs Y"
	regexp.MustCompile(`(?i)\d+\s*(pcs|pieces?).*\band\b.*\d+\s*(pcs|pieces?)`),
	// "100 pcs X, 50 pcs Y"
	regexp.MustCompile(`(?i)\d+[\s,]*\d*\s*(pcs|pieces?).*,.*\d+[\s,]*\d*\s*(pcs|pieces?)`),
	// "1,500 t-shirts, 500 hoodies"
	regexp.MustCompile(`(?i)\d+[\s,]*\d*\s+\w+.*,\s*\d+[\s,]*\d*\s+\w+`),
	// "mugs and pens"
	regexp.MustCompile(`(?i)\b(t-?shirts?|hoodies?|bags?|tote|pens?|mugs?|caps?|jackets?).*\band\b.*\b(t-?shirts?|hoodies?|bags?|tote|pens?|mugs?|caps?|jackets?)`),
}

// IsMultiProductQuery reports whether query asks about more than one
// product and should go to the multi-product endpoint.
func IsMultiProductQuery(query string) bool {
	if query == "" {
		return false
	}
	for _, p := range multiProductPatterns {
		if p.MatchString(query) {
			return true
		}
	}
	return false
}
