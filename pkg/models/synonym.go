package models

// Resolution confidence tags. The synonym agent may report its own tags
// (for example "exact" or "fuzzy"); these are the ones produced locally.
const (
	SynonymResolved = "resolved"
	SynonymNotFound = "not_found"
	SynonymAPIError = "api_error"
	SynonymError    = "error"
)

// SynonymEntry maps one customer term to its catalog name.
type SynonymEntry struct {
	// Canonical is the catalog's official product name.
	Canonical string `json:"canonical"`
	// Confidence tells how the mapping was obtained.
	Confidence string `json:"confidence"`
	// Alternates lists other catalog names that could match.
	Alternates []string `json:"alternates"`
	// Category is the catalog category, if known.
	Category *string `json:"category"`
}

// SynonymResolution maps raw customer terms to catalog names. A term that
// is not present maps to itself.
type SynonymResolution map[string]SynonymEntry

// IdentityResolution maps every term to itself with the given confidence tag.
func IdentityResolution(terms []string, confidence string) SynonymResolution {
	res := make(SynonymResolution, len(terms))
	for _, t := range terms {
		res[t] = SynonymEntry{Canonical: t, Confidence: confidence, Alternates: []string{}}
	}
	return res
}

// Canonical returns the catalog name for term, or term itself when unmapped.
func (r SynonymResolution) Canonical(term string) string {
	if entry, ok := r[term]; ok && entry.Canonical != "" {
		return entry.Canonical
	}
	return term
}
