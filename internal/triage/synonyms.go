package triage

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/ShayCichocki/ticketpilot/internal/logging"
	"github.com/ShayCichocki/ticketpilot/pkg/models"
)

// SynonymResolver maps the customer's product terms to catalog names. It
// never fails: when the agent is unreachable every term maps to itself.
type SynonymResolver struct {
	agent  SynonymAgent
	logger *zap.Logger
}

// NewSynonymResolver creates a resolver.
func NewSynonymResolver(agent SynonymAgent, logger *zap.Logger) *SynonymResolver {
	return &SynonymResolver{agent: agent, logger: logging.OrNop(logger)}
}

// Resolve makes one agent call for all terms. The returned map has
// exactly one entry per distinct input term.
func (r *SynonymResolver) Resolve(ctx context.Context, terms []string) models.SynonymResolution {
	terms = DedupeTerms(terms)
	if len(terms) == 0 {
		return models.SynonymResolution{}
	}
	if r.agent == nil {
		return models.IdentityResolution(terms, models.SynonymError)
	}

	r.logger.Info("resolving synonyms", zap.Strings("terms", terms))
	reply, err := r.agent.Resolve(ctx, terms)
	if err != nil {
		r.logger.Error("synonym resolution failed", zap.Error(err))
		return models.IdentityResolution(terms, models.SynonymError)
	}
	if !reply.Success {
		r.logger.Warn("synonym resolution unsuccessful", zap.String("error", reply.Error))
		return models.IdentityResolution(terms, models.SynonymAPIError)
	}

	res := models.IdentityResolution(terms, models.SynonymNotFound)
	for _, resolution := range reply.Resolutions {
		if _, asked := res[resolution.Input]; !asked || resolution.CanonicalName == "" {
			continue
		}
		confidence := resolution.Confidence
		if confidence == "" {
			confidence = models.SynonymResolved
		}
		alternates := resolution.Alternates
		if alternates == nil {
			alternates = []string{}
		}
		res[resolution.Input] = models.SynonymEntry{
			Canonical:  resolution.CanonicalName,
			Confidence: confidence,
			Alternates: alternates,
			Category:   resolution.Category,
		}
		r.logger.Info("resolved synonym",
			zap.String("term", resolution.Input),
			zap.String("canonical", resolution.CanonicalName),
			zap.String("confidence", confidence),
		)
	}
	return res
}

// DedupeTerms trims terms and drops empty and repeated ones, keeping the
// first occurrence order.
func DedupeTerms(terms []string) []string {
	seen := make(map[string]bool, len(terms))
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// CanonicalNames returns the catalog name of each term, in term order and
// without repeats.
func CanonicalNames(terms []string, res models.SynonymResolution) []string {
	names := make([]string, 0, len(terms))
	for _, t := range DedupeTerms(terms) {
		names = append(names, res.Canonical(t))
	}
	return DedupeTerms(names)
}

// ReplaceWithCanonical rewrites every occurrence of a resolved term in
// text with its catalog name, ignoring case. Text is scanned once and
// longer terms win, so "tote bag" is replaced whole and not as "bag".
// Terms that differ only in case use the mapping of the term that sorts
// first.
func ReplaceWithCanonical(text string, res models.SynonymResolution) string {
	terms := make([]string, 0, len(res))
	for term, entry := range res {
		if entry.Canonical == "" || entry.Canonical == term {
			continue
		}
		terms = append(terms, term)
	}
	if len(terms) == 0 {
		return text
	}

	sort.Slice(terms, func(i, j int) bool {
		if len(terms[i]) != len(terms[j]) {
			return len(terms[i]) > len(terms[j])
		}
		return terms[i] < terms[j]
	})
	canonical := make(map[string]string, len(terms))
	for _, term := range terms {
		key := strings.ToLower(term)
		if _, ok := canonical[key]; !ok {
			canonical[key] = res[term].Canonical
		}
	}
	quoted := make([]string, len(terms))
	for i, term := range terms {
		quoted[i] = regexp.QuoteMeta(term)
	}

	re := regexp.MustCompile("(?i)" + strings.Join(quoted, "|"))
	return re.ReplaceAllStringFunc(text, func(match string) string {
		if c, ok := canonical[strings.ToLower(match)]; ok {
			return c
		}
		return match
	})
}
