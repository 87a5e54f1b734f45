package keywords

import (
	"strings"

	"github.com/custodia-labs/docquery-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.QueryExpander = (*VocabularyExpander)(nil)

// defaultTerms is the stock vocabulary for insurance, legal, HR and
// compliance documents. Deployments targeting other domains replace it
// via NewVocabularyExpander.
var defaultTerms = []string{
	"premium", "policy", "coverage", "deductible", "claim", "benefit",
	"waiting period", "grace period", "exclusion", "maternity",
	"pre-existing", "surgery", "hospital", "treatment", "discount",
}

// VocabularyExpander finds known domain terms in a query by substring
// lookup. Deliberately simple: the vocabulary is per-deployment and the
// lookup only needs to boost recall on retrieval, not parse language.
type VocabularyExpander struct {
	terms []string
}

// NewVocabularyExpander creates an expander with the given term list.
// An empty list falls back to the default vocabulary.
func NewVocabularyExpander(terms []string) *VocabularyExpander {
	if len(terms) == 0 {
		terms = defaultTerms
	}
	return &VocabularyExpander{terms: terms}
}

// ParseTerms splits a comma-separated configuration value into a term
// list, trimming whitespace and dropping empties.
func ParseTerms(value string) []string {
	if value == "" {
		return nil
	}
	var terms []string
	for _, term := range strings.Split(value, ",") {
		term = strings.TrimSpace(term)
		if term != "" {
			terms = append(terms, term)
		}
	}
	return terms
}

// Expand returns the vocabulary terms present in the query.
func (e *VocabularyExpander) Expand(query string) []string {
	lower := strings.ToLower(query)
	var hits []string
	for _, term := range e.terms {
		if strings.Contains(lower, term) {
			hits = append(hits, term)
		}
	}
	return hits
}
