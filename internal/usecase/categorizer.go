package usecase

import (
	"strings"

	"github.com/kainolt/backend/internal/domain"
)

// Categorizer assigns a category from the fixed catalog to a product name.
// It is a pure function over an immutable rule list and is safe to call
// concurrently from multiple extraction tasks.
type Categorizer struct {
	rules []CategoryRule
}

// NewCategorizer creates a categorizer over an ordered rule list. Earlier
// rules take priority when a name matches keywords from several categories.
func NewCategorizer(rules []CategoryRule) *Categorizer {
	return &Categorizer{rules: rules}
}

// Categorize returns the first category with a keyword found in the name.
// Keywords are Lithuanian word stems, so matching is by substring rather
// than whole tokens ("jogurt" must match "jogurtas" and "jogurtukas").
// Names matching no rule fall through to the catch-all category.
func (c *Categorizer) Categorize(name string) string {
	lower := strings.ToLower(name)
	for _, rule := range c.rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				return rule.Name
			}
		}
	}
	return domain.CategoryOther
}
