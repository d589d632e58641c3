package usecase

import (
	"strings"
	"time"

	"github.com/kainolt/backend/internal/domain"
)

// Builder finalizes offer drafts into ProductOffer values: it normalizes the
// name, assigns the category, computes savings and validates the numeric
// invariants. Drafts failing validation are kept and flagged low confidence
// rather than dropped; ambiguous data stays visible.
type Builder struct {
	categorizer *Categorizer
}

// NewBuilder creates a builder using the given categorizer
func NewBuilder(categorizer *Categorizer) *Builder {
	return &Builder{categorizer: categorizer}
}

// Build combines a draft with its retailer and source into a finalized offer
func (b *Builder) Build(draft domain.OfferDraft, retailer, source string, parsedAt time.Time) domain.ProductOffer {
	normalized := NormalizeName(draft.RawName)

	offer := domain.ProductOffer{
		Retailer:       retailer,
		RawName:        draft.RawName,
		NormalizedName: normalized,
		Category:       b.categorizer.Categorize(normalized),
		BasePrice:      round2(draft.BasePrice),
		FinalPrice:     round2(draft.FinalPrice),
		DiscountPct:    draft.DiscountPct,
		Savings:        round2(draft.BasePrice - draft.FinalPrice),
		Confidence:     domain.ConfidenceHigh,
		Source:         source,
		ParsedAt:       parsedAt,
	}

	if draft.LowConfidence || draft.FromOCR || !invariantsHold(offer) {
		offer.Confidence = domain.ConfidenceLow
	}

	return offer
}

// invariantsHold checks the numeric contract of a high-confidence offer:
// the final price never exceeds the base price, and the stated discount
// stays within one percentage point of the one the prices imply.
func invariantsHold(o domain.ProductOffer) bool {
	if o.FinalPrice > o.BasePrice {
		return false
	}
	if o.BasePrice <= 0 {
		return o.DiscountPct == 0
	}
	return abs(o.DiscountPct-impliedDiscount(o.BasePrice, o.FinalPrice)) <= discountTolerance
}

// NormalizeName lower-cases a product name and collapses its whitespace
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}
