package domain

import (
	"strings"
	"time"
)

// Confidence marks whether an offer's numeric fields were derived unambiguously
type Confidence string

const (
	ConfidenceHigh Confidence = "high"
	ConfidenceLow  Confidence = "low"
)

// CategoryOther is assigned when no category keyword matches the product name
const CategoryOther = "Kita"

// ProductOffer represents one retailer's priced instance of a product,
// extracted from a promotional flyer or imported from tabular data.
// Offers are immutable once built.
type ProductOffer struct {
	Retailer       string     `json:"retailer"`
	RawName        string     `json:"rawName"`
	NormalizedName string     `json:"normalizedName"`
	Category       string     `json:"category"`
	BasePrice      float64    `json:"basePrice"`
	FinalPrice     float64    `json:"finalPrice"`
	DiscountPct    int        `json:"discountPct"`
	Savings        float64    `json:"savings"`
	Confidence     Confidence `json:"confidence"`
	Source         string     `json:"source"`
	ParsedAt       time.Time  `json:"parsedAt"`
}

// IsPromo reports whether the offer carries an actual discount
func (o ProductOffer) IsPromo() bool {
	return o.DiscountPct > 0
}

// OfferDraft is an unvalidated candidate offer produced by pattern
// extraction, prior to normalization by the record builder.
// A zero price means the field was absent from the source line.
type OfferDraft struct {
	RawName       string
	BasePrice     float64
	FinalPrice    float64
	DiscountPct   int
	Line          int
	FromOCR       bool
	LowConfidence bool
}

// TextLine is one line of acquired document text, tagged with its origin
// so that OCR-derived drafts can be down-weighted.
type TextLine struct {
	Text    string
	FromOCR bool
}

// PriceComparison groups the offers for a single product across retailers,
// sorted ascending by final price.
type PriceComparison struct {
	Product string         `json:"product"`
	Offers  []ProductOffer `json:"offers"`
}

// RetailerSummary aggregates the loaded offers of one retailer.
type RetailerSummary struct {
	Retailer    string  `json:"retailer"`
	Products    int     `json:"products"`
	PromoCount  int     `json:"promoCount"`
	AvgDiscount float64 `json:"avgDiscount"`
	AvgPrice    float64 `json:"avgPrice"`
	MinPrice    float64 `json:"minPrice"`
	MaxPrice    float64 `json:"maxPrice"`
}

// KnownRetailers are the Lithuanian food retailers this tool understands.
var KnownRetailers = []string{"Maxima", "Rimi", "IKI", "Lidl", "Norfa", "Barbora"}

// CanonicalRetailer resolves a retailer name case-insensitively to its
// canonical spelling. Returns false for retailers we do not support.
func CanonicalRetailer(name string) (string, bool) {
	trimmed := strings.TrimSpace(name)
	for _, r := range KnownRetailers {
		if strings.EqualFold(trimmed, r) {
			return r, true
		}
	}
	return "", false
}
