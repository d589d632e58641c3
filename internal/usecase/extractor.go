package usecase

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/kainolt/backend/internal/domain"
)

// discountTolerance is the allowed drift, in percentage points, between a
// printed discount and the one implied by the two printed prices.
const discountTolerance = 1

// maxNameWords caps how many leading words of a line become the product name
const maxNameWords = 5

// ExtractStats counts what happened during one extraction run. Unparsed lines
// are skipped, never fatal; the counter exists for observability.
type ExtractStats struct {
	Lines    int
	Drafts   int
	Unparsed int
}

// Extractor turns raw flyer text lines into offer drafts by applying the
// configured price and discount patterns. It is stateless and safe for
// concurrent use; each call owns its own buffers.
type Extractor struct {
	cfg ExtractionConfig
}

// NewExtractor creates an extractor over an immutable pattern configuration
func NewExtractor(cfg ExtractionConfig) *Extractor {
	return &Extractor{cfg: cfg}
}

// span is one pattern match located within a line
type span struct {
	start, end int
	value      float64
	pct        int
}

// Extract runs the pattern matchers over tagged text lines and returns one
// draft per line that carried usable price information. Lines with nothing
// usable are discarded and counted, never reported as errors.
func (e *Extractor) Extract(lines []domain.TextLine) ([]domain.OfferDraft, ExtractStats) {
	var (
		drafts []domain.OfferDraft
		stats  ExtractStats
	)

	for i, line := range lines {
		text := strings.TrimSpace(line.Text)
		if text == "" {
			continue
		}
		stats.Lines++

		draft, ok := e.ExtractLine(text, i)
		if !ok {
			stats.Unparsed++
			continue
		}
		draft.FromOCR = line.FromOCR
		drafts = append(drafts, draft)
		stats.Drafts++
	}

	return drafts, stats
}

// ExtractText is a convenience wrapper for callers holding plain text
func (e *Extractor) ExtractText(text string) ([]domain.OfferDraft, ExtractStats) {
	raw := strings.Split(text, "\n")
	lines := make([]domain.TextLine, len(raw))
	for i, l := range raw {
		lines[i] = domain.TextLine{Text: l}
	}
	return e.Extract(lines)
}

// ExtractLine applies the ordered matchers to a single line and resolves the
// numeric fields. Resolution order:
//  1. two prices on the line: first is base, second is final
//  2. one price plus a discount: the price is the final price, base derived
//  3. printed discount disagreeing with the two prices beyond the tolerance:
//     prices win, discount recomputed, draft flagged low confidence
//  4. nothing usable: no draft
func (e *Extractor) ExtractLine(text string, lineNo int) (domain.OfferDraft, bool) {
	prices := e.findPrices(text)
	discounts := e.findDiscounts(text)

	if len(prices) == 0 && len(discounts) == 0 {
		return domain.OfferDraft{}, false
	}

	matched := make([]span, 0, len(prices)+len(discounts))
	matched = append(matched, prices...)
	matched = append(matched, discounts...)

	draft := domain.OfferDraft{
		RawName: productName(text, matched),
		Line:    lineNo,
	}

	pctFound := len(discounts) > 0
	var pct int
	if pctFound {
		pct = discounts[0].pct
	}

	switch {
	case len(prices) >= 2:
		draft.BasePrice = prices[0].value
		draft.FinalPrice = prices[1].value
		implied := impliedDiscount(draft.BasePrice, draft.FinalPrice)
		if pctFound && abs(pct-implied) > discountTolerance {
			// The printed prices are authoritative; the printed percentage
			// is dropped and the disagreement is flagged.
			draft.LowConfidence = true
		}
		draft.DiscountPct = implied
	case len(prices) == 1 && pctFound:
		if pct <= 0 || pct >= 100 {
			draft.BasePrice = prices[0].value
			draft.FinalPrice = prices[0].value
			draft.LowConfidence = true
			break
		}
		draft.FinalPrice = prices[0].value
		draft.BasePrice = round2(draft.FinalPrice / (1 - float64(pct)/100))
		draft.DiscountPct = pct
	case len(prices) == 1:
		draft.BasePrice = prices[0].value
		draft.FinalPrice = prices[0].value
	default:
		// a bare discount with no price is unusable
		return domain.OfferDraft{}, false
	}

	return draft, true
}

// findPrices collects non-overlapping price matches in line position order.
// Earlier patterns claim their spans first so the cent pattern cannot eat
// into a full euro price.
func (e *Extractor) findPrices(text string) []span {
	var accepted []span

	for _, p := range e.cfg.PricePatterns {
		for _, idx := range p.Re.FindAllStringSubmatchIndex(text, -1) {
			s := span{start: idx[0], end: idx[1]}
			if overlaps(accepted, s) {
				continue
			}

			if p.Cents {
				cents, err := strconv.Atoi(text[idx[2]:idx[3]])
				if err != nil {
					continue
				}
				s.value = round2(float64(cents) / 100)
			} else {
				euros := text[idx[2]:idx[3]]
				cents := text[idx[4]:idx[5]]
				v, err := strconv.ParseFloat(euros+"."+cents, 64)
				if err != nil {
					continue
				}
				s.value = round2(v)
			}
			accepted = append(accepted, s)
		}
	}

	sort.Slice(accepted, func(i, j int) bool { return accepted[i].start < accepted[j].start })
	return accepted
}

// findDiscounts collects non-overlapping discount matches in position order
func (e *Extractor) findDiscounts(text string) []span {
	var accepted []span

	for _, re := range e.cfg.DiscountPatterns {
		for _, idx := range re.FindAllStringSubmatchIndex(text, -1) {
			s := span{start: idx[0], end: idx[1]}
			if overlaps(accepted, s) {
				continue
			}
			pct, err := strconv.Atoi(text[idx[2]:idx[3]])
			if err != nil {
				continue
			}
			s.pct = pct
			accepted = append(accepted, s)
		}
	}

	sort.Slice(accepted, func(i, j int) bool { return accepted[i].start < accepted[j].start })
	return accepted
}

// overlaps reports whether s intersects any already-claimed span
func overlaps(claimed []span, s span) bool {
	for _, c := range claimed {
		if s.start < c.end && c.start < s.end {
			return true
		}
	}
	return false
}

// productName strips the matched numeric spans from the line and keeps the
// first meaningful words as the product name.
func productName(text string, matched []span) string {
	sort.Slice(matched, func(i, j int) bool { return matched[i].start < matched[j].start })

	var b strings.Builder
	prev := 0
	for _, s := range matched {
		if s.start > prev {
			b.WriteString(text[prev:s.start])
			b.WriteByte(' ')
		}
		if s.end > prev {
			prev = s.end
		}
	}
	if prev < len(text) {
		b.WriteString(text[prev:])
	}

	words := strings.Fields(b.String())
	if len(words) > maxNameWords {
		words = words[:maxNameWords]
	}
	if len(words) == 0 {
		return "Unknown Product"
	}
	return strings.Join(words, " ")
}

// impliedDiscount derives the whole-percent discount from two prices
func impliedDiscount(base, final float64) int {
	if base <= 0 || final >= base {
		return 0
	}
	return int(math.Round((base - final) / base * 100))
}

// round2 rounds to two decimal places, halves away from zero
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
