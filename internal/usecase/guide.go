package usecase

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/kainolt/backend/internal/domain"
)

const guideRule = "======================================================================"
const guideSubRule = "----------------------------------------------------------------------"

// WriteShoppingGuide renders the plain-text shopping guide: the best deals
// overall followed by the top deals per category. Output is deterministic
// for a given offer snapshot and timestamp.
func WriteShoppingGuide(w io.Writer, offers []domain.ProductOffer, now time.Time) error {
	if len(offers) == 0 {
		return domain.ErrNoData
	}

	fmt.Fprintln(w, guideRule)
	fmt.Fprintln(w, "LIETUVOS MAISTO PREKYBOS APSIPIRKIMO VADOVAS")
	fmt.Fprintln(w, guideRule)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Sugeneruota: %s\n\n", now.Format("2006-01-02 15:04"))

	fmt.Fprintln(w, "GERIAUSI PASIŪLYMAI:")
	fmt.Fprintln(w, guideSubRule)
	for i, deal := range RankDeals(offers, "", 15) {
		fmt.Fprintf(w, "%d. %s\n", i+1, deal.RawName)
		fmt.Fprintf(w, "   %s | %.2f€ (buvo %.2f€)\n", deal.Retailer, deal.FinalPrice, deal.BasePrice)
		fmt.Fprintf(w, "   Nuolaida: %d%% | Sutaupoma: %.2f€\n\n", deal.DiscountPct, deal.Savings)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, guideRule)
	fmt.Fprintln(w, "GERIAUSI PASIŪLYMAI PAGAL KATEGORIJAS:")
	fmt.Fprintln(w, guideRule)

	for _, category := range sortedCategories(offers) {
		if category == domain.CategoryOther {
			continue
		}
		fmt.Fprintf(w, "\n%s:\n", category)
		fmt.Fprintln(w, guideSubRule)
		for _, deal := range RankDeals(offers, category, 5) {
			fmt.Fprintf(w, "• %s\n", deal.RawName)
			fmt.Fprintf(w, "  %s: %.2f€ (-%d%%)\n", deal.Retailer, deal.FinalPrice, deal.DiscountPct)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, guideRule)
	return nil
}

func sortedCategories(offers []domain.ProductOffer) []string {
	seen := make(map[string]bool)
	var categories []string
	for _, o := range offers {
		if !seen[o.Category] {
			seen[o.Category] = true
			categories = append(categories, o.Category)
		}
	}
	sort.Strings(categories)
	return categories
}
