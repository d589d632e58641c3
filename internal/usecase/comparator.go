package usecase

import (
	"sort"
	"strings"

	"github.com/kainolt/backend/internal/domain"
)

// RankDeals returns the top promotional offers, optionally filtered by
// category. Ordering is discount percentage descending, savings descending,
// retailer ascending, then normalized name ascending, so identical inputs
// always rank identically.
func RankDeals(offers []domain.ProductOffer, category string, topN int) []domain.ProductOffer {
	deals := make([]domain.ProductOffer, 0, len(offers))
	for _, o := range offers {
		if !o.IsPromo() {
			continue
		}
		if category != "" && o.Category != category {
			continue
		}
		deals = append(deals, o)
	}

	sort.SliceStable(deals, func(i, j int) bool {
		a, b := deals[i], deals[j]
		if a.DiscountPct != b.DiscountPct {
			return a.DiscountPct > b.DiscountPct
		}
		if a.Savings != b.Savings {
			return a.Savings > b.Savings
		}
		if a.Retailer != b.Retailer {
			return a.Retailer < b.Retailer
		}
		return a.NormalizedName < b.NormalizedName
	})

	if topN > 0 && len(deals) > topN {
		deals = deals[:topN]
	}
	return deals
}

// GroupComparison substring-matches the query against normalized names and
// groups the matches by product. Within each group offers sort by final
// price ascending, retailer ascending; groups order by their cheapest offer,
// then by product name.
func GroupComparison(offers []domain.ProductOffer, query string) []domain.PriceComparison {
	needle := strings.ToLower(strings.TrimSpace(query))

	byName := make(map[string][]domain.ProductOffer)
	for _, o := range offers {
		if !strings.Contains(o.NormalizedName, needle) {
			continue
		}
		byName[o.NormalizedName] = append(byName[o.NormalizedName], o)
	}

	groups := make([]domain.PriceComparison, 0, len(byName))
	for name, matched := range byName {
		sort.SliceStable(matched, func(i, j int) bool {
			if matched[i].FinalPrice != matched[j].FinalPrice {
				return matched[i].FinalPrice < matched[j].FinalPrice
			}
			return matched[i].Retailer < matched[j].Retailer
		})
		groups = append(groups, domain.PriceComparison{Product: name, Offers: matched})
	}

	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i].Offers[0], groups[j].Offers[0]
		if a.FinalPrice != b.FinalPrice {
			return a.FinalPrice < b.FinalPrice
		}
		return groups[i].Product < groups[j].Product
	})

	return groups
}

// Summarize aggregates loaded offers per retailer, ordered by promo count
// descending then retailer ascending.
func Summarize(offers []domain.ProductOffer) []domain.RetailerSummary {
	type agg struct {
		count, promos int
		discountSum   int
		priceSum      float64
		min, max      float64
	}

	byRetailer := make(map[string]*agg)
	for _, o := range offers {
		a, ok := byRetailer[o.Retailer]
		if !ok {
			a = &agg{min: o.FinalPrice, max: o.FinalPrice}
			byRetailer[o.Retailer] = a
		}
		a.count++
		a.priceSum += o.FinalPrice
		if o.IsPromo() {
			a.promos++
			a.discountSum += o.DiscountPct
		}
		if o.FinalPrice < a.min {
			a.min = o.FinalPrice
		}
		if o.FinalPrice > a.max {
			a.max = o.FinalPrice
		}
	}

	summaries := make([]domain.RetailerSummary, 0, len(byRetailer))
	for retailer, a := range byRetailer {
		s := domain.RetailerSummary{
			Retailer:   retailer,
			Products:   a.count,
			PromoCount: a.promos,
			AvgPrice:   round2(a.priceSum / float64(a.count)),
			MinPrice:   a.min,
			MaxPrice:   a.max,
		}
		if a.promos > 0 {
			s.AvgDiscount = round2(float64(a.discountSum) / float64(a.promos))
		}
		summaries = append(summaries, s)
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		if summaries[i].PromoCount != summaries[j].PromoCount {
			return summaries[i].PromoCount > summaries[j].PromoCount
		}
		return summaries[i].Retailer < summaries[j].Retailer
	})

	return summaries
}
