package usecase

import (
	"sort"

	"github.com/kainolt/backend/internal/domain"
)

// defaultStopFraction stops shopping-list filling once this share of the
// budget is spent; scanning the long tail of cheap leftovers past that point
// rarely changes the list.
const defaultStopFraction = 0.95

// Optimizer selects offers to satisfy category quantity requirements under a
// budget. It is a bounded greedy heuristic, not an exact knapsack solver:
// the category-quota structure makes exhaustive search impractical at flyer
// scale, and a deterministic near-optimal pick is preferred for
// responsiveness. Identical inputs always produce identical results.
type Optimizer struct {
	stopFraction float64
}

// NewOptimizer creates an optimizer with the default shopping-list stop fraction
func NewOptimizer() *Optimizer {
	return &Optimizer{stopFraction: defaultStopFraction}
}

// SetStopFraction overrides the shopping-list budget stop fraction
func (o *Optimizer) SetStopFraction(f float64) {
	if f > 0 && f <= 1 {
		o.stopFraction = f
	}
}

// Optimize builds a cart from the given offer snapshot. Requirements that
// cannot be filled within budget and availability are reported in the
// result's unmet list; an infeasible budget is a normal outcome, never an
// error. The offer slice is treated as read-only.
func (o *Optimizer) Optimize(offers []domain.ProductOffer, reqs []domain.CartRequirement, constraint domain.CartConstraint) domain.CartResult {
	needs, order := aggregateRequirements(reqs)

	var items []domain.CartItem
	switch constraint.Strategy {
	case domain.StrategyVariety:
		items = o.pickVariety(offers, needs, constraint.Budget)
	case domain.StrategySingleStore:
		items = o.pickSingleStore(offers, needs, order, constraint.Budget)
	default:
		items = o.pickMaxSavings(offers, needs, constraint.Budget)
	}

	return assembleResult(items, needs, order)
}

// aggregateRequirements merges duplicate categories, keeping first-seen order
func aggregateRequirements(reqs []domain.CartRequirement) (map[string]int, []string) {
	needs := make(map[string]int, len(reqs))
	var order []string
	for _, r := range reqs {
		if r.Quantity <= 0 {
			continue
		}
		if _, seen := needs[r.Category]; !seen {
			order = append(order, r.Category)
		}
		needs[r.Category] += r.Quantity
	}
	return needs, order
}

// pickMaxSavings merges all categories' candidates into one global
// descending-by-savings order and selects greedily. Candidates that would
// break the budget are skipped, not a stopping point: a cheaper candidate
// further down the stream may still fit.
func (o *Optimizer) pickMaxSavings(offers []domain.ProductOffer, needs map[string]int, budget float64) []domain.CartItem {
	cands := requiredOnly(offers, needs)
	sort.SliceStable(cands, func(i, j int) bool { return savingsLess(cands[i], cands[j]) })

	remaining := copyNeeds(needs)
	var (
		items []domain.CartItem
		total float64
	)
	for _, c := range cands {
		if remaining[c.Category] == 0 {
			continue
		}
		if total+c.FinalPrice > budget {
			continue
		}
		items = append(items, domain.CartItem{Offer: c, Requirement: c.Category})
		total += c.FinalPrice
		remaining[c.Category]--
	}
	return items
}

// pickVariety reranks after every selection so that not-yet-represented
// retailers and products always outrank savings. The primary key is
// (retailer already used, product already used); savings order breaks ties.
func (o *Optimizer) pickVariety(offers []domain.ProductOffer, needs map[string]int, budget float64) []domain.CartItem {
	cands := requiredOnly(offers, needs)
	sort.SliceStable(cands, func(i, j int) bool { return savingsLess(cands[i], cands[j]) })

	remaining := copyNeeds(needs)
	usedRetailer := make(map[string]bool)
	usedProduct := make(map[string]bool)
	taken := make([]bool, len(cands))

	var (
		items []domain.CartItem
		total float64
	)
	for {
		best := -1
		var bestKey [2]int
		for i, c := range cands {
			if taken[i] || remaining[c.Category] == 0 || total+c.FinalPrice > budget {
				continue
			}
			key := [2]int{boolKey(usedRetailer[c.Retailer]), boolKey(usedProduct[c.NormalizedName])}
			if best == -1 || key[0] < bestKey[0] || (key[0] == bestKey[0] && key[1] < bestKey[1]) {
				// candidates are pre-sorted by the savings order, so the
				// first index with the lowest novelty key wins ties
				best, bestKey = i, key
			}
		}
		if best == -1 {
			break
		}

		c := cands[best]
		taken[best] = true
		items = append(items, domain.CartItem{Offer: c, Requirement: c.Category})
		total += c.FinalPrice
		remaining[c.Category]--
		usedRetailer[c.Retailer] = true
		usedProduct[c.NormalizedName] = true
	}
	return items
}

// pickSingleStore restricts the cart to the one retailer that satisfies the
// most requested categories within budget, filling each category with its
// cheapest offers. Ties go to the lower total cost, then the retailer name.
func (o *Optimizer) pickSingleStore(offers []domain.ProductOffer, needs map[string]int, order []string, budget float64) []domain.CartItem {
	cands := requiredOnly(offers, needs)

	byRetailer := make(map[string][]domain.ProductOffer)
	for _, c := range cands {
		byRetailer[c.Retailer] = append(byRetailer[c.Retailer], c)
	}

	retailers := make([]string, 0, len(byRetailer))
	for r := range byRetailer {
		retailers = append(retailers, r)
	}
	sort.Strings(retailers)

	var (
		bestItems     []domain.CartItem
		bestSatisfied = -1
		bestCost      float64
	)
	for _, retailer := range retailers {
		items, cost, satisfied := planStore(byRetailer[retailer], needs, order, budget)
		if satisfied > bestSatisfied || (satisfied == bestSatisfied && cost < bestCost) {
			bestItems, bestCost, bestSatisfied = items, cost, satisfied
		}
	}
	return bestItems
}

// planStore simulates filling the quotas from a single retailer's offers,
// cheapest first per category, in requirement order.
func planStore(offers []domain.ProductOffer, needs map[string]int, order []string, budget float64) ([]domain.CartItem, float64, int) {
	byCategory := make(map[string][]domain.ProductOffer)
	for _, o := range offers {
		byCategory[o.Category] = append(byCategory[o.Category], o)
	}
	for _, cat := range byCategory {
		sort.SliceStable(cat, func(i, j int) bool { return priceLess(cat[i], cat[j]) })
	}

	var (
		items     []domain.CartItem
		total     float64
		satisfied int
	)
	for _, category := range order {
		need := needs[category]
		filled := 0
		for _, offer := range byCategory[category] {
			if filled == need || total+offer.FinalPrice > budget {
				break
			}
			items = append(items, domain.CartItem{Offer: offer, Requirement: category})
			total += offer.FinalPrice
			filled++
		}
		if filled == need {
			satisfied++
		}
	}
	return items, round2(total), satisfied
}

// assembleResult computes totals, the touched retailer set and the unmet
// shortfalls from the selected items.
func assembleResult(items []domain.CartItem, needs map[string]int, order []string) domain.CartResult {
	result := domain.CartResult{Items: items}

	filled := make(map[string]int, len(needs))
	retailerSet := make(map[string]bool)
	var cost, savings float64
	for _, item := range items {
		cost += item.Offer.FinalPrice
		savings += item.Offer.Savings
		filled[item.Requirement]++
		retailerSet[item.Offer.Retailer] = true
	}
	result.TotalCost = round2(cost)
	result.TotalSavings = round2(savings)

	result.Retailers = make([]string, 0, len(retailerSet))
	for r := range retailerSet {
		result.Retailers = append(result.Retailers, r)
	}
	sort.Strings(result.Retailers)

	for _, category := range order {
		if shortfall := needs[category] - filled[category]; shortfall > 0 {
			result.Unmet = append(result.Unmet, domain.UnmetRequirement{Category: category, Shortfall: shortfall})
		}
	}
	return result
}

// ShoppingList fills a quota-free list of promotional offers within the
// budget, ordered by the strategy's preference, stopping once the stop
// fraction of the budget is spent.
func (o *Optimizer) ShoppingList(offers []domain.ProductOffer, budget float64, strategy domain.Strategy) []domain.ProductOffer {
	promos := make([]domain.ProductOffer, 0, len(offers))
	for _, of := range offers {
		if of.IsPromo() {
			promos = append(promos, of)
		}
	}

	switch strategy {
	case domain.StrategyVariety:
		promos = varietyShortlist(promos)
	case domain.StrategySingleStore:
		promos = busiestRetailerOnly(promos)
		sort.SliceStable(promos, func(i, j int) bool { return priceLess(promos[i], promos[j]) })
	default:
		sort.SliceStable(promos, func(i, j int) bool { return discountLess(promos[i], promos[j]) })
	}

	var (
		list  []domain.ProductOffer
		total float64
	)
	for _, p := range promos {
		if total+p.FinalPrice <= budget {
			list = append(list, p)
			total += p.FinalPrice
		}
		if total >= budget*o.stopFraction {
			break
		}
	}
	return list
}

// varietyShortlist keeps the two cheapest promos of every category,
// categories in name order.
func varietyShortlist(promos []domain.ProductOffer) []domain.ProductOffer {
	byCategory := make(map[string][]domain.ProductOffer)
	var categories []string
	for _, p := range promos {
		if _, seen := byCategory[p.Category]; !seen {
			categories = append(categories, p.Category)
		}
		byCategory[p.Category] = append(byCategory[p.Category], p)
	}
	sort.Strings(categories)

	var out []domain.ProductOffer
	for _, c := range categories {
		cat := byCategory[c]
		sort.SliceStable(cat, func(i, j int) bool { return priceLess(cat[i], cat[j]) })
		if len(cat) > 2 {
			cat = cat[:2]
		}
		out = append(out, cat...)
	}
	return out
}

// busiestRetailerOnly keeps the promos of the retailer with the most promos
func busiestRetailerOnly(promos []domain.ProductOffer) []domain.ProductOffer {
	counts := make(map[string]int)
	for _, p := range promos {
		counts[p.Retailer]++
	}

	best := ""
	for r, n := range counts {
		if best == "" || n > counts[best] || (n == counts[best] && r < best) {
			best = r
		}
	}

	var out []domain.ProductOffer
	for _, p := range promos {
		if p.Retailer == best {
			out = append(out, p)
		}
	}
	return out
}

// requiredOnly keeps offers whose category appears in the requirements
func requiredOnly(offers []domain.ProductOffer, needs map[string]int) []domain.ProductOffer {
	out := make([]domain.ProductOffer, 0, len(offers))
	for _, o := range offers {
		if _, ok := needs[o.Category]; ok {
			out = append(out, o)
		}
	}
	return out
}

func copyNeeds(needs map[string]int) map[string]int {
	out := make(map[string]int, len(needs))
	for k, v := range needs {
		out[k] = v
	}
	return out
}

func boolKey(b bool) int {
	if b {
		return 1
	}
	return 0
}

// savingsLess orders by savings descending, then discount descending, final
// price ascending, retailer ascending, product name ascending.
func savingsLess(a, b domain.ProductOffer) bool {
	if a.Savings != b.Savings {
		return a.Savings > b.Savings
	}
	if a.DiscountPct != b.DiscountPct {
		return a.DiscountPct > b.DiscountPct
	}
	if a.FinalPrice != b.FinalPrice {
		return a.FinalPrice < b.FinalPrice
	}
	if a.Retailer != b.Retailer {
		return a.Retailer < b.Retailer
	}
	return a.NormalizedName < b.NormalizedName
}

// discountLess orders by discount descending, then the savings order
func discountLess(a, b domain.ProductOffer) bool {
	if a.DiscountPct != b.DiscountPct {
		return a.DiscountPct > b.DiscountPct
	}
	return savingsLess(a, b)
}

// priceLess orders by final price ascending, retailer ascending, name ascending
func priceLess(a, b domain.ProductOffer) bool {
	if a.FinalPrice != b.FinalPrice {
		return a.FinalPrice < b.FinalPrice
	}
	if a.Retailer != b.Retailer {
		return a.Retailer < b.Retailer
	}
	return a.NormalizedName < b.NormalizedName
}
