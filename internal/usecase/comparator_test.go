package usecase

import (
	"reflect"
	"testing"

	"github.com/kainolt/backend/internal/domain"
)

func TestRankDeals(t *testing.T) {
	offers := []domain.ProductOffer{
		testOffer("Maxima", "Pienas dvaro", dairy, 2.00, 1.00),  // 50%
		testOffer("Rimi", "Duona juoda", bread, 1.50, 1.20),     // 20%
		testOffer("IKI", "Sultys", drinks, 2.00, 1.40),          // 30%
		testOffer("Maxima", "Jogurtas", dairy, 1.00, 1.00),      // not a promo
	}

	deals := RankDeals(offers, "", 10)

	if len(deals) != 3 {
		t.Fatalf("deals = %d, want 3 (non-promos excluded)", len(deals))
	}
	want := []string{"pienas dvaro", "sultys", "duona juoda"}
	for i, name := range want {
		if deals[i].NormalizedName != name {
			t.Errorf("deals[%d] = %q, want %q", i, deals[i].NormalizedName, name)
		}
	}
}

func TestRankDeals_CategoryFilter(t *testing.T) {
	offers := []domain.ProductOffer{
		testOffer("Maxima", "Pienas dvaro", dairy, 2.00, 1.00),
		testOffer("Rimi", "Duona juoda", bread, 1.50, 1.20),
	}

	deals := RankDeals(offers, bread, 10)
	if len(deals) != 1 || deals[0].Category != bread {
		t.Errorf("deals = %+v, want only the bread offer", deals)
	}
}

func TestRankDeals_TopNCap(t *testing.T) {
	offers := []domain.ProductOffer{
		testOffer("Maxima", "Pienas dvaro", dairy, 2.00, 1.00),
		testOffer("Rimi", "Duona juoda", bread, 1.50, 1.20),
		testOffer("IKI", "Sultys", drinks, 2.00, 1.40),
	}

	if got := RankDeals(offers, "", 2); len(got) != 2 {
		t.Errorf("deals = %d, want capped at 2", len(got))
	}
}

func TestRankDeals_TieBreaks(t *testing.T) {
	// identical discount and savings: retailer then name decide
	offers := []domain.ProductOffer{
		testOffer("Rimi", "Pienas b", dairy, 2.00, 1.00),
		testOffer("Maxima", "Pienas c", dairy, 2.00, 1.00),
		testOffer("Maxima", "Pienas a", dairy, 2.00, 1.00),
	}

	deals := RankDeals(offers, "", 0)

	got := []string{
		deals[0].Retailer + " " + deals[0].NormalizedName,
		deals[1].Retailer + " " + deals[1].NormalizedName,
		deals[2].Retailer + " " + deals[2].NormalizedName,
	}
	want := []string{"Maxima pienas a", "Maxima pienas c", "Rimi pienas b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestGroupComparison(t *testing.T) {
	offers := []domain.ProductOffer{
		testOffer("Maxima", "Pienas dvaro", dairy, 1.39, 0.99),
		testOffer("Rimi", "Pienas dvaro", dairy, 1.39, 1.19),
		testOffer("IKI", "Pienas rokiškio", dairy, 1.50, 1.05),
		testOffer("Lidl", "Duona juoda", bread, 1.20, 0.85),
	}

	groups := GroupComparison(offers, "pienas")

	if len(groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(groups))
	}
	// cheapest group first
	if groups[0].Product != "pienas dvaro" {
		t.Errorf("first group = %q, want the group with the cheapest offer", groups[0].Product)
	}
	// within a group, cheapest retailer first
	if groups[0].Offers[0].Retailer != "Maxima" || groups[0].Offers[1].Retailer != "Rimi" {
		t.Errorf("group order = %+v, want final price ascending", groups[0].Offers)
	}
}

func TestGroupComparison_NoMatch(t *testing.T) {
	offers := []domain.ProductOffer{
		testOffer("Maxima", "Pienas dvaro", dairy, 1.39, 0.99),
	}

	if groups := GroupComparison(offers, "šokoladas"); len(groups) != 0 {
		t.Errorf("groups = %+v, want none", groups)
	}
}

func TestGroupComparison_CaseInsensitiveQuery(t *testing.T) {
	offers := []domain.ProductOffer{
		testOffer("Maxima", "Pienas dvaro", dairy, 1.39, 0.99),
	}

	if groups := GroupComparison(offers, "  PIENAS "); len(groups) != 1 {
		t.Errorf("groups = %d, want the query trimmed and lower-cased", len(groups))
	}
}

func TestSummarize(t *testing.T) {
	offers := []domain.ProductOffer{
		testOffer("Maxima", "Pienas dvaro", dairy, 2.00, 1.00), // promo 50%
		testOffer("Maxima", "Jogurtas", dairy, 1.00, 1.00),     // no promo
		testOffer("Rimi", "Duona juoda", bread, 1.50, 1.20),    // promo 20%
		testOffer("Rimi", "Sultys", drinks, 2.00, 1.40),        // promo 30%
	}

	summaries := Summarize(offers)

	if len(summaries) != 2 {
		t.Fatalf("summaries = %d, want 2", len(summaries))
	}
	// Rimi has more promos and sorts first
	if summaries[0].Retailer != "Rimi" || summaries[0].PromoCount != 2 {
		t.Errorf("first = %+v, want Rimi with 2 promos", summaries[0])
	}

	maxima := summaries[1]
	if maxima.Products != 2 || maxima.PromoCount != 1 {
		t.Errorf("Maxima counts = %+v, want 2 products, 1 promo", maxima)
	}
	if maxima.AvgPrice != 1.00 {
		t.Errorf("Maxima avg price = %v, want 1.00", maxima.AvgPrice)
	}
	if maxima.AvgDiscount != 50 {
		t.Errorf("Maxima avg discount = %v, want 50", maxima.AvgDiscount)
	}
	if maxima.MinPrice != 1.00 || maxima.MaxPrice != 1.00 {
		t.Errorf("Maxima price range = [%v, %v]", maxima.MinPrice, maxima.MaxPrice)
	}
}

func TestSummarize_Empty(t *testing.T) {
	if got := Summarize(nil); len(got) != 0 {
		t.Errorf("summaries = %+v, want none", got)
	}
}
