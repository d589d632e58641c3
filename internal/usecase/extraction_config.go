package usecase

import "regexp"

// PricePattern matches one Lithuanian price format. Patterns with two capture
// groups yield euros and cents; Cents patterns carry a single group holding a
// whole cent amount (e.g. "99 ct").
type PricePattern struct {
	Re    *regexp.Regexp
	Cents bool
}

// CategoryRule pairs a category with its keyword stems. Rule order defines
// match priority: the first rule with a keyword found in the product name wins.
type CategoryRule struct {
	Name     string
	Keywords []string
}

// ExtractionConfig is the immutable configuration shared by the extraction
// and categorization components. Build one per session and pass it in; the
// components themselves hold no mutable state.
type ExtractionConfig struct {
	PricePatterns    []PricePattern
	DiscountPatterns []*regexp.Regexp
	Categories       []CategoryRule
}

// DefaultExtractionConfig carries the price, discount and category patterns
// for Lithuanian grocery flyers: comma decimal separator, trailing euro sign,
// "nuolaida" discount phrasing.
func DefaultExtractionConfig() ExtractionConfig {
	return ExtractionConfig{
		PricePatterns: []PricePattern{
			{Re: regexp.MustCompile(`(?i)(\d+)[,.](\d{2})\s*€`)},   // 2,99 €
			{Re: regexp.MustCompile(`(?i)(\d+)[,.](\d{2})\s*EUR`)}, // 2,99 EUR
			{Re: regexp.MustCompile(`(?i)€\s*(\d+)[,.](\d{2})`)},   // € 2,99
			{Re: regexp.MustCompile(`(?i)(\d+)\s*ct`), Cents: true},
		},
		DiscountPatterns: []*regexp.Regexp{
			regexp.MustCompile(`-(\d+)%`),                 // -30%
			regexp.MustCompile(`(?i)(\d+)%\s*nuolaida`),   // 30% nuolaida
			regexp.MustCompile(`(?i)taupyk.*?(\d+)%`),     // taupyk iki 30%
			regexp.MustCompile(`(?i)iki\s*-(\d+)%`),       // iki -30%
		},
		Categories: []CategoryRule{
			{Name: "Pieno produktai", Keywords: []string{"pienas", "jogurt", "grietinė", "varškė", "sūris", "sviestas"}},
			{Name: "Mėsa ir mėsos gaminiai", Keywords: []string{"mėsa", "dešra", "kumpi", "filė", "šonin", "dešrel"}},
			{Name: "Duona ir konditerija", Keywords: []string{"duona", "batonas", "bandel", "pyraga", "kepalin"}},
			{Name: "Vaisiai ir daržovės", Keywords: []string{"obuol", "banan", "pomidor", "agurk", "moliūg", "kopūst"}},
			{Name: "Gėrimai", Keywords: []string{"sultys", "vanduo", "gėrim", "limonadas", "arbata", "kava"}},
			{Name: "Konservai", Keywords: []string{"konserv", "marinuot", "grybai", "žuvies"}},
			{Name: "Užšaldyti produktai", Keywords: []string{"užšaldyt", "ledai", "pica"}},
			{Name: "Sausainiai ir saldumynai", Keywords: []string{"sausain", "šokolad", "saldain", "vafliai"}},
			{Name: "Makaronai ir kruopos", Keywords: []string{"makaron", "kruopos", "ryžiai", "grikiai"}},
			{Name: "Kosmetika ir higiena", Keywords: []string{"šampūnas", "muilas", "pasta", "dušo želė"}},
		},
	}
}
