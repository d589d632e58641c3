package usecase

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/kainolt/backend/internal/domain"
)

// AnalyzerConfig holds configuration for the promo analyzer
type AnalyzerConfig struct {
	Extraction   ExtractionConfig
	StopFraction float64
}

// Analyzer is the core facade consumed by the presentation layer: it parses
// documents into the session repository and answers deal, comparison, cart
// and summary queries over it. Parsing of independent documents may run
// concurrently; the repository insert is the only shared mutation.
type Analyzer struct {
	repo      domain.OfferRepository
	acquirer  domain.TextAcquirer
	extractor *Extractor
	builder   *Builder
	importer  *Importer
	optimizer *Optimizer

	unparsed atomic.Int64
}

// NewAnalyzer creates an analyzer with its dependencies
func NewAnalyzer(repo domain.OfferRepository, acquirer domain.TextAcquirer, cfg AnalyzerConfig) *Analyzer {
	if cfg.Extraction.PricePatterns == nil {
		cfg.Extraction = DefaultExtractionConfig()
	}

	builder := NewBuilder(NewCategorizer(cfg.Extraction.Categories))
	optimizer := NewOptimizer()
	optimizer.SetStopFraction(cfg.StopFraction)

	return &Analyzer{
		repo:      repo,
		acquirer:  acquirer,
		extractor: NewExtractor(cfg.Extraction),
		builder:   builder,
		importer:  NewImporter(builder),
		optimizer: optimizer,
	}
}

// ParseDocument acquires text from raw document bytes, extracts offers and
// inserts them into the session repository. Partial extraction never fails;
// the returned error is non-nil only when text acquisition fails entirely.
func (a *Analyzer) ParseDocument(ctx context.Context, data []byte, retailer, source string, useOCR bool) ([]domain.ProductOffer, error) {
	canonical, ok := domain.CanonicalRetailer(retailer)
	if !ok {
		return nil, wrapUnsupportedRetailer(retailer)
	}

	lines, err := a.acquirer.Acquire(ctx, data, useOCR)
	if err != nil {
		return nil, err
	}

	return a.parseLines(lines, canonical, source), nil
}

// ParseText extracts offers from already-acquired plain text
func (a *Analyzer) ParseText(ctx context.Context, text, retailer, source string) ([]domain.ProductOffer, error) {
	canonical, ok := domain.CanonicalRetailer(retailer)
	if !ok {
		return nil, wrapUnsupportedRetailer(retailer)
	}
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrParseFailed
	}

	raw := strings.Split(text, "\n")
	lines := make([]domain.TextLine, len(raw))
	for i, l := range raw {
		lines[i] = domain.TextLine{Text: l}
	}
	return a.parseLines(lines, canonical, source), nil
}

func (a *Analyzer) parseLines(lines []domain.TextLine, retailer, source string) []domain.ProductOffer {
	if source == "" {
		source = "document"
	}

	drafts, stats := a.extractor.Extract(lines)
	a.unparsed.Add(int64(stats.Unparsed))

	now := time.Now()
	offers := make([]domain.ProductOffer, 0, len(drafts))
	for _, draft := range drafts {
		offers = append(offers, a.builder.Build(draft, retailer, source, now))
	}

	inserted := a.repo.Insert(offers...)
	log.Printf("[PARSE] %s %s: %d lines, %d drafts, %d unparsed, %d inserted",
		retailer, source, stats.Lines, stats.Drafts, stats.Unparsed, inserted)

	return offers
}

// BestDeals returns the top promotional offers, optionally filtered by category
func (a *Analyzer) BestDeals(category string, topN int) ([]domain.ProductOffer, error) {
	if topN <= 0 {
		return nil, domain.ErrInvalidRequest
	}
	if a.repo.Len() == 0 {
		return nil, domain.ErrNoData
	}

	if category == "" {
		return RankDeals(a.repo.All(), "", topN), nil
	}
	return RankDeals(a.repo.ByCategory(category), "", topN), nil
}

// Compare groups the offers matching the query by product, cheapest first
func (a *Analyzer) Compare(query string) ([]domain.PriceComparison, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.ErrInvalidRequest
	}
	if a.repo.Len() == 0 {
		return nil, domain.ErrNoData
	}
	return GroupComparison(a.repo.Search(query), query), nil
}

// OptimizeCart selects offers to satisfy the requirements under the budget.
// Unmet requirements are part of the result, never an error.
func (a *Analyzer) OptimizeCart(reqs []domain.CartRequirement, constraint domain.CartConstraint) (domain.CartResult, error) {
	if len(reqs) == 0 || constraint.Budget <= 0 {
		return domain.CartResult{}, domain.ErrInvalidRequest
	}
	for _, r := range reqs {
		if r.Category == "" || r.Quantity <= 0 {
			return domain.CartResult{}, domain.ErrInvalidRequest
		}
	}
	if a.repo.Len() == 0 {
		return domain.CartResult{}, domain.ErrNoData
	}

	result := a.optimizer.Optimize(a.repo.All(), reqs, constraint)
	log.Printf("[CART] strategy=%s budget=%.2f items=%d cost=%.2f savings=%.2f unmet=%d",
		constraint.Strategy, constraint.Budget, len(result.Items), result.TotalCost, result.TotalSavings, len(result.Unmet))
	return result, nil
}

// ShoppingList fills a quota-free promo list within the budget
func (a *Analyzer) ShoppingList(budget float64, strategy domain.Strategy) ([]domain.ProductOffer, error) {
	if budget <= 0 {
		return nil, domain.ErrInvalidRequest
	}
	if a.repo.Len() == 0 {
		return nil, domain.ErrNoData
	}
	return a.optimizer.ShoppingList(a.repo.All(), budget, strategy), nil
}

// ImportRecords validates tabular rows into offers and inserts the valid
// ones. Row errors are collected and returned; the batch never aborts.
func (a *Analyzer) ImportRecords(rows []ImportRow) ([]domain.ProductOffer, []*domain.RowError) {
	offers, rowErrs := a.importer.Import(rows)
	if len(offers) > 0 {
		a.repo.Insert(offers...)
	}
	return offers, rowErrs
}

// ImportCSV reads and imports a CSV batch
func (a *Analyzer) ImportCSV(r io.Reader) ([]domain.ProductOffer, []*domain.RowError, error) {
	offers, rowErrs, err := a.importer.ImportCSV(r)
	if err != nil {
		return nil, nil, err
	}
	if len(offers) > 0 {
		a.repo.Insert(offers...)
	}
	return offers, rowErrs, nil
}

// Summary aggregates the loaded offers per retailer
func (a *Analyzer) Summary() ([]domain.RetailerSummary, error) {
	if a.repo.Len() == 0 {
		return nil, domain.ErrNoData
	}
	return Summarize(a.repo.All()), nil
}

// ShoppingGuide renders the plain-text shopping guide for the session
func (a *Analyzer) ShoppingGuide(w io.Writer) error {
	return WriteShoppingGuide(w, a.repo.All(), time.Now())
}

// UnparsedLines reports how many non-blank lines produced no draft so far
func (a *Analyzer) UnparsedLines() int64 {
	return a.unparsed.Load()
}

func wrapUnsupportedRetailer(retailer string) error {
	return fmt.Errorf("%w: %q", domain.ErrUnsupportedRetailer, retailer)
}
