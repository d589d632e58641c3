package usecase

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/kainolt/backend/internal/domain"
)

// csvRequiredColumns is the tabular import contract; discount_pct is optional
// and derived from the two prices when absent.
var csvRequiredColumns = []string{"retailer", "product_name", "category", "base_price", "final_price"}

// ImportRow is one loosely-typed tabular row as supplied by the caller.
// Values are validated into a strict ProductOffer at this boundary instead
// of being silently coerced.
type ImportRow struct {
	Retailer    string `json:"retailer"`
	ProductName string `json:"product_name"`
	Category    string `json:"category"`
	BasePrice   string `json:"base_price"`
	FinalPrice  string `json:"final_price"`
	DiscountPct string `json:"discount_pct"`
}

// Importer validates externally-supplied tabular rows into offers. Row-level
// failures are collected and reported; the batch always continues.
type Importer struct {
	builder *Builder
}

// NewImporter creates an importer using the given record builder
func NewImporter(builder *Builder) *Importer {
	return &Importer{builder: builder}
}

// Import validates each row independently. The returned offers and row
// errors together account for every input row.
func (im *Importer) Import(rows []ImportRow) ([]domain.ProductOffer, []*domain.RowError) {
	now := time.Now()

	var (
		offers  []domain.ProductOffer
		rowErrs []*domain.RowError
	)
	for i, row := range rows {
		offer, err := im.buildRow(row, now)
		if err != nil {
			err.Row = i + 1
			rowErrs = append(rowErrs, err)
			continue
		}
		offers = append(offers, offer)
	}
	return offers, rowErrs
}

// buildRow validates one row. The returned RowError carries the offending
// field; the caller fills in the row number.
func (im *Importer) buildRow(row ImportRow, now time.Time) (domain.ProductOffer, *domain.RowError) {
	retailer, ok := domain.CanonicalRetailer(row.Retailer)
	if !ok {
		return domain.ProductOffer{}, &domain.RowError{
			Field: "retailer",
			Err:   fmt.Errorf("%w: %q", domain.ErrUnsupportedRetailer, row.Retailer),
		}
	}

	name := strings.TrimSpace(row.ProductName)
	if name == "" {
		return domain.ProductOffer{}, &domain.RowError{
			Field: "product_name",
			Err:   errors.New("empty product name"),
		}
	}

	base, err := parsePrice(row.BasePrice)
	if err != nil || base <= 0 {
		return domain.ProductOffer{}, &domain.RowError{
			Field: "base_price",
			Err:   fmt.Errorf("invalid price %q", row.BasePrice),
		}
	}
	final, err := parsePrice(row.FinalPrice)
	if err != nil || final < 0 {
		return domain.ProductOffer{}, &domain.RowError{
			Field: "final_price",
			Err:   fmt.Errorf("invalid price %q", row.FinalPrice),
		}
	}

	pct := impliedDiscount(base, final)
	if s := strings.TrimSpace(row.DiscountPct); s != "" {
		parsed, err := strconv.Atoi(strings.TrimSuffix(s, "%"))
		if err != nil {
			return domain.ProductOffer{}, &domain.RowError{
				Field: "discount_pct",
				Err:   fmt.Errorf("invalid discount %q", row.DiscountPct),
			}
		}
		pct = parsed
	}

	offer := im.builder.Build(domain.OfferDraft{
		RawName:     name,
		BasePrice:   base,
		FinalPrice:  final,
		DiscountPct: pct,
	}, retailer, "import", now)

	// the caller's category, when supplied, wins over keyword inference
	if category := strings.TrimSpace(row.Category); category != "" {
		offer.Category = category
	}
	return offer, nil
}

// ImportCSV reads a header-driven CSV batch. Missing required columns fail
// the whole batch; everything past the header is per-row.
func (im *Importer) ImportCSV(r io.Reader) ([]domain.ProductOffer, []*domain.RowError, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: cannot read CSV header: %v", domain.ErrInvalidRequest, err)
	}

	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, col := range csvRequiredColumns {
		if _, ok := index[col]; !ok {
			return nil, nil, fmt.Errorf("%w: CSV missing required column %q", domain.ErrInvalidRequest, col)
		}
	}

	field := func(record []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}

	var rows []ImportRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// a malformed CSV line is a row-level problem, keep going
			rows = append(rows, ImportRow{})
			continue
		}
		rows = append(rows, ImportRow{
			Retailer:    field(record, "retailer"),
			ProductName: field(record, "product_name"),
			Category:    field(record, "category"),
			BasePrice:   field(record, "base_price"),
			FinalPrice:  field(record, "final_price"),
			DiscountPct: field(record, "discount_pct"),
		})
	}

	offers, rowErrs := im.Import(rows)
	return offers, rowErrs, nil
}

// parsePrice accepts both comma and period decimal separators
func parsePrice(s string) (float64, error) {
	cleaned := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "€"))
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, err
	}
	return round2(v), nil
}
