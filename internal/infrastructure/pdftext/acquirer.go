package pdftext

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/kainolt/backend/internal/domain"
)

// Config holds the OCR fallback policy knobs
type Config struct {
	// CoverageThreshold is the minimum embedded-text character count per
	// page; below it the page is considered image-based and sent to OCR.
	CoverageThreshold int
	// PageTimeout bounds one OCR invocation; a timeout skips that page only.
	PageTimeout time.Duration
	// MaxOCRPages caps how many pages of a document are OCRed
	MaxOCRPages int
}

// Acquirer implements the text acquisition policy over two external
// collaborators: an embedded-text extractor and an OCR engine. The core owns
// only the fallback decision and the merge order; the engines themselves are
// injected. Extracted-text lines take precedence over OCR lines at the same
// position, and OCR-derived lines are tagged so downstream offers are marked
// low confidence.
type Acquirer struct {
	extractor domain.TextExtractor
	ocr       domain.OCREngine
	cfg       Config
}

// NewAcquirer creates an acquirer. A nil OCR engine disables the fallback;
// pages below the coverage threshold then contribute whatever embedded text
// they have.
func NewAcquirer(extractor domain.TextExtractor, ocr domain.OCREngine, cfg Config) *Acquirer {
	if cfg.CoverageThreshold <= 0 {
		cfg.CoverageThreshold = 200
	}
	if cfg.PageTimeout <= 0 {
		cfg.PageTimeout = 30 * time.Second
	}
	if cfg.MaxOCRPages <= 0 {
		cfg.MaxOCRPages = 10
	}
	return &Acquirer{extractor: extractor, ocr: ocr, cfg: cfg}
}

// Acquire returns the document's tagged text lines. It fails only when no
// text at all could be acquired; per-page OCR failures and timeouts are
// logged and skipped.
func (a *Acquirer) Acquire(ctx context.Context, data []byte, useOCR bool) ([]domain.TextLine, error) {
	pages, err := a.extractor.ExtractPages(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrParseFailed, err)
	}

	var lines []domain.TextLine
	for i, page := range pages {
		embedded := splitLines(page, false)

		if !useOCR || a.ocr == nil || i >= a.cfg.MaxOCRPages || coverage(page) >= a.cfg.CoverageThreshold {
			lines = append(lines, embedded...)
			continue
		}

		ocrText, err := a.ocrPage(ctx, data, i)
		if err != nil {
			log.Printf("[PARSE] OCR failed for page %d: %v", i+1, err)
			lines = append(lines, embedded...)
			continue
		}
		lines = append(lines, mergeLines(embedded, splitLines(ocrText, true))...)
	}

	if !hasText(lines) {
		return nil, domain.ErrParseFailed
	}
	return lines, nil
}

// ocrPage runs one OCR invocation under the page timeout
func (a *Acquirer) ocrPage(ctx context.Context, data []byte, page int) (string, error) {
	pageCtx, cancel := context.WithTimeout(ctx, a.cfg.PageTimeout)
	defer cancel()

	text, err := a.ocr.PageText(pageCtx, data, page)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: OCR timed out after %s", domain.ErrParseFailed, a.cfg.PageTimeout)
		}
		return "", err
	}
	return text, nil
}

// mergeLines overlays embedded lines on OCR lines position by position:
// a non-blank embedded line wins its slot, OCR fills the gaps and the tail.
func mergeLines(embedded, ocr []domain.TextLine) []domain.TextLine {
	n := len(embedded)
	if len(ocr) > n {
		n = len(ocr)
	}

	merged := make([]domain.TextLine, 0, n)
	for i := 0; i < n; i++ {
		if i < len(embedded) && strings.TrimSpace(embedded[i].Text) != "" {
			merged = append(merged, embedded[i])
			continue
		}
		if i < len(ocr) {
			merged = append(merged, ocr[i])
		}
	}
	return merged
}

func splitLines(text string, fromOCR bool) []domain.TextLine {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	raw := strings.Split(text, "\n")
	lines := make([]domain.TextLine, len(raw))
	for i, l := range raw {
		lines[i] = domain.TextLine{Text: l, FromOCR: fromOCR}
	}
	return lines
}

// coverage counts the non-whitespace characters of a page
func coverage(page string) int {
	n := 0
	for _, r := range page {
		if !isSpace(r) {
			n++
		}
	}
	return n
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}

func hasText(lines []domain.TextLine) bool {
	for _, l := range lines {
		if strings.TrimSpace(l.Text) != "" {
			return true
		}
	}
	return false
}
