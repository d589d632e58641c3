package domain

import "context"

// OfferRepository holds all built offers for the active session. Insert is
// the only mutation and must be serialized; readers see consistent snapshots.
type OfferRepository interface {
	Insert(offers ...ProductOffer) int
	All() []ProductOffer
	ByCategory(category string) []ProductOffer
	Search(query string) []ProductOffer
	Len() int
}

// TextAcquirer turns raw document bytes into tagged text lines, applying the
// OCR fallback policy when embedded text coverage is insufficient.
type TextAcquirer interface {
	Acquire(ctx context.Context, data []byte, useOCR bool) ([]TextLine, error)
}

// TextExtractor pulls embedded text from a document, one string per page.
// Implemented by an external collaborator (e.g. a PDF library wrapper).
type TextExtractor interface {
	ExtractPages(ctx context.Context, data []byte) ([]string, error)
}

// OCREngine recognizes text on a rendered document page.
// Implemented by an external collaborator (e.g. a tesseract wrapper).
type OCREngine interface {
	PageText(ctx context.Context, data []byte, page int) (string, error)
}
