package pdftext

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"
)

// PlainExtractor treats the document bytes as UTF-8 text with form-feed page
// breaks. It stands in for a real PDF text extractor when the caller already
// has textual flyer exports; the acquisition policy is identical either way.
type PlainExtractor struct{}

// ExtractPages splits the text on form feeds, one string per page
func (PlainExtractor) ExtractPages(_ context.Context, data []byte) ([]string, error) {
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("document is not valid UTF-8 text")
	}
	return strings.Split(string(data), "\f"), nil
}
