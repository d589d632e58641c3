package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrParseFailed is returned when no text at all can be acquired from a document
	ErrParseFailed = errors.New("failed to extract text from document")

	// ErrUnsupportedRetailer is returned when a retailer is not in the known set
	ErrUnsupportedRetailer = errors.New("unsupported retailer")

	// ErrNoData is returned when a query runs against an empty session repository
	ErrNoData = errors.New("no promo data loaded")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrFlyerNotFound is returned when a retailer page lists no flyer PDFs
	ErrFlyerNotFound = errors.New("no flyer found for retailer")

	// ErrFetchFailed is returned when a flyer download fails after retries
	ErrFetchFailed = errors.New("flyer download failed")
)

// RowError describes why a single imported row was rejected. Row numbers are
// 1-based over the data rows of the batch. Row errors are collected per batch;
// they never abort sibling rows.
type RowError struct {
	Row   int
	Field string
	Err   error
}

func (e *RowError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("row %d: %v", e.Row, e.Err)
	}
	return fmt.Sprintf("row %d: field %q: %v", e.Row, e.Field, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}
