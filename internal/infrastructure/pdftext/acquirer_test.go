package pdftext

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kainolt/backend/internal/domain"
)

type fakeExtractor struct {
	pages []string
	err   error
}

func (f fakeExtractor) ExtractPages(context.Context, []byte) ([]string, error) {
	return f.pages, f.err
}

type fakeOCR struct {
	texts map[int]string
	err   error
	delay time.Duration
	calls []int
}

func (f *fakeOCR) PageText(ctx context.Context, _ []byte, page int) (string, error) {
	f.calls = append(f.calls, page)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.err != nil {
		return "", f.err
	}
	return f.texts[page], nil
}

// richPage clears any sane coverage threshold
var richPage = strings.Repeat("Pienas DVARO 1,39 € 0,99 €\n", 20)

func TestAcquire_EmbeddedTextOnly(t *testing.T) {
	ocr := &fakeOCR{}
	a := NewAcquirer(fakeExtractor{pages: []string{richPage}}, ocr, Config{CoverageThreshold: 50})

	lines, err := a.Acquire(context.Background(), nil, true)

	require.NoError(t, err)
	assert.NotEmpty(t, lines)
	assert.Empty(t, ocr.calls, "good coverage must not trigger OCR")
	for _, l := range lines {
		assert.False(t, l.FromOCR)
	}
}

func TestAcquire_LowCoverageTriggersOCR(t *testing.T) {
	ocr := &fakeOCR{texts: map[int]string{0: "Sūris Džiugas 2,99 €"}}
	a := NewAcquirer(fakeExtractor{pages: []string{"x"}}, ocr, Config{CoverageThreshold: 50})

	lines, err := a.Acquire(context.Background(), nil, true)

	require.NoError(t, err)
	assert.Equal(t, []int{0}, ocr.calls)
	require.Len(t, lines, 1)
	assert.Equal(t, "x", lines[0].Text, "a non-blank embedded line keeps its slot")

	// with no embedded text at all, the OCR line comes through tagged
	a = NewAcquirer(fakeExtractor{pages: []string{""}}, ocr, Config{CoverageThreshold: 50})
	lines, err = a.Acquire(context.Background(), nil, true)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "Sūris Džiugas 2,99 €", lines[0].Text)
	assert.True(t, lines[0].FromOCR)
}

func TestAcquire_MergePrecedence(t *testing.T) {
	// embedded page has a blank middle line that OCR fills, plus OCR tail
	ocr := &fakeOCR{texts: map[int]string{0: "ocr pirma\nocr antra\nocr trečia\nocr ketvirta"}}
	a := NewAcquirer(fakeExtractor{pages: []string{"įterpta pirma\n\nįterpta trečia"}}, ocr, Config{CoverageThreshold: 500})

	lines, err := a.Acquire(context.Background(), nil, true)

	require.NoError(t, err)
	require.Len(t, lines, 4)
	assert.Equal(t, "įterpta pirma", lines[0].Text)
	assert.False(t, lines[0].FromOCR)
	assert.Equal(t, "ocr antra", lines[1].Text)
	assert.True(t, lines[1].FromOCR)
	assert.Equal(t, "įterpta trečia", lines[2].Text)
	assert.Equal(t, "ocr ketvirta", lines[3].Text)
}

func TestAcquire_OCRDisabledByFlag(t *testing.T) {
	ocr := &fakeOCR{texts: map[int]string{0: "ocr tekstas"}}
	a := NewAcquirer(fakeExtractor{pages: []string{"trumpa eilutė"}}, ocr, Config{CoverageThreshold: 500})

	lines, err := a.Acquire(context.Background(), nil, false)

	require.NoError(t, err)
	assert.Empty(t, ocr.calls)
	require.Len(t, lines, 1)
	assert.Equal(t, "trumpa eilutė", lines[0].Text)
}

func TestAcquire_NilOCREngine(t *testing.T) {
	a := NewAcquirer(fakeExtractor{pages: []string{"trumpa eilutė"}}, nil, Config{CoverageThreshold: 500})

	lines, err := a.Acquire(context.Background(), nil, true)

	require.NoError(t, err)
	assert.Len(t, lines, 1)
}

func TestAcquire_MaxOCRPagesCap(t *testing.T) {
	ocr := &fakeOCR{texts: map[int]string{0: "pirmas", 1: "antras", 2: "trečias"}}
	a := NewAcquirer(fakeExtractor{pages: []string{"a", "b", "c"}}, ocr, Config{
		CoverageThreshold: 50,
		MaxOCRPages:       2,
	})

	_, err := a.Acquire(context.Background(), nil, true)

	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, ocr.calls, "pages past the cap use embedded text only")
}

func TestAcquire_OCRTimeoutSkipsPage(t *testing.T) {
	ocr := &fakeOCR{texts: map[int]string{0: "ocr tekstas"}, delay: 200 * time.Millisecond}
	a := NewAcquirer(fakeExtractor{pages: []string{"įterpta eilutė"}}, ocr, Config{
		CoverageThreshold: 500,
		PageTimeout:       10 * time.Millisecond,
	})

	lines, err := a.Acquire(context.Background(), nil, true)

	require.NoError(t, err, "a page timeout is not a document failure")
	require.Len(t, lines, 1)
	assert.Equal(t, "įterpta eilutė", lines[0].Text, "embedded text survives the skipped OCR")
}

func TestAcquire_OCRErrorKeepsEmbedded(t *testing.T) {
	ocr := &fakeOCR{err: errors.New("engine crashed")}
	a := NewAcquirer(fakeExtractor{pages: []string{"įterpta eilutė"}}, ocr, Config{CoverageThreshold: 500})

	lines, err := a.Acquire(context.Background(), nil, true)

	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "įterpta eilutė", lines[0].Text)
}

func TestAcquire_NoTextAnywhere(t *testing.T) {
	a := NewAcquirer(fakeExtractor{pages: []string{"", "  \n  "}}, nil, Config{})

	_, err := a.Acquire(context.Background(), nil, true)

	assert.ErrorIs(t, err, domain.ErrParseFailed)
}

func TestAcquire_ExtractorFailure(t *testing.T) {
	a := NewAcquirer(fakeExtractor{err: errors.New("corrupt document")}, nil, Config{})

	_, err := a.Acquire(context.Background(), nil, false)

	assert.ErrorIs(t, err, domain.ErrParseFailed)
}

func TestPlainExtractor(t *testing.T) {
	pages, err := PlainExtractor{}.ExtractPages(context.Background(), []byte("puslapis vienas\fpuslapis du"))

	require.NoError(t, err)
	assert.Equal(t, []string{"puslapis vienas", "puslapis du"}, pages)
}

func TestPlainExtractor_RejectsBinary(t *testing.T) {
	_, err := PlainExtractor{}.ExtractPages(context.Background(), []byte{0xff, 0xfe, 0x00, 0x80})

	assert.Error(t, err)
}

func TestCoverage(t *testing.T) {
	assert.Equal(t, 0, coverage("  \n\t "))
	assert.Equal(t, 6, coverage("pienas"))
	assert.Equal(t, 8, coverage(" pienas \n 21 "))
}
