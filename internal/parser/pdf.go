package parser

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
	"golang.org/x/text/unicode/norm"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/outline"
)

// Letter height in points, used when a page has no usable MediaBox.
const defaultPageTop = 792.0

// PDFParser handles PDF files. It extracts positioned glyphs from the text
// layer and infers the outline from their font sizes.
type PDFParser struct {
	Extractor      *outline.Extractor
	WordSpaceRatio float64
}

// NewPDFParser returns a PDFParser configured from opts.
func NewPDFParser(opts Options) *PDFParser {
	return &PDFParser{
		Extractor:      outline.NewExtractor(opts.Outline),
		WordSpaceRatio: opts.WordSpaceRatio,
	}
}

func (p *PDFParser) Parse(r io.Reader, filename string) (doctree.Result, error) {
	res, _, err := p.ParseTrace(r, filename)
	return res, err
}

// ParseTrace is Parse plus the per-stage counts of the outline pipeline.
func (p *PDFParser) ParseTrace(r io.Reader, filename string) (doctree.Result, outline.Trace, error) {
	// ledongthuc/pdf needs an io.ReaderAt and the total size.
	data, err := io.ReadAll(r)
	if err != nil {
		return doctree.Result{}, outline.Trace{}, fmt.Errorf("%w: %s: %w", ErrRead, filename, err)
	}

	pages, err := ReadPages(bytes.NewReader(data), int64(len(data)), p.WordSpaceRatio)
	if err != nil {
		return doctree.Result{}, outline.Trace{}, fmt.Errorf("%s: %w", filename, err)
	}

	res, tr := p.Extractor.ExtractDetailed(pages)
	return res, tr, nil
}

// ReadPages decodes the text layer of every page into glyphs. Malformed
// content streams make the PDF library panic; those panics are returned as
// ErrExtraction.
func ReadPages(ra io.ReaderAt, size int64, wordSpaceRatio float64) (pages []outline.Page, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("%w: %v", ErrExtraction, r)
		}
	}()

	reader, err := pdflib.NewReader(ra, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExtraction, err)
	}

	numPages := reader.NumPage()
	pages = make([]outline.Page, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		p := outline.Page{Index: i - 1}
		if !page.V.IsNull() {
			p.Chars = pageChars(page.Content().Text, pageTop(page), wordSpaceRatio)
		}
		pages = append(pages, p)
	}
	return pages, nil
}

// pageTop returns the upper edge of the page's MediaBox, looking through
// the page tree for an inherited box.
func pageTop(page pdflib.Page) float64 {
	for v := page.V; !v.IsNull(); v = v.Key("Parent") {
		box := v.Key("MediaBox")
		if box.Kind() == pdflib.Array && box.Len() >= 4 {
			return box.Index(3).Float64()
		}
	}
	return defaultPageTop
}

// pageChars converts PDF glyphs, positioned by baseline from the bottom of
// the page, to Chars measured from the top. The PDF library drops space
// glyphs, so a gap wider than wordSpaceRatio * font size between two glyphs
// on one baseline becomes a space.
func pageChars(texts []pdflib.Text, top, wordSpaceRatio float64) []outline.Char {
	chars := make([]outline.Char, 0, len(texts))
	var prev *pdflib.Text
	for i := range texts {
		t := &texts[i]
		if t.S == "" {
			continue
		}
		size := math.Abs(t.FontSize)
		charTop := top - t.Y - size

		if prev != nil && math.Abs(prev.Y-t.Y) < size/2 && !strings.HasSuffix(prev.S, " ") {
			gapStart := prev.X + prev.W
			if t.X-gapStart > wordSpaceRatio*size {
				chars = append(chars, outline.Char{
					Text:     " ",
					Top:      charTop,
					X0:       gapStart,
					Size:     size,
					FontName: t.Font,
				})
			}
		}

		chars = append(chars, outline.Char{
			Text:     norm.NFC.String(t.S),
			Top:      charTop,
			X0:       t.X,
			Size:     size,
			FontName: t.Font,
		})
		prev = t
	}
	return chars
}
