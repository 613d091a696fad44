package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/outline"
)

// Parser converts raw document bytes into an outline.
type Parser interface {
	Parse(r io.Reader, filename string) (doctree.Result, error)
}

// Options configures the parsers returned by ForFile.
type Options struct {
	Outline outline.Config

	// WordSpaceRatio is the horizontal gap, as a fraction of the font size,
	// above which two PDF glyphs on one baseline are separated by a space.
	WordSpaceRatio float64
}

// DefaultOptions returns the default outline thresholds and word spacing.
func DefaultOptions() Options {
	return Options{
		Outline:        outline.DefaultConfig(),
		WordSpaceRatio: 0.3,
	}
}

// Fingerprint identifies every setting that changes a parser's output.
func (o Options) Fingerprint() string {
	return o.Outline.Fingerprint() + "-" + strconv.FormatFloat(o.WordSpaceRatio, 'g', -1, 64)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".pdf":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, opts Options) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return NewPDFParser(opts), nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// IsPDF reports whether filename has a .pdf extension, in any case.
func IsPDF(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".pdf")
}
