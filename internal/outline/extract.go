package outline

import (
	"maps"
	"slices"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// Extractor runs the full heading-inference pipeline. It holds no mutable
// state and may be shared between goroutines.
type Extractor struct {
	cfg Config
}

// Trace records what each stage produced for one document.
type Trace struct {
	Lines         int      `json:"lines"`
	RecurringText []string `json:"recurring_text"`
	FilteredLines int      `json:"filtered_lines"`
	Blocks        int      `json:"blocks"`
	BodySize      float64  `json:"body_size"`
}

// NewExtractor returns an Extractor using cfg.
func NewExtractor(cfg Config) *Extractor {
	return &Extractor{cfg: cfg}
}

// Config returns the thresholds the extractor runs with.
func (e *Extractor) Config() Config {
	return e.cfg
}

// Extract infers the title and outline of a document from its pages.
func (e *Extractor) Extract(pages []Page) doctree.Result {
	res, _ := e.ExtractDetailed(pages)
	return res
}

// ExtractDetailed is Extract plus per-stage counts.
func (e *Extractor) ExtractDetailed(pages []Page) (doctree.Result, Trace) {
	var tr Trace

	lines := ReconstructLines(pages, e.cfg)
	tr.Lines = len(lines)
	if len(lines) == 0 {
		return doctree.NoContent(), tr
	}

	noise := FindRecurring(lines, e.cfg)
	tr.RecurringText = slices.Sorted(maps.Keys(noise))
	lines = FilterRecurring(lines, noise)
	tr.FilteredLines = len(lines)

	blocks := MergeBlocks(lines, e.cfg)
	tr.Blocks = len(blocks)
	if len(blocks) == 0 {
		return doctree.NoContent(), tr
	}
	tr.BodySize = BodySize(blocks)

	return Classify(blocks, e.cfg), tr
}
