package outline

import (
	"fmt"
	"strconv"
)

// Config holds the heuristic thresholds used by each pipeline stage.
type Config struct {
	// LineYTolerance is the maximum vertical distance between a glyph and the
	// previous glyph of a line for both to belong to the same line.
	LineYTolerance float64 `yaml:"line_y_tolerance"`

	// HeaderFooterYTolerance is the bucket width used to decide that two lines
	// on different pages sit in the same running header/footer slot.
	HeaderFooterYTolerance float64 `yaml:"header_footer_y_tolerance"`

	// BlockGapSizeMultiplier scales a block's font size into the largest
	// vertical step a following line may take and still be merged.
	BlockGapSizeMultiplier float64 `yaml:"block_gap_size_multiplier"`

	// MinHeadingTextLength is the length a block's text must exceed to be
	// considered a heading.
	MinHeadingTextLength int `yaml:"min_heading_text_length"`

	// DefaultLevel is assigned to a candidate whose size has no level.
	DefaultLevel string `yaml:"default_level"`
}

// DefaultConfig returns the thresholds the heuristics were tuned with.
func DefaultConfig() Config {
	return Config{
		LineYTolerance:         2.0,
		HeaderFooterYTolerance: 3.0,
		BlockGapSizeMultiplier: 1.5,
		MinHeadingTextLength:   2,
		DefaultLevel:           "H4",
	}
}

// Validate rejects thresholds the stages cannot work with.
func (c Config) Validate() error {
	if c.LineYTolerance < 0 {
		return fmt.Errorf("line y tolerance must be >= 0, got %v", c.LineYTolerance)
	}
	if c.HeaderFooterYTolerance <= 0 {
		return fmt.Errorf("header/footer y tolerance must be > 0, got %v", c.HeaderFooterYTolerance)
	}
	if c.BlockGapSizeMultiplier <= 0 {
		return fmt.Errorf("block gap size multiplier must be > 0, got %v", c.BlockGapSizeMultiplier)
	}
	if c.MinHeadingTextLength < 0 {
		return fmt.Errorf("min heading text length must be >= 0, got %d", c.MinHeadingTextLength)
	}
	if c.DefaultLevel == "" {
		return fmt.Errorf("default level is required")
	}
	return nil
}

// Fingerprint identifies the thresholds so cached results are only reused
// for the configuration that produced them.
func (c Config) Fingerprint() string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	return f(c.LineYTolerance) + "-" + f(c.HeaderFooterYTolerance) + "-" +
		f(c.BlockGapSizeMultiplier) + "-" + strconv.Itoa(c.MinHeadingTextLength) + "-" + c.DefaultLevel
}
