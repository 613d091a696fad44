package outline

import (
	"math"
	"sort"
	"strings"
)

// ReconstructLines groups each page's glyphs into lines by vertical
// proximity. Pages are processed independently and their lines are
// concatenated in page order.
func ReconstructLines(pages []Page, cfg Config) []Line {
	var lines []Line
	for _, p := range pages {
		lines = append(lines, pageLines(p, cfg.LineYTolerance)...)
	}
	return lines
}

func pageLines(p Page, tolerance float64) []Line {
	if len(p.Chars) == 0 {
		return nil
	}

	chars := make([]Char, len(p.Chars))
	copy(chars, p.Chars)
	sort.SliceStable(chars, func(i, j int) bool {
		if chars[i].Top != chars[j].Top {
			return chars[i].Top < chars[j].Top
		}
		return chars[i].X0 < chars[j].X0
	})

	var lines []Line
	start := 0
	for i := 1; i < len(chars); i++ {
		if math.Abs(chars[i].Top-chars[i-1].Top) > tolerance {
			if l, ok := buildLine(chars[start:i], p.Index); ok {
				lines = append(lines, l)
			}
			start = i
		}
	}
	if l, ok := buildLine(chars[start:], p.Index); ok {
		lines = append(lines, l)
	}
	return lines
}

// buildLine closes a group of glyphs into a Line. Groups that are empty
// after trimming are dropped.
func buildLine(group []Char, page int) (Line, bool) {
	var sb strings.Builder
	sizes := make([]float64, len(group))
	fonts := make([]string, len(group))
	for i, c := range group {
		sb.WriteString(c.Text)
		sizes[i] = roundTo(c.Size, 1)
		fonts[i] = c.FontName
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return Line{}, false
	}
	return Line{
		Text:     text,
		Size:     mode(sizes),
		FontName: mode(fonts),
		Page:     page,
		Y:        group[0].Top,
	}, true
}
