// Package outline infers a document title and heading outline from
// positioned glyphs using font-size statistics.
//
// The pipeline runs strictly forward:
//
//	glyphs -> lines -> filtered lines -> blocks -> outline
//
// Every stage is a pure function of the previous stage's output.
package outline

import (
	"strconv"
	"unicode"
)

// Char is a single extracted glyph.
type Char struct {
	Text     string
	Top      float64 // distance from the top of the page
	X0       float64
	Size     float64
	FontName string
}

// Page holds the glyphs of one page. Index is 0-based.
type Page struct {
	Index int
	Chars []Char
}

// Line is a run of glyphs on one page sharing a vertical position.
type Line struct {
	Text     string
	Size     float64
	FontName string
	Page     int
	Y        float64
}

// Block is one or more consecutive lines merged into a paragraph or heading.
// Y is the position of the last merged line.
type Block struct {
	Text     string
	Size     float64
	FontName string
	Page     int
	Y        float64
}

// mode returns the most frequent value, preferring the value seen first
// when counts tie. It returns the zero value for an empty slice.
func mode[T comparable](values []T) T {
	counts := make(map[T]int, len(values))
	top := 0
	for _, v := range values {
		counts[v]++
		top = max(top, counts[v])
	}
	for _, v := range values {
		if counts[v] == top {
			return v
		}
	}
	var zero T
	return zero
}

// roundTo rounds the exact binary value of v to the given number of
// decimals. Exact ties go to even.
func roundTo(v float64, decimals int) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', decimals, 64), 64)
	if err != nil {
		return v
	}
	return r
}

// isNumeric reports whether s is non-empty and made only of numeric runes.
func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsNumber(r) {
			return false
		}
	}
	return true
}
