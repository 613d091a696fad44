package outline

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// Classify picks the title and leveled headings out of blocks. The body
// size is the most frequent block size; blocks set larger than it are
// headings, and when none are, blocks at body size are used instead.
func Classify(blocks []Block, cfg Config) doctree.Result {
	if len(blocks) == 0 {
		return doctree.NoContent()
	}
	candidates := headingCandidates(blocks, BodySize(blocks), cfg)
	if len(candidates) == 0 {
		return doctree.NoTitle()
	}

	title := candidates[0]
	levels := levelMap(candidates)

	type dedupKey struct {
		text string
		page int
	}
	keyOf := func(b Block) dedupKey {
		return dedupKey{text: strings.ToLower(strings.TrimSpace(b.Text)), page: b.Page}
	}
	used := map[dedupKey]bool{keyOf(title): true}

	res := doctree.Result{Title: title.Text, Outline: []doctree.Entry{}}
	for _, c := range candidates {
		k := keyOf(c)
		if used[k] {
			continue
		}
		used[k] = true

		level, ok := levels[c.Size]
		if !ok {
			level = cfg.DefaultLevel
		}
		res.Outline = append(res.Outline, doctree.Entry{Level: level, Text: c.Text, Page: c.Page})
	}
	return res
}

// BodySize returns the most frequent block size.
func BodySize(blocks []Block) float64 {
	sizes := make([]float64, len(blocks))
	for i, b := range blocks {
		sizes[i] = b.Size
	}
	return mode(sizes)
}

func headingCandidates(blocks []Block, body float64, cfg Config) []Block {
	long := func(b Block) bool {
		return utf8.RuneCountInString(b.Text) > cfg.MinHeadingTextLength
	}

	var out []Block
	for _, b := range blocks {
		if b.Size > body && long(b) {
			out = append(out, b)
		}
	}
	if len(out) > 0 {
		return out
	}

	// Nothing stands out from the body text. Page numbers that slipped
	// through header/footer filtering would dominate here, so skip them.
	for _, b := range blocks {
		if b.Size >= body && long(b) && !isNumeric(b.Text) {
			out = append(out, b)
		}
	}
	return out
}

// levelMap assigns H1 to the largest candidate size, H2 to the next and so on.
func levelMap(candidates []Block) map[float64]string {
	seen := make(map[float64]bool)
	var sizes []float64
	for _, c := range candidates {
		if !seen[c.Size] {
			seen[c.Size] = true
			sizes = append(sizes, c.Size)
		}
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(sizes)))

	levels := make(map[float64]string, len(sizes))
	for i, s := range sizes {
		levels[s] = doctree.Level(i + 1)
	}
	return levels
}
