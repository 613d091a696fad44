package outline

import "math"

type slotKey struct {
	text string
	y    float64
}

// FindRecurring returns the texts of lines that occupy the same vertical
// slot on more than one page. Such lines are running headers or footers.
func FindRecurring(lines []Line, cfg Config) map[string]struct{} {
	tol := cfg.HeaderFooterYTolerance
	slots := make(map[slotKey]map[int]struct{})
	for _, l := range lines {
		key := slotKey{text: l.Text, y: math.RoundToEven(l.Y/tol) * tol}
		pages, ok := slots[key]
		if !ok {
			pages = make(map[int]struct{})
			slots[key] = pages
		}
		pages[l.Page] = struct{}{}
	}

	noise := make(map[string]struct{})
	for key, pages := range slots {
		if len(pages) > 1 {
			noise[key.text] = struct{}{}
		}
	}
	return noise
}

// FilterRecurring drops every line whose text is in noise, wherever it
// occurs. Matching is by text alone, so a one-off line that happens to share
// its wording with a running header is dropped too.
func FilterRecurring(lines []Line, noise map[string]struct{}) []Line {
	if len(noise) == 0 {
		return lines
	}
	kept := make([]Line, 0, len(lines))
	for _, l := range lines {
		if _, drop := noise[l.Text]; !drop {
			kept = append(kept, l)
		}
	}
	return kept
}
