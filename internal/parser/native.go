package parser

import (
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// heading is an explicitly marked-up heading in a structured document.
type heading struct {
	level int
	text  string
}

// nativeOutline builds a Result for formats that mark their headings up.
// The document title, when the format has one, is used as the title and
// every heading becomes an entry; otherwise the first heading is the title.
// Entries repeating the title or an earlier heading are dropped.
func nativeOutline(docTitle string, headings []heading, hasContent bool) doctree.Result {
	if !hasContent && len(headings) == 0 && docTitle == "" {
		return doctree.NoContent()
	}

	title := strings.TrimSpace(docTitle)
	rest := headings
	if title == "" {
		for len(rest) > 0 && strings.TrimSpace(rest[0].text) == "" {
			rest = rest[1:]
		}
		if len(rest) == 0 {
			return doctree.NoTitle()
		}
		title = rest[0].text
		rest = rest[1:]
	}

	used := map[string]bool{strings.ToLower(strings.TrimSpace(title)): true}
	res := doctree.Result{Title: title, Outline: []doctree.Entry{}}
	for _, h := range rest {
		key := strings.ToLower(strings.TrimSpace(h.text))
		if key == "" || used[key] {
			continue
		}
		used[key] = true
		res.Outline = append(res.Outline, doctree.Entry{Level: doctree.Level(h.level), Text: h.text})
	}
	return res
}
