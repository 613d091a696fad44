package doctree

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Titles reported when a document yields no usable structure.
const (
	NoContentTitle = "No Content Found"
	NoTitleTitle   = "No Title Found"
)

// Result is the outline of a single document.
type Result struct {
	Title   string  `json:"title"`
	Outline []Entry `json:"outline"`
}

// Entry is one heading in a document outline.
type Entry struct {
	Level string `json:"level"` // "H1".."Hn"
	Text  string `json:"text"`
	Page  int    `json:"page"` // 0-based page index
}

// DocNode is a heading with the headings nested beneath it.
type DocNode struct {
	Level    string     `json:"level"`
	Text     string     `json:"text"`
	Page     int        `json:"page"`
	Children []*DocNode `json:"children,omitempty"`
}

// DocTree is the nested view of a Result.
type DocTree struct {
	Title    string     `json:"title"`
	Children []*DocNode `json:"outline"`
}

// NoContent is the result for documents without any usable text.
func NoContent() Result {
	return Result{Title: NoContentTitle, Outline: []Entry{}}
}

// NoTitle is the result for documents whose text has no heading candidates.
func NoTitle() Result {
	return Result{Title: NoTitleTitle, Outline: []Entry{}}
}

// Level formats a 1-based heading depth as "Hn".
func Level(depth int) string {
	return "H" + strconv.Itoa(depth)
}

// Depth returns the numeric level of the entry, or 0 if Level is malformed.
func (e Entry) Depth() int {
	if !strings.HasPrefix(e.Level, "H") {
		return 0
	}
	n, err := strconv.Atoi(e.Level[1:])
	if err != nil || n < 1 {
		return 0
	}
	return n
}

// MarshalJSON keeps an empty outline as [] rather than null and leaves
// HTML escaping to the enclosing encoder.
func (r Result) MarshalJSON() ([]byte, error) {
	type plain Result
	p := plain(r)
	if p.Outline == nil {
		p.Outline = []Entry{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(p); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Tree nests each entry under the closest preceding entry with a smaller depth.
// Entries with a malformed level are treated as top-level.
func (r Result) Tree() *DocTree {
	tree := &DocTree{Title: r.Title, Children: []*DocNode{}}

	type stackEntry struct {
		node  *DocNode
		depth int
	}
	var stack []stackEntry

	for _, e := range r.Outline {
		depth := e.Depth()
		node := &DocNode{Level: e.Level, Text: e.Text, Page: e.Page}

		for len(stack) > 0 && (depth == 0 || stack[len(stack)-1].depth >= depth) {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			tree.Children = append(tree.Children, node)
		} else {
			parent := stack[len(stack)-1].node
			parent.Children = append(parent.Children, node)
		}
		if depth > 0 {
			stack = append(stack, stackEntry{node: node, depth: depth})
		}
	}
	return tree
}
