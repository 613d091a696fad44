package parser

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// HTMLParser handles HTML files. The <title> element, when present, names
// the document; otherwise the first heading does.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (doctree.Result, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return doctree.Result{}, fmt.Errorf("%w: parse html %s: %w", ErrExtraction, filename, err)
	}

	var headings []heading
	hasContent := false

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if strings.TrimSpace(n.Data) != "" {
				hasContent = true
			}
		case html.ElementNode:
			if level := headingLevel(n.Data); level > 0 {
				if t := textContent(n); t != "" {
					headings = append(headings, heading{level: level, text: t})
				}
				return
			}

			// Running page furniture, same idea as PDF headers and footers.
			switch n.Data {
			case "script", "style", "nav", "footer", "header":
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	if body := findBody(doc); body != nil {
		walk(body)
	} else {
		walk(doc)
	}

	return nativeOutline(findTitle(doc), headings, hasContent), nil
}

func headingLevel(tag string) int {
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 0
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.Join(strings.Fields(buf.String()), " ")
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return textContent(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
