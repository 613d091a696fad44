package parser

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// DOCXParser handles .docx files. Paragraphs styled Heading1..Heading6
// become outline entries.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) (doctree.Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return doctree.Result{}, fmt.Errorf("%w: %s: %w", ErrRead, filename, err)
	}

	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return doctree.Result{}, fmt.Errorf("%w: parse docx %s: %w", ErrExtraction, filename, err)
	}

	var headings []heading
	hasContent := false
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}

		text := docxParagraphText(para)
		if text == "" {
			continue
		}
		if level := docxHeadingLevel(para); level > 0 {
			headings = append(headings, heading{level: level, text: text})
		} else {
			hasContent = true
		}
	}

	return nativeOutline("", headings, hasContent), nil
}

// docxHeadingLevel accepts both the style ID ("Heading2") and the style
// name ("heading 2").
func docxHeadingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
	if len(style) == len("heading")+1 && strings.HasPrefix(style, "heading") {
		if d := style[len(style)-1]; d >= '1' && d <= '6' {
			return int(d - '0')
		}
	}
	return 0
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
