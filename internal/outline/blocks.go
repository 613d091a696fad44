package outline

import "strings"

// closingPunctuation ends a block: nothing merges into a block whose text
// ends with one of these.
const closingPunctuation = ".:?!"

// MergeBlocks merges consecutive lines sharing style, page and vertical
// proximity into blocks. Lines must be in document order.
func MergeBlocks(lines []Line, cfg Config) []Block {
	b := blockBuilder{gapMultiplier: cfg.BlockGapSizeMultiplier}
	for _, l := range lines {
		b.add(l)
	}
	return b.finish()
}

// blockBuilder owns the single open block. Flushed blocks are never
// touched again.
type blockBuilder struct {
	gapMultiplier float64
	open          *Block
	done          []Block
}

func (b *blockBuilder) add(l Line) {
	if b.open != nil && b.continues(l) {
		b.open.Text += " " + l.Text
		b.open.Y = l.Y
		return
	}
	b.flush()
	b.open = &Block{Text: l.Text, Size: l.Size, FontName: l.FontName, Page: l.Page, Y: l.Y}
}

func (b *blockBuilder) continues(l Line) bool {
	cur := b.open
	if l.Size != cur.Size || l.FontName != cur.FontName {
		return false
	}
	if l.Page != cur.Page || l.Y-cur.Y >= cur.Size*b.gapMultiplier {
		return false
	}
	return !endsClause(cur.Text)
}

func (b *blockBuilder) flush() {
	if b.open != nil {
		b.done = append(b.done, *b.open)
		b.open = nil
	}
}

func (b *blockBuilder) finish() []Block {
	b.flush()
	return b.done
}

func endsClause(text string) bool {
	t := strings.TrimSpace(text)
	return t != "" && strings.ContainsRune(closingPunctuation, rune(t[len(t)-1]))
}
